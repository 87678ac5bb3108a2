package prefs

import (
	"context"
	"encoding/json"
)

// Sources a traced value can come from, strongest first.
const (
	SourceStore   = "store"
	SourceMemory  = "memory"
	SourceDefault = "default"
)

// Trace explains how the effective value of a setting was resolved.
type Trace struct {
	Setting   string       `json:"setting"`
	Effective string       `json:"effective"`
	Source    string       `json:"source"`
	Layers    []Provenance `json:"layers"`
}

// Provenance is what a single source holds for a traced setting.
type Provenance struct {
	Source string `json:"source"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	Found  bool   `json:"found"`
	// Valid reports whether Value is one of the setting's choices.
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace reports every source of a setting and which one Get would use. The
// frozen default is listed for reference only; it never becomes effective.
func (e *Engine) Trace(ctx context.Context, name string) (Trace, error) {
	setting, ok := e.lookup(name)
	if !ok {
		return Trace{}, unknownSetting(name)
	}
	fallback, err := e.Default(name)
	if err != nil {
		return Trace{}, err
	}

	trace := Trace{Setting: name, Effective: setting.Value, Source: SourceMemory}
	stored := Provenance{Source: SourceStore, Key: e.key(name)}
	if e.cfg.store != nil {
		value, found, err := e.load(ctx, name)
		stored.Value, stored.Found = value, found
		stored.Valid = found && setting.Has(value)
		if err != nil {
			stored.Error = err.Error()
		}
		if stored.Valid && err == nil {
			trace.Effective, trace.Source = value, SourceStore
		}
	}
	trace.Layers = []Provenance{
		stored,
		{Source: SourceMemory, Value: setting.Value, Found: true, Valid: setting.Has(setting.Value)},
		{Source: SourceDefault, Value: fallback, Found: true, Valid: setting.Has(fallback)},
	}
	return trace, nil
}
