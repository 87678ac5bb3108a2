package prefs

import (
	"errors"
	"fmt"
)

var (
	// ErrSettingNameRequired indicates a setting without a name.
	ErrSettingNameRequired = errors.New("prefs: setting name must be provided")
	// ErrDuplicateSetting indicates two settings share a name.
	ErrDuplicateSetting = errors.New("prefs: setting names must be unique")
	// ErrNoChoices indicates a setting declares no choices.
	ErrNoChoices = errors.New("prefs: setting must declare at least one choice")
	// ErrDuplicateChoice indicates two choices of a setting share a key.
	ErrDuplicateChoice = errors.New("prefs: choice keys must be unique")
	// ErrInvalidDefault indicates the declared value is not one of the choices.
	ErrInvalidDefault = errors.New("prefs: declared value is not a choice")
)

// Registry is an ordered set of setting definitions. Registry order is the
// render order; it never changes after construction.
type Registry struct {
	settings []Setting
	index    map[string]int
}

// NewRegistry validates settings and returns a registry holding copies of
// them. A setting with an empty Value starts on its first choice.
func NewRegistry(settings ...Setting) (*Registry, error) {
	reg := &Registry{
		settings: make([]Setting, 0, len(settings)),
		index:    make(map[string]int, len(settings)),
	}
	for _, setting := range settings {
		if err := reg.add(setting.clone()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// MustRegistry is NewRegistry that panics on invalid definitions. Intended
// for package level schema declarations.
func MustRegistry(settings ...Setting) *Registry {
	reg, err := NewRegistry(settings...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) add(setting Setting) error {
	if setting.Name == "" {
		return ErrSettingNameRequired
	}
	if _, exists := r.index[setting.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSetting, setting.Name)
	}
	if len(setting.Choices) == 0 {
		return fmt.Errorf("%w: %s", ErrNoChoices, setting.Name)
	}
	seen := make(map[string]struct{}, len(setting.Choices))
	for _, choice := range setting.Choices {
		if _, exists := seen[choice.Key]; exists {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateChoice, setting.Name, choice.Key)
		}
		seen[choice.Key] = struct{}{}
	}
	if setting.Value == "" {
		setting.Value = setting.Choices[0].Key
	}
	if !setting.Has(setting.Value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidDefault, setting.Name, setting.Value)
	}
	r.index[setting.Name] = len(r.settings)
	r.settings = append(r.settings, setting)
	return nil
}

// Len returns the number of settings.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.settings)
}

// Names returns the setting names in registry order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.settings))
	for i, setting := range r.settings {
		names[i] = setting.Name
	}
	return names
}

// Lookup returns a copy of the setting registered under name.
func (r *Registry) Lookup(name string) (Setting, bool) {
	if r == nil {
		return Setting{}, false
	}
	idx, ok := r.index[name]
	if !ok {
		return Setting{}, false
	}
	return r.settings[idx].clone(), true
}

// Settings returns copies of every setting in registry order.
func (r *Registry) Settings() []Setting {
	if r == nil {
		return nil
	}
	out := make([]Setting, len(r.settings))
	for i, setting := range r.settings {
		out[i] = setting.clone()
	}
	return out
}

// Clone returns a deep copy of the registry. Callables are shared.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	clone := &Registry{
		settings: make([]Setting, len(r.settings)),
		index:    make(map[string]int, len(r.index)),
	}
	for i, setting := range r.settings {
		clone.settings[i] = setting.clone()
		clone.index[setting.Name] = i
	}
	return clone
}

func (r *Registry) setValue(name, value string) (string, bool) {
	idx, ok := r.index[name]
	if !ok {
		return "", false
	}
	previous := r.settings[idx].Value
	r.settings[idx].Value = value
	return previous, true
}
