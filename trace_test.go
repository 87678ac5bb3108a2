package prefs_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/state"
)

func TestTraceSources(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	engine, err := prefs.New(prefs.MustRegistry(prefs.Setting{
		Name:    "theme",
		Value:   "dark",
		Choices: []prefs.Choice{{Key: "dark"}, {Key: "light"}, {Key: "contrast"}},
	}), prefs.WithStore(store), prefs.WithKeyPrefix("prefs."))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	trace, err := engine.Trace(ctx, "theme")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if trace.Source != prefs.SourceMemory || trace.Effective != "dark" || trace.Layers[0].Found {
		t.Fatalf("expected memory source on a miss, got %+v", trace)
	}

	if err := engine.Set(ctx, "theme", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	trace, _ = engine.Trace(ctx, "theme")
	if trace.Source != prefs.SourceStore || trace.Effective != "light" || trace.Layers[0].Key != "prefs.theme" {
		t.Fatalf("expected store source, got %+v", trace)
	}
	if trace.Layers[2].Value != "dark" {
		t.Fatalf("expected frozen default listed, got %+v", trace.Layers[2])
	}

	_ = store.Set(ctx, "prefs.theme", "sepia")
	trace, _ = engine.Trace(ctx, "theme")
	if trace.Source != prefs.SourceMemory || trace.Layers[0].Valid {
		t.Fatalf("expected stale stored value skipped, got %+v", trace)
	}
}

func TestTraceStorageFailure(t *testing.T) {
	engine, err := prefs.New(prefs.MustRegistry(prefs.Setting{
		Name:    "sound",
		Choices: []prefs.Choice{{Key: "on"}, {Key: "off"}},
	}), prefs.WithStore(&brokenStore{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	trace, err := engine.Trace(context.Background(), "sound")
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if trace.Source != prefs.SourceMemory || trace.Layers[0].Error == "" {
		t.Fatalf("expected storage error recorded, got %+v", trace)
	}
}

func TestTraceJSONRoundTripAndUnknown(t *testing.T) {
	engine := newEngine(t, nil)
	if _, err := engine.Trace(context.Background(), "missing"); !errors.Is(err, prefs.ErrUnknownSetting) {
		t.Fatalf("expected ErrUnknownSetting, got %v", err)
	}

	want := prefs.Trace{Setting: "theme", Effective: "dark", Source: prefs.SourceMemory, Layers: []prefs.Provenance{{Source: prefs.SourceStore}}}
	payload, err := want.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	got, err := prefs.TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}
