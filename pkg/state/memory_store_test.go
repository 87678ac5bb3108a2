package state_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-prefs/pkg/state"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()

	if _, ok, err := store.Get(ctx, "theme"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "theme")
	if err != nil || !ok || value != "dark" {
		t.Fatalf("expected dark, got %q ok=%v err=%v", value, ok, err)
	}
	if err := store.Set(ctx, "theme", "light"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if value, _, _ := store.Get(ctx, "theme"); value != "light" {
		t.Fatalf("expected last write to win, got %q", value)
	}
}

func TestMemoryStoreRejectsEmptyKey(t *testing.T) {
	store := state.NewMemoryStore()
	if err := store.Set(context.Background(), "", "x"); !errors.Is(err, state.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}

func TestMemoryStoreKeysAndDelete(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	for _, key := range []string{"prefs.b", "prefs.a", "other"} {
		if err := store.Set(ctx, key, "1"); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	keys, err := store.Keys(ctx, "prefs.")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"prefs.a", "prefs.b"}) {
		t.Fatalf("unexpected keys %v", keys)
	}
	if err := store.Delete(ctx, "prefs.a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "prefs.a"); ok {
		t.Fatalf("expected deleted key to miss")
	}
}

func TestNamespacedStoreIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryStore()
	alice := state.Namespaced{Namespace: "alice", Store: backend}
	bob := state.Namespaced{Namespace: "bob", Store: backend}

	if err := alice.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("alice set: %v", err)
	}
	if err := bob.Set(ctx, "theme", "light"); err != nil {
		t.Fatalf("bob set: %v", err)
	}
	if value, _, _ := alice.Get(ctx, "theme"); value != "dark" {
		t.Fatalf("expected alice dark, got %q", value)
	}
	if got := backend.Snapshot(); got["bob/theme"] != "light" {
		t.Fatalf("expected backend key bob/theme, got %v", got)
	}
	keys, err := alice.Keys(ctx, "")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"theme"}) {
		t.Fatalf("expected stripped keys, got %v", keys)
	}
	if _, err := alice.Key(""); !errors.Is(err, state.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}
