package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "prefs.json"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return store
}

func TestStoreRoundTripWithDottedKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, ok, err := store.Get(ctx, "prefs.theme"); err != nil || ok {
		t.Fatalf("expected miss on missing file, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "prefs.theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "prefs.font-size", "1.5"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := store.Get(ctx, "prefs.theme")
	if err != nil || !ok || value != "dark" {
		t.Fatalf("expected dark, got %q ok=%v err=%v", value, ok, err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := gjson.GetBytes(data, `prefs\.font-size`).String(); got != "1.5" {
		t.Fatalf("expected flat member prefs.font-size, got document %s", data)
	}
	if gjson.GetBytes(data, "prefs").Exists() {
		t.Fatalf("expected no nested object, got document %s", data)
	}
}

func TestStorePreservesForeignMembers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(store.Path(), []byte(`{"comment":{"by":"hand"},"theme":"light"}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, _ := os.ReadFile(store.Path())
	if gjson.GetBytes(data, "comment.by").String() != "hand" {
		t.Fatalf("expected foreign member kept, got %s", data)
	}
	if gjson.GetBytes(data, "theme").String() != "dark" {
		t.Fatalf("expected theme updated, got %s", data)
	}
}

func TestStoreKeysAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, key := range []string{"prefs.b", "prefs.a", "other"} {
		if err := store.Set(ctx, key, "v"); err != nil {
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

func TestStoreRejectsCorruptDocument(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(store.Path(), []byte(`[1,2`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := store.Get(context.Background(), "theme"); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestEscapePath(t *testing.T) {
	cases := map[string]string{
		"theme":       "theme",
		"prefs.theme": `prefs\.theme`,
		"a*b?c":       `a\*b\?c`,
	}
	for in, want := range cases {
		if got := escapePath(in); got != want {
			t.Fatalf("escapePath(%q) = %q, want %q", in, got, want)
		}
	}
}
