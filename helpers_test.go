package prefs_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	prefs "github.com/goliatone/go-prefs"
)

type reflection struct {
	Name   string
	Value  string
	Failed bool
}

type recordingReflector struct {
	mu    sync.Mutex
	calls []reflection
}

func (r *recordingReflector) Reflect(name, value string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, reflection{Name: name, Value: value, Failed: failed})
}

func (r *recordingReflector) last(t *testing.T) reflection {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		t.Fatalf("expected at least one reflection")
	}
	return r.calls[len(r.calls)-1]
}

func (r *recordingReflector) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

var errStoreDown = errors.New("store down")

// brokenStore fails every call, or panics when panics is set.
type brokenStore struct {
	panics bool
}

func (s brokenStore) Get(context.Context, string) (string, bool, error) {
	if s.panics {
		panic("quota exceeded")
	}
	return "", false, errStoreDown
}

func (s brokenStore) Set(context.Context, string, string) error {
	if s.panics {
		panic("quota exceeded")
	}
	return errStoreDown
}

type capturedLogs struct {
	mu     sync.Mutex
	events []prefs.LogEvent
}

func (c *capturedLogs) logger() prefs.Logger {
	return prefs.LoggerFunc(func(event prefs.LogEvent) {
		c.mu.Lock()
		c.events = append(c.events, event)
		c.mu.Unlock()
	})
}

func (c *capturedLogs) find(op string, level prefs.LogLevel) (prefs.LogEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, event := range c.events {
		if event.Op == op && event.Level == level {
			return event, true
		}
	}
	return prefs.LogEvent{}, false
}

func choices(keys ...string) []prefs.Choice {
	out := make([]prefs.Choice, len(keys))
	for i, key := range keys {
		out[i] = prefs.Choice{Key: key}
	}
	return out
}

func newEngine(t *testing.T, settings []prefs.Setting, opts ...prefs.Option) *prefs.Engine {
	t.Helper()
	registry, err := prefs.NewRegistry(settings...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	engine, err := prefs.New(registry, opts...)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return engine
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", path, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("failed to unmarshal fixture %q: %v", path, err)
	}
	return out
}
