// Package filestore persists preference values in a single JSON document.
//
// The document is a flat object of key to selected value. Reads go through
// gjson and writes through sjson so unrelated members of a hand edited file
// survive updates untouched.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-prefs/pkg/state"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidDocument indicates the file does not hold a JSON object.
var ErrInvalidDocument = errors.New("filestore: document is not a JSON object")

// Store implements state.Store on a JSON file.
type Store struct {
	path string
	perm fs.FileMode

	mu sync.Mutex
}

var (
	_ state.Store   = (*Store)(nil)
	_ state.Lister  = (*Store)(nil)
	_ state.Deleter = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithFileMode sets the permissions of a newly written document.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// New returns a store backed by path. The file is created on first write.
func New(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("filestore: path is required")
	}
	s := &Store{path: filepath.Clean(path), perm: 0o600}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := check(ctx, key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	result := gjson.Get(doc, escapePath(key))
	if !result.Exists() {
		return "", false, nil
	}
	return result.String(), true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := check(ctx, key); err != nil {
		return err
	}
	return s.update(func(doc string) (string, error) {
		return sjson.Set(doc, escapePath(key), value)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := check(ctx, key); err != nil {
		return err
	}
	return s.update(func(doc string) (string, error) {
		return sjson.Delete(doc, escapePath(key))
	})
}

// Keys returns the sorted keys starting with prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var keys []string
	gjson.Parse(doc).ForEach(func(key, _ gjson.Result) bool {
		if strings.HasPrefix(key.String(), prefix) {
			keys = append(keys, key.String())
		}
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) update(fn func(doc string) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	next, err := fn(doc)
	if err != nil {
		return fmt.Errorf("filestore: update %s: %w", s.path, err)
	}
	return s.write(next)
}

// read returns the document, "{}" when the file does not exist yet.
func (s *Store) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "{}", nil
	}
	if err != nil {
		return "", fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	doc := strings.TrimSpace(string(data))
	if doc == "" {
		return "{}", nil
	}
	if !gjson.Valid(doc) || !gjson.Parse(doc).IsObject() {
		return "", fmt.Errorf("%w: %s", ErrInvalidDocument, s.path)
	}
	return doc, nil
}

// write replaces the document atomically through a temp file in the same
// directory.
func (s *Store) write(doc string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("filestore: create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(doc); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("filestore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("filestore: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		cleanup()
		return fmt.Errorf("filestore: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("filestore: replace %s: %w", s.path, err)
	}
	return nil
}

func check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return state.ErrKeyRequired
	}
	return nil
}

// escapePath turns a raw key into a single gjson/sjson path component.
func escapePath(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
