package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyRequired indicates an empty key.
	ErrKeyRequired = errors.New("state: key is required")
	// ErrClosed indicates a store used after Close.
	ErrClosed = errors.New("state: store is closed")
)

// Store persists one string value per key. A missing key is reported with
// ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Lister is implemented by stores that can enumerate their entries.
type Lister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Deleter is implemented by stores that can remove entries.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Namespaced prefixes every key with a namespace joined by "/".
type Namespaced struct {
	Namespace string
	Store     Store
}

// Key returns the backend key for key.
func (n Namespaced) Key(key string) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	if n.Namespace == "" {
		return key, nil
	}
	return n.Namespace + "/" + key, nil
}

func (n Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	if n.Store == nil {
		return "", false, fmt.Errorf("state: store is required")
	}
	full, err := n.Key(key)
	if err != nil {
		return "", false, err
	}
	return n.Store.Get(ctx, full)
}

func (n Namespaced) Set(ctx context.Context, key, value string) error {
	if n.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	full, err := n.Key(key)
	if err != nil {
		return err
	}
	return n.Store.Set(ctx, full, value)
}

// Keys lists the keys of the namespace with the namespace stripped. The
// wrapped store must implement Lister.
func (n Namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, ok := n.Store.(Lister)
	if !ok {
		return nil, fmt.Errorf("state: %T does not list keys", n.Store)
	}
	full := prefix
	if n.Namespace != "" {
		full = n.Namespace + "/" + prefix
	}
	keys, err := lister.Keys(ctx, full)
	if err != nil {
		return nil, err
	}
	if n.Namespace == "" {
		return keys, nil
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, strings.TrimPrefix(key, n.Namespace+"/"))
	}
	return out, nil
}
