package prefs

import (
	"context"
	"fmt"
)

// Args is the argument object handed to callables. Engine and Setting are
// always injected by the engine; callers only contribute Extra.
type Args struct {
	Engine  *Engine
	Setting Setting
	// Value is the choice being applied. Empty for Init callables.
	Value string
	Extra map[string]any
}

// Arg returns the caller supplied argument stored under key.
func (a Args) Arg(key string) (any, bool) {
	if a.Extra == nil {
		return nil, false
	}
	value, ok := a.Extra[key]
	return value, ok
}

// Callable is a per-choice or per-setting callback stored with the schema.
// A false result without error counts as a failure.
type Callable interface {
	Call(ctx context.Context, args Args) (bool, error)
}

// CallableFunc adapts a function to Callable.
type CallableFunc func(ctx context.Context, args Args) (bool, error)

// Call implements Callable.
func (f CallableFunc) Call(ctx context.Context, args Args) (bool, error) {
	if f == nil {
		return true, nil
	}
	return f(ctx, args)
}

// SetFrom returns an Init callable that sets the value computed by fn.
func SetFrom(fn func(ctx context.Context, args Args) (string, error)) Callable {
	return CallableFunc(func(ctx context.Context, args Args) (bool, error) {
		value, err := fn(ctx, args)
		if err != nil {
			return false, err
		}
		if err := args.Engine.Set(ctx, args.Setting.Name, value); err != nil {
			return false, err
		}
		return true, nil
	})
}

// invoke runs callable converting panics into errors.
func invoke(ctx context.Context, callable Callable, args Args) (ok bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			ok = false
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return callable.Call(ctx, args)
}

func copyExtra(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra))
	for key, value := range extra {
		out[key] = value
	}
	return out
}
