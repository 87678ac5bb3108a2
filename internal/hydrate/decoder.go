// Package hydrate decodes loosely typed manifest payloads, parsed from JSON
// or YAML, into typed structs through their json tags.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the document a payload came from.
type Context struct {
	// Source is a file path or other label used in error messages.
	Source string
	// Format is the document format, e.g. "json" or "yaml".
	Format string
}

func (c Context) label() string {
	if c.Source == "" {
		return "<inline " + c.Format + ">"
	}
	return c.Source
}

// PreHook rewrites the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Context, *T) error

// DecoderOption configures a Decoder.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts payloads into T.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	strict    bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.preHooks = append(d.preHooks, hook)
		}
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.postHooks = append(d.postHooks, hook)
		}
	}
}

// WithStrict rejects payload fields T does not declare.
func WithStrict[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.strict = true
	}
}

// WithKeyAliases renames keys at every depth before decoding, so documents
// may spell fields as e.g. "displayName" or "display_name".
func WithKeyAliases[T any](aliases map[string]string) DecoderOption[T] {
	return WithPreHook[T](func(_ Context, payload map[string]any) (map[string]any, error) {
		out, _ := renameKeys(payload, aliases).(map[string]any)
		return out, nil
	})
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T applying the configured hooks.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T
	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %s", ctx.label())
	}

	current, err := clonePayload(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone payload for %s: %w", ctx.label(), err)
	}
	for _, hook := range d.preHooks {
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal payload for %s: %w", ctx.label(), err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	if d.strict {
		decoder.DisallowUnknownFields()
	}
	var result T
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", ctx.label(), err)
	}

	for _, hook := range d.postHooks {
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx.label(), err)
		}
	}
	return result, nil
}

// clonePayload deep copies payload and normalizes YAML specific shapes,
// such as map[any]any, into JSON compatible ones.
func clonePayload(payload map[string]any) (map[string]any, error) {
	normalized, err := normalize(payload)
	if err != nil {
		return nil, err
	}
	out, _ := normalized.(map[string]any)
	return out, nil
}

func normalize(value any) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			next, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = next
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", key)
			}
			next, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[name] = next
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			next, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = next
		}
		return out, nil
	default:
		return value, nil
	}
}

func renameKeys(value any, aliases map[string]string) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			if alias, ok := aliases[key]; ok {
				key = alias
			}
			out[key] = renameKeys(item, aliases)
		}
		return out
	case []any:
		for i, item := range typed {
			typed[i] = renameKeys(item, aliases)
		}
		return typed
	default:
		return value
	}
}
