package prefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSetting indicates a name that is not part of the registry.
	ErrUnknownSetting = errors.New("prefs: unknown setting")
	// ErrCallbackRejected indicates a callback completed without error but
	// reported failure.
	ErrCallbackRejected = errors.New("prefs: callback reported failure")
	// ErrNilRegistry indicates an engine was constructed without settings.
	ErrNilRegistry = errors.New("prefs: registry is required")
)

// ValidationError reports a value that is not a member of the setting's
// choices. It is recoverable and only surfaces as a visual error flag.
type ValidationError struct {
	Setting string
	Value   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: value %q is not a choice of setting %q", e.Value, e.Setting)
}

// StorageError reports a durable store failure. The engine falls back to the
// in-memory value whenever one is returned.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: store %s key=%q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CallbackError reports a failing OnSelect or Init callable.
type CallbackError struct {
	Setting string
	// Choice is empty for Init callables.
	Choice string
	Err    error
}

func (e *CallbackError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Choice == "" {
		return fmt.Sprintf("prefs: init callback for setting %q: %v", e.Setting, e.Err)
	}
	return fmt.Sprintf("prefs: callback for %s=%q: %v", e.Setting, e.Choice, e.Err)
}

func (e *CallbackError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError aggregates every failure collected during Engine.Init.
type InitError struct {
	Errs []error
}

func (e *InitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("prefs: init failed for %d setting(s): %s", len(e.Errs), strings.Join(parts, "; "))
}

func (e *InitError) Unwrap() []error {
	if e == nil {
		return nil
	}
	return e.Errs
}

func unknownSetting(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
}
