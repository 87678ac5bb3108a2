package surface

import (
	"errors"
	"fmt"
)

var (
	// ErrWatcherPending reports that a deferred mount is already waiting.
	// No second watcher is registered.
	ErrWatcherPending = errors.New("surface: mount watcher already pending")
	// ErrNoDocument indicates a binder without a document.
	ErrNoDocument = errors.New("surface: document is required")
)

// EventType names an interaction delivered to a mount root.
type EventType string

const (
	EventActivate EventType = "activate"
	EventFocus    EventType = "focus"
	EventBlur     EventType = "blur"
	// EventDismiss is an activation outside every control.
	EventDismiss EventType = "dismiss"
)

// Event is an interaction bubbling to a mount root. Target holds the
// attributes of the control that originated it.
type Event struct {
	Type   EventType
	Target map[string]string
}

// Attr returns the target attribute named key.
func (e Event) Attr(key string) string {
	if e.Target == nil {
		return ""
	}
	return e.Target[key]
}

// Element is a node content can be rendered into.
type Element interface {
	// SetContent replaces the element's children.
	SetContent(content any)
	// Listen registers a delegated handler for events from descendants.
	Listen(handler func(Event)) (unlisten func())
}

// Document is the host the binder resolves locators against.
type Document interface {
	Query(selector string) (Element, bool)
	// Observe calls fn after every batch of structural mutations until the
	// returned disconnect function is called.
	Observe(fn func()) (disconnect func())
}

// MountFunc renders into a resolved element.
type MountFunc func(Element)

// MountError reports a locator that did not resolve.
type MountError struct {
	Locator string
	Reason  string
}

func (e *MountError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("surface: cannot resolve %s: %s", e.Locator, e.Reason)
}
