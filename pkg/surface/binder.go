package surface

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Option configures a Binder.
type Option func(*Binder)

// WithLogger logs deferred mounts and resolution failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Binder owns the mount state of one control surface.
type Binder struct {
	doc    Document
	logger *slog.Logger

	mu         sync.Mutex
	element    Element
	mounted    bool
	pending    bool
	disconnect func()
}

// NewBinder returns a binder resolving locators against doc.
func NewBinder(doc Document, opts ...Option) *Binder {
	b := &Binder{
		doc:    doc,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Resolve returns the element locator points at.
func (b *Binder) Resolve(locator Locator) (Element, error) {
	switch locator.kind {
	case locateElement:
		if locator.element == nil {
			return nil, &MountError{Locator: locator.String(), Reason: "element is nil"}
		}
		return locator.element, nil
	case locateCollection:
		if len(locator.collection) == 0 || locator.collection[0] == nil {
			return nil, &MountError{Locator: locator.String(), Reason: "collection is empty"}
		}
		return locator.collection[0], nil
	case locateSelector:
		if b.doc == nil {
			return nil, ErrNoDocument
		}
		element, ok := b.doc.Query(locator.selector)
		if !ok || element == nil {
			return nil, &MountError{Locator: locator.String(), Reason: "no matching element"}
		}
		return element, nil
	default:
		return nil, &MountError{Locator: locator.String(), Reason: "locator is empty"}
	}
}

// EnsureMounted mounts into locator now when it resolves. Otherwise it
// registers one document watcher that retries on every mutation batch,
// mounts on the first success and disconnects. While that watcher is
// pending, calls with an unresolvable locator return ErrWatcherPending and
// an immediate mount disconnects it.
func (b *Binder) EnsureMounted(locator Locator, mount MountFunc) error {
	element, err := b.Resolve(locator)
	if err == nil {
		b.finishWatch()
		b.mount(element, mount)
		return nil
	}
	if _, ok := locator.Selector(); !ok {
		// only selectors can appear later
		return err
	}
	if b.doc == nil {
		return ErrNoDocument
	}

	b.mu.Lock()
	if b.pending {
		b.mu.Unlock()
		return ErrWatcherPending
	}
	b.pending = true
	b.mu.Unlock()

	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "surface mount deferred", slog.String("locator", locator.String()))

	var once sync.Once
	disconnect := b.doc.Observe(func() {
		element, err := b.Resolve(locator)
		if err != nil {
			return
		}
		once.Do(func() {
			b.finishWatch()
			b.mount(element, mount)
		})
	})

	b.mu.Lock()
	if b.pending {
		b.disconnect = disconnect
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()
	// The watcher fired before Observe returned.
	if disconnect != nil {
		disconnect()
	}
	return nil
}

func (b *Binder) finishWatch() {
	b.mu.Lock()
	disconnect := b.disconnect
	b.disconnect = nil
	b.pending = false
	b.mu.Unlock()
	if disconnect != nil {
		disconnect()
	}
}

func (b *Binder) mount(element Element, mount MountFunc) {
	b.mu.Lock()
	b.element = element
	b.mounted = true
	b.mu.Unlock()
	if mount != nil {
		mount(element)
	}
}

// Element returns the mounted element.
func (b *Binder) Element() (Element, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.element, b.mounted
}

// Mounted reports whether a mount happened.
func (b *Binder) Mounted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mounted
}

// Pending reports whether a deferred mount is waiting.
func (b *Binder) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Close abandons a pending deferred mount.
func (b *Binder) Close() {
	b.finishWatch()
}
