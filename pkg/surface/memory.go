package surface

import (
	"sort"
	"sync"
)

// MemoryDocument is an in-memory Document keyed by exact selector.
type MemoryDocument struct {
	mu        sync.Mutex
	elements  map[string]Element
	observers map[int]func()
	nextID    int
}

// NewMemoryDocument returns an empty document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{
		elements:  map[string]Element{},
		observers: map[int]func(){},
	}
}

// Query implements Document.
func (d *MemoryDocument) Query(selector string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	element, ok := d.elements[selector]
	return element, ok
}

// Observe implements Document.
func (d *MemoryDocument) Observe(fn func()) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.observers[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// Insert adds element under selector and notifies observers as one batch.
func (d *MemoryDocument) Insert(selector string, element Element) {
	d.mu.Lock()
	d.elements[selector] = element
	d.mu.Unlock()
	d.Mutate()
}

// Remove deletes the element under selector and notifies observers.
func (d *MemoryDocument) Remove(selector string) {
	d.mu.Lock()
	delete(d.elements, selector)
	d.mu.Unlock()
	d.Mutate()
}

// Mutate notifies observers of an unrelated structural change.
func (d *MemoryDocument) Mutate() {
	d.mu.Lock()
	ids := make([]int, 0, len(d.observers))
	for id := range d.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	observers := make([]func(), 0, len(ids))
	for _, id := range ids {
		observers = append(observers, d.observers[id])
	}
	d.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Observers returns the number of connected observers.
func (d *MemoryDocument) Observers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.observers)
}

// MemoryElement is an in-memory Element.
type MemoryElement struct {
	mu        sync.Mutex
	content   any
	renders   int
	listeners map[int]func(Event)
	nextID    int
}

// NewMemoryElement returns an empty element.
func NewMemoryElement() *MemoryElement {
	return &MemoryElement{listeners: map[int]func(Event){}}
}

// SetContent implements Element.
func (e *MemoryElement) SetContent(content any) {
	e.mu.Lock()
	e.content = content
	e.renders++
	e.mu.Unlock()
}

// Listen implements Element.
func (e *MemoryElement) Listen(handler func(Event)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = handler
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Dispatch delivers event to every listener.
func (e *MemoryElement) Dispatch(event Event) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.listeners))
	for id := range e.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, e.listeners[id])
	}
	e.mu.Unlock()
	for _, handler := range handlers {
		handler(event)
	}
}

// Content returns the last rendered content.
func (e *MemoryElement) Content() any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Renders returns how many times content was set.
func (e *MemoryElement) Renders() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renders
}

// Listeners returns the number of registered listeners.
func (e *MemoryElement) Listeners() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
