package surface

import "fmt"

type locatorKind int

const (
	locateNone locatorKind = iota
	locateElement
	locateSelector
	locateCollection
)

// Locator identifies a mount point: a live element, a selector, or a
// collection of which the first member is used.
type Locator struct {
	kind       locatorKind
	element    Element
	selector   string
	collection []Element
}

// ByElement locates an element already held by the caller.
func ByElement(element Element) Locator {
	return Locator{kind: locateElement, element: element}
}

// BySelector locates the element matching selector in the document.
func BySelector(selector string) Locator {
	return Locator{kind: locateSelector, selector: selector}
}

// ByCollection locates the first member of elements.
func ByCollection(elements ...Element) Locator {
	return Locator{kind: locateCollection, collection: append([]Element(nil), elements...)}
}

// IsZero reports whether the locator was never set.
func (l Locator) IsZero() bool {
	return l.kind == locateNone
}

// Selector returns the selector of a selector locator.
func (l Locator) Selector() (string, bool) {
	return l.selector, l.kind == locateSelector
}

func (l Locator) String() string {
	switch l.kind {
	case locateElement:
		return "element"
	case locateSelector:
		return fmt.Sprintf("selector %q", l.selector)
	case locateCollection:
		return fmt.Sprintf("collection(%d)", len(l.collection))
	default:
		return "empty locator"
	}
}
