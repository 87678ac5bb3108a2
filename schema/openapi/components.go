package openapi

import (
	"fmt"
	"regexp"
	"strings"
)

// componentRegistry publishes choice sets shared by two or more settings
// under components/schemas. Single use sets stay inline.
type componentRegistry struct {
	entries   map[string]*componentEntry
	usedNames map[string]struct{}
}

type componentEntry struct {
	name   string
	schema map[string]any
	count  int
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{
		entries:   map[string]*componentEntry{},
		usedNames: map[string]struct{}{},
	}
}

// observe counts one use of set. The first observer names the component.
func (r *componentRegistry) observe(nameHint string, set choiceSet) {
	digest := set.digest()
	if digest == "" {
		return
	}
	if entry, ok := r.entries[digest]; ok {
		entry.count++
		return
	}
	r.entries[digest] = &componentEntry{
		name:   r.uniqueName(nameHint),
		schema: set.openAPI(),
		count:  1,
	}
}

// reference returns the $ref for set, empty when it is used once.
func (r *componentRegistry) reference(set choiceSet) string {
	entry, ok := r.entries[set.digest()]
	if !ok || entry.count < 2 {
		return ""
	}
	return "#/components/schemas/" + entry.name
}

// force publishes schema under name regardless of use count.
func (r *componentRegistry) force(name string, schema map[string]any) string {
	entry := &componentEntry{name: r.uniqueName(name), schema: schema, count: 2}
	r.entries["root:"+entry.name] = entry
	return "#/components/schemas/" + entry.name
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Choices"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
	}
}

func (r *componentRegistry) componentsMap() map[string]any {
	out := make(map[string]any, len(r.entries))
	for _, entry := range r.entries {
		if entry.count >= 2 {
			out[entry.name] = entry.schema
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func componentName(setting string) string {
	parts := strings.FieldsFunc(setting, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	b.WriteString("Choices")
	return b.String()
}
