package prefs

// SchemaFormat identifies the shape of SchemaDocument.Document.
type SchemaFormat string

const (
	// SchemaFormatDescriptors is a []FieldDescriptor.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI is an OpenAPI document as map[string]any.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument is a machine readable description of a registry.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator describes a registry.
type SchemaGenerator interface {
	Generate(registry *Registry) (SchemaDocument, error)
}

// SchemaGeneratorFunc adapts a function to SchemaGenerator.
type SchemaGeneratorFunc func(registry *Registry) (SchemaDocument, error)

// Generate implements SchemaGenerator.
func (f SchemaGeneratorFunc) Generate(registry *Registry) (SchemaDocument, error) {
	return f(registry)
}

// FieldDescriptor describes one setting.
type FieldDescriptor struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name,omitempty"`
	Description string      `json:"description,omitempty"`
	Control     ControlType `json:"control"`
	Default     string      `json:"default"`
	Choices     []string    `json:"choices"`
	Hidden      []string    `json:"hidden,omitempty"`
	Disabled    []string    `json:"disabled,omitempty"`
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(registry *Registry) (SchemaDocument, error) {
	if registry == nil {
		return SchemaDocument{}, ErrNilRegistry
	}
	descriptors := make([]FieldDescriptor, 0, registry.Len())
	for _, setting := range registry.Settings() {
		descriptors = append(descriptors, describeSetting(setting))
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: descriptors,
	}, nil
}

func describeSetting(setting Setting) FieldDescriptor {
	field := FieldDescriptor{
		Name:        setting.Name,
		DisplayName: setting.Details.DisplayName,
		Description: setting.Details.Description,
		Control:     setting.Control(),
		Default:     setting.Value,
		Choices:     setting.Keys(),
	}
	for _, choice := range setting.Choices {
		if choice.Hidden {
			field.Hidden = append(field.Hidden, choice.Key)
		}
		if choice.Disabled {
			field.Disabled = append(field.Disabled, choice.Key)
		}
	}
	return field
}

// Schema describes the declared settings using the configured generator.
// Defaults reflect construction time values, not the current selection.
func (e *Engine) Schema() (SchemaDocument, error) {
	generator := e.cfg.schemaGenerator
	if generator == nil {
		generator = DefaultSchemaGenerator()
	}
	e.mu.RLock()
	registry := e.defaults.Clone()
	e.mu.RUnlock()
	return generator.Generate(registry)
}
