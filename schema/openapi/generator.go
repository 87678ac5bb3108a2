// Package openapi describes a preferences registry as an OpenAPI document
// whose request body is the object of every setting's selected choice.
package openapi

import (
	prefs "github.com/goliatone/go-prefs"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI schema generator.
func NewGenerator(opts ...GeneratorOption) prefs.SchemaGenerator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return generator{config: cfg}
}

// Option wires the OpenAPI schema generator into an engine.
func Option(opts ...GeneratorOption) prefs.Option {
	return prefs.WithSchemaGenerator(NewGenerator(opts...))
}

func (g generator) Generate(registry *prefs.Registry) (prefs.SchemaDocument, error) {
	if registry == nil {
		return prefs.SchemaDocument{}, prefs.ErrNilRegistry
	}
	settings := registry.Settings()
	nodes := make([]*settingNode, 0, len(settings))
	for _, setting := range settings {
		nodes = append(nodes, newSettingNode(setting))
	}
	document, err := newOpenAPIDocumentBuilder(g.config, nodes).build()
	if err != nil {
		return prefs.SchemaDocument{}, err
	}
	return prefs.SchemaDocument{
		Format:   prefs.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}
