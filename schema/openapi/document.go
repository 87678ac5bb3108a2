package openapi

import (
	"fmt"
	"sort"
	"strings"
)

type openAPIDocumentBuilder struct {
	config   generatorConfig
	registry *componentRegistry
	nodes    []*settingNode
}

func newOpenAPIDocumentBuilder(config generatorConfig, nodes []*settingNode) *openAPIDocumentBuilder {
	return &openAPIDocumentBuilder{
		config:   config,
		registry: newComponentRegistry(),
		nodes:    nodes,
	}
}

func (b *openAPIDocumentBuilder) build() (map[string]any, error) {
	for _, node := range b.nodes {
		b.registry.observe(componentName(node.name), node.choices)
	}

	root := b.rootSchema()
	schema := root
	if b.config.rootComponent != "" {
		schema = map[string]any{"$ref": b.registry.force(b.config.rootComponent, root)}
	}

	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(schema),
	}
	if components := b.registry.componentsMap(); components != nil {
		document["components"] = map[string]any{
			"schemas": components,
		}
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

// rootSchema is the preferences object: one property per setting, all
// required, no unknown members.
func (b *openAPIDocumentBuilder) rootSchema() map[string]any {
	properties := make(map[string]any, len(b.nodes))
	required := make([]string, 0, len(b.nodes))
	order := make([]any, 0, len(b.nodes))
	for _, node := range b.nodes {
		properties[node.name] = node.openAPI(b.registry.reference(node.choices), b.config.extensions)
		required = append(required, node.name)
		order = append(order, node.name)
	}
	sort.Strings(required)

	root := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		root["required"] = required
	}
	if b.config.extensions && len(order) > 0 {
		root["x-prefs-order"] = order
	}
	return root
}

func (b *openAPIDocumentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *openAPIDocumentBuilder) buildPaths(schema map[string]any) map[string]any {
	method := strings.ToLower(b.config.operation.Method)
	if method == "" {
		method = "put"
	}

	responses := make(map[string]any, len(b.config.responses))
	for status, resp := range b.config.responses {
		responses[status] = map[string]any{
			"description": resp.Description,
		}
	}

	operation := map[string]any{
		"operationId": b.operationID(method),
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				b.config.contentType: map[string]any{
					"schema": schema,
				},
			},
		},
		"responses": responses,
	}
	if summary := strings.TrimSpace(b.config.operation.Summary); summary != "" {
		operation["summary"] = summary
	}

	return map[string]any{
		b.config.operation.Path: map[string]any{
			method: operation,
		},
	}
}

func (b *openAPIDocumentBuilder) operationID(method string) string {
	if b.config.operation.OperationID != "" {
		return b.config.operation.OperationID
	}
	return fmt.Sprintf("%s:%s", method, b.config.operation.Path)
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	if version, _ := document["openapi"].(string); version == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if id, _ := operation["operationId"].(string); id == "" {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
