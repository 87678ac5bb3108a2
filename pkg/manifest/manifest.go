// Package manifest loads settings declared in JSON or YAML documents. Init
// and on_select callbacks are expressions run by one of the prefs
// evaluators.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-prefs/internal/hydrate"
	"gopkg.in/yaml.v3"
)

// Evaluator names accepted in a manifest.
const (
	EvaluatorExpr = "expr"
	EvaluatorCEL  = "cel"
	EvaluatorJS   = "js"
)

// Formats accepted by Parse.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	// ErrUnsupportedFormat reports a document that is neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("manifest: unsupported format")
	// ErrEvaluatorUnavailable reports an evaluator missing from this build.
	ErrEvaluatorUnavailable = errors.New("manifest: evaluator unavailable")
)

// Manifest is a declarative settings document.
type Manifest struct {
	Evaluator string    `json:"evaluator" validate:"omitempty,oneof=expr cel js"`
	KeyPrefix string    `json:"key_prefix"`
	Settings  []Setting `json:"settings" validate:"required,min=1,unique=Name,dive"`
}

// Setting declares one setting. An empty Value defaults to the first choice.
type Setting struct {
	Name        string      `json:"name" validate:"required"`
	Value       string      `json:"value"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description"`
	Control     string      `json:"control" validate:"omitempty,oneof=cycle submenu"`
	Attributes  []Attribute `json:"attributes" validate:"dive"`
	// Init is an expression yielding the starting choice key.
	Init    string   `json:"init"`
	Choices []Choice `json:"choices" validate:"required,min=1,unique=Key,dive"`
}

// Attribute is a presentation attribute.
type Attribute struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// Choice declares one choice.
type Choice struct {
	Key         string `json:"key" validate:"required"`
	DisplayName string `json:"display_name"`
	// OnSelect is an expression whose truthiness decides success.
	OnSelect string `json:"on_select"`
	Disabled bool   `json:"disabled"`
	Hidden   bool   `json:"hidden"`
}

var validate = validator.New()

var aliases = map[string]string{
	"keyPrefix":   "key_prefix",
	"displayName": "display_name",
	"onSelect":    "on_select",
}

// Validate checks the structural rules of the manifest.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("manifest: invalid: %w", err)
	}
	return nil
}

// Load reads and parses the manifest at path. The format follows the file
// extension.
func Load(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	format, err := FormatOf(path)
	if err != nil {
		return Manifest{}, err
	}
	return parse(hydrate.Context{Source: path, Format: format}, raw)
}

// Parse decodes raw in format.
func Parse(raw []byte, format string) (Manifest, error) {
	return parse(hydrate.Context{Format: strings.ToLower(format)}, raw)
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func parse(ctx hydrate.Context, raw []byte) (Manifest, error) {
	var payload map[string]any
	switch ctx.Format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &payload); err != nil {
			return Manifest{}, fmt.Errorf("manifest: parse json: %w", err)
		}
	case FormatYAML, "yml":
		if err := yaml.Unmarshal(raw, &payload); err != nil {
			return Manifest{}, fmt.Errorf("manifest: parse yaml: %w", err)
		}
	default:
		return Manifest{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ctx.Format)
	}

	decoder := hydrate.NewDecoder(
		hydrate.WithKeyAliases[Manifest](aliases),
		hydrate.WithPreHook[Manifest](stringifyScalars),
		hydrate.WithStrict[Manifest](),
		hydrate.WithPostHook[Manifest](func(_ hydrate.Context, m *Manifest) error {
			return m.Validate()
		}),
	)
	return decoder.Decode(ctx, payload)
}

// stringifyScalars turns numeric and boolean keys and values into strings,
// so `key: 1.5` and `key: "1.5"` mean the same.
func stringifyScalars(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	settings, _ := payload["settings"].([]any)
	for _, item := range settings {
		setting, ok := item.(map[string]any)
		if !ok {
			continue
		}
		stringify(setting, "value")
		choices, _ := setting["choices"].([]any)
		for _, raw := range choices {
			if choice, ok := raw.(map[string]any); ok {
				stringify(choice, "key")
			}
		}
		attributes, _ := setting["attributes"].([]any)
		for _, raw := range attributes {
			if attribute, ok := raw.(map[string]any); ok {
				stringify(attribute, "value")
			}
		}
	}
	return payload, nil
}

func stringify(fields map[string]any, key string) {
	switch typed := fields[key].(type) {
	case float64:
		fields[key] = strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		fields[key] = strconv.Itoa(typed)
	case bool:
		fields[key] = strconv.FormatBool(typed)
	}
}
