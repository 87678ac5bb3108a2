package openapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	prefs "github.com/goliatone/go-prefs"
)

func testRegistry(t *testing.T) *prefs.Registry {
	t.Helper()
	registry, err := prefs.NewRegistry(
		prefs.Setting{
			Name:    "theme",
			Details: prefs.Details{DisplayName: "Theme", Description: "Colour scheme"},
			Choices: []prefs.Choice{
				{Key: "light", DisplayName: "Light"},
				{Key: "dark", DisplayName: "Dark"},
			},
		},
		prefs.Setting{
			Name:    "sound",
			Choices: []prefs.Choice{{Key: "on"}, {Key: "off"}},
		},
		prefs.Setting{
			Name:    "music",
			Value:   "off",
			Details: prefs.Details{Control: prefs.ControlSubmenu},
			Choices: []prefs.Choice{{Key: "on", Disabled: true}, {Key: "off"}},
		},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Player Settings", "2.0.0", WithInfoDescription("per player")),
		WithOperation("/settings", "POST", "saveSettings", WithOperationSummary("Save settings")),
		WithContentType("application/x-www-form-urlencoded"),
		WithResponse("201", "Created"),
		WithExtensions(false),
	)

	internal, ok := custom.(generator)
	if !ok {
		t.Fatalf("expected generator implementation, got %T", custom)
	}
	cfg := internal.config
	if cfg.openAPIVersion != "3.1.0" || cfg.info.Title != "Player Settings" || cfg.info.Version != "2.0.0" {
		t.Fatalf("unexpected header config: %+v", cfg)
	}
	if cfg.info.Description != "per player" {
		t.Fatalf("expected info description, got %q", cfg.info.Description)
	}
	if cfg.operation.Path != "/settings" || cfg.operation.Method != "post" || cfg.operation.OperationID != "saveSettings" {
		t.Fatalf("unexpected operation config: %+v", cfg.operation)
	}
	if cfg.operation.Summary != "Save settings" {
		t.Fatalf("expected summary, got %q", cfg.operation.Summary)
	}
	if cfg.contentType != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", cfg.contentType)
	}
	if cfg.responses["201"].Description != "Created" {
		t.Fatalf("expected 201 response, got %+v", cfg.responses)
	}
	if _, ok := cfg.responses["204"]; !ok {
		t.Fatalf("expected default 204 response to remain configured")
	}
	if cfg.extensions {
		t.Fatalf("expected extensions disabled")
	}
}

func TestGeneratorMatchesFixture(t *testing.T) {
	doc, err := NewGenerator().Generate(testRegistry(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Format != prefs.SchemaFormatOpenAPI {
		t.Fatalf("expected openapi format, got %q", doc.Format)
	}

	got := normalize(t, doc.Document)
	want := loadFixture(t, "document_shared_choices.json")
	if !reflect.DeepEqual(got, want) {
		gotJSON, _ := json.MarshalIndent(got, "", "  ")
		t.Fatalf("document mismatch\n%s", gotJSON)
	}
}

func TestGeneratorRootComponent(t *testing.T) {
	doc, err := NewGenerator(WithRootComponent("Preferences"), WithExtensions(false)).Generate(testRegistry(t))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	document := normalize(t, doc.Document).(map[string]any)

	schema := document["paths"].(map[string]any)["/preferences"].(map[string]any)["put"].(map[string]any)["requestBody"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["schema"].(map[string]any)
	if schema["$ref"] != "#/components/schemas/Preferences" {
		t.Fatalf("expected root reference, got %v", schema)
	}
	schemas := document["components"].(map[string]any)["schemas"].(map[string]any)
	root, ok := schemas["Preferences"].(map[string]any)
	if !ok {
		t.Fatalf("expected Preferences component, got %v", schemas)
	}
	if _, ok := root["x-prefs-order"]; ok {
		t.Fatalf("expected no extensions, got %v", root)
	}
	theme := root["properties"].(map[string]any)["theme"].(map[string]any)
	if _, ok := theme["x-prefs-control"]; ok {
		t.Fatalf("expected no property extensions, got %v", theme)
	}
}

func TestEngineSchemaUsesOpenAPIOption(t *testing.T) {
	engine, err := prefs.New(testRegistry(t), Option())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	doc, err := engine.Schema()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if doc.Format != prefs.SchemaFormatOpenAPI {
		t.Fatalf("expected openapi format, got %q", doc.Format)
	}
}

func TestComponentNames(t *testing.T) {
	cases := map[string]string{
		"sound":      "SoundChoices",
		"font-size":  "FontSizeChoices",
		"ui.density": "UiDensityChoices",
	}
	for in, want := range cases {
		if got := componentName(in); got != want {
			t.Fatalf("componentName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := sanitizeComponentName("9 lives!"); got != "_9_lives" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
}

func normalize(t *testing.T, value any) any {
	t.Helper()
	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func loadFixture(t *testing.T, name string) any {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller")
	}
	path := filepath.Join(filepath.Dir(file), "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %q: %v", path, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal fixture %q: %v", path, err)
	}
	return out
}
