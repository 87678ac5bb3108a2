package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	prefs "github.com/goliatone/go-prefs"
)

// choiceSet is the reusable part of a setting schema: its enum.
type choiceSet struct {
	keys []string
}

func (c choiceSet) digest() string {
	if len(c.keys) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(c.keys, "\x00")))
	return hex.EncodeToString(sum[:])
}

func (c choiceSet) openAPI() map[string]any {
	enum := make([]any, len(c.keys))
	for i, key := range c.keys {
		enum[i] = key
	}
	return map[string]any{
		"type": "string",
		"enum": enum,
	}
}

type settingNode struct {
	name        string
	title       string
	description string
	def         string
	control     prefs.ControlType
	choices     choiceSet
	labels      map[string]string
	hidden      []string
	disabled    []string
}

func newSettingNode(setting prefs.Setting) *settingNode {
	node := &settingNode{
		name:        setting.Name,
		title:       setting.Details.DisplayName,
		description: setting.Details.Description,
		def:         setting.Value,
		control:     setting.Control(),
		choices:     choiceSet{keys: setting.Keys()},
		labels:      make(map[string]string, len(setting.Choices)),
	}
	for _, choice := range setting.Choices {
		if choice.DisplayName != "" {
			node.labels[choice.Key] = choice.DisplayName
		}
		if choice.Hidden {
			node.hidden = append(node.hidden, choice.Key)
		}
		if choice.Disabled {
			node.disabled = append(node.disabled, choice.Key)
		}
	}
	return node
}

// openAPI renders the property schema. ref, when set, replaces the inline
// enum; OpenAPI 3.0 ignores siblings of $ref so it is wrapped in allOf.
func (n *settingNode) openAPI(ref string, extensions bool) map[string]any {
	var result map[string]any
	if ref != "" {
		result = map[string]any{
			"allOf": []any{map[string]any{"$ref": ref}},
		}
	} else {
		result = n.choices.openAPI()
	}
	if n.title != "" {
		result["title"] = n.title
	}
	if n.description != "" {
		result["description"] = n.description
	}
	if n.def != "" {
		result["default"] = n.def
	}
	if !extensions {
		return result
	}
	result["x-prefs-control"] = string(n.control)
	if len(n.labels) > 0 {
		result["x-prefs-labels"] = orderedStringMap(n.labels)
	}
	if len(n.hidden) > 0 {
		result["x-prefs-hidden"] = append([]string{}, n.hidden...)
	}
	if len(n.disabled) > 0 {
		result["x-prefs-disabled"] = append([]string{}, n.disabled...)
	}
	return result
}

func orderedStringMap(src map[string]string) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
