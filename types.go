package prefs

import (
	"math"
	"sort"
	"strconv"
)

// ControlType identifies how a setting is presented on the control surface.
type ControlType string

const (
	// ControlCycle advances to the next choice each time it is activated.
	ControlCycle ControlType = "cycle"
	// ControlSubmenu opens a panel listing every visible choice.
	ControlSubmenu ControlType = "submenu"
)

// Details carries the human readable metadata of a setting.
type Details struct {
	DisplayName string
	Description string
	Control     ControlType
}

// Attribute is a presentation key/value pair applied to the rendered control.
type Attribute struct {
	Key   string
	Value string
}

// Choice is one valid value for a setting.
type Choice struct {
	Key         string
	DisplayName string
	// OnSelect runs when the choice becomes selected. Optional.
	OnSelect Callable
	// Disabled choices render inert. They still take part in cycling.
	Disabled bool
	// Hidden choices are not rendered but remain valid Set targets.
	Hidden bool
}

// Label returns the display name, falling back to the key.
func (c Choice) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Key
}

// Setting is a named configuration item with a finite, ordered set of choices.
type Setting struct {
	Name       string
	Value      string
	Details    Details
	Attributes []Attribute
	// Init, when present, is solely responsible for establishing the starting
	// value by calling Engine.Set. The engine does not apply the default.
	Init    Callable
	Choices []Choice
}

// Choice returns the choice registered under key.
func (s Setting) Choice(key string) (Choice, bool) {
	if idx := s.indexOf(key); idx >= 0 {
		return s.Choices[idx], true
	}
	return Choice{}, false
}

// Has reports whether key is a member of the setting's choices.
func (s Setting) Has(key string) bool {
	return s.indexOf(key) >= 0
}

// Keys returns the choice keys in declaration order.
func (s Setting) Keys() []string {
	keys := make([]string, len(s.Choices))
	for i, choice := range s.Choices {
		keys[i] = choice.Key
	}
	return keys
}

// Attribute returns the value of the presentation attribute named key.
func (s Setting) Attribute(key string) (string, bool) {
	for _, attr := range s.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Control returns the declared control type, defaulting to ControlCycle.
func (s Setting) Control() ControlType {
	if s.Details.Control == "" {
		return ControlCycle
	}
	return s.Details.Control
}

// DisplayChoices returns the visible choices in display order. When the first
// key parses as a number choices are ordered by descending numeric value,
// otherwise declaration order is kept.
func (s Setting) DisplayChoices() []Choice {
	visible := make([]Choice, 0, len(s.Choices))
	for _, choice := range s.Choices {
		if choice.Hidden {
			continue
		}
		visible = append(visible, choice)
	}
	if len(s.Choices) == 0 {
		return visible
	}
	if _, numeric := parseNumber(s.Choices[0].Key); !numeric {
		return visible
	}
	sort.SliceStable(visible, func(i, j int) bool {
		left, lok := parseNumber(visible[i].Key)
		right, rok := parseNumber(visible[j].Key)
		switch {
		case lok && rok:
			return left > right
		case lok:
			return true
		default:
			return false
		}
	})
	return visible
}

func (s Setting) indexOf(key string) int {
	for i, choice := range s.Choices {
		if choice.Key == key {
			return i
		}
	}
	return -1
}

func (s Setting) clone() Setting {
	out := s
	if s.Attributes != nil {
		out.Attributes = append([]Attribute(nil), s.Attributes...)
	}
	if s.Choices != nil {
		out.Choices = append([]Choice(nil), s.Choices...)
	}
	return out
}

func parseNumber(value string) (float64, bool) {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

// Next is the result of NextOption.
type Next struct {
	Key    string
	Choice Choice
}

// Phase tracks the lifecycle of a single setting inside an engine.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseBound
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseBound:
		return "bound"
	default:
		return "uninitialized"
	}
}
