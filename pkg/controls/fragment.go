package controls

import (
	prefs "github.com/goliatone/go-prefs"
)

// Boundary attributes identifying controls in the host document.
const (
	AttrRole        = "role"
	AttrSettingType = "setting-type"
	AttrName        = "name"
	AttrValue       = "value"
	AttrDisabled    = "disabled"

	RoleTop = "top"
	RoleSub = "sub"

	// ToggleSuffix keeps a submenu toggle's name apart from its panel's.
	ToggleSuffix = "-toggle"
)

// Control is one interactive element of a rendered surface.
type Control struct {
	Role    string
	Setting string
	Type    prefs.ControlType
	// Name is the boundary name attribute.
	Name string
	// Value is the selected key for top controls and the choice key for
	// sub controls.
	Value string
	// Title is the setting display name on top controls.
	Title string
	// Label is the display name of Value.
	Label string
	// Attributes are the declared presentation attributes.
	Attributes map[string]string
	Disabled   bool
	// Active marks the sub control matching the selected value.
	Active bool
	// Error marks a failed selection. Never set on disabled controls.
	Error bool
	// Open marks an expanded submenu panel.
	Open bool
	// Focused marks a top control holding input focus. A focused open
	// panel stays open when activated again.
	Focused  bool
	Children []*Control

	labels map[string]string
}

// Attrs returns the boundary and presentation attributes of the control.
func (c *Control) Attrs() map[string]string {
	attrs := make(map[string]string, len(c.Attributes)+5)
	for key, value := range c.Attributes {
		attrs[key] = value
	}
	attrs[AttrRole] = c.Role
	attrs[AttrSettingType] = string(c.Type)
	attrs[AttrName] = c.Name
	attrs[AttrValue] = c.Value
	if c.Disabled {
		attrs[AttrDisabled] = ""
	}
	return attrs
}

// Child returns the sub control for key.
func (c *Control) Child(key string) (*Control, bool) {
	for _, child := range c.Children {
		if child.Value == key {
			return child, true
		}
	}
	return nil, false
}

func (c *Control) clone() *Control {
	if c == nil {
		return nil
	}
	out := *c
	if c.Attributes != nil {
		out.Attributes = make(map[string]string, len(c.Attributes))
		for key, value := range c.Attributes {
			out.Attributes[key] = value
		}
	}
	if c.Children != nil {
		out.Children = make([]*Control, len(c.Children))
		for i, child := range c.Children {
			out.Children[i] = child.clone()
		}
	}
	return &out
}

// Fragment is a rendered control surface in registry order.
type Fragment struct {
	Controls []*Control
}

// Control returns the top control of setting.
func (f *Fragment) Control(setting string) (*Control, bool) {
	if f == nil {
		return nil, false
	}
	for _, control := range f.Controls {
		if control.Setting == setting {
			return control, true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	out := &Fragment{Controls: make([]*Control, len(f.Controls))}
	for i, control := range f.Controls {
		out.Controls[i] = control.clone()
	}
	return out
}

func buildControl(setting prefs.Setting, value string) *Control {
	top := &Control{
		Role:       RoleTop,
		Setting:    setting.Name,
		Type:       setting.Control(),
		Name:       setting.Name,
		Value:      value,
		Title:      setting.Details.DisplayName,
		Attributes: make(map[string]string, len(setting.Attributes)),
		labels:     make(map[string]string, len(setting.Choices)),
	}
	for _, attr := range setting.Attributes {
		top.Attributes[attr.Key] = attr.Value
	}
	if _, disabled := top.Attributes[AttrDisabled]; disabled {
		top.Disabled = true
		delete(top.Attributes, AttrDisabled)
	}
	for _, choice := range setting.Choices {
		top.labels[choice.Key] = choice.Label()
	}
	top.Label = top.labelFor(value)

	if top.Type != prefs.ControlSubmenu {
		return top
	}
	top.Name = setting.Name + ToggleSuffix
	for _, choice := range setting.DisplayChoices() {
		top.Children = append(top.Children, &Control{
			Role:     RoleSub,
			Setting:  setting.Name,
			Type:     top.Type,
			Name:     setting.Name,
			Value:    choice.Key,
			Label:    choice.Label(),
			Disabled: choice.Disabled,
			Active:   choice.Key == value,
		})
	}
	return top
}

func (c *Control) labelFor(value string) string {
	if label, ok := c.labels[value]; ok {
		return label
	}
	return value
}
