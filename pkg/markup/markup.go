// Package markup renders control fragments as HTML through templ components.
//
// The components live in controls.templ; regenerate controls_templ.go with
// `templ generate` after editing it.
package markup

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
	"github.com/goliatone/go-prefs/pkg/controls"
)

// ChoiceRenderer renders the body of a sub control.
type ChoiceRenderer func(control *controls.Control) templ.Component

// Option configures rendering.
type Option func(*config)

type config struct {
	class  string
	choice ChoiceRenderer
}

// WithClass sets the class of the surface wrapper. Defaults to "prefs".
func WithClass(class string) Option {
	return func(cfg *config) {
		if class != "" {
			cfg.class = class
		}
	}
}

// WithChoiceRenderer replaces the default label text of sub controls.
func WithChoiceRenderer(renderer ChoiceRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.choice = renderer
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := config{class: "prefs", choice: Label}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Surface renders fragment as one wrapper holding every control.
func Surface(fragment *controls.Fragment, opts ...Option) templ.Component {
	return surface(fragment, applyOptions(opts))
}

// Control renders a top control. Submenu controls include their panel.
func Control(control *controls.Control, opts ...Option) templ.Component {
	return topControl(control, applyOptions(opts))
}

// Render returns the HTML of fragment.
func Render(ctx context.Context, fragment *controls.Fragment, opts ...Option) (string, error) {
	var buf bytes.Buffer
	if err := Surface(fragment, opts...).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Content adapts Render to controls.WithContent. Element content becomes the
// HTML string of each published fragment.
func Content(opts ...Option) controls.ContentFunc {
	return func(fragment *controls.Fragment) any {
		html, err := Render(context.Background(), fragment, opts...)
		if err != nil {
			return ""
		}
		return html
	}
}

func classAttr(class string) templ.Attributes {
	return templ.Attributes{"class": class}
}

// buttonAttrs maps the boundary attributes of control. Empty values render
// as bare attributes.
func buttonAttrs(control *controls.Control) templ.Attributes {
	attrs := control.Attrs()
	out := make(templ.Attributes, len(attrs))
	for name, value := range attrs {
		if value == "" {
			out[name] = true
			continue
		}
		out[name] = value
	}
	return out
}

func ariaBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
