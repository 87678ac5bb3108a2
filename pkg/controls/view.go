package controls

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/surface"
)

// Engine is the part of a preferences engine a view drives.
type Engine interface {
	Settings() []prefs.Setting
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	NextOption(ctx context.Context, name, current string) (prefs.Next, error)
}

// ContentFunc converts a fragment into element content.
type ContentFunc func(*Fragment) any

// Option configures a View.
type Option func(*View)

// WithLogger logs failed interactions.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithContent replaces the default content, a *Fragment snapshot, with the
// result of fn.
func WithContent(fn ContentFunc) Option {
	return func(v *View) {
		if fn != nil {
			v.content = fn
		}
	}
}

// View renders an engine's settings as controls and keeps them in sync.
type View struct {
	engine  Engine
	logger  *slog.Logger
	content ContentFunc

	mu       sync.Mutex
	fragment *Fragment
	root     surface.Element
	ctx      context.Context
	unlisten func()
}

var _ prefs.Reflector = (*View)(nil)

// NewView returns a view over engine.
func NewView(engine Engine, opts ...Option) *View {
	v := &View{
		engine:   engine,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		content:  func(f *Fragment) any { return f },
		fragment: &Fragment{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Render builds one top control per setting in registry order with the
// current values and returns a snapshot of it.
func (v *View) Render(ctx context.Context) *Fragment {
	settings := v.engine.Settings()
	fragment := &Fragment{Controls: make([]*Control, 0, len(settings))}
	for _, setting := range settings {
		value, err := v.engine.Get(ctx, setting.Name)
		if err != nil {
			v.logger.LogAttrs(ctx, slog.LevelWarn, "controls render degraded",
				slog.String("setting", setting.Name), slog.String("error", err.Error()))
		}
		fragment.Controls = append(fragment.Controls, buildControl(setting, value))
	}

	v.mu.Lock()
	v.fragment = fragment
	snapshot := fragment.Clone()
	v.mu.Unlock()
	return snapshot
}

// Fragment returns a snapshot of the current controls.
func (v *View) Fragment() *Fragment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fragment.Clone()
}

// Mount renders into root and binds interactions to it.
func (v *View) Mount(ctx context.Context, root surface.Element) {
	v.Render(ctx)
	v.Bind(ctx, root)
	v.publish()
}

// Bind attaches the delegated interaction handler to root, replacing a
// previous binding.
func (v *View) Bind(ctx context.Context, root surface.Element) {
	if root == nil {
		return
	}
	v.mu.Lock()
	previous := v.unlisten
	v.root = root
	v.ctx = ctx
	v.unlisten = nil
	v.mu.Unlock()
	if previous != nil {
		previous()
	}

	unlisten := root.Listen(func(event surface.Event) {
		v.handle(event)
	})
	v.mu.Lock()
	v.unlisten = unlisten
	v.mu.Unlock()
}

// Unbind detaches the interaction handler.
func (v *View) Unbind() {
	v.mu.Lock()
	unlisten := v.unlisten
	v.unlisten = nil
	v.root = nil
	v.mu.Unlock()
	if unlisten != nil {
		unlisten()
	}
}

// Reflect updates the control of name: selected value, active sub control,
// label and error flag. Disabled controls never show an error.
func (v *View) Reflect(name, value string, failed bool) {
	v.mu.Lock()
	top, ok := v.fragment.Control(name)
	if !ok {
		v.mu.Unlock()
		return
	}
	top.Value = value
	top.Label = top.labelFor(value)
	top.Error = failed && !top.Disabled
	for _, child := range top.Children {
		child.Active = child.Value == value
	}
	v.mu.Unlock()
	v.publish()
}

func (v *View) handle(event surface.Event) {
	v.mu.Lock()
	ctx := v.ctx
	v.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	switch event.Type {
	case surface.EventDismiss:
		v.closePanels("")
	case surface.EventFocus, surface.EventBlur:
		v.setFocus(event, event.Type == surface.EventFocus)
	case surface.EventActivate:
		if err := v.activate(ctx, event); err != nil {
			v.logger.LogAttrs(ctx, slog.LevelWarn, "controls interaction failed",
				slog.String("name", event.Attr(AttrName)), slog.String("error", err.Error()))
		}
	}
}

func (v *View) activate(ctx context.Context, event surface.Event) error {
	role := event.Attr(AttrRole)
	kind := prefs.ControlType(event.Attr(AttrSettingType))
	switch {
	case role == RoleSub:
		if _, disabled := event.Target[AttrDisabled]; disabled {
			return nil
		}
		return v.engine.Set(ctx, event.Attr(AttrName), event.Attr(AttrValue))
	case role == RoleTop && kind == prefs.ControlSubmenu:
		v.togglePanel(strings.TrimSuffix(event.Attr(AttrName), ToggleSuffix))
		return nil
	case role == RoleTop:
		if _, disabled := event.Target[AttrDisabled]; disabled {
			return nil
		}
		name := event.Attr(AttrName)
		current := event.Attr(AttrValue)
		if top, ok := v.control(name); ok {
			if top.Disabled {
				return nil
			}
			current = top.Value
		}
		next, err := v.engine.NextOption(ctx, name, current)
		if err != nil {
			return err
		}
		err = v.engine.Set(ctx, name, next.Key)
		v.closePanels("")
		return err
	default:
		return nil
	}
}

func (v *View) control(name string) (Control, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	top, ok := v.fragment.Control(name)
	if !ok {
		return Control{}, false
	}
	return *top, true
}

// togglePanel opens the panel of setting and closes the others. An open
// panel closes again unless its toggle holds focus.
func (v *View) togglePanel(setting string) {
	v.mu.Lock()
	changed := false
	for _, top := range v.fragment.Controls {
		if top.Type != prefs.ControlSubmenu {
			continue
		}
		if top.Setting == setting {
			if !top.Open || !top.Focused {
				top.Open = !top.Open
				changed = true
			}
			continue
		}
		if top.Open {
			top.Open = false
			changed = true
		}
	}
	v.mu.Unlock()
	if changed {
		v.publish()
	}
}

// closePanels closes every panel except keep.
func (v *View) closePanels(keep string) {
	v.mu.Lock()
	changed := false
	for _, top := range v.fragment.Controls {
		if top.Open && top.Setting != keep {
			top.Open = false
			changed = true
		}
	}
	v.mu.Unlock()
	if changed {
		v.publish()
	}
}

func (v *View) setFocus(event surface.Event, focused bool) {
	if event.Attr(AttrRole) != RoleTop {
		return
	}
	name := strings.TrimSuffix(event.Attr(AttrName), ToggleSuffix)
	v.mu.Lock()
	if top, ok := v.fragment.Control(name); ok {
		top.Focused = focused
	}
	v.mu.Unlock()
}

func (v *View) publish() {
	v.mu.Lock()
	root := v.root
	snapshot := v.fragment.Clone()
	v.mu.Unlock()
	if root != nil {
		root.SetContent(v.content(snapshot))
	}
}
