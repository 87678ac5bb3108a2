package controls_test

import (
	"context"
	"testing"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/controls"
	"github.com/goliatone/go-prefs/pkg/state"
	"github.com/goliatone/go-prefs/pkg/surface"
)

func testRegistry(t *testing.T) *prefs.Registry {
	t.Helper()
	rejecting := prefs.CallableFunc(func(context.Context, prefs.Args) (bool, error) {
		return false, nil
	})
	registry, err := prefs.NewRegistry(
		prefs.Setting{
			Name:    "theme",
			Value:   "dark",
			Details: prefs.Details{DisplayName: "Theme", Control: prefs.ControlCycle},
			Choices: []prefs.Choice{
				{Key: "dark", DisplayName: "Dark"},
				{Key: "light", DisplayName: "Light"},
				{Key: "contrast", DisplayName: "High contrast", OnSelect: rejecting},
			},
		},
		prefs.Setting{
			Name:       "speed",
			Value:      "1",
			Details:    prefs.Details{DisplayName: "Speed", Control: prefs.ControlSubmenu},
			Attributes: []prefs.Attribute{{Key: "class", Value: "speed"}},
			Choices: []prefs.Choice{
				{Key: "0.5"},
				{Key: "1", DisplayName: "Normal"},
				{Key: "2"},
				{Key: "4", Disabled: true},
				{Key: "8", Hidden: true},
			},
		},
		prefs.Setting{
			Name:    "quality",
			Value:   "auto",
			Details: prefs.Details{Control: prefs.ControlSubmenu},
			Choices: []prefs.Choice{{Key: "auto"}, {Key: "hd"}},
		},
		prefs.Setting{
			Name:       "captions",
			Value:      "off",
			Attributes: []prefs.Attribute{{Key: "disabled", Value: ""}},
			Choices:    []prefs.Choice{{Key: "off"}, {Key: "on"}},
		},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func mountView(t *testing.T) (*prefs.Engine, *controls.View, *surface.MemoryElement) {
	t.Helper()
	engine, err := prefs.New(testRegistry(t), prefs.WithStore(state.NewMemoryStore()))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	view := controls.NewView(engine)
	engine.Attach(view)
	root := surface.NewMemoryElement()
	view.Mount(context.Background(), root)
	return engine, view, root
}

func published(t *testing.T, root *surface.MemoryElement) *controls.Fragment {
	t.Helper()
	fragment, ok := root.Content().(*controls.Fragment)
	if !ok {
		t.Fatalf("expected fragment content, got %T", root.Content())
	}
	return fragment
}

func topControl(t *testing.T, fragment *controls.Fragment, name string) *controls.Control {
	t.Helper()
	control, ok := fragment.Control(name)
	if !ok {
		t.Fatalf("control %q not rendered", name)
	}
	return control
}

func activate(attrs map[string]string) surface.Event {
	return surface.Event{Type: surface.EventActivate, Target: attrs}
}

func TestRenderBuildsControlsInRegistryOrder(t *testing.T) {
	_, view, _ := mountView(t)
	fragment := view.Fragment()

	var names []string
	for _, control := range fragment.Controls {
		names = append(names, control.Setting)
	}
	want := []string{"theme", "speed", "quality", "captions"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	theme := topControl(t, fragment, "theme")
	if theme.Name != "theme" || theme.Label != "Dark" || theme.Title != "Theme" {
		t.Fatalf("unexpected theme control: %+v", theme)
	}
	if len(theme.Children) != 0 {
		t.Fatalf("cycle controls have no sub controls")
	}
}

func TestRenderSubmenuChildren(t *testing.T) {
	_, view, _ := mountView(t)
	speed := topControl(t, view.Fragment(), "speed")

	if speed.Name != "speed"+controls.ToggleSuffix {
		t.Fatalf("expected toggle name, got %q", speed.Name)
	}
	if speed.Label != "Normal" {
		t.Fatalf("expected current label Normal, got %q", speed.Label)
	}
	if speed.Attrs()["class"] != "speed" {
		t.Fatalf("expected declared attribute applied, got %v", speed.Attrs())
	}

	var keys []string
	for _, child := range speed.Children {
		keys = append(keys, child.Value)
	}
	want := []string{"4", "2", "1", "0.5"}
	if len(keys) != len(want) {
		t.Fatalf("expected children %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected children %v, got %v", want, keys)
		}
	}

	disabled, _ := speed.Child("4")
	if !disabled.Disabled {
		t.Fatalf("expected disabled choice rendered inert")
	}
	if _, ok := disabled.Attrs()[controls.AttrDisabled]; !ok {
		t.Fatalf("expected disabled attribute on inert sub control")
	}
	active, _ := speed.Child("1")
	if !active.Active {
		t.Fatalf("expected current choice active")
	}
	attrs := active.Attrs()
	if attrs[controls.AttrRole] != controls.RoleSub || attrs[controls.AttrName] != "speed" || attrs[controls.AttrValue] != "1" {
		t.Fatalf("unexpected boundary attributes: %v", attrs)
	}
}

func TestCycleActivationAdvancesAndClosesPanels(t *testing.T) {
	engine, _, root := mountView(t)
	ctx := context.Background()

	speed := topControl(t, published(t, root), "speed")
	root.Dispatch(activate(speed.Attrs()))
	if !topControl(t, published(t, root), "speed").Open {
		t.Fatalf("expected speed panel open")
	}

	theme := topControl(t, published(t, root), "theme")
	root.Dispatch(activate(theme.Attrs()))

	value, err := engine.Get(ctx, "theme")
	if err != nil || value != "light" {
		t.Fatalf("expected light, got %q (%v)", value, err)
	}
	fragment := published(t, root)
	if topControl(t, fragment, "speed").Open {
		t.Fatalf("expected cycle activation to close panels")
	}
	theme = topControl(t, fragment, "theme")
	if theme.Value != "light" || theme.Label != "Light" || theme.Error {
		t.Fatalf("unexpected reflected theme: %+v", theme)
	}
}

func TestCycleUsesControlValue(t *testing.T) {
	engine, _, root := mountView(t)
	ctx := context.Background()

	// The control holds "dark"; a stale attribute value must not matter.
	root.Dispatch(activate(map[string]string{
		controls.AttrRole:        controls.RoleTop,
		controls.AttrSettingType: string(prefs.ControlCycle),
		controls.AttrName:        "theme",
		controls.AttrValue:       "contrast",
	}))
	if value, _ := engine.Get(ctx, "theme"); value != "light" {
		t.Fatalf("expected light, got %q", value)
	}
}

func TestRejectedSelectionFlagsError(t *testing.T) {
	engine, _, root := mountView(t)
	ctx := context.Background()

	if err := engine.Set(ctx, "theme", "contrast"); err == nil {
		t.Fatalf("expected rejection error")
	}
	theme := topControl(t, published(t, root), "theme")
	if theme.Value != "contrast" || !theme.Error {
		t.Fatalf("expected persisted value with error flag, got %+v", theme)
	}

	if err := engine.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if topControl(t, published(t, root), "theme").Error {
		t.Fatalf("expected error flag cleared")
	}
}

func TestInvalidSelectionFlagsErrorExceptOnDisabled(t *testing.T) {
	engine, _, root := mountView(t)
	ctx := context.Background()

	_ = engine.Set(ctx, "theme", "sepia")
	theme := topControl(t, published(t, root), "theme")
	if !theme.Error || theme.Value != "dark" {
		t.Fatalf("expected error with unchanged value, got %+v", theme)
	}

	_ = engine.Set(ctx, "captions", "maybe")
	if topControl(t, published(t, root), "captions").Error {
		t.Fatalf("disabled controls never show an error")
	}

	captions := topControl(t, published(t, root), "captions")
	root.Dispatch(activate(captions.Attrs()))
	if value, _ := engine.Get(ctx, "captions"); value != "off" {
		t.Fatalf("expected disabled control to keep off, got %q", value)
	}
	if got := topControl(t, published(t, root), "captions").Value; got != "off" {
		t.Fatalf("expected rendered captions to stay off, got %q", got)
	}
}

func TestSubmenuToggle(t *testing.T) {
	_, _, root := mountView(t)

	speed := topControl(t, published(t, root), "speed").Attrs()
	quality := topControl(t, published(t, root), "quality").Attrs()

	root.Dispatch(activate(speed))
	if !topControl(t, published(t, root), "speed").Open {
		t.Fatalf("expected first activation to open speed")
	}
	root.Dispatch(activate(speed))
	if topControl(t, published(t, root), "speed").Open {
		t.Fatalf("expected second activation to close speed")
	}

	root.Dispatch(activate(speed))
	root.Dispatch(activate(quality))
	fragment := published(t, root)
	if topControl(t, fragment, "speed").Open || !topControl(t, fragment, "quality").Open {
		t.Fatalf("expected only quality open")
	}

	root.Dispatch(surface.Event{Type: surface.EventFocus, Target: speed})
	root.Dispatch(activate(speed))
	root.Dispatch(activate(speed))
	if !topControl(t, published(t, root), "speed").Open {
		t.Fatalf("a focused panel stays open")
	}
	if topControl(t, published(t, root), "quality").Open {
		t.Fatalf("expected quality closed when speed opened")
	}

	root.Dispatch(surface.Event{Type: surface.EventBlur, Target: speed})
	root.Dispatch(activate(speed))
	if topControl(t, published(t, root), "speed").Open {
		t.Fatalf("expected blurred panel to close on activation")
	}

	root.Dispatch(activate(quality))
	root.Dispatch(surface.Event{Type: surface.EventDismiss})
	fragment = published(t, root)
	for _, control := range fragment.Controls {
		if control.Open {
			t.Fatalf("expected dismiss to close %s", control.Setting)
		}
	}
}

func TestSubControlActivation(t *testing.T) {
	engine, _, root := mountView(t)
	ctx := context.Background()

	speed := topControl(t, published(t, root), "speed")
	two, _ := speed.Child("2")
	root.Dispatch(activate(two.Attrs()))
	if value, _ := engine.Get(ctx, "speed"); value != "2" {
		t.Fatalf("expected 2, got %q", value)
	}
	speed = topControl(t, published(t, root), "speed")
	if child, _ := speed.Child("2"); !child.Active {
		t.Fatalf("expected active sub control updated")
	}
	if child, _ := speed.Child("1"); child.Active {
		t.Fatalf("expected previous sub control inactive")
	}

	four, _ := speed.Child("4")
	root.Dispatch(activate(four.Attrs()))
	if value, _ := engine.Get(ctx, "speed"); value != "2" {
		t.Fatalf("disabled sub controls are inert, got %q", value)
	}
}

func TestHiddenChoiceReflects(t *testing.T) {
	engine, _, root := mountView(t)
	if err := engine.Set(context.Background(), "speed", "8"); err != nil {
		t.Fatalf("hidden choices remain valid targets: %v", err)
	}
	speed := topControl(t, published(t, root), "speed")
	if speed.Value != "8" || speed.Label != "8" {
		t.Fatalf("unexpected reflection: %+v", speed)
	}
	for _, child := range speed.Children {
		if child.Active {
			t.Fatalf("no visible sub control matches a hidden choice")
		}
	}
}

func TestUnbindStopsHandling(t *testing.T) {
	engine, view, root := mountView(t)
	view.Unbind()
	if root.Listeners() != 0 {
		t.Fatalf("expected listener removed")
	}
	root.Dispatch(activate(topControl(t, view.Fragment(), "theme").Attrs()))
	if value, _ := engine.Get(context.Background(), "theme"); value != "dark" {
		t.Fatalf("expected no change after unbind, got %q", value)
	}
}

func TestWithContent(t *testing.T) {
	engine, err := prefs.New(testRegistry(t))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	view := controls.NewView(engine, controls.WithContent(func(f *controls.Fragment) any {
		return len(f.Controls)
	}))
	root := surface.NewMemoryElement()
	view.Mount(context.Background(), root)
	if root.Content() != 4 {
		t.Fatalf("expected custom content, got %v", root.Content())
	}
}
