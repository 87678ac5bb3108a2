// Package panel composes an engine, a control view and a surface binder into
// one preferences panel.
package panel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/controls"
	"github.com/goliatone/go-prefs/pkg/surface"
)

// Option configures a Panel.
type Option func(*options)

type options struct {
	mountOnInit           bool
	initializeOnConstruct bool
	renderOnMount         bool
	initOnMount           bool
	logger                *slog.Logger
	engine                []prefs.Option
	view                  []controls.Option
}

// WithMountOnInit renders and mounts during construction. Defaults to true.
func WithMountOnInit(enabled bool) Option {
	return func(o *options) {
		o.mountOnInit = enabled
	}
}

// WithInitializeOnConstruct runs Engine.Init during construction. Defaults
// to true.
func WithInitializeOnConstruct(enabled bool) Option {
	return func(o *options) {
		o.initializeOnConstruct = enabled
	}
}

// WithRenderOnMount paints the controls into the container when it mounts.
// When disabled the mount only binds interactions and the first paint
// happens on the next change. Defaults to true.
func WithRenderOnMount(enabled bool) Option {
	return func(o *options) {
		o.renderOnMount = enabled
	}
}

// WithInitOnMount runs Engine.Init when the container mounts, before the
// first paint, unless the panel was already initialized. Defaults to false.
func WithInitOnMount(enabled bool) Option {
	return func(o *options) {
		o.initOnMount = enabled
	}
}

// WithLogger logs init and mount diagnostics. The logger is shared with the
// engine, view and binder.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEngineOptions forwards options to prefs.New.
func WithEngineOptions(opts ...prefs.Option) Option {
	return func(o *options) {
		o.engine = append(o.engine, opts...)
	}
}

// WithViewOptions forwards options to controls.NewView.
func WithViewOptions(opts ...controls.Option) Option {
	return func(o *options) {
		o.view = append(o.view, opts...)
	}
}

// Panel is a mounted, interactive preferences surface.
type Panel struct {
	engine    *prefs.Engine
	view      *controls.View
	binder    *surface.Binder
	container surface.Locator
	logger    *slog.Logger

	renderOnMount bool
	initOnMount   bool

	mu          sync.Mutex
	initialized bool
	initErr     error
	mounts      int
}

// New builds a panel for registry inside container. Failures to initialize
// or mount are not fatal: they are logged and available through InitErr and
// the return value of Mount.
func New(ctx context.Context, doc surface.Document, registry *prefs.Registry, container surface.Locator, opts ...Option) (*Panel, error) {
	o := options{
		mountOnInit:           true,
		initializeOnConstruct: true,
		renderOnMount:         true,
		logger:                slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	engineOpts := append([]prefs.Option{prefs.WithLogger(prefs.SlogLogger(o.logger))}, o.engine...)
	engine, err := prefs.New(registry, engineOpts...)
	if err != nil {
		return nil, err
	}
	viewOpts := append([]controls.Option{controls.WithLogger(o.logger)}, o.view...)
	p := &Panel{
		engine:    engine,
		view:      controls.NewView(engine, viewOpts...),
		binder:    surface.NewBinder(doc, surface.WithLogger(o.logger)),
		container: container,
		logger:    o.logger,

		renderOnMount: o.renderOnMount,
		initOnMount:   o.initOnMount,
	}
	engine.Attach(p.view)

	if o.initializeOnConstruct {
		p.Initialize(ctx)
	}
	if o.mountOnInit {
		if err := p.Mount(ctx); err != nil {
			p.logger.LogAttrs(ctx, slog.LevelWarn, "panel mount failed",
				slog.String("container", container.String()), slog.String("error", err.Error()))
		}
	}
	return p, nil
}

// Initialize runs Engine.Init and records its aggregate error.
func (p *Panel) Initialize(ctx context.Context) error {
	err := p.engine.Init(ctx)
	p.mu.Lock()
	p.initialized = true
	p.initErr = err
	p.mu.Unlock()
	if err != nil {
		var initErr *prefs.InitError
		attrs := []slog.Attr{slog.String("error", err.Error())}
		if errors.As(err, &initErr) {
			attrs = append(attrs, slog.Int("failures", len(initErr.Errs)))
		}
		p.logger.LogAttrs(ctx, slog.LevelWarn, "panel init degraded", attrs...)
	}
	return err
}

// Mount binds to the container now, or once it appears in the document,
// running the init and render steps selected by WithInitOnMount and
// WithRenderOnMount.
// A deferred mount returns nil; a second call while one is pending returns
// surface.ErrWatcherPending.
func (p *Panel) Mount(ctx context.Context) error {
	return p.binder.EnsureMounted(p.container, func(element surface.Element) {
		p.mu.Lock()
		initialize := p.initOnMount && !p.initialized
		p.mu.Unlock()
		if initialize {
			p.Initialize(ctx)
		}
		if p.renderOnMount {
			p.view.Mount(ctx, element)
		} else {
			p.view.Render(ctx)
			p.view.Bind(ctx, element)
		}
		p.mu.Lock()
		p.mounts++
		p.mu.Unlock()
		p.logger.LogAttrs(ctx, slog.LevelDebug, "panel mounted", slog.String("container", p.container.String()))
	})
}

// Close abandons a pending mount and detaches the interaction handler.
func (p *Panel) Close() {
	p.binder.Close()
	p.view.Unbind()
}

// InitErr returns the error of the last initialization, if any.
func (p *Panel) InitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initErr
}

// Mounts returns how many times the panel mounted into a container.
func (p *Panel) Mounts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounts
}

// Mounted reports whether the panel is in the document.
func (p *Panel) Mounted() bool {
	return p.binder.Mounted()
}

// Pending reports whether a deferred mount is waiting for its container.
func (p *Panel) Pending() bool {
	return p.binder.Pending()
}

func (p *Panel) Engine() *prefs.Engine {
	return p.engine
}

func (p *Panel) View() *controls.View {
	return p.view
}
