package prefs

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-prefs/pkg/activity"
	"github.com/google/uuid"
)

// Reflector is the visual layer an engine keeps in sync with values.
type Reflector interface {
	Reflect(name, value string, failed bool)
}

// ReflectorFunc adapts a function to Reflector.
type ReflectorFunc func(name, value string, failed bool)

// Reflect implements Reflector.
func (f ReflectorFunc) Reflect(name, value string, failed bool) {
	if f != nil {
		f(name, value, failed)
	}
}

// Engine owns the working copy of a registry, its frozen defaults and the
// synchronization with the durable store and the visual layer.
//
// The engine never holds its lock while running callables, talking to the
// store or notifying reflectors, so callables may call back into it.
type Engine struct {
	id      string
	cfg     engineConfig
	emitter *activity.Emitter

	mu         sync.RWMutex
	working    *Registry
	defaults   *Registry
	phases     map[string]Phase
	reflectors []Reflector
}

// New constructs an engine. The defaults snapshot is taken here, before any
// mutation, and never written to afterwards.
func New(registry *Registry, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	cfg := applyOptions(opts)
	e := &Engine{
		id:         uuid.NewString(),
		cfg:        cfg,
		emitter:    newEmitter(cfg.activity),
		working:    registry.Clone(),
		defaults:   registry.Clone(),
		phases:     make(map[string]Phase, registry.Len()),
		reflectors: append([]Reflector(nil), cfg.reflectors...),
	}
	for _, name := range registry.Names() {
		e.phases[name] = PhaseUninitialized
	}
	return e, nil
}

// ID identifies the engine instance on activity events.
func (e *Engine) ID() string {
	return e.id
}

// Attach registers an additional reflector.
func (e *Engine) Attach(reflector Reflector) {
	if reflector == nil {
		return
	}
	e.mu.Lock()
	e.reflectors = append(e.reflectors, reflector)
	e.mu.Unlock()
}

// Init establishes the starting value of every setting in registry order.
// Settings declaring an Init callable delegate to it; the others are set to
// the stored value, or the in-memory value when the store has none. Every
// setting is attempted; failures are returned once as an *InitError.
func (e *Engine) Init(ctx context.Context) error {
	start := time.Now()
	var errs []error
	for _, name := range e.Names() {
		if err := e.initSetting(ctx, name); err != nil {
			e.log(LogEvent{Level: LogError, Op: "init", Setting: name, Err: err})
			errs = append(errs, err)
		}
	}

	input := e.eventInput("")
	input.Metadata = map[string]any{"settings": len(e.Names()), "failures": len(errs)}
	e.emit(ctx, activity.BuildSettingsInitializedEvent(input))
	e.log(LogEvent{Level: LogInfo, Op: "init", Duration: time.Since(start), Message: fmt.Sprintf("prefs initialized with %d failure(s)", len(errs))})

	if len(errs) > 0 {
		return &InitError{Errs: errs}
	}
	return nil
}

func (e *Engine) initSetting(ctx context.Context, name string) error {
	setting, ok := e.lookup(name)
	if !ok {
		return unknownSetting(name)
	}
	e.setPhase(name, PhaseInitializing)
	defer e.setPhase(name, PhaseBound)

	if setting.Init != nil {
		ok, err := invoke(ctx, setting.Init, Args{Engine: e, Setting: setting})
		if err == nil && !ok {
			err = ErrCallbackRejected
		}
		if err != nil {
			current, _ := e.lookup(name)
			e.reflect(name, current.Value, true)
			return &CallbackError{Setting: name, Err: err}
		}
		return nil
	}

	value := setting.Value
	if stored, found, err := e.load(ctx, name); err == nil && found && setting.Has(stored) {
		value = stored
	}
	return e.Set(ctx, name, value)
}

// Get returns the stored value of a setting. On a store miss, or a stored
// value that is no longer a choice, the in-memory value is returned; the
// frozen default is never consulted. When the store fails the in-memory
// value is returned together with a *StorageError.
func (e *Engine) Get(ctx context.Context, name string) (string, error) {
	setting, ok := e.lookup(name)
	if !ok {
		return "", unknownSetting(name)
	}
	stored, found, err := e.load(ctx, name)
	if err != nil {
		return setting.Value, err
	}
	if !found {
		return setting.Value, nil
	}
	if !setting.Has(stored) {
		e.log(LogEvent{Level: LogDebug, Op: "get", Setting: name, Value: stored, Message: "stored value is not a choice"})
		return setting.Value, nil
	}
	return stored, nil
}

// Set selects value for the named setting.
func (e *Engine) Set(ctx context.Context, name, value string) error {
	return e.SetWith(ctx, name, value, nil)
}

// SetWith selects value passing extra arguments to the choice callback.
//
// A value outside the choices fails with *ValidationError, leaves the value
// untouched and reflects an error. Otherwise the choice's OnSelect runs
// first and the value is persisted once it returns, whatever its outcome; a
// failing callback only marks the visual state as errored and is returned
// as *CallbackError.
func (e *Engine) SetWith(ctx context.Context, name, value string, extra map[string]any) error {
	start := time.Now()
	setting, ok := e.lookup(name)
	if !ok {
		return unknownSetting(name)
	}

	choice, ok := setting.Choice(value)
	if !ok {
		err := &ValidationError{Setting: name, Value: value}
		e.log(LogEvent{Level: LogWarn, Op: "set", Setting: name, Value: value, Err: err})
		e.reflect(name, setting.Value, true)
		input := e.eventInput(name)
		input.OldValue = setting.Value
		input.NewValue = value
		input.Err = err
		e.emit(ctx, activity.BuildSettingFailedEvent(input))
		return err
	}

	var cbErr error
	if choice.OnSelect != nil {
		cbErr = e.runChoice(ctx, setting, choice, extra)
	}

	previous := e.commit(name, value)
	e.persist(ctx, name, value)
	e.reflect(name, value, cbErr != nil)

	input := e.eventInput(name)
	input.Choice = value
	input.OldValue = previous
	input.NewValue = value
	e.emit(ctx, activity.BuildSettingChangedEvent(input))
	if cbErr != nil {
		input.Err = cbErr
		e.emit(ctx, activity.BuildSettingFailedEvent(input))
		e.log(LogEvent{Level: LogWarn, Op: "set", Setting: name, Value: value, Duration: time.Since(start), Err: cbErr})
		return cbErr
	}
	e.log(LogEvent{Level: LogDebug, Op: "set", Setting: name, Value: value, Duration: time.Since(start)})
	return nil
}

// SetAsync runs Set on its own goroutine. Writes to the same setting are not
// serialized; the last one to reach the store wins.
func (e *Engine) SetAsync(ctx context.Context, name, value string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.Set(ctx, name, value)
	}()
	return done
}

// ExecuteOption runs the callback of a choice without persisting anything.
// The choice is value when given, else the current value, else the default.
// A choice without callback still reflects success.
func (e *Engine) ExecuteOption(ctx context.Context, name, value string, extra map[string]any) error {
	setting, ok := e.lookup(name)
	if !ok {
		return unknownSetting(name)
	}
	if value == "" {
		value = e.resolve(ctx, name)
	}
	choice, ok := setting.Choice(value)
	if !ok {
		err := &ValidationError{Setting: name, Value: value}
		e.log(LogEvent{Level: LogWarn, Op: "execute", Setting: name, Value: value, Err: err})
		e.reflect(name, setting.Value, true)
		return err
	}

	var err error
	if choice.OnSelect != nil {
		err = e.runChoice(ctx, setting, choice, extra)
	}
	e.reflect(name, value, err != nil)

	input := e.eventInput(name)
	input.Choice = value
	input.Err = err
	e.emit(ctx, activity.BuildSettingExecutedEvent(input))
	if err != nil {
		e.log(LogEvent{Level: LogWarn, Op: "execute", Setting: name, Value: value, Err: err})
	}
	return err
}

// NextOption returns the choice following current in declaration order,
// wrapping after the last one. An empty current resolves through Get. A
// current value that matches no key directly is compared against the keys'
// serialized forms; if still unmatched the first choice is next. Disabled
// choices are not skipped.
func (e *Engine) NextOption(ctx context.Context, name, current string) (Next, error) {
	setting, ok := e.lookup(name)
	if !ok {
		return Next{}, unknownSetting(name)
	}
	if current == "" {
		current, _ = e.Get(ctx, name)
	}
	idx := setting.indexOf(current)
	if idx < 0 {
		idx = looseIndex(setting, current)
	}
	next := setting.Choices[(idx+1)%len(setting.Choices)]
	return Next{Key: next.Key, Choice: next}, nil
}

// Reset selects the default value of a setting.
func (e *Engine) Reset(ctx context.Context, name string) error {
	value, err := e.Default(name)
	if err != nil {
		return err
	}
	return e.Set(ctx, name, value)
}

// Default returns the value declared at construction time.
func (e *Engine) Default(name string) (string, error) {
	e.mu.RLock()
	setting, ok := e.defaults.Lookup(name)
	e.mu.RUnlock()
	if !ok {
		return "", unknownSetting(name)
	}
	return setting.Value, nil
}

// Setting returns a copy of the working definition of a setting.
func (e *Engine) Setting(name string) (Setting, bool) {
	return e.lookup(name)
}

// Settings returns copies of every working definition in registry order.
func (e *Engine) Settings() []Setting {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.working.Settings()
}

// Names returns the setting names in registry order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.working.Names()
}

// Snapshot returns the current value of every setting as seen by Get.
func (e *Engine) Snapshot(ctx context.Context) map[string]string {
	names := e.Names()
	out := make(map[string]string, len(names))
	for _, name := range names {
		value, _ := e.Get(ctx, name)
		out[name] = value
	}
	return out
}

// Phase reports the lifecycle phase of a setting.
func (e *Engine) Phase(name string) Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phases[name]
}

func (e *Engine) lookup(name string) (Setting, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.working.Lookup(name)
}

func (e *Engine) setPhase(name string, phase Phase) {
	e.mu.Lock()
	e.phases[name] = phase
	e.mu.Unlock()
}

func (e *Engine) commit(name, value string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	previous, _ := e.working.setValue(name, value)
	if e.phases[name] == PhaseUninitialized {
		e.phases[name] = PhaseBound
	}
	return previous
}

// resolve returns the current value, the in-memory one when the store
// fails, and the default only when both are empty.
func (e *Engine) resolve(ctx context.Context, name string) string {
	if value, _ := e.Get(ctx, name); value != "" {
		return value
	}
	value, _ := e.Default(name)
	return value
}

func (e *Engine) runChoice(ctx context.Context, setting Setting, choice Choice, extra map[string]any) error {
	args := Args{
		Engine:  e,
		Setting: setting,
		Value:   choice.Key,
		Extra:   callerArgs(extra),
	}
	start := time.Now()
	ok, err := invoke(ctx, choice.OnSelect, args)
	if err == nil && !ok {
		err = ErrCallbackRejected
	}
	e.log(LogEvent{Level: LogDebug, Op: "callback", Setting: setting.Name, Value: choice.Key, Duration: time.Since(start), Err: err})
	if err != nil {
		return &CallbackError{Setting: setting.Name, Choice: choice.Key, Err: err}
	}
	return nil
}

// callerArgs copies extra without the reserved engine/self entries.
func callerArgs(extra map[string]any) map[string]any {
	out := copyExtra(extra)
	delete(out, "engine")
	delete(out, "self")
	return out
}

func (e *Engine) reflect(name, value string, failed bool) {
	e.mu.RLock()
	reflectors := append([]Reflector(nil), e.reflectors...)
	e.mu.RUnlock()
	for _, reflector := range reflectors {
		reflector.Reflect(name, value, failed)
	}
}

func (e *Engine) key(name string) string {
	return e.cfg.keyPrefix + name
}

func (e *Engine) load(ctx context.Context, name string) (value string, found bool, err error) {
	if e.cfg.store == nil {
		return "", false, nil
	}
	key := e.key(name)
	defer func() {
		if recovered := recover(); recovered != nil {
			value, found = "", false
			err = fmt.Errorf("panic: %v", recovered)
		}
		if err != nil {
			err = &StorageError{Op: "get", Key: key, Err: err}
			e.log(LogEvent{Level: LogWarn, Op: "get", Setting: name, Err: err})
		}
	}()
	return e.cfg.store.Get(ctx, key)
}

func (e *Engine) persist(ctx context.Context, name, value string) {
	if e.cfg.store == nil {
		return
	}
	key := e.key(name)
	var err error
	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("panic: %v", recovered)
			}
		}()
		err = e.cfg.store.Set(ctx, key, value)
	}()
	if err != nil {
		e.log(LogEvent{Level: LogWarn, Op: "persist", Setting: name, Value: value, Err: &StorageError{Op: "set", Key: key, Err: err}})
	}
}

func (e *Engine) log(event LogEvent) {
	e.cfg.logger.Log(event)
}

func looseIndex(setting Setting, value string) int {
	for i, choice := range setting.Choices {
		if looseEqual(choice.Key, value) {
			return i
		}
	}
	return -1
}

// looseEqual compares a key with the serialized form of a value: a quoted
// string ("\"dark\"") or a differently formatted number ("1.0").
func looseEqual(key, value string) bool {
	if unquoted, err := strconv.Unquote(value); err == nil && unquoted == key {
		return true
	}
	left, lok := parseNumber(key)
	right, rok := parseNumber(value)
	return lok && rok && left == right
}
