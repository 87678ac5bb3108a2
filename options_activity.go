package prefs

import (
	"context"

	"github.com/goliatone/go-prefs/pkg/activity"
)

type activityConfig struct {
	hooks   activity.Hooks
	channel string
	actorID string
}

// WithActivityHooks attaches activity hooks notified about setting changes.
// Hooks are cloned and nil entries dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *engineConfig) {
		cfg.activity.hooks = normalized
	}
}

// WithActivityChannel overrides the default "settings" channel.
func WithActivityChannel(channel string) Option {
	return func(cfg *engineConfig) {
		cfg.activity.channel = channel
	}
}

// WithActorID records who drives the engine on emitted activity events.
func WithActorID(actorID string) Option {
	return func(cfg *engineConfig) {
		cfg.activity.actorID = actorID
	}
}

// ActivityHooks returns a cloned slice of the configured hooks.
func (e *Engine) ActivityHooks() activity.Hooks {
	if e == nil {
		return nil
	}
	return cloneActivityHooks(e.cfg.activity.hooks)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

func newEmitter(cfg activityConfig) *activity.Emitter {
	return activity.NewEmitter(cfg.hooks, activity.Config{
		Enabled: len(cfg.hooks) > 0,
		Channel: cfg.channel,
	})
}

func (e *Engine) emit(ctx context.Context, event activity.Event) {
	if !e.emitter.Enabled() {
		return
	}
	if err := e.emitter.Emit(ctx, event); err != nil {
		e.log(LogEvent{Level: LogWarn, Op: "activity", Setting: event.ObjectID, Err: err})
	}
}

func (e *Engine) eventInput(setting string) activity.SettingEventInput {
	return activity.SettingEventInput{
		ActorID:  e.cfg.activity.actorID,
		EngineID: e.id,
		Setting:  setting,
	}
}
