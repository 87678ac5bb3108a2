package prefs

import (
	"github.com/goliatone/go-prefs/pkg/state"
)

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	store           state.Store
	keyPrefix       string
	logger          Logger
	reflectors      []Reflector
	activity        activityConfig
	schemaGenerator SchemaGenerator
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	return cfg
}

// WithStore configures the durable store values are mirrored to. Without a
// store the engine keeps values in memory only.
func WithStore(store state.Store) Option {
	return func(cfg *engineConfig) {
		cfg.store = store
	}
}

// WithKeyPrefix prefixes every store key, e.g. "prefs." yields "prefs.theme".
func WithKeyPrefix(prefix string) Option {
	return func(cfg *engineConfig) {
		cfg.keyPrefix = prefix
	}
}

// WithLogger attaches a logger for degraded paths and state transitions.
func WithLogger(logger Logger) Option {
	return func(cfg *engineConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithReflector registers a visual layer notified on every value change.
func WithReflector(reflector Reflector) Option {
	return func(cfg *engineConfig) {
		if reflector != nil {
			cfg.reflectors = append(cfg.reflectors, reflector)
		}
	}
}

// WithSchemaGenerator replaces the descriptor schema generator.
func WithSchemaGenerator(generator SchemaGenerator) Option {
	return func(cfg *engineConfig) {
		cfg.schemaGenerator = generator
	}
}
