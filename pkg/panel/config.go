package panel

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/state"
	"github.com/goliatone/go-prefs/pkg/state/badgerstore"
	"github.com/goliatone/go-prefs/pkg/state/filestore"
	"github.com/goliatone/go-prefs/pkg/state/sqlitestore"
)

// Store backends understood by OpenStore.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// ErrUnknownStore reports an unsupported store backend.
var ErrUnknownStore = errors.New("panel: unknown store backend")

// Config is the environment driven construction configuration.
type Config struct {
	MountOnInit           bool   `env:"PREFS_MOUNT_ON_INIT"            envDefault:"true"`
	InitializeOnConstruct bool   `env:"PREFS_INITIALIZE_ON_CONSTRUCT"  envDefault:"true"`
	RenderOnMount         bool   `env:"PREFS_RENDER_ON_MOUNT"          envDefault:"true"`
	InitOnMount           bool   `env:"PREFS_INIT_ON_MOUNT"            envDefault:"false"`
	KeyPrefix             string `env:"PREFS_KEY_PREFIX"               envDefault:"prefs."`
	Store                 string `env:"PREFS_STORE"                    envDefault:"memory"`
	StorePath             string `env:"PREFS_STORE_PATH"`
}

// DefaultConfig mirrors the environment defaults.
func DefaultConfig() Config {
	return Config{
		MountOnInit:           true,
		InitializeOnConstruct: true,
		RenderOnMount:         true,
		KeyPrefix:             "prefs.",
		Store:                 StoreMemory,
	}
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("panel: parse env: %w", err)
	}
	return cfg, nil
}

// OpenStore opens the backend named by cfg.Store. The returned close
// function releases it and is never nil.
func OpenStore(cfg Config, logger *slog.Logger) (state.Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreMemory:
		return state.NewMemoryStore(), noop, nil
	case StoreBadger:
		store, err := badgerstore.Open(badgerstore.Config{
			Path:     cfg.StorePath,
			InMemory: cfg.StorePath == "",
			Logger:   logger,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case StoreSQLite:
		path := cfg.StorePath
		if path == "" {
			path = ":memory:"
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case StoreFile:
		store, err := filestore.New(cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Store)
	}
}

// Options converts cfg into panel options backed by store.
func (cfg Config) Options(store state.Store) []Option {
	return []Option{
		WithMountOnInit(cfg.MountOnInit),
		WithInitializeOnConstruct(cfg.InitializeOnConstruct),
		WithRenderOnMount(cfg.RenderOnMount),
		WithInitOnMount(cfg.InitOnMount),
		WithEngineOptions(prefs.WithStore(store), prefs.WithKeyPrefix(cfg.KeyPrefix)),
	}
}
