package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	prefs "github.com/goliatone/go-prefs"
	"github.com/goliatone/go-prefs/pkg/manifest"
	"github.com/goliatone/go-prefs/pkg/panel"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	manifest  string
	store     string
	storePath string
	keyPrefix string
	verbose   bool
}

// session is an engine opened for the duration of one command.
type session struct {
	engine   *prefs.Engine
	registry *prefs.Registry
	close    func() error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cfg, err := panel.LoadConfig()
	if err != nil {
		cfg = panel.DefaultConfig()
	}

	root := &cobra.Command{
		Use:           "prefsctl",
		Short:         "Inspect and edit preferences declared in a manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.manifest, "manifest", "m", "", "settings manifest (.json, .yaml)")
	flags.StringVar(&opts.store, "store", cfg.Store, "store backend: memory, badger, sqlite, file")
	flags.StringVar(&opts.storePath, "store-path", cfg.StorePath, "store location")
	flags.StringVar(&opts.keyPrefix, "key-prefix", cfg.KeyPrefix, "store key prefix; a manifest key_prefix wins unless set")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")
	_ = root.MarkPersistentFlagRequired("manifest")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newCycleCmd(opts),
		newResetCmd(opts),
		newRenderCmd(opts),
		newSchemaCmd(opts),
	)
	return root
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	m, err := manifest.Load(o.manifest)
	if err != nil {
		return nil, err
	}
	registry, err := m.Registry()
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	store, closeStore, err := panel.OpenStore(panel.Config{Store: o.store, StorePath: o.storePath}, logger)
	if err != nil {
		return nil, err
	}
	prefix := o.keyPrefix
	if m.KeyPrefix != "" && !cmd.Flags().Changed("key-prefix") {
		prefix = m.KeyPrefix
	}
	engine, err := prefs.New(registry,
		prefs.WithStore(store),
		prefs.WithKeyPrefix(prefix),
		prefs.WithLogger(prefs.SlogLogger(logger)),
	)
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}
	return &session{engine: engine, registry: registry, close: closeStore}, nil
}

// withSession opens a session, runs fn and releases the store.
func withSession(o *rootOptions, fn func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := o.open(cmd)
		if err != nil {
			return err
		}
		runErr := fn(cmd.Context(), cmd, s, args)
		if closeErr := s.close(); closeErr != nil {
			return errors.Join(runErr, fmt.Errorf("close store: %w", closeErr))
		}
		return runErr
	}
}
