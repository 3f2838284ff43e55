// Command biomimic generates biomimetic meshes, keeps a library of designs
// and serves a live preview feed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chazu/biomimic/pkg/catalog"
	"github.com/chazu/biomimic/pkg/config"
	"github.com/chazu/biomimic/pkg/generator"
	"github.com/chazu/biomimic/pkg/store"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	storePath  string

	cfg     *config.Config
	logger  *slog.Logger
	catalog *catalog.Catalog
}

func main() {
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "biomimic",
		Short:         "Procedural biomimetic mesh generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml, .toml or .json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "design store file")

	root.AddCommand(
		newGenerateCmd(a),
		newExportCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newPatternsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	a.catalog, err = catalog.New()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return nil
}

func (a *app) generator() (*generator.Generator, error) {
	opts, err := a.cfg.PatternOptions()
	if err != nil {
		return nil, err
	}
	return generator.New(a.catalog,
		generator.WithLogger(a.logger),
		generator.WithPatternOptions(opts...),
	), nil
}

func (a *app) store() (*store.FileStore, error) {
	s, err := store.NewFileStore(a.cfg.StorePath())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opened store", "path", s.Path())
	return s, nil
}
