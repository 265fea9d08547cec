package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dmrisim/simfactory/internal/catalog"
	"github.com/dmrisim/simfactory/internal/config"
	"github.com/dmrisim/simfactory/internal/logging"
	"github.com/dmrisim/simfactory/internal/simulation"
	"github.com/spf13/cobra"
)

// cliEnv is the per-invocation state shared by subcommands.
type cliEnv struct {
	cfg     *config.FactoryConfig
	logger  *slog.Logger
	jsonOut bool
}

// loadEnv reads the --config file (or the default locations), applies the
// --log-level override and validates the result.
func loadEnv(cmd *cobra.Command) (*cliEnv, error) {
	jsonOut, _ := cmd.Flags().GetBool("json")
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.LoadPath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cliEnv{
		cfg:     cfg,
		logger:  logging.NewLogger(cfg.Logging.Level, os.Stderr),
		jsonOut: jsonOut,
	}, nil
}

func (e *cliEnv) factory() *simulation.Factory {
	return simulation.NewFactory(
		simulation.WithMaxIter(e.cfg.Sampler.MaxIter),
		simulation.WithExperimentalArtifacts(e.cfg.Simulation.AllowExperimentalArtifacts),
		simulation.WithLogger(e.logger),
	)
}

func (e *cliEnv) openCatalog() (*catalog.Catalog, error) {
	path, err := e.cfg.CatalogPath()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}

// signalContext returns a context cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func printJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
