// Advisord is the decision engine for a content-creation assistant.
//
// One request carries a snapshot of a creator's current activity (image,
// caption, platform); the engine answers with an explainable, confidence-
// scored decision. Configuration comes from a YAML file and environment
// variables; see internal/config.
//
// Usage:
//
//	# Start with defaults (in-memory history store)
//	advisord
//
//	# Configure via file and environment
//	advisord --config ~/.config/advisord/config.yaml
//	SERVER_PORT=9090 HISTORY_BACKEND=sqlite HISTORY_PATH=./advisord.db advisord
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/advisord/internal/agent"
	"github.com/fyrsmithlabs/advisord/internal/capability"
	"github.com/fyrsmithlabs/advisord/internal/config"
	"github.com/fyrsmithlabs/advisord/internal/history"
	advisorhttp "github.com/fyrsmithlabs/advisord/internal/http"
	"github.com/fyrsmithlabs/advisord/internal/logging"
	"github.com/fyrsmithlabs/advisord/internal/memory"
	"github.com/fyrsmithlabs/advisord/internal/orchestrator"
	"github.com/fyrsmithlabs/advisord/internal/patterns"
	"github.com/fyrsmithlabs/advisord/internal/strategy"
)

var (
	version    = "dev"
	configPath string
)

var rootCmd = &cobra.Command{
	Use:     "advisord",
	Short:   "Agent pipeline and decision engine for content creators",
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (YAML)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	metrics := agent.NewMetrics(logger.Underlying())
	registry, err := agent.NewRegistry(
		metrics.Instrument(capability.NewVision(logger)),
		metrics.Instrument(capability.NewContent(logger)),
	)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	mem := memory.New(store, cfg.Pipeline.MemoryCapacity, logger)
	pipe := orchestrator.New(
		registry,
		store,
		patterns.NewEngine(logger),
		strategy.NewSynthesizer(logger),
		mem,
		logger,
		orchestrator.Options{
			ParallelTimeout: cfg.Pipeline.ParallelTimeout,
			WindowLimit:     cfg.History.WindowLimit,
		},
	)

	if narrator, err := buildNarrator(cfg, logger); err != nil {
		logger.Warn(ctx, "narrative model unavailable, continuing without it", zap.Error(err))
	} else if narrator != nil {
		pipe.SetNarrator(narrator)
	}

	server, err := advisorhttp.NewServer(pipe, mem, logger, &advisorhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadWithFile(configPath)
	}
	return config.Load()
}

func openStore(cfg *config.Config) (history.Store, error) {
	if cfg.History.Backend == "sqlite" {
		return history.OpenSQLite(cfg.History.Path)
	}
	return history.NewMemStore(), nil
}

// buildNarrator creates the optional LLM narrator. Returns (nil, nil) when
// disabled; the pipeline then keeps its heuristic explanations.
func buildNarrator(cfg *config.Config, logger *logging.Logger) (orchestrator.Narrator, error) {
	if !cfg.LLM.Enabled {
		return nil, nil
	}
	model, err := openai.New(openai.WithModel(cfg.LLM.Model))
	if err != nil {
		return nil, err
	}
	return capability.NewSynthesis(logger, model, cfg.LLM.RequestsPerSecond), nil
}
