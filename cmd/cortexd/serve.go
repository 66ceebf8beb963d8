package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cortexd/internal/brain"
	"github.com/fyrsmithlabs/cortexd/internal/config"
	"github.com/fyrsmithlabs/cortexd/internal/feedback"
	"github.com/fyrsmithlabs/cortexd/internal/fusion"
	"github.com/fyrsmithlabs/cortexd/internal/knowledge"
	"github.com/fyrsmithlabs/cortexd/internal/learning"
	"github.com/fyrsmithlabs/cortexd/internal/logging"
	"github.com/fyrsmithlabs/cortexd/internal/orchestrator"
	"github.com/fyrsmithlabs/cortexd/internal/qa"
	"github.com/fyrsmithlabs/cortexd/internal/reliability"
	"github.com/fyrsmithlabs/cortexd/internal/server"
	"github.com/fyrsmithlabs/cortexd/internal/telemetry"
)

var configPath string

// historyPruneInterval is how often aged learning history is dropped.
const historyPruneInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cortexd daemon",
	Long: `Start the decision fusion daemon: HTTP API, optional NATS feedback
intake, and the learning loop.

Examples:
  # Start with defaults (localhost:9270)
  cortexd serve

  # Start with a config file
  cortexd serve --config /etc/cortexd/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
}

// runServe wires the daemon and blocks until SIGINT/SIGTERM.
//
// Initialization order:
//  1. Load and validate configuration (bad QA weights are fatal here)
//  2. Structured logger
//  3. Brain registry with the built-in heuristic brains
//  4. Reliability tracker, fusion, orchestrator
//  5. QA validator, learning generator, feedback service
//  6. Optional NATS intake and config watcher
//  7. HTTP server
func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("starting cortexd",
		zap.String("version", version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("request_budget", cfg.Decision.RequestBudget))

	registry := brain.NewRegistry()
	if err := registerBuiltinBrains(registry); err != nil {
		return fmt.Errorf("failed to register brains: %w", err)
	}
	logger.Info("brains registered", zap.Strings("brains", registry.Names()))

	// SME brains start above baseline; everyone else at neutral.
	store := reliability.NewInMemoryStore(func(brainName string) float64 {
		if kind, ok := registry.KindOf(brainName); ok && kind == brain.KindSME {
			return reliability.DefaultSMEMultiplier
		}
		return reliability.DefaultMultiplier
	})
	tracker := reliability.NewTracker(store, logger)

	metrics := telemetry.NewMetrics()
	confidence := fusion.NewConfidenceAggregator(tracker)

	orch := orchestrator.New(registry, confidence, metrics, logger, &orchestrator.Config{
		RequestBudget:        cfg.Decision.RequestBudget,
		DecisionHistoryLimit: cfg.Decision.HistoryLimit,
	})

	validator, err := qa.NewValidator(qa.Config{
		Weights:            cfg.QA.CriteriaWeights(),
		TrustedSources:     cfg.QA.TrustedSources,
		BlacklistedSources: cfg.QA.BlacklistedSources,
		HistoryLimit:       cfg.QA.HistoryLimit,
	}, registry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}

	generator := learning.NewGenerator(logger)
	history := learning.NewHistory(cfg.Learning.Retention)
	knowledgeStore := knowledge.NewInMemoryStore()

	fbService := feedback.NewService(
		orch.Decisions(), generator, validator, history,
		tracker, knowledgeStore, metrics, logger,
	)

	// Signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.NATS.Enabled {
		intake, err := feedback.NewNATSIntake(cfg.NATS.URL, cfg.NATS.Subject, fbService, logger)
		if err != nil {
			return fmt.Errorf("failed to start feedback intake: %w", err)
		}
		defer func() {
			if err := intake.Close(); err != nil {
				logger.Warn("feedback intake close failed", zap.Error(err))
			}
		}()
	}

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
			validator.SetSourceLists(next.QA.TrustedSources, next.QA.BlacklistedSources)
		}, logger)
		if err != nil {
			logger.Warn("config watcher unavailable", zap.Error(err))
		} else {
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	go pruneHistory(ctx, history, logger)

	srv, err := server.NewServer(orch, fbService, tracker, knowledgeStore, metrics, logger, &server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// pruneHistory drops aged learning history on a fixed interval.
func pruneHistory(ctx context.Context, history *learning.History, logger *zap.Logger) {
	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := history.Prune(); n > 0 {
				logger.Debug("pruned learning history", zap.Int("dropped", n))
			}
		}
	}
}
