// Package main is the command-line client of the battle market analytics.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"battle-analytics/internal/config"
	"battle-analytics/internal/orchestrator"
)

func main() {
	root := &cobra.Command{
		Use:          "battle",
		Short:        "Read-only analytics for on-chain artist battle markets",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		marketsCmd(),
		marketCmd(),
		settleCmd(),
		roiCmd(),
		replayCmd(),
		watchCmd(),
		eventsCmd(),
		leaderboardCmd(),
		traderCmd(),
		reportCmd(),
		migrateCmd(),
		importCmd(),
		indexCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command needs once config is loaded.
type env struct {
	ctx    context.Context
	cfg    config.Config
	logger *zap.Logger
	close  func()
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return &env{
		ctx:    ctx,
		cfg:    cfg,
		logger: logger,
		close: func() {
			stop()
			_ = logger.Sync()
		},
	}, nil
}

// withOrchestrator loads config, builds the orchestrator and runs fn.
func withOrchestrator(cmd *cobra.Command, fn func(e *env, o *orchestrator.Orchestrator) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	o, err := orchestrator.Build(e.ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer o.Close()

	return fn(e, o)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
