package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"battle-analytics/internal/orchestrator"
	"battle-analytics/internal/reporting"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Load every market and write the Markdown and CSV report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outDir, _ := cmd.Flags().GetString("out-dir")
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				r, err := o.Report(e.ctx, func(completed, total int) {
					e.logger.Info("markets loaded", zap.Int("completed", completed), zap.Int("total", total))
				})
				if err != nil {
					return err
				}
				return writeReport(outDir, r, e.logger)
			})
		},
	}
	cmd.Flags().String("out-dir", "docs", "output directory for generated files")
	return cmd
}

func writeReport(outDir string, r *reporting.Report, logger *zap.Logger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outDir, "REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(r)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}

	csvFiles := []struct {
		name  string
		write func(f *os.File) error
	}{
		{"markets.csv", func(f *os.File) error { return reporting.WriteMarketsCSV(f, r) }},
		{"artists.csv", func(f *os.File) error { return reporting.WriteArtistsCSV(f, r) }},
		{"traders.csv", func(f *os.File) error { return reporting.WriteTradersCSV(f, r) }},
	}
	for _, c := range csvFiles {
		path := filepath.Join(outDir, c.name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := c.write(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}

	logger.Info("report written",
		zap.String("dir", outDir),
		zap.Int("markets", len(r.Markets)),
		zap.Int("failed", len(r.Failed)),
		zap.Bool("partial", r.Partial),
	)
	return nil
}

func leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "leaderboard [artists|activity|traders]",
		Short:     "Print a leaderboard as JSON",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"artists", "activity", "traders"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "artists"
			if len(args) == 1 {
				kind = args[0]
			}
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				var (
					rows any
					err  error
				)
				switch kind {
				case "activity":
					rows, err = o.Activity(e.ctx)
				case "traders":
					rows, err = o.Traders(e.ctx)
				default:
					rows, err = o.ArtistLeaderboard(e.ctx)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rows)
			})
		},
	}
}

func traderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trader <wallet>",
		Short: "Print one wallet's profile across the library as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				p, err := o.TraderProfile(e.ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Group the library into battle events and print them as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				events, err := o.Events(e.ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), events)
			})
		},
	}
}
