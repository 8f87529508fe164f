package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/idhash"
	"battle-analytics/internal/orchestrator"
	"battle-analytics/internal/replay"
	"battle-analytics/internal/reporting"
)

func marketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markets",
		Short: "List the market library, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				markets, err := o.Markets(e.ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, m := range markets {
					fmt.Fprintf(out, "%s  %s  %s vs %s\n",
						m.ID, m.CreatedAt.UTC().Format("2006-01-02 15:04"), m.ArtistA.Name, m.ArtistB.Name)
				}
				return nil
			})
		},
	}
}

func marketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market <id>",
		Short: "Show the current state of one market",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			whale, _ := cmd.Flags().GetFloat64("whale")
			asJSON, _ := cmd.Flags().GetBool("json")
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				state, err := o.Market(e.ctx, args[0], force)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), state)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), reporting.RenderMarket(state, whale))
				return err
			})
		},
	}
	cmd.Flags().Bool("force", false, "bypass the state cache")
	cmd.Flags().Float64("whale", domain.DefaultWhaleThreshold, "whale trade threshold in SOL")
	cmd.Flags().Bool("json", false, "print the raw state as JSON")
	return cmd
}

func settleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <id>",
		Short: "Compute the prize-pool distribution of one market",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				_, res, err := o.Settle(e.ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), reporting.RenderSettlement(res))
				return err
			})
		},
	}
}

func roiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roi <id>",
		Short: "Simulate the payout of a hypothetical position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, _ := cmd.Flags().GetString("side")
			amount, _ := cmd.Flags().GetFloat64("amount")
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				sim, err := o.Simulate(e.ctx, args[0], domain.SideID(strings.ToUpper(side)), amount)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), reporting.RenderSimulation(sim))
				return err
			})
		},
	}
	cmd.Flags().String("side", "A", "side to back (A or B)")
	cmd.Flags().Float64("amount", 1, "SOL invested")
	return cmd
}

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <id>",
		Short: "Synthesize the display timeline of one market as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modeName, _ := cmd.Flags().GetString("mode")
			seed, _ := cmd.Flags().GetUint64("seed")
			if !cmd.Flags().Changed("seed") {
				seed = idhash.ReplaySeed(args[0])
			}
			points, _ := cmd.Flags().GetInt("points")

			mode, err := replay.ParseMode(modeName)
			if err != nil {
				return err
			}
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				tl, err := o.Replay(e.ctx, args[0], replay.Options{Mode: mode, Seed: seed, Points: points})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tl)
			})
		},
	}
	cmd.Flags().String("mode", "interpolate", "replay mode (interpolate, stochastic)")
	cmd.Flags().Uint64("seed", 0, "random seed of the stochastic mode (default derived from the market id)")
	cmd.Flags().Int("points", replay.DefaultPoints, "number of history steps")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Poll one market until it ends or the command is interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOrchestrator(cmd, func(e *env, o *orchestrator.Orchestrator) error {
				w, err := o.Watch(e.ctx, args[0], func(state *domain.MarketState, err error) {
					if err != nil {
						e.logger.Warn("refresh failed", zap.String("market_id", args[0]), zap.Error(err))
						return
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  TVL A %s  TVL B %s  volume %s  trades %d  ended %t\n",
						state.FetchedAt.UTC().Format("15:04:05"),
						reporting.FormatSOL(state.Account.BalanceA),
						reporting.FormatSOL(state.Account.BalanceB),
						reporting.FormatSOL(state.Attribution.TotalVolume),
						state.Attribution.TradeCount,
						state.Account.Ended)
				})
				if err != nil {
					return err
				}
				defer w.Stop()

				select {
				case <-w.Done():
				case <-e.ctx.Done():
				}
				return nil
			})
		},
	}
}
