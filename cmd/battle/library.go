package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"battle-analytics/internal/library"
	"battle-analytics/internal/solana"
	"battle-analytics/internal/storage"
	"battle-analytics/internal/storage/clickhouse"
	"battle-analytics/internal/storage/migrations"
	"battle-analytics/internal/storage/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres and ClickHouse schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.PostgresDSN == "" && e.cfg.ClickHouseDSN == "" {
				return fmt.Errorf("postgres dsn or clickhouse dsn is required")
			}

			if e.cfg.PostgresDSN != "" {
				pool, err := postgres.NewPool(e.ctx, e.cfg.PostgresDSN)
				if err != nil {
					return fmt.Errorf("connect postgres: %w", err)
				}
				defer pool.Close()
				applied, err := migrations.RunPostgresMigrations(e.ctx, pool)
				if err != nil {
					return err
				}
				e.logger.Info("postgres migrations applied", zap.Strings("applied", applied))
			}

			if e.cfg.ClickHouseDSN != "" {
				conn, applied, err := migrations.RunClickhouseMigrations(e.ctx, e.cfg.ClickHouseDSN)
				if err != nil {
					return err
				}
				defer conn.Close()
				e.logger.Info("clickhouse migrations applied", zap.Strings("applied", applied))
			}
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a YAML or TOML market library file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.PostgresDSN == "" {
				return fmt.Errorf("postgres dsn is required")
			}

			summaries, err := library.LoadFile(args[0])
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(e.ctx, e.cfg.PostgresDSN)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			lib := postgres.NewMarketLibrary(pool)
			for _, s := range summaries {
				if err := lib.Insert(e.ctx, s); err != nil {
					return fmt.Errorf("insert market %s: %w", s.ID, err)
				}
			}
			e.logger.Info("library imported", zap.String("file", args[0]), zap.Int("markets", len(summaries)))
			return nil
		},
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <id>",
		Short: "Copy a market's transfer history from the enhanced API into ClickHouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.ClickHouseDSN == "" {
				return fmt.Errorf("clickhouse dsn is required")
			}

			lib, closeLib, err := openLibrary(e)
			if err != nil {
				return err
			}
			defer closeLib()

			summary, err := lib.GetByID(e.ctx, args[0])
			if err != nil {
				return fmt.Errorf("market %s: %w", args[0], err)
			}
			addrs, err := solana.DeriveBattleAddresses(e.cfg.ProgramID, summary.BattleID)
			if err != nil {
				return err
			}

			conn, err := clickhouse.NewConn(e.ctx, e.cfg.ClickHouseDSN)
			if err != nil {
				return fmt.Errorf("connect clickhouse: %w", err)
			}
			defer conn.Close()

			src := solana.NewEnhancedClient(e.cfg.EnhancedURL, e.cfg.APIKey,
				solana.WithMaxRetries(e.cfg.MaxRetries),
				solana.WithRetryDelay(e.cfg.RetryBackoff),
			)
			dst := clickhouse.NewTransferFeed(conn)

			for _, addr := range []string{addrs.Market, addrs.Vault} {
				n, err := copyTransfers(e, src, dst, addr)
				if err != nil {
					return fmt.Errorf("index %s: %w", addr, err)
				}
				e.logger.Info("address indexed", zap.String("address", addr), zap.Int("records", n))
			}
			return nil
		},
	}
}

// copyTransfers pages src newest first into dst, up to max-records.
func copyTransfers(e *env, src *solana.EnhancedClient, dst *clickhouse.TransferFeed, addr string) (int, error) {
	var (
		before string
		total  int
	)
	for total < e.cfg.MaxRecords {
		page, err := src.GetTransfers(e.ctx, addr, solana.TransfersOpts{Limit: e.cfg.PageSize, Before: before})
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		if err := dst.InsertBulk(e.ctx, addr, page); err != nil {
			return total, err
		}
		total += len(page)
		before = page[len(page)-1].Signature
		if len(page) < e.cfg.PageSize {
			break
		}
	}
	return total, nil
}

// openLibrary opens the library file if one is configured, Postgres otherwise.
func openLibrary(e *env) (storage.MarketLibrary, func(), error) {
	if e.cfg.Library != "" {
		lib, err := library.Open(e.cfg.Library)
		if err != nil {
			return nil, nil, err
		}
		return lib, func() {}, nil
	}
	if e.cfg.PostgresDSN == "" {
		return nil, nil, fmt.Errorf("a library file or postgres dsn is required")
	}
	pool, err := postgres.NewPool(e.ctx, e.cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return postgres.NewMarketLibrary(pool), pool.Close, nil
}
