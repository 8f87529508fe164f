// Package config loads runtime settings from flags, environment variables,
// a .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"battle-analytics/internal/ingestion"
	"battle-analytics/internal/pricing"
	"battle-analytics/internal/scanner"
	"battle-analytics/internal/solana"
	"battle-analytics/internal/storage/memory"
)

// EnvPrefix prefixes every environment variable, e.g. BATTLE_RPC_URL.
const EnvPrefix = "BATTLE"

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Transfer feeds.
const (
	FeedHelius     = "helius"
	FeedClickHouse = "clickhouse"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL      string
	EnhancedURL string
	APIKey      string
	ProgramID   string

	CacheTTL     time.Duration
	CacheBackend string
	RedisAddr    string

	Library       string
	PostgresDSN   string
	ClickHouseDSN string
	Feed          string

	PageSize     int
	MaxRecords   int
	SplitRatio   float64 // 0 selects the TVL-proportional split
	BatchSize    int
	BatchDelay   time.Duration
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	PriceURL   string
	ListenAddr string
	LogLevel   string
}

// RegisterFlags adds every config key as a flag on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("rpc-url", "", "Solana JSON-RPC endpoint")
	flags.String("enhanced-url", solana.DefaultEnhancedURL, "Helius enhanced-transactions base URL")
	flags.String("api-key", "", "Helius API key")
	flags.String("program-id", solana.DefaultProgramID, "battle program id")
	flags.Duration("cache-ttl", memory.DefaultTTL, "market state cache TTL")
	flags.String("cache-backend", CacheMemory, "state cache backend (memory, redis)")
	flags.String("redis-addr", "localhost:6379", "redis address for the redis cache backend")
	flags.String("library", "", "market library file (.yaml, .yml, .toml)")
	flags.String("postgres-dsn", "", "Postgres DSN of the market library, used when --library is empty")
	flags.String("clickhouse-dsn", "", "ClickHouse DSN of the indexed transfer feed")
	flags.String("feed", FeedHelius, "transfer feed (helius, clickhouse)")
	flags.Int("page-size", scanner.DefaultPageSize, "transfer records per page")
	flags.Int("max-records", scanner.DefaultMaxRecords, "transfer records scanned per market")
	flags.Float64("split-ratio", 0, "fixed share of volume attributed to side A (0 = TVL-proportional)")
	flags.Int("batch-size", ingestion.DefaultBatchSize, "markets fetched concurrently")
	flags.Duration("batch-delay", ingestion.DefaultBatchDelay, "delay between batches")
	flags.Duration("poll-interval", ingestion.DefaultPollInterval, "live market refresh interval")
	flags.Int("max-retries", solana.DefaultMaxRetries, "maximum retry attempts")
	flags.Duration("retry-backoff", solana.DefaultRetryDelay, "initial retry backoff")
	flags.String("price-url", pricing.DefaultURL, "SOL/USD quote endpoint")
	flags.String("listen-addr", ":8080", "HTTP listen address")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("enhanced-url", solana.DefaultEnhancedURL)
	v.SetDefault("program-id", solana.DefaultProgramID)
	v.SetDefault("cache-ttl", memory.DefaultTTL)
	v.SetDefault("cache-backend", CacheMemory)
	v.SetDefault("redis-addr", "localhost:6379")
	v.SetDefault("feed", FeedHelius)
	v.SetDefault("page-size", scanner.DefaultPageSize)
	v.SetDefault("max-records", scanner.DefaultMaxRecords)
	v.SetDefault("batch-size", ingestion.DefaultBatchSize)
	v.SetDefault("batch-delay", ingestion.DefaultBatchDelay)
	v.SetDefault("poll-interval", ingestion.DefaultPollInterval)
	v.SetDefault("max-retries", solana.DefaultMaxRetries)
	v.SetDefault("retry-backoff", solana.DefaultRetryDelay)
	v.SetDefault("price-url", pricing.DefaultURL)
	v.SetDefault("listen-addr", ":8080")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("battle")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc-url"),
		EnhancedURL:   v.GetString("enhanced-url"),
		APIKey:        v.GetString("api-key"),
		ProgramID:     v.GetString("program-id"),
		CacheTTL:      v.GetDuration("cache-ttl"),
		CacheBackend:  strings.ToLower(v.GetString("cache-backend")),
		RedisAddr:     v.GetString("redis-addr"),
		Library:       v.GetString("library"),
		PostgresDSN:   v.GetString("postgres-dsn"),
		ClickHouseDSN: v.GetString("clickhouse-dsn"),
		Feed:          strings.ToLower(v.GetString("feed")),
		PageSize:      v.GetInt("page-size"),
		MaxRecords:    v.GetInt("max-records"),
		SplitRatio:    v.GetFloat64("split-ratio"),
		BatchSize:     v.GetInt("batch-size"),
		BatchDelay:    v.GetDuration("batch-delay"),
		PollInterval:  v.GetDuration("poll-interval"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		PriceURL:      v.GetString("price-url"),
		ListenAddr:    v.GetString("listen-addr"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the settings needed to read market state.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Library == "" && c.PostgresDSN == "" {
		return fmt.Errorf("a library file or postgres dsn is required")
	}
	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	switch c.Feed {
	case FeedHelius:
	case FeedClickHouse:
		if c.ClickHouseDSN == "" {
			return fmt.Errorf("clickhouse dsn is required for the clickhouse feed")
		}
	default:
		return fmt.Errorf("unknown feed %q", c.Feed)
	}
	if c.SplitRatio < 0 || c.SplitRatio > 1 {
		return fmt.Errorf("split ratio must be within [0, 1], got %v", c.SplitRatio)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}

// Split returns the volume split strategy selected by SplitRatio.
func (c Config) Split() scanner.SplitStrategy {
	if c.SplitRatio > 0 {
		return scanner.FixedRatio(c.SplitRatio)
	}
	return scanner.TVLProportional{}
}
