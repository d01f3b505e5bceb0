// Package config wires a cachepolicy stack from the environment.
//
// Every variable is prefixed with CACHEPOLICY_, e.g.
//
//	CACHEPOLICY_BACKEND=redis
//	CACHEPOLICY_REDIS_ADDR=localhost:6379
//	CACHEPOLICY_RULE_EXPIRES_IN=30s
//	CACHEPOLICY_RULE_STALE_IN=20s
//	CACHEPOLICY_RULE_STALE_TIMEOUT=200ms
//
// A .env file in the working directory is loaded first when present.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cachepolicy"
	"github.com/unkn0wn-root/cachepolicy/engine"
	pr "github.com/unkn0wn-root/cachepolicy/provider"
	bcp "github.com/unkn0wn-root/cachepolicy/provider/bigcache"
	rcp "github.com/unkn0wn-root/cachepolicy/provider/redis"
	rsp "github.com/unkn0wn-root/cachepolicy/provider/ristretto"
)

const Prefix = "CACHEPOLICY"

const (
	BackendRistretto = "ristretto"
	BackendBigCache  = "bigcache"
	BackendRedis     = "redis"
	BackendNone      = "none" // no cache: policies run in no-cache mode
)

// Config holds all settings loaded from environment variables.
type Config struct {
	Backend   string `envconfig:"BACKEND" default:"ristretto"`
	Partition string `envconfig:"PARTITION" default:"cachepolicy"`
	Segment   string `envconfig:"SEGMENT" default:"default"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	Rule cachepolicy.RuleOptions `envconfig:"RULE"`

	Redis     RedisConfig     `envconfig:"REDIS"`
	Ristretto RistrettoConfig `envconfig:"RISTRETTO"`
	BigCache  BigCacheConfig  `envconfig:"BIGCACHE"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr         string        `envconfig:"ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"PASSWORD" default:""`
	DB           int           `envconfig:"DB" default:"0"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// RistrettoConfig sizes the in-process ristretto store.
type RistrettoConfig struct {
	NumCounters int64 `envconfig:"NUM_COUNTERS" default:"100000"`
	MaxCost     int64 `envconfig:"MAX_COST" default:"10000"`
	BufferItems int64 `envconfig:"BUFFER_ITEMS" default:"64"`
	SyncWrites  bool  `envconfig:"SYNC_WRITES" default:"true"`

	// CostBytes weighs entries by size so MaxCost is a byte budget;
	// otherwise every entry costs 1 and MaxCost is an entry count.
	CostBytes bool `envconfig:"COST_BYTES" default:"false"`
}

// BigCacheConfig sizes the in-process bigcache store.
type BigCacheConfig struct {
	LifeWindow         time.Duration `envconfig:"LIFE_WINDOW" default:"24h"`
	CleanWindow        time.Duration `envconfig:"CLEAN_WINDOW" default:"5m"`
	HardMaxCacheSizeMB int           `envconfig:"HARD_MAX_MB" default:"0"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// silent when there is no .env
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks the backend name and compiles the rule.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendRistretto, BackendBigCache, BackendRedis, BackendNone:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if _, err := cachepolicy.Compile(c.Rule, c.HasCache()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) HasCache() bool { return c.Backend != BackendNone }

// OpenProvider builds the byte store for the configured backend.
func (c *Config) OpenProvider(ctx context.Context) (pr.Provider, error) {
	switch c.Backend {
	case BackendRistretto:
		return rsp.New(rsp.Config{
			NumCounters: c.Ristretto.NumCounters,
			MaxCost:     c.Ristretto.MaxCost,
			BufferItems: c.Ristretto.BufferItems,
			SyncWrites:  c.Ristretto.SyncWrites,
		})
	case BackendBigCache:
		return bcp.New(ctx, bcp.Config{
			LifeWindow:         c.BigCache.LifeWindow,
			CleanWindow:        c.BigCache.CleanWindow,
			HardMaxCacheSizeMB: c.BigCache.HardMaxCacheSizeMB,
		})
	case BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			PoolSize:     c.Redis.PoolSize,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
		})
		return rcp.New(rcp.Config{Client: rdb, CloseClient: true})
	}
	return nil, fmt.Errorf("config: backend %q has no provider", c.Backend)
}

// OpenClient builds and starts the full stack: provider, engine.Store and
// Client. It returns a nil Client for BackendNone.
func (c *Config) OpenClient(ctx context.Context, opts cachepolicy.ClientOptions) (*cachepolicy.Client, error) {
	if !c.HasCache() {
		return nil, nil
	}
	p, err := c.OpenProvider(ctx)
	if err != nil {
		return nil, err
	}
	cfg := engine.Config{
		Provider:  p,
		Partition: c.Partition,
		Logger:    opts.Logger,
		Clock:     opts.Clock,
	}
	if c.Backend == BackendRistretto && c.Ristretto.CostBytes {
		cfg.Cost = engine.ByteCost
	}
	st, err := engine.New(cfg)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	cl, err := cachepolicy.NewClient(st, opts)
	if err != nil {
		_ = p.Close(ctx)
		return nil, err
	}
	if err := cl.Start(ctx); err != nil {
		_ = cl.Stop(ctx)
		return nil, err
	}
	return cl, nil
}
