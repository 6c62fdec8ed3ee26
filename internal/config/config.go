package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth. Empty disables API authentication.
	APIKey string

	// Traversal limits
	DefaultMaxDepth int
	MaxDepthLimit   int

	// Remote fetching
	FetchTimeout  time.Duration
	UserAgent     string
	MaxFetchBytes int64

	// Local discovery
	AllowLocal bool
	LocalRoot  string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL time.Duration

	// Fetch latency stats window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCLINKS_API_KEY"),

		DefaultMaxDepth: envInt("DEFAULT_MAX_DEPTH", 2),
		MaxDepthLimit:   envInt("MAX_DEPTH_LIMIT", 10),

		FetchTimeout:  envDuration("FETCH_TIMEOUT", 10*time.Second),
		UserAgent:     envOr("USER_AGENT", "doclinks/0.1.0"),
		MaxFetchBytes: envInt64("MAX_FETCH_BYTES", 10485760), // 10MB

		AllowLocal: envBool("ALLOW_LOCAL", true),
		LocalRoot:  os.Getenv("LOCAL_ROOT"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.MaxDepthLimit <= 0 {
		cfg.MaxDepthLimit = 10
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.MaxFetchBytes <= 0 {
		cfg.MaxFetchBytes = 10485760
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DefaultMaxDepth < 0 {
		return fmt.Errorf("DEFAULT_MAX_DEPTH must not be negative, got %d", c.DefaultMaxDepth)
	}
	if c.DefaultMaxDepth > c.MaxDepthLimit {
		return fmt.Errorf("DEFAULT_MAX_DEPTH (%d) exceeds MAX_DEPTH_LIMIT (%d)", c.DefaultMaxDepth, c.MaxDepthLimit)
	}
	if c.LocalRoot != "" {
		info, err := os.Stat(c.LocalRoot)
		if err != nil {
			return fmt.Errorf("LOCAL_ROOT: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("LOCAL_ROOT %s is not a directory", c.LocalRoot)
		}
	}
	return nil
}

// Depth returns the traversal depth to use for a request: the default when
// requested is nil, otherwise requested, which must lie within the limit.
func (c Config) Depth(requested *int) (int, error) {
	if requested == nil {
		return c.DefaultMaxDepth, nil
	}
	d := *requested
	if d < 0 {
		return 0, fmt.Errorf("max_depth must not be negative, got %d", d)
	}
	if d > c.MaxDepthLimit {
		return 0, fmt.Errorf("max_depth %d exceeds limit %d", d, c.MaxDepthLimit)
	}
	return d, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
