// Package config loads feeder configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Variant selects which feeder pipeline runs.
type Variant string

const (
	// VariantValue answers UpdateValue requests with locally generated values.
	VariantValue Variant = "value"
	// VariantRandomness pushes beacon rounds via SetRandomValue.
	VariantRandomness Variant = "randomness"
)

// Config holds the full feeder configuration. Read-only after Load.
type Config struct {
	NodeRPCURL string `env:"NODE_RPC_URL,default=http://127.0.0.1:9933"`
	NodeWSURL  string `env:"NODE_WS_URL,default=ws://127.0.0.1:9944"`

	// ProgramID is the oracle program address (0x-prefixed, 32 bytes).
	ProgramID string `env:"ORACLE_PROGRAM_ID"`

	// MetadataPath points at the program's compiled metadata module.
	MetadataPath string `env:"ORACLE_META_PATH"`

	KeyfilePath string `env:"KEYFILE_PATH"`
	Passphrase  string `env:"KEYFILE_PASSPHRASE"`

	Variant Variant `env:"FEEDER_VARIANT,default=value"`

	// ValueBound is the exclusive upper bound for locally generated values.
	ValueBound uint64 `env:"VALUE_BOUND,default=10000000000000"`

	BeaconURL    string        `env:"BEACON_URL,default=https://drand.cloudflare.com"`
	PollInterval time.Duration `env:"POLL_INTERVAL,default=30s"`

	Workers int `env:"SUBMIT_WORKERS,default=4"`

	// MetricsAddr enables the prometheus endpoint when non-empty.
	MetricsAddr string `env:"METRICS_ADDR"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=console"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.ProgramID == "" {
		return fmt.Errorf("ORACLE_PROGRAM_ID required")
	}
	if c.KeyfilePath == "" {
		return fmt.Errorf("KEYFILE_PATH required")
	}
	switch c.Variant {
	case VariantValue:
		if c.MetadataPath == "" {
			return fmt.Errorf("ORACLE_META_PATH required")
		}
		if c.ValueBound == 0 {
			return fmt.Errorf("VALUE_BOUND must be positive")
		}
	case VariantRandomness:
		if c.MetadataPath == "" {
			return fmt.Errorf("ORACLE_META_PATH required")
		}
		if c.BeaconURL == "" {
			return fmt.Errorf("BEACON_URL required")
		}
		if c.PollInterval <= 0 {
			return fmt.Errorf("POLL_INTERVAL must be positive")
		}
	default:
		return fmt.Errorf("unknown feeder variant %q", c.Variant)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("SUBMIT_WORKERS must be positive")
	}
	return nil
}
