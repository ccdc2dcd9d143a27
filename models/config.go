// Package models defines the data structures shared across the rewrite
// pipeline, plus the yaml-backed runtime configuration.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like
// "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// ExhaustionPolicy says what FetchRate does after all retries fail.
type ExhaustionPolicy string

const (
	// PolicyFallback returns the configured fallback rate. Default.
	PolicyFallback ExhaustionPolicy = "fallback"
	// PolicyAbort aborts the whole run instead of converting against a
	// stale constant.
	PolicyAbort ExhaustionPolicy = "abort"
)

// RatesConfig configures the exchange-rate provider.
type RatesConfig struct {
	Endpoint         string           `yaml:"endpoint"`
	AcceptedQuotes   []string         `yaml:"accepted_quotes"`
	FallbackBTCUSD   float64          `yaml:"fallback_btc_usd"`
	MaxAttempts      int              `yaml:"max_attempts"`
	BackoffBase      Duration         `yaml:"backoff_base"`
	ExhaustionPolicy ExhaustionPolicy `yaml:"exhaustion_policy"`
}

// RewriteConfig configures the tree rewriter.
type RewriteConfig struct {
	// ExcludedTags are element names whose subtrees are never rewritten.
	ExcludedTags []string `yaml:"excluded_tags"`
	// BTCThresholdSats is the unit-switching boundary: at or above it the
	// display renders in whole bitcoin.
	BTCThresholdSats int64 `yaml:"btc_threshold_sats"`
}

// Config is the full runtime configuration. Zero-value fields are filled
// with defaults by LoadConfig, so a missing config.yaml is fine.
type Config struct {
	// Enabled is the external on/off precondition. When false the engine
	// must not run at all.
	Enabled bool `yaml:"enabled"`

	DBPath string `yaml:"db_path"`

	// DollarFactors maps dollar-family currency codes to units of USD per
	// one unit of that currency. Static approximations by design.
	DollarFactors map[string]float64 `yaml:"dollar_factors"`
	// EuroFactor and PoundFactor are the fixed USD factors for the
	// non-ambiguous symbols.
	EuroFactor  float64 `yaml:"euro_factor"`
	PoundFactor float64 `yaml:"pound_factor"`

	Rates   RatesConfig   `yaml:"rates"`
	Rewrite RewriteConfig `yaml:"rewrite"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		DBPath:  "",
		DollarFactors: map[string]float64{
			"USD": 1.00,
			"CAD": 0.73,
			"AUD": 0.65,
			"NZD": 0.60,
			"SGD": 0.74,
		},
		EuroFactor:  1.08,
		PoundFactor: 1.25,
		Rates: RatesConfig{
			Endpoint:         "https://api.binance.com/api/v3/ticker/price?symbols=%5B%22BTCUSDT%22,%22BTCFDUSD%22%5D",
			AcceptedQuotes:   []string{"USD", "USDT", "FDUSD"},
			FallbackBTCUSD:   65000,
			MaxAttempts:      3,
			BackoffBase:      Duration(500 * time.Millisecond),
			ExhaustionPolicy: PolicyFallback,
		},
		Rewrite: RewriteConfig{
			ExcludedTags:     []string{"script", "style", "a", "textarea", "noscript"},
			BTCThresholdSats: 50_000_000,
		},
	}
}

// LoadConfig reads yaml config from path, filling unset fields with
// defaults. A missing file is not an error; you just get DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults backfills fields the yaml left at zero values.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if len(c.DollarFactors) == 0 {
		c.DollarFactors = def.DollarFactors
	}
	if c.EuroFactor <= 0 {
		c.EuroFactor = def.EuroFactor
	}
	if c.PoundFactor <= 0 {
		c.PoundFactor = def.PoundFactor
	}
	if c.Rates.Endpoint == "" {
		c.Rates.Endpoint = def.Rates.Endpoint
	}
	if len(c.Rates.AcceptedQuotes) == 0 {
		c.Rates.AcceptedQuotes = def.Rates.AcceptedQuotes
	}
	if c.Rates.FallbackBTCUSD <= 0 {
		c.Rates.FallbackBTCUSD = def.Rates.FallbackBTCUSD
	}
	if c.Rates.MaxAttempts <= 0 {
		c.Rates.MaxAttempts = def.Rates.MaxAttempts
	}
	if c.Rates.BackoffBase <= 0 {
		c.Rates.BackoffBase = def.Rates.BackoffBase
	}
	if c.Rates.ExhaustionPolicy == "" {
		c.Rates.ExhaustionPolicy = def.Rates.ExhaustionPolicy
	}
	if len(c.Rewrite.ExcludedTags) == 0 {
		c.Rewrite.ExcludedTags = def.Rewrite.ExcludedTags
	}
	if c.Rewrite.BTCThresholdSats <= 0 {
		c.Rewrite.BTCThresholdSats = def.Rewrite.BTCThresholdSats
	}
}
