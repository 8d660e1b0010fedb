// Package config defines dupcluster's viper-backed runtime configuration.
package config

import "errors"

// ErrInvalidWidth is returned when Width is not positive.
var ErrInvalidWidth = errors.New("config: width must be positive")

// ErrInvalidThreshold is returned when Threshold is not in (0, 1).
var ErrInvalidThreshold = errors.New("config: threshold must be in (0, 1)")

// ErrInvalidSpan is returned when ShingleSpan is not positive.
var ErrInvalidSpan = errors.New("config: shingle_span must be positive")

// ErrUnknownHashFamily is returned when HashFamily does not name a known
// family.
var ErrUnknownHashFamily = errors.New("config: unknown hash_family")

// Config is the top-level configuration for a dupcluster run.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ClusteringConfig holds the knobs that shape the clustering algorithm.
type ClusteringConfig struct {
	Width       int     `mapstructure:"width"`
	Threshold   float64 `mapstructure:"threshold"`
	ShingleSpan int     `mapstructure:"shingle_span"`
	HashSeed    uint64  `mapstructure:"hash_seed"`
	HashFamily  string  `mapstructure:"hash_family"`
}

// LoggingConfig holds slog output settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Validate rejects a Config whose fields are out of range.
func (c Config) Validate() error {
	if c.Clustering.Width <= 0 {
		return ErrInvalidWidth
	}

	if c.Clustering.Threshold <= 0 || c.Clustering.Threshold >= 1 {
		return ErrInvalidThreshold
	}

	if c.Clustering.ShingleSpan <= 0 {
		return ErrInvalidSpan
	}

	switch c.Clustering.HashFamily {
	case "fnv-splitmix", "xxhash":
	default:
		return ErrUnknownHashFamily
	}

	return nil
}
