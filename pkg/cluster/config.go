package cluster

import (
	"errors"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hashkit"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/lsh"
)

// Default configuration values, used when a Config field is left at its
// zero value.
const (
	// DefaultWidth is the MinHash signature width used when Config.Width
	// is left unset.
	DefaultWidth = 10

	// DefaultThreshold is the target Jaccard similarity used when
	// Config.Threshold is left unset.
	DefaultThreshold = 0.5

	// DefaultCacheSize is the exact-text signature cache's entry count
	// when Config.CacheSize is left unset.
	DefaultCacheSize = 4096
)

var (
	// ErrConfigWidth is returned when Config.Width is not positive.
	ErrConfigWidth = errors.New("cluster: width must be positive")

	// ErrConfigThreshold is returned when Config.Threshold is not in (0, 1).
	ErrConfigThreshold = errors.New("cluster: threshold must be in (0, 1)")

	// ErrConfigSpan is returned when Config.ShingleSpan is not positive.
	ErrConfigSpan = errors.New("cluster: shingle span must be positive")
)

// Config configures a Clusterer. The zero value is not directly usable:
// Width and Threshold fall back to DefaultWidth/DefaultThreshold when zero,
// but ShingleSpan must always be supplied explicitly.
type Config struct {
	// Width is the MinHash signature width W.
	Width int

	// Threshold is the target Jaccard similarity t in (0, 1) that the LSH
	// banding is tuned to detect with high probability.
	Threshold float64

	// ShingleSpan is the shingle n-gram width (k >= 1).
	ShingleSpan int

	// HashSeed seeds every hash function family used by this Clusterer
	// (MinHash and LSH band hashing alike). Fixed for the instance's
	// lifetime.
	HashSeed uint64

	// HashFamily selects the 64-bit mixer family. The zero value is
	// hashkit.FamilyFNVSplitmix.
	HashFamily hashkit.Family

	// Schemes overrides the banding scheme(s) used by LSH indexing. If
	// empty, a single scheme is derived from Width and Threshold via
	// pkg/alg/bandplanner.
	Schemes []lsh.Scheme

	// TokenPattern overrides the Shingler's tokenizer regexp. If empty,
	// the Shingler's default pattern is used.
	TokenPattern string

	// CacheSize bounds the exact-text signature cache's entry count. Zero
	// falls back to DefaultCacheSize. Negative disables the cache outright.
	CacheSize int

	// DisableVocabSketch turns off the distinct-shingle cardinality sketch.
	// Enabled by default since it costs a fixed, small amount of memory.
	DisableVocabSketch bool
}

// withDefaults returns a copy of c with zero-valued Width/Threshold filled
// in from the package defaults.
func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}

	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}

	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}

	return c
}

// validate rejects a Config whose required fields are out of range.
// Invalid configuration is rejected at construction time, before any
// state is created.
func (c Config) validate() error {
	if c.Width <= 0 {
		return ErrConfigWidth
	}

	if c.Threshold <= 0 || c.Threshold >= 1 {
		return ErrConfigThreshold
	}

	if c.ShingleSpan <= 0 {
		return ErrConfigSpan
	}

	return nil
}
