// Package cluster orchestrates shingling, MinHash signature construction,
// LSH banding, and incremental union-find clustering behind a single
// streaming API: add items one at a time, query the current partition at
// any point, and score it against ground truth with the AUL evaluator.
//
// A Clusterer owns all of its state, including the Shingler, a hashkit.Hasher,
// the union-find forest, and the per-scheme bucket maps, and is not safe for
// unsynchronized concurrent use; an internal mutex serializes AddItem and
// GetClusters, matching the single-threaded, cooperative concurrency model
// the rest of this module's packages follow.
package cluster

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/bandplanner"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hashkit"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hll"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/lift"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/lru"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/lsh"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/minhash"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/shingle"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/stats"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/unionfind"
)

// vocabPrecision sets the HyperLogLog sketch size tracking distinct
// shingles seen across the Clusterer's lifetime: 2^14 registers, about
// 0.8% standard error, far cheaper than retaining every shingle string.
const vocabPrecision = 14

// sigCacheBloomFPExpected seeds the signature cache's Bloom pre-filter
// sizing; it is a rough guess, not a hard ceiling, since lru.Cache degrades
// gracefully (higher false-positive rate, not incorrectness) past it.
const sigCacheBloomFPExpected = 4096

// ErrNilIsPositive is returned by AULScore when isPositive is nil.
var ErrNilIsPositive = errors.New("cluster: isPositive must not be nil")

// Clusterer incrementally clusters labeled items by set similarity.
type Clusterer[L comparable] struct {
	mu sync.Mutex

	cfg      Config
	shingler *shingle.Shingler
	hasher   *hashkit.Hasher
	schemes  []lsh.Scheme

	interner *Interner[L]
	forest   *unionfind.Forest[int32]
	buckets  []map[uint64][]int32 // buckets[scheme][bandKey] -> insertion-ordered label indices
	index    *lsh.Index[int32]    // optional candidate-query surface; not consulted by AddItem's union step

	sigCache *lru.Cache[string, *minhash.Signature] // exact-text memoization, nil when disabled
	vocab    *hll.Sketch                            // distinct shingle-key cardinality, nil when disabled

	logger  *slog.Logger
	metrics *Metrics
}

// Option configures optional Clusterer behavior.
type Option[L comparable] func(*Clusterer[L])

// WithLogger overrides the Clusterer's logger. The default is slog.Default().
func WithLogger[L comparable](logger *slog.Logger) Option[L] {
	return func(c *Clusterer[L]) {
		c.logger = logger
	}
}

// WithMetrics attaches a Metrics set that AddItem updates as it runs. The
// default Clusterer performs no metrics bookkeeping.
func WithMetrics[L comparable](m *Metrics) Option[L] {
	return func(c *Clusterer[L]) {
		c.metrics = m
	}
}

// New creates a Clusterer from cfg. Width and Threshold default to
// DefaultWidth/DefaultThreshold when left zero; ShingleSpan has no default
// and must be positive. Returns ErrConfigWidth, ErrConfigThreshold, or
// ErrConfigSpan for an invalid Config; invalid input is rejected before any
// state is created.
func New[L comparable](cfg Config, opts ...Option[L]) (*Clusterer[L], error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	shingler, err := shingle.New(cfg.ShingleSpan, cfg.TokenPattern)
	if err != nil {
		return nil, fmt.Errorf("cluster: building shingler: %w", err)
	}

	hasher, err := hashkit.New(cfg.HashFamily, cfg.HashSeed, cfg.Width)
	if err != nil {
		return nil, fmt.Errorf("cluster: building band hasher: %w", err)
	}

	schemes := cfg.Schemes
	if len(schemes) == 0 {
		schemes = []lsh.Scheme{{Rows: bandplanner.Plan(cfg.Width, cfg.Threshold)}}
	}

	index, err := lsh.New[int32](cfg.Width, hasher, schemes)
	if err != nil {
		return nil, fmt.Errorf("cluster: building lsh index: %w", err)
	}

	buckets := make([]map[uint64][]int32, len(schemes))
	for i := range buckets {
		buckets[i] = make(map[uint64][]int32)
	}

	c := &Clusterer[L]{
		cfg:      cfg,
		shingler: shingler,
		hasher:   hasher,
		schemes:  schemes,
		interner: NewInterner[L](),
		forest:   unionfind.New[int32](),
		buckets:  buckets,
		index:    index,
		logger:   slog.Default(),
	}

	if cfg.CacheSize > 0 {
		c.sigCache = lru.New[string, *minhash.Signature](
			lru.WithMaxEntries[string, *minhash.Signature](cfg.CacheSize),
			lru.WithBloomFilter[string, *minhash.Signature](
				func(s string) []byte { return []byte(s) },
				sigCacheBloomFPExpected,
			),
		)
	}

	if !cfg.DisableVocabSketch {
		vocab, vocabErr := hll.New(vocabPrecision)
		if vocabErr != nil {
			return nil, fmt.Errorf("cluster: building vocabulary sketch: %w", vocabErr)
		}

		c.vocab = vocab
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AddItem shingles text, builds its MinHash signature, and unions label
// with every label already occupying a band it lands in. It is atomic with
// respect to the union-find forest and bucket maps: on error, no state is
// committed. Exact-duplicate text (byte-identical to a previous AddItem
// call) reuses its cached signature rather than re-shingling and re-hashing.
func (c *Clusterer[L]) AddItem(text string, label L) error {
	if c.sigCache != nil {
		if sig, ok := c.sigCache.Get(text); ok {
			if c.metrics != nil {
				c.metrics.SignatureCacheHit.Inc()
			}

			return c.addSignature(sig, label)
		}
	}

	shingles, err := c.shingler.Shingles(text)
	if err != nil {
		return fmt.Errorf("cluster: shingling: %w", err)
	}

	sig, err := c.buildSignature(shingles)
	if err != nil {
		return err
	}

	if c.sigCache != nil {
		c.sigCache.Put(text, sig)
	}

	return c.addSignature(sig, label)
}

// AddItemShingles is AddItem for callers that have already computed a
// shingle set (e.g. to reuse it across multiple Clusterer instances or
// amortize shingling cost). It never consults or populates the signature
// cache, since that is keyed on raw text.
func (c *Clusterer[L]) AddItemShingles(shingles map[string]shingle.Shingle, label L) error {
	sig, err := c.buildSignature(shingles)
	if err != nil {
		return err
	}

	return c.addSignature(sig, label)
}

// buildSignature computes a MinHash signature over shingles and, unless
// disabled, folds each shingle key into the vocabulary cardinality sketch.
func (c *Clusterer[L]) buildSignature(shingles map[string]shingle.Shingle) (*minhash.Signature, error) {
	sig, err := minhash.New(c.cfg.Width, c.cfg.HashFamily, c.cfg.HashSeed)
	if err != nil {
		return nil, fmt.Errorf("cluster: building signature: %w", err)
	}

	for key := range shingles {
		sig.AddString(key)

		if c.vocab != nil {
			c.vocab.Add([]byte(key))
		}
	}

	return sig, nil
}

// addSignature indexes sig under label and unions it with every label
// already occupying a band it lands in.
func (c *Clusterer[L]) addSignature(sig *minhash.Signature, label L) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.interner.Intern(label)
	c.forest.Touch(idx)

	if err := c.index.Insert(idx, sig); err != nil {
		return fmt.Errorf("cluster: indexing signature: %w", err)
	}

	mins := sig.Mins()

	for s, scheme := range c.schemes {
		numBands := bandplanner.BandCount(c.cfg.Width, scheme.Rows)

		for b := range numBands {
			start := b * scheme.Rows
			end := start + scheme.Rows
			key := c.hasher.BandHash(b, mins[start:end])

			bucket := c.buckets[s][key]
			if len(bucket) > 0 {
				c.forest.Union(idx, bucket[0])

				if c.metrics != nil {
					c.metrics.UnionsPerformed.Inc()
				}
			}

			c.buckets[s][key] = append(bucket, idx)
		}
	}

	if c.metrics != nil {
		c.metrics.ItemsIndexed.Inc()
		c.metrics.LabelsKnown.Set(float64(c.interner.Len()))

		if c.vocab != nil {
			c.metrics.VocabularySize.Set(float64(c.vocab.Count()))
		}
	}

	c.logger.Debug("cluster: indexed item", "label_count", c.interner.Len())

	return nil
}

// GetClusters returns the current partition of every label ever passed to
// AddItem into equivalence classes. Never fails; order of classes and of
// labels within a class is unspecified.
func (c *Clusterer[L]) GetClusters() [][]L {
	c.mu.Lock()
	defer c.mu.Unlock()

	classes := c.forest.Classes()
	out := make([][]L, len(classes))

	for i, class := range classes {
		members := make([]L, len(class))
		for j, idx := range class {
			members[j] = c.interner.Label(idx)
		}

		out[i] = members
	}

	return out
}

// Candidates runs the LSH query path over text's signature, returning
// labels sharing at least one band with it. This is the optional query
// path, kept for exploratory use; AddItem never calls it, since the
// streaming union decision only ever consults the first label in each
// landed-on bucket.
func (c *Clusterer[L]) Candidates(text string) ([]L, error) {
	shingles, err := c.shingler.Shingles(text)
	if err != nil {
		return nil, fmt.Errorf("cluster: shingling: %w", err)
	}

	sig, err := minhash.New(c.cfg.Width, c.cfg.HashFamily, c.cfg.HashSeed)
	if err != nil {
		return nil, fmt.Errorf("cluster: building signature: %w", err)
	}

	for key := range shingles {
		sig.AddString(key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.index.Query(sig)
	if err != nil {
		return nil, fmt.Errorf("cluster: querying lsh index: %w", err)
	}

	labels := make([]L, len(ids))
	for i, id := range ids {
		labels[i] = c.interner.Label(id)
	}

	return labels, nil
}

// AULScore scores the current clustering's quality via Area-Under-Lift,
// classifying each label with isPositive. A lift.Warning on the result
// flags internally inconsistent ground truth (more positives than the
// predicted total allows for); it is logged but does not alter AUL.
func (c *Clusterer[L]) AULScore(isPositive func(L) bool) (lift.Result, error) {
	if isPositive == nil {
		return lift.Result{}, ErrNilIsPositive
	}

	clusters := c.GetClusters()

	groups, err := lift.FromClusters(clusters, isPositive)
	if err != nil {
		return lift.Result{}, fmt.Errorf("cluster: scoring clusters: %w", err)
	}

	result := lift.Score(groups, lift.DefaultThreshold)
	if result.Warning != nil {
		c.logger.Warn("cluster: aul quality warning", "error", result.Warning)
	}

	return result, nil
}

// Len returns the number of distinct labels interned so far.
func (c *Clusterer[L]) Len() int {
	return c.interner.Len()
}

// MeanClusterSize returns the arithmetic mean size of the current
// partition's classes, 0 if no item has been added yet.
func (c *Clusterer[L]) MeanClusterSize() float64 {
	classes := c.GetClusters()

	sizes := make([]float64, len(classes))
	for i, class := range classes {
		sizes[i] = float64(len(class))
	}

	return stats.Mean(sizes)
}

// EstimatedVocabularySize returns a HyperLogLog estimate of the number of
// distinct shingle keys seen across every AddItem/AddItemShingles call so
// far. Returns 0 if the vocabulary sketch was disabled via
// Config.DisableVocabSketch.
func (c *Clusterer[L]) EstimatedVocabularySize() uint64 {
	if c.vocab == nil {
		return 0
	}

	return c.vocab.Count()
}

// SignatureCacheStats returns the exact-text signature cache's hit/miss
// counters, for callers that want more detail than the
// dupcluster_signature_cache_hits_total counter alone provides. Returns the
// zero value if the cache was disabled via Config.CacheSize < 0.
func (c *Clusterer[L]) SignatureCacheStats() lru.Stats {
	if c.sigCache == nil {
		return lru.Stats{}
	}

	return c.sigCache.Stats()
}

// DeriveLabel computes a stable string label from text's bytes using the
// given hash family and seed, for callers of Clusterer[string] that have no
// natural caller-supplied identifier for an item.
func DeriveLabel(text string, family hashkit.Family, seed uint64) (string, error) {
	hasher, err := hashkit.New(family, seed, 1)
	if err != nil {
		return "", fmt.Errorf("cluster: deriving label: %w", err)
	}

	return strconv.FormatUint(hasher.HashAt(0, []byte(text)), 16), nil
}
