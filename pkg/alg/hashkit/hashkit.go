// Package hashkit provides families of parameterized 64-bit hash functions
// for probabilistic near-duplicate detection (MinHash, LSH band keys).
//
// A Family produces W independent hash functions from a single seed: for
// seed index i, hash_i(data) = MixHash(H(data), seeds[i]), where H is the
// family's 64-bit base hash and seeds[i] is the i-th per-function seed, so
// data is hashed once and the W functions differ only in the seed mixed
// into that digest. Two families are available: FamilyFNVSplitmix, which matches
// pkg/alg/minhash's original FNV-1a + splitmix64 construction, and
// FamilyXXHash, backed by github.com/cespare/xxhash/v2. Both are
// deterministic total functions suitable for reproducible clustering runs.
package hashkit

import (
	"errors"

	"github.com/cespare/xxhash/v2"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/internal/hashutil"
)

// Family selects which 64-bit mixer backs a Hasher.
type Family int

const (
	// FamilyFNVSplitmix mixes FNV-1a base hashes with the splitmix64
	// finalizer, matching pkg/alg/minhash's original construction.
	FamilyFNVSplitmix Family = iota

	// FamilyXXHash uses github.com/cespare/xxhash/v2 as the base hash,
	// mixed per-seed with the splitmix64 finalizer for independence
	// between hash functions.
	FamilyXXHash
)

// ErrUnknownFamily is returned when constructing a Hasher with an
// unrecognized Family value.
var ErrUnknownFamily = errors.New("hashkit: unknown hash family")

// String returns the human-readable family name.
func (f Family) String() string {
	switch f {
	case FamilyFNVSplitmix:
		return "fnv-splitmix"
	case FamilyXXHash:
		return "xxhash"
	default:
		return "unknown"
	}
}

// Hasher produces n independent, deterministic 64-bit hash functions seeded
// by (family, seed), plus a band-key mixer that keeps different band
// indices from colliding on identical sub-vectors.
type Hasher struct {
	family Family
	seeds  []uint64
}

// New creates a Hasher with n independent hash functions for the given
// family and seed. Returns ErrUnknownFamily for an unrecognized family.
func New(family Family, seed uint64, n int) (*Hasher, error) {
	switch family {
	case FamilyFNVSplitmix, FamilyXXHash:
	default:
		return nil, ErrUnknownFamily
	}

	start := seed ^ hashutil.BaseSeed

	seeds := hashutil.GenerateSeeds(n, hashutil.Splitmix64)
	for i := range seeds {
		seeds[i] ^= start
	}

	return &Hasher{family: family, seeds: seeds}, nil
}

// Len returns the number of independent hash functions.
func (h *Hasher) Len() int {
	return len(h.seeds)
}

// Family returns the mixer family backing this Hasher.
func (h *Hasher) Family() Family {
	return h.family
}

// baseHash computes the family's underlying 64-bit digest of data.
func (h *Hasher) baseHash(data []byte) uint64 {
	switch h.family {
	case FamilyXXHash:
		return xxhash.Sum64(data)
	default:
		return hashutil.FNV64a(data)
	}
}

// HashAt returns hash_i(data) for the i-th hash function, 0 <= i < Len().
func (h *Hasher) HashAt(i int, data []byte) uint64 {
	base := h.baseHash(data)

	return hashutil.MixHash(base, h.seeds[i])
}

// HashAll computes hash_i(data) for every i in one pass, reusing the single
// base-hash computation. This is the recommended entry point for MinHash,
// which otherwise would recompute the base hash W times per shingle.
func (h *Hasher) HashAll(data []byte, out []uint64) {
	base := h.baseHash(data)

	for i, seed := range h.seeds {
		out[i] = hashutil.MixHash(base, seed)
	}
}

// BandHash derives a 64-bit bucket key for band bandIndex from the r
// consecutive signature values row. The band index is mixed in first so
// that identical sub-vectors landing in different bands never collide.
func (h *Hasher) BandHash(bandIndex int, row []uint64) uint64 {
	acc := hashutil.MixHash(uint64(bandIndex), h.seeds[0])

	for _, v := range row {
		acc = hashutil.MixHash(acc, v)
	}

	return acc
}
