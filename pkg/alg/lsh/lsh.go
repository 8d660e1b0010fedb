// Package lsh provides a Locality-Sensitive Hashing index for fast
// approximate nearest-neighbor retrieval of MinHash signatures.
//
// LSH groups similar MinHash signatures into the same buckets by hashing
// bands of consecutive hash values. This enables O(N) indexing and
// sublinear query time, replacing O(N^2) pairwise comparison.
//
// An Index can carry more than one banding Scheme at once (variable-band
// LSH): each scheme partitions the same signature width into bands of a
// different row count, and a pair of items is a candidate if they co-bucket
// under ANY scheme. This widens the recall curve beyond what a single
// (bandCount, rows) choice can cover, at the cost of extra bucket maps.
package lsh

import (
	"errors"
	"sync"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/bandplanner"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hashkit"
	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/minhash"
)

var (
	// ErrInvalidParams is returned when a Scheme's Rows is not positive, or
	// no schemes are given.
	ErrInvalidParams = errors.New("lsh: schemes must have positive Rows and at least one scheme is required")

	// ErrNilSignature is returned when a nil signature is provided.
	ErrNilSignature = errors.New("lsh: signature must not be nil")

	// ErrSizeMismatch is returned when a signature's width does not match
	// the index's configured width.
	ErrSizeMismatch = errors.New("lsh: signature width must equal index width")

	// ErrNilHasher is returned when constructing an Index with a nil hasher.
	ErrNilHasher = errors.New("lsh: hasher must not be nil")
)

// Scheme is one banding configuration: signature components are split into
// BandCount(width, Rows) bands of Rows consecutive values each.
type Scheme struct {
	Rows int
}

// bucket is the set of labels sharing one band hash under one scheme.
type bucket[L comparable] map[L]struct{}

// Index is a thread-safe, multi-scheme LSH index for approximate
// nearest-neighbor retrieval of MinHash signatures over labels of type L.
type Index[L comparable] struct {
	mu      sync.RWMutex
	width   int
	hasher  *hashkit.Hasher
	schemes []Scheme
	bands   [][]map[uint64]bucket[L] // bands[scheme][band] -> bucket
	sigs    map[L]*minhash.Signature
}

// New creates an Index over signatures of the given width, using hasher to
// derive band keys and banding the signature according to each scheme.
// Returns ErrNilHasher, or ErrInvalidParams if schemes is empty or any
// Scheme.Rows is not positive.
func New[L comparable](width int, hasher *hashkit.Hasher, schemes []Scheme) (*Index[L], error) {
	if hasher == nil {
		return nil, ErrNilHasher
	}

	if len(schemes) == 0 {
		return nil, ErrInvalidParams
	}

	bands := make([][]map[uint64]bucket[L], len(schemes))

	for s, scheme := range schemes {
		if scheme.Rows <= 0 {
			return nil, ErrInvalidParams
		}

		numBands := bandplanner.BandCount(width, scheme.Rows)
		bands[s] = make([]map[uint64]bucket[L], numBands)

		for b := range bands[s] {
			bands[s][b] = make(map[uint64]bucket[L])
		}
	}

	return &Index[L]{
		width:   width,
		hasher:  hasher,
		schemes: schemes,
		bands:   bands,
		sigs:    make(map[L]*minhash.Signature),
	}, nil
}

// Insert adds a signature to the index under the given label, replacing any
// previously indexed signature for that label. Returns ErrNilSignature or
// ErrSizeMismatch.
func (idx *Index[L]) Insert(id L, sig *minhash.Signature) error {
	if sig == nil {
		return ErrNilSignature
	}

	if sig.Len() != idx.width {
		return ErrSizeMismatch
	}

	bandHashes := idx.computeBandHashes(sig)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if oldSig, exists := idx.sigs[id]; exists {
		idx.removeLocked(id, oldSig)
	}

	idx.sigs[id] = sig

	for s := range idx.schemes {
		for b, h := range bandHashes[s] {
			bkt := idx.bands[s][b][h]
			if bkt == nil {
				bkt = make(bucket[L])
				idx.bands[s][b][h] = bkt
			}

			bkt[id] = struct{}{}
		}
	}

	return nil
}

// Remove deletes a label and its signature from the index, if present.
func (idx *Index[L]) Remove(id L) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if sig, exists := idx.sigs[id]; exists {
		idx.removeLocked(id, sig)
	}
}

// Query returns deduplicated candidate labels whose signatures share at
// least one band hash with the query signature under any scheme.
func (idx *Index[L]) Query(sig *minhash.Signature) ([]L, error) {
	if sig == nil {
		return nil, ErrNilSignature
	}

	if sig.Len() != idx.width {
		return nil, ErrSizeMismatch
	}

	bandHashes := idx.computeBandHashes(sig)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[L]struct{})

	for s := range idx.schemes {
		for b, h := range bandHashes[s] {
			for id := range idx.bands[s][b][h] {
				seen[id] = struct{}{}
			}
		}
	}

	result := make([]L, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}

	return result, nil
}

// QueryThreshold returns candidate labels whose exact MinHash similarity
// with the query signature is at or above the given threshold.
func (idx *Index[L]) QueryThreshold(sig *minhash.Signature, threshold float64) ([]L, error) {
	candidates, err := idx.Query(sig)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result := make([]L, 0)

	for _, id := range candidates {
		stored := idx.sigs[id]
		if stored == nil {
			continue
		}

		sim, simErr := sig.Similarity(stored)
		if simErr != nil {
			continue
		}

		if sim >= threshold {
			result = append(result, id)
		}
	}

	return result, nil
}

// removeLocked removes a label from every band bucket it occupies across
// every scheme. Must be called with mu held.
func (idx *Index[L]) removeLocked(id L, sig *minhash.Signature) {
	bandHashes := idx.computeBandHashes(sig)

	for s := range idx.schemes {
		for b, h := range bandHashes[s] {
			bkt := idx.bands[s][b][h]
			delete(bkt, id)

			if len(bkt) == 0 {
				delete(idx.bands[s][b], h)
			}
		}
	}

	delete(idx.sigs, id)
}

// computeBandHashes returns, for each scheme, the band hash of each band of
// the signature, using the hasher's domain-separated BandHash mixer.
func (idx *Index[L]) computeBandHashes(sig *minhash.Signature) [][]uint64 {
	mins := sig.Mins()

	out := make([][]uint64, len(idx.schemes))

	for s, scheme := range idx.schemes {
		numBands := bandplanner.BandCount(idx.width, scheme.Rows)
		hashes := make([]uint64, numBands)

		for b := range numBands {
			start := b * scheme.Rows
			end := start + scheme.Rows
			hashes[b] = idx.hasher.BandHash(b, mins[start:end])
		}

		out[s] = hashes
	}

	return out
}
