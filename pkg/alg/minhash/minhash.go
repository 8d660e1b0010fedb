// Package minhash provides MinHash signature generation for set similarity
// estimation.
//
// MinHash compresses a set of tokens or shingles into a compact fixed-size
// signature. The Jaccard similarity between two sets can then be estimated
// by comparing signatures in O(W) time, where W is the signature width
// (typically 128).
//
// Hash generation is delegated to pkg/alg/hashkit, so a Signature can be
// backed by either the FNV-1a+splitmix64 construction or xxhash, chosen at
// construction time via hashkit.Family.
package minhash

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/Sumatoshi-tech/dupcluster/pkg/alg/hashkit"
)

const (
	// HeaderSize is the number of bytes for the numHashes uint32 in serialization.
	HeaderSize = 4

	// BytesPerHash is the number of bytes per uint64 hash value in serialization.
	BytesPerHash = 8
)

var (
	// ErrZeroNumHashes is returned when numHashes is zero.
	ErrZeroNumHashes = errors.New("minhash: numHashes must be positive")

	// ErrSizeMismatch is returned when comparing or merging signatures of
	// different widths.
	ErrSizeMismatch = errors.New("minhash: signature sizes do not match")

	// ErrNilSignature is returned when a nil signature is provided.
	ErrNilSignature = errors.New("minhash: signature must not be nil")

	// ErrInvalidData is returned when deserialization data is invalid.
	ErrInvalidData = errors.New("minhash: invalid serialized data")
)

// Signature is a thread-safe MinHash signature for Jaccard similarity
// estimation. Its width is fixed at construction and never changes.
type Signature struct {
	mu     sync.Mutex
	mins   []uint64
	hasher *hashkit.Hasher
}

// New creates a new MinHash signature of the given width, with hash
// functions drawn from the given hashkit family and seed. Each component is
// initialized to math.MaxUint64, so the signature of the empty set is the
// all-max vector, a well-defined, comparable value rather than a special
// case. Returns ErrZeroNumHashes if width is not positive, or whatever
// hashkit.New returns for an unrecognized family.
func New(width int, family hashkit.Family, seed uint64) (*Signature, error) {
	if width <= 0 {
		return nil, ErrZeroNumHashes
	}

	hasher, err := hashkit.New(family, seed, width)
	if err != nil {
		return nil, err
	}

	mins := make([]uint64, width)
	for i := range mins {
		mins[i] = math.MaxUint64
	}

	return &Signature{mins: mins, hasher: hasher}, nil
}

// Add updates all hash function minimums with the given token.
func (s *Signature) Add(token []byte) {
	hashes := make([]uint64, len(s.mins))
	s.hasher.HashAll(token, hashes)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, h := range hashes {
		if h < s.mins[i] {
			s.mins[i] = h
		}
	}
}

// AddString is a convenience wrapper around Add for string tokens.
func (s *Signature) AddString(token string) {
	s.Add([]byte(token))
}

// Similarity returns the estimated Jaccard index between this signature and
// another. Returns an error if the signatures have different widths or if
// other is nil.
func (s *Signature) Similarity(other *Signature) (float64, error) {
	if other == nil {
		return 0, ErrNilSignature
	}

	if s == other {
		return 1.0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()

	if len(s.mins) != len(other.mins) {
		return 0, ErrSizeMismatch
	}

	matches := 0

	for i := range s.mins {
		if s.mins[i] == other.mins[i] {
			matches++
		}
	}

	return float64(matches) / float64(len(s.mins)), nil
}

// Merge folds other's minimums into s component-wise, yielding the
// signature of the union of the two sets s and other were built from.
// Returns ErrSizeMismatch if widths differ, ErrNilSignature if other is nil.
func (s *Signature) Merge(other *Signature) error {
	if other == nil {
		return ErrNilSignature
	}

	if s == other {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	other.mu.Lock()
	defer other.mu.Unlock()

	if len(s.mins) != len(other.mins) {
		return ErrSizeMismatch
	}

	for i, v := range other.mins {
		if v < s.mins[i] {
			s.mins[i] = v
		}
	}

	return nil
}

// Reset restores the signature to the empty-set state (all components at
// math.MaxUint64) without discarding its hash functions.
func (s *Signature) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.mins {
		s.mins[i] = math.MaxUint64
	}
}

// Clone returns a deep copy of the signature, sharing the same hasher.
func (s *Signature) Clone() *Signature {
	s.mu.Lock()
	defer s.mu.Unlock()

	mins := make([]uint64, len(s.mins))
	copy(mins, s.mins)

	return &Signature{mins: mins, hasher: s.hasher}
}

// IsEmpty reports whether the signature still reflects the empty set, i.e.
// no token has ever been added (or Reset was called since).
func (s *Signature) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.mins {
		if v != math.MaxUint64 {
			return false
		}
	}

	return true
}

// Bytes serializes the signature's minimum vector to a compact binary
// format: [numHashes as uint32 big-endian] + [mins as []uint64 big-endian].
// The hasher (family, seed) is not part of the encoding; FromBytes requires
// a Signature constructed with the same family/seed to produce meaningful
// comparisons against the decoded minimums.
func (s *Signature) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, HeaderSize+len(s.mins)*BytesPerHash)
	binary.BigEndian.PutUint32(data[:HeaderSize], uint32(len(s.mins)))

	for i, v := range s.mins {
		offset := HeaderSize + i*BytesPerHash
		binary.BigEndian.PutUint64(data[offset:offset+BytesPerHash], v)
	}

	return data
}

// FromBytes overwrites s's minimum vector by decoding data produced by
// Bytes. Returns ErrInvalidData if data is malformed, ErrSizeMismatch if its
// encoded width does not match s's width.
func (s *Signature) FromBytes(data []byte) error {
	if len(data) < HeaderSize {
		return ErrInvalidData
	}

	n := int(binary.BigEndian.Uint32(data[:HeaderSize]))
	if len(data) != HeaderSize+n*BytesPerHash {
		return ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n != len(s.mins) {
		return ErrSizeMismatch
	}

	for i := range n {
		offset := HeaderSize + i*BytesPerHash
		s.mins[i] = binary.BigEndian.Uint64(data[offset : offset+BytesPerHash])
	}

	return nil
}

// Len returns the number of hash functions (width) in the signature.
func (s *Signature) Len() int {
	return len(s.mins)
}

// Mins returns a copy of the signature's current minimum vector, primarily
// for diagnostics and serialization by callers outside this package.
func (s *Signature) Mins() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]uint64, len(s.mins))
	copy(out, s.mins)

	return out
}
