package cluster

import "sync"

// Interner maps caller-supplied labels to dense int32 indices and back. The
// union-find forest and bucket maps operate on these indices instead of on
// L directly, shrinking both when L is a wide type (e.g. a string).
type Interner[L comparable] struct {
	mu      sync.Mutex
	toIndex map[L]int32
	toLabel []L
}

// NewInterner creates an empty Interner.
func NewInterner[L comparable]() *Interner[L] {
	return &Interner[L]{toIndex: make(map[L]int32)}
}

// Intern returns the index for label, assigning it the next available
// index on first sight.
func (in *Interner[L]) Intern(label L) int32 {
	in.mu.Lock()
	defer in.mu.Unlock()

	if idx, ok := in.toIndex[label]; ok {
		return idx
	}

	idx := int32(len(in.toLabel))
	in.toIndex[label] = idx
	in.toLabel = append(in.toLabel, label)

	return idx
}

// Label returns the label interned at idx. Panics if idx is out of range,
// which indicates a caller bug (an index never returned by Intern).
func (in *Interner[L]) Label(idx int32) L {
	in.mu.Lock()
	defer in.mu.Unlock()

	return in.toLabel[idx]
}

// Len returns the number of distinct labels interned so far.
func (in *Interner[L]) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	return len(in.toLabel)
}
