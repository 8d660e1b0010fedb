package hashkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWidth = 128
	testSeed  = uint64(42)
)

// --- Constructor Tests ---.

func TestNew_FNVSplitmix(t *testing.T) {
	t.Parallel()

	h, err := New(FamilyFNVSplitmix, testSeed, testWidth)

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, testWidth, h.Len())
	assert.Equal(t, FamilyFNVSplitmix, h.Family())
}

func TestNew_XXHash(t *testing.T) {
	t.Parallel()

	h, err := New(FamilyXXHash, testSeed, testWidth)

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, testWidth, h.Len())
}

func TestNew_UnknownFamily(t *testing.T) {
	t.Parallel()

	h, err := New(Family(99), testSeed, testWidth)

	require.Error(t, err)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

// --- Determinism Tests ---.

func TestHashAt_Deterministic(t *testing.T) {
	t.Parallel()

	for _, family := range []Family{FamilyFNVSplitmix, FamilyXXHash} {
		h, err := New(family, testSeed, testWidth)
		require.NoError(t, err)

		a := h.HashAt(3, []byte("hello"))
		b := h.HashAt(3, []byte("hello"))
		assert.Equal(t, a, b, "family %s should be deterministic", family)
	}
}

func TestHashAt_SeedIndependence(t *testing.T) {
	t.Parallel()

	h, err := New(FamilyFNVSplitmix, testSeed, testWidth)
	require.NoError(t, err)

	seen := make(map[uint64]bool)

	for i := range 16 {
		v := h.HashAt(i, []byte("same input"))
		seen[v] = true
	}

	assert.Greater(t, len(seen), 1, "different seed indices should avalanche to distinct values")
}

func TestNew_DifferentSeedsDiffer(t *testing.T) {
	t.Parallel()

	h1, err := New(FamilyFNVSplitmix, 1, testWidth)
	require.NoError(t, err)

	h2, err := New(FamilyFNVSplitmix, 2, testWidth)
	require.NoError(t, err)

	assert.NotEqual(t, h1.HashAt(0, []byte("x")), h2.HashAt(0, []byte("x")))
}

// --- HashAll Tests ---.

func TestHashAll_MatchesHashAt(t *testing.T) {
	t.Parallel()

	h, err := New(FamilyXXHash, testSeed, testWidth)
	require.NoError(t, err)

	out := make([]uint64, testWidth)
	h.HashAll([]byte("token"), out)

	for i := range testWidth {
		assert.Equal(t, h.HashAt(i, []byte("token")), out[i])
	}
}

// --- BandHash Tests ---.

func TestBandHash_DifferentBandsDiffer(t *testing.T) {
	t.Parallel()

	h, err := New(FamilyFNVSplitmix, testSeed, testWidth)
	require.NoError(t, err)

	row := []uint64{1, 2, 3, 4}

	k0 := h.BandHash(0, row)
	k1 := h.BandHash(1, row)

	assert.NotEqual(t, k0, k1, "identical rows in different bands must not collide")
}

func TestBandHash_Deterministic(t *testing.T) {
	t.Parallel()

	h, err := New(FamilyXXHash, testSeed, testWidth)
	require.NoError(t, err)

	row := []uint64{10, 20, 30}

	assert.Equal(t, h.BandHash(2, row), h.BandHash(2, row))
}

func TestFamily_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fnv-splitmix", FamilyFNVSplitmix.String())
	assert.Equal(t, "xxhash", FamilyXXHash.String())
	assert.Equal(t, "unknown", Family(7).String())
}
