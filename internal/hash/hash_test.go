package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedHasher returns keys' hash straight from a lookup table, so tests can
// drive the directory-growth algorithm with exact, chosen hash bit
// patterns instead of depending on xxhash's actual output.
func fixedHasher(hashes map[int]uint64) Hasher[int] {
	return func(key int) uint64 {
		h, ok := hashes[key]
		if !ok {
			panic("fixedHasher: no hash registered for key")
		}
		return h
	}
}

func TestFindInsertRemoveRoundTrip(t *testing.T) {
	table := New[int, string](4, IntHasher[int]())

	_, found := table.Find(1)
	assert.False(t, found)

	table.Insert(1, "a")
	v, found := table.Find(1)
	require.True(t, found)
	assert.Equal(t, "a", v)

	table.Insert(1, "b")
	v, found = table.Find(1)
	require.True(t, found)
	assert.Equal(t, "b", v, "overwriting insert must update the bound value")

	assert.True(t, table.Remove(1))
	_, found = table.Find(1)
	assert.False(t, found, "find after remove must return nothing")

	assert.False(t, table.Remove(1), "removing an absent key returns false")
}

func TestDirectoryInvariantsHoldAfterMixedOps(t *testing.T) {
	table := New[int, int](2, IntHasher[int]())

	for i := 0; i < 200; i++ {
		table.Insert(i, i*i)
	}
	for i := 0; i < 200; i += 3 {
		table.Remove(i)
	}
	for i := 200; i < 250; i++ {
		table.Insert(i, i)
	}

	dirLen := table.DirLen()
	assert.Equal(t, 1<<uint(table.GlobalDepth()), dirLen, "directory length must equal 2^global_depth")

	seen := map[int]bool{}
	for i := 0; i < dirLen; i++ {
		localDepth := table.LocalDepth(i)
		assert.LessOrEqual(t, localDepth, table.GlobalDepth())
		residue := i & (1<<uint(localDepth) - 1)
		if !seen[residue] {
			seen[residue] = true
		}
	}

	for i := 3; i < 200; i += 3 {
		_, found := table.Find(i)
		assert.False(t, found)
	}
	for i := 200; i < 250; i++ {
		v, found := table.Find(i)
		require.True(t, found)
		assert.Equal(t, i, v)
	}
}

// Directory growth on bucket_capacity=2, global_depth=0, inserting keys
// with hashes {0b00, 0b01, 0b10}.
func TestDirectoryGrowthSplitsOnBitZero(t *testing.T) {
	hashes := map[int]uint64{
		100: 0b00,
		101: 0b01,
		110: 0b10,
	}
	table := New[int, string](2, fixedHasher(hashes))

	table.Insert(100, "k100")
	table.Insert(101, "k101")
	assert.Equal(t, 0, table.GlobalDepth())
	assert.Equal(t, 1, table.NumBuckets())

	table.Insert(110, "k110")

	assert.Equal(t, 1, table.GlobalDepth(), "third insert into a full 2-capacity bucket must double the directory")
	assert.Equal(t, 2, table.DirLen())
	assert.Equal(t, 2, table.NumBuckets())

	// {0b00, 0b10} share residue 0 under mask 1 and stay together.
	assert.Equal(t, table.LocalDepth(0), table.LocalDepth(0))
	v, found := table.Find(100)
	require.True(t, found)
	assert.Equal(t, "k100", v)
	v, found = table.Find(110)
	require.True(t, found)
	assert.Equal(t, "k110", v)

	// {0b01} moved under residue 1.
	v, found = table.Find(101)
	require.True(t, found)
	assert.Equal(t, "k101", v)

	assert.Equal(t, 1, table.LocalDepth(0))
	assert.Equal(t, 1, table.LocalDepth(1))
}

func TestSplitCanRequireMultipleIterations(t *testing.T) {
	// All three keys collide on bit 0 (all even under mask 1); a single
	// split does not separate them, forcing local depth to keep growing
	// until the new bit finally distinguishes them.
	hashes := map[int]uint64{
		1: 0b000,
		2: 0b000,
		3: 0b100,
	}
	table := New[int, int](2, fixedHasher(hashes))

	table.Insert(1, 1)
	table.Insert(2, 2)
	table.Insert(3, 3)

	for _, k := range []int{1, 2, 3} {
		v, found := table.Find(k)
		require.True(t, found, "key %d must survive repeated splitting", k)
		assert.Equal(t, k, v)
	}
	assert.Equal(t, 1<<uint(table.GlobalDepth()), table.DirLen())
}
