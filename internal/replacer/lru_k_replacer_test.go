package replacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cachecore/internal/page"
)

func TestSetEvictableAdjustsSizeExactlyByOne(t *testing.T) {
	r := New(7, 2)
	r.RecordAccess(1)
	assert.Equal(t, 0, r.Size())

	r.SetEvictable(1, true)
	assert.Equal(t, 1, r.Size())

	r.SetEvictable(1, true) // idempotent
	assert.Equal(t, 1, r.Size())

	r.SetEvictable(1, false)
	assert.Equal(t, 0, r.Size())
}

func TestEvictReturnsFrameIffSizePositive(t *testing.T) {
	r := New(7, 2)
	_, ok := r.Evict()
	assert.False(t, ok, "evict on an empty replacer must fail")

	r.RecordAccess(5)
	r.SetEvictable(5, true)
	require.Equal(t, 1, r.Size())

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, page.FrameID(5), victim)
	assert.Equal(t, 0, r.Size())

	_, ok = r.Evict()
	assert.False(t, ok)
}

// k=2, capacity 7. Record accesses 1,2,3,4,5,6 (each followed by
// set_evictable(id, true)), then 1,2,3,4,5,6 again, then access 1. All six
// frames now have full (k=2) histories, so victims are chosen purely by
// oldest front timestamp: 2 (t=1), 3, 4, 5, 6 (t=5), then 1, whose front
// moved to t=6 after its third access.
func TestLRUKVictimOrderMatchesBackwardKDistance(t *testing.T) {
	r := New(7, 2)

	for _, id := range []page.FrameID{1, 2, 3, 4, 5, 6} {
		r.RecordAccess(id)
		r.SetEvictable(id, true)
	}
	for _, id := range []page.FrameID{1, 2, 3, 4, 5, 6} {
		r.RecordAccess(id)
	}
	r.RecordAccess(1)

	require.Equal(t, 6, r.Size())

	want := []page.FrameID{2, 3, 4, 5, 6, 1}
	for _, expect := range want {
		victim, ok := r.Evict()
		require.True(t, ok)
		assert.Equal(t, expect, victim)
	}
	assert.Equal(t, 0, r.Size())
}

func TestFramesWithFewerThanKAccessesEvictFirst(t *testing.T) {
	r := New(3, 2)

	r.RecordAccess(1)
	r.RecordAccess(1)
	r.SetEvictable(1, true) // full history: 2 accesses

	r.RecordAccess(2)
	r.SetEvictable(2, true) // infinite backward-k-distance: 1 access

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, page.FrameID(2), victim, "a frame with < k accesses must be preferred as a victim")
}

func TestRecordAccessOnNewFrameWhenFullIsANoOp(t *testing.T) {
	r := New(1, 2)
	r.RecordAccess(1)
	r.SetEvictable(1, true)

	r.RecordAccess(2) // replacer full and frame 2 untracked: dropped
	assert.Equal(t, 1, r.Size())
	_, ok := r.Evict()
	require.True(t, ok)
}

func TestRemoveOfNonEvictableFrameIsFatal(t *testing.T) {
	r := New(3, 2)
	r.RecordAccess(1)

	assert.Panics(t, func() {
		r.Remove(1)
	})
}

func TestRemoveOfUntrackedFrameIsNoOp(t *testing.T) {
	r := New(3, 2)
	assert.NotPanics(t, func() {
		r.Remove(99)
	})
}

func TestRemoveOfEvictableFrameSucceeds(t *testing.T) {
	r := New(3, 2)
	r.RecordAccess(1)
	r.SetEvictable(1, true)

	assert.NotPanics(t, func() {
		r.Remove(1)
	})
	assert.Equal(t, 0, r.Size())
}
