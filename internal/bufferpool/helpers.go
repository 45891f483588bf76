package bufferpool

import (
	"fmt"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"cachecore/internal/hash"
	"cachecore/internal/page"
	"cachecore/internal/replacer"
)

// GetStats returns a snapshot of buffer pool occupancy and hit/miss
// counters, grounded on the teacher's BufferPoolStats/GetStats.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{
		Capacity: len(m.frames),
		PageSize: m.pageSize,
		Hits:     atomic.LoadUint64(&m.hits),
		Misses:   atomic.LoadUint64(&m.misses),
	}

	for _, frame := range m.frames {
		snap := frame.Snapshot()
		if snap.PageID == page.InvalidPageID {
			continue
		}
		stats.TotalPages++
		if snap.PinCount > 0 {
			stats.PinnedPages++
		}
		if snap.Dirty {
			stats.DirtyPages++
		}
	}

	return stats
}

// String renders Stats with humanized byte counts.
func (s Stats) String() string {
	return fmt.Sprintf(
		"pages=%d/%d pinned=%d dirty=%d hit_rate=%.2f%% pool_bytes=%s",
		s.TotalPages, s.Capacity, s.PinnedPages, s.DirtyPages, s.HitRate()*100,
		humanize.Bytes(uint64(s.Capacity*s.PageSize)),
	)
}

// Size returns the number of currently resident pages.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, frame := range m.frames {
		if frame.PageID() != page.InvalidPageID {
			n++
		}
	}
	return n
}

// Capacity returns the pool's fixed frame count.
func (m *Manager) Capacity() int {
	return len(m.frames)
}

// Reset flushes every dirty resident page, then clears the pool: every
// frame becomes unused, the free list is rebuilt in full, the directory
// and replacer are rebuilt empty. Not one of spec.md's five lifecycle
// operations; a maintenance hook grounded on the teacher's own Reset.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, frame := range m.frames {
		pageID := frame.PageID()
		if pageID == page.InvalidPageID {
			continue
		}
		if frame.IsDirty() {
			if err := m.disk.WritePage(pageID, frame.Data()); err != nil {
				m.log.WithError(err).WithField("page_id", pageID).Error("flush during reset failed")
				panic(err)
			}
		}
		frame.Reset(page.InvalidPageID)
	}

	m.freeList = m.freeList[:0]
	for i := range m.frames {
		m.freeList = append(m.freeList, page.FrameID(i))
	}

	bucketCapacity := m.directory.BucketCapacity()
	m.directory = hash.New[page.PageID, page.FrameID](bucketCapacity, hash.Int64Hasher[page.PageID]())
	m.replacer = replacer.New(len(m.frames), m.replacer.K())
	atomic.StoreUint64(&m.hits, 0)
	atomic.StoreUint64(&m.misses, 0)
}
