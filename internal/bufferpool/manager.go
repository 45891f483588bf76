// Package bufferpool implements the buffer pool manager: the component
// that composes the extendible hash directory (internal/hash), the LRU-K
// replacer (internal/replacer) and a disk manager collaborator
// (internal/diskmanager) into the five page-lifecycle operations spec.md
// §4.3 specifies.
package bufferpool

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"cachecore/internal/page"
)

// acquireFrame obtains a free frame: the free list is always preferred
// over eviction (spec.md §4.3, "Frame acquisition order" — this avoids
// unnecessary replacer churn during warm-up). If it must evict and the
// victim is dirty, the victim is written back before its directory
// binding is removed (spec.md §3 global invariant). Returns false if
// neither source yields a frame. Caller must hold m.mu.
func (m *Manager) acquireFrame() (page.FrameID, bool) {
	if n := len(m.freeList); n > 0 {
		frameID := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		return frameID, true
	}

	victim, ok := m.replacer.Evict()
	if !ok {
		return 0, false
	}

	frame := m.frames[victim]
	snap := frame.Snapshot()
	if snap.Dirty {
		if err := m.disk.WritePage(snap.PageID, frame.Data()); err != nil {
			m.log.WithError(err).WithField("page_id", snap.PageID).Error("write-back of eviction victim failed")
			panic(err)
		}
		frame.MarkClean()
		m.log.WithFields(logrus.Fields{"page_id": snap.PageID, "frame_id": victim}).Debug("evicted dirty page")
	} else {
		m.log.WithFields(logrus.Fields{"page_id": snap.PageID, "frame_id": victim}).Debug("evicted clean page")
	}

	if snap.PageID != page.InvalidPageID {
		m.directory.Remove(snap.PageID)
	}
	return victim, true
}

// NewPage allocates a fresh page id, binds it to an acquired frame, pins
// it, and returns it. Returns (InvalidPageID, nil, false) if the pool is
// exhausted (spec.md §4.3).
func (m *Manager) NewPage() (page.PageID, *page.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, ok := m.acquireFrame()
	if !ok {
		return page.InvalidPageID, nil, false
	}

	pageID := m.allocatePageID()
	frame := m.frames[frameID]
	frame.Reset(pageID)
	frame.Pin()

	m.directory.Insert(pageID, frameID)
	m.replacer.RecordAccess(frameID)
	m.replacer.SetEvictable(frameID, false)

	m.log.WithFields(logrus.Fields{"page_id": pageID, "frame_id": frameID}).Debug("new page")
	return pageID, frame, true
}

// FetchPage returns the frame holding pageID, pinning it. On a directory
// hit the resident frame is pinned directly; on a miss a frame is
// acquired, the page is read from disk into it, and the directory is
// updated. Returns (nil, false) if the pool is exhausted on a miss.
func (m *Manager) FetchPage(pageID page.PageID) (*page.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frameID, found := m.directory.Find(pageID); found {
		frame := m.frames[frameID]
		frame.Pin()
		m.replacer.RecordAccess(frameID)
		m.replacer.SetEvictable(frameID, false)
		atomic.AddUint64(&m.hits, 1)
		m.log.WithFields(logrus.Fields{"page_id": pageID, "frame_id": frameID}).Debug("fetch hit")
		return frame, true
	}

	atomic.AddUint64(&m.misses, 1)

	frameID, ok := m.acquireFrame()
	if !ok {
		return nil, false
	}

	frame := m.frames[frameID]
	frame.Reset(pageID)
	if err := m.disk.ReadPage(pageID, frame.Data()); err != nil {
		m.log.WithError(err).WithField("page_id", pageID).Error("disk read failed")
		panic(err)
	}
	frame.Pin()

	m.directory.Insert(pageID, frameID)
	m.replacer.RecordAccess(frameID)
	m.replacer.SetEvictable(frameID, false)

	m.log.WithFields(logrus.Fields{"page_id": pageID, "frame_id": frameID}).Debug("fetch miss")
	return frame, true
}

// UnpinPage decrements pageID's pin count and OR-merges dirty into the
// frame's dirty bit. Returns false if pageID is not resident or its pin
// count is already zero.
func (m *Manager) UnpinPage(pageID page.PageID, dirty bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	frameID, found := m.directory.Find(pageID)
	if !found {
		return false
	}

	frame := m.frames[frameID]
	newCount, accepted := frame.Unpin(dirty)
	if !accepted {
		return false
	}
	if newCount == 0 {
		m.replacer.SetEvictable(frameID, true)
	}
	return true
}

// flushLocked writes pageID's frame to disk and clears its dirty bit.
// Caller must hold m.mu.
func (m *Manager) flushLocked(pageID page.PageID) bool {
	frameID, found := m.directory.Find(pageID)
	if !found {
		return false
	}

	frame := m.frames[frameID]
	if err := m.disk.WritePage(pageID, frame.Data()); err != nil {
		m.log.WithError(err).WithField("page_id", pageID).Error("flush failed")
		panic(err)
	}
	frame.MarkClean()
	return true
}

// FlushPage writes pageID's frame to disk regardless of pin count and
// clears its own dirty bit. Returns false if pageID is not resident.
func (m *Manager) FlushPage(pageID page.PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushLocked(pageID)
}

// FlushAllPages flushes every resident frame.
func (m *Manager) FlushAllPages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, frame := range m.frames {
		pageID := frame.PageID()
		if pageID == page.InvalidPageID {
			continue
		}
		m.flushLocked(pageID)
	}
}

// DeletePage releases pageID at the external allocator regardless of
// residency, then, if resident and unpinned, writes it back if dirty and
// returns its frame to the free list. Returns false only if pageID is
// resident and pinned.
func (m *Manager) DeletePage(pageID page.PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dealloc != nil {
		m.dealloc.Deallocate(pageID)
	}

	frameID, found := m.directory.Find(pageID)
	if !found {
		return true
	}

	frame := m.frames[frameID]
	snap := frame.Snapshot()
	if snap.PinCount > 0 {
		return false
	}

	if snap.Dirty {
		if err := m.disk.WritePage(pageID, frame.Data()); err != nil {
			m.log.WithError(err).WithField("page_id", pageID).Error("write-back on delete failed")
			panic(err)
		}
		frame.MarkClean()
	}

	m.replacer.Remove(frameID)
	m.directory.Remove(pageID)
	frame.Reset(page.InvalidPageID)
	m.freeList = append(m.freeList, frameID)

	m.log.WithFields(logrus.Fields{"page_id": pageID, "frame_id": frameID}).Debug("deleted page")
	return true
}
