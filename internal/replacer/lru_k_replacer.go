// Package replacer implements the LRU-K victim-selection policy used by the
// buffer pool manager to choose which frame to evict.
//
// Semantics are grounded on
// original_source/src/buffer/lru_k_replacer.cpp: a frame observed fewer
// than k times has an infinite backward-k-distance and is preferred for
// eviction over any frame with a full k-entry history; ties within either
// group are broken by the oldest front-of-queue timestamp.
package replacer

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cachecore/internal/page"
)

// history is a fixed-capacity ring buffer of up to k access timestamps,
// oldest at the front — Design Notes: "the access history is naturally a
// ring buffer of size k; represent it as such rather than an unbounded
// queue."
type history struct {
	times []uint64 // ring storage of length k
	start int      // index of the oldest timestamp
	n     int      // number of timestamps held, at most k
	k     int
}

func newHistory(k int) *history {
	return &history{times: make([]uint64, k), k: k}
}

func (h *history) record(ts uint64) {
	if h.n == h.k {
		h.times[h.start] = ts
		h.start = (h.start + 1) % h.k
		return
	}
	h.times[(h.start+h.n)%h.k] = ts
	h.n++
}

func (h *history) front() (uint64, bool) {
	if h.n == 0 {
		return 0, false
	}
	return h.times[h.start], true
}

func (h *history) hasFullK() bool {
	return h.n == h.k
}

type record struct {
	hist      *history
	evictable bool
}

// LRUKReplacer tracks per-frame access history for a fixed number of
// frames and picks eviction victims among those currently evictable.
type LRUKReplacer struct {
	mu sync.Mutex

	records       map[page.FrameID]*record
	capacity      int
	k             int
	timestamp     uint64
	evictableSize int

	log *logrus.Entry
}

// New builds a replacer tracking up to capacity frames, each keeping up to
// k access timestamps.
func New(capacity, k int) *LRUKReplacer {
	if k < 1 {
		panic("replacer: k must be >= 1")
	}
	return &LRUKReplacer{
		records:  make(map[page.FrameID]*record, capacity),
		capacity: capacity,
		k:        k,
		log:      logrus.WithField("component", "replacer"),
	}
}

// RecordAccess registers an access to frameId at the current logical time.
// If frameId is untracked and the replacer is already tracking capacity
// frames, the call is silently dropped (spec.md §4.2, preserved verbatim
// from the source's behavior per spec.md §9's Open Questions).
func (r *LRUKReplacer) RecordAccess(frameID page.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, tracked := r.records[frameID]
	if !tracked {
		if len(r.records) >= r.capacity {
			return
		}
		rec = &record{hist: newHistory(r.k)}
		r.records[frameID] = rec
	}

	rec.hist.record(r.timestamp)
	r.timestamp++
}

// SetEvictable marks frameID evictable or not. No effect if untracked.
func (r *LRUKReplacer) SetEvictable(frameID page.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[frameID]
	if !ok {
		return
	}
	if rec.evictable == evictable {
		return
	}
	rec.evictable = evictable
	if evictable {
		r.evictableSize++
	} else {
		r.evictableSize--
	}
}

// Remove erases frameID's record. It is a fatal programming error to
// remove a tracked frame that is not evictable (spec.md §4.2/§7; Design
// Notes: "exception-for-control-flow... treat this as a fatal programming
// error and abort with a diagnostic").
func (r *LRUKReplacer) Remove(frameID page.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[frameID]
	if !ok {
		return
	}
	if !rec.evictable {
		err := errors.WithStack(errors.Errorf("replacer: remove of non-evictable frame %d", frameID))
		r.log.WithField("frame_id", frameID).Error(err)
		panic(err)
	}

	delete(r.records, frameID)
	r.evictableSize--
}

// K returns the configured history length.
func (r *LRUKReplacer) K() int {
	return r.k
}

// Size returns the number of frames currently evictable.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictableSize
}

// Evict chooses and erases a victim among evictable frames: frames with
// fewer than k recorded accesses (infinite backward-k-distance) are
// preferred over frames with a full history; ties within either group go
// to the frame whose oldest recorded access is furthest in the past.
// Returns false if no frame is evictable.
func (r *LRUKReplacer) Evict() (page.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		victim    page.FrameID
		victimRec *record
		found     bool
	)

	better := func(candidate page.FrameID, candRec *record) bool {
		if !found {
			return true
		}
		candShort := !candRec.hist.hasFullK()
		curShort := !victimRec.hist.hasFullK()
		if candShort != curShort {
			return candShort // a short history always beats a full one
		}
		candFront, _ := candRec.hist.front()
		curFront, _ := victimRec.hist.front()
		return candFront < curFront
	}

	for frameID, rec := range r.records {
		if !rec.evictable {
			continue
		}
		if better(frameID, rec) {
			victim, victimRec, found = frameID, rec, true
		}
	}

	if !found {
		return 0, false
	}

	delete(r.records, victim)
	r.evictableSize--
	return victim, true
}
