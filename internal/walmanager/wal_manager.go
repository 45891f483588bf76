// Package walmanager provides the log-manager handle the buffer pool
// manager stores but, per spec.md §4.3/§6, never invokes: "a handle
// reserved for future use; the core does not invoke it."
//
// The interface shape is grounded on the teacher's
// storage_engine/bufferpool/structs.go WALFlushedLSNGetter, and the
// in-memory implementation's segment bookkeeping on
// storage_engine/wal_manager/wal_segment.go's rotation constants — trimmed
// to bookkeeping only, since this spec's flush operations do not gate on
// LSN coverage the way the teacher's own FlushPage/FlushAllPages do.
package walmanager

import "sync/atomic"

// SegmentSize is the rotation threshold inherited from the teacher's WAL
// segment layout; only used here to decide when the in-memory stand-in
// bumps its segment counter, since no bytes are actually written to disk
// by this reserved handle.
const SegmentSize = 16 * 1024 * 1024

// LogManager is the handle a buffer pool manager can be configured with.
// Only one method is specified because it is the only one any consumer in
// this spec would ever call, and per spec.md the core never calls it
// either — the interface exists purely so a caller can wire a real log
// manager in without the buffer pool manager depending on its concrete
// type.
type LogManager interface {
	GetFlushedLSN() uint64
}

// InMemory is a minimal LogManager standing in for a real write-ahead log.
// It tracks a monotonically advancing LSN and, purely for observability,
// how many SegmentSize-sized windows have been crossed.
type InMemory struct {
	lsn            uint64
	flushedLSN     uint64
	bytesInSegment uint64
	segmentCount   uint64
}

// NewInMemory returns a fresh in-memory log-manager stand-in.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Append advances the LSN as though n bytes of log record were written,
// rotating the segment counter at SegmentSize boundaries.
func (m *InMemory) Append(n int) uint64 {
	lsn := atomic.AddUint64(&m.lsn, 1)
	if newTotal := atomic.AddUint64(&m.bytesInSegment, uint64(n)); newTotal >= SegmentSize {
		atomic.StoreUint64(&m.bytesInSegment, 0)
		atomic.AddUint64(&m.segmentCount, 1)
	}
	return lsn
}

// Flush marks every LSN up to the current one as durable.
func (m *InMemory) Flush() {
	atomic.StoreUint64(&m.flushedLSN, atomic.LoadUint64(&m.lsn))
}

// GetFlushedLSN implements LogManager.
func (m *InMemory) GetFlushedLSN() uint64 {
	return atomic.LoadUint64(&m.flushedLSN)
}

// SegmentCount returns how many SegmentSize windows have rotated.
func (m *InMemory) SegmentCount() uint64 {
	return atomic.LoadUint64(&m.segmentCount)
}
