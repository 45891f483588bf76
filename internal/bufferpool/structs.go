package bufferpool

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"cachecore/internal/diskmanager"
	"cachecore/internal/hash"
	"cachecore/internal/page"
	"cachecore/internal/replacer"
	"cachecore/internal/walmanager"
)

// Config carries the recognized options from spec.md §6.
type Config struct {
	PoolSize       int // frame count; > 0
	PageSize       int // bytes per frame; fixed per process
	ReplacerK      int // >= 1
	BucketCapacity int // directory bucket size; >= 1
}

// DefaultConfig mirrors the teacher's own defaults where it hardcodes a
// capacity (NewBufferPool(10, ...) in the teacher's main.go) generalized
// to a full Config.
func DefaultConfig() Config {
	return Config{
		PoolSize:       10,
		PageSize:       page.Size,
		ReplacerK:      2,
		BucketCapacity: 4,
	}
}

// Manager is the buffer pool manager: it owns the frame array, the free
// list, the page-id → frame-id directory (internal/hash), the LRU-K
// replacer (internal/replacer), and a disk manager collaborator.
//
// Grounded on original_source/src/buffer/buffer_pool_manager_instance.cpp
// for operation semantics and storage_engine/bufferpool/{bufferpool,
// helpers,structs}.go for the Go shape (three-file split, a single
// sync.Mutex guarding all mutable state).
type Manager struct {
	mu sync.Mutex

	frames   []*page.Frame
	freeList []page.FrameID

	directory *hash.Table[page.PageID, page.FrameID]
	replacer  *replacer.LRUKReplacer
	disk      diskmanager.DiskManager
	dealloc   diskmanager.Deallocator
	logMgr    walmanager.LogManager // reserved; never invoked by the core

	nextPageID int64 // atomic

	pageSize int

	hits   uint64 // atomic
	misses uint64 // atomic

	log *logrus.Entry
}

// New builds a Manager with cfg.PoolSize frames backed by disk.
// dealloc may be nil if the caller has no external allocator to notify on
// delete_page.
func New(cfg Config, disk diskmanager.DiskManager, dealloc diskmanager.Deallocator) *Manager {
	if cfg.PoolSize <= 0 {
		panic("bufferpool: PoolSize must be > 0")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = page.Size
	}
	if cfg.ReplacerK < 1 {
		cfg.ReplacerK = 1
	}
	if cfg.BucketCapacity < 1 {
		cfg.BucketCapacity = 1
	}

	frames := make([]*page.Frame, cfg.PoolSize)
	freeList := make([]page.FrameID, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		frames[i] = page.NewFrame(cfg.PageSize)
		freeList[i] = page.FrameID(i)
	}

	return &Manager{
		frames:    frames,
		freeList:  freeList,
		directory: hash.New[page.PageID, page.FrameID](cfg.BucketCapacity, hash.Int64Hasher[page.PageID]()),
		replacer:  replacer.New(cfg.PoolSize, cfg.ReplacerK),
		disk:      disk,
		dealloc:   dealloc,
		pageSize:  cfg.PageSize,
		log:       logrus.WithField("component", "bufferpool"),
	}
}

// SetLogManager stores a log-manager handle for later collaborators to
// retrieve. Per spec.md §4.3/§6, the core never calls it.
func (m *Manager) SetLogManager(lm walmanager.LogManager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logMgr = lm
}

// LogManager returns the stored handle, or nil if none was set.
func (m *Manager) LogManager() walmanager.LogManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logMgr
}

func (m *Manager) allocatePageID() page.PageID {
	return page.PageID(atomic.AddInt64(&m.nextPageID, 1) - 1)
}

// Stats summarizes buffer pool occupancy, grounded on the teacher's
// BufferPoolStats.
type Stats struct {
	TotalPages  int
	PinnedPages int
	DirtyPages  int
	Capacity    int
	PageSize    int
	Hits        uint64
	Misses      uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 if there have been no
// fetches yet. The teacher's own BufferPoolStats left this as a "could be
// tracked with counters" TODO; here it is.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
