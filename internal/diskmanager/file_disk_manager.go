package diskmanager

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"

	"cachecore/internal/page"
)

// Deallocator is the external page-id allocator's release half. The
// buffer pool manager owns page-id allocation itself (a monotonic
// counter, spec.md §4.3) and only calls Deallocate on delete_page,
// deferring the bookkeeping of freed ids to this collaborator (spec.md
// §6: "the core uses a monotonic counter internally and defers
// deallocation to the external allocator").
type Deallocator interface {
	Deallocate(id page.PageID)
}

// FileDiskManager is a DiskManager backed by a single OS file, grounded on
// storage_engine/disk_manager/main.go's FileDescriptor/ReadAt/WriteAt
// handling, simplified to one file and a fixed page size since spec.md §6
// only asks for one read_page/write_page pair, not the teacher's
// multi-file catalog-driven layout.
type FileDiskManager struct {
	mu       sync.Mutex
	file     *os.File
	pageSize int

	// checksums is a peripheral, best-effort integrity aid layered on top
	// of the core disk abstraction (SPEC_FULL.md §3): after each
	// WritePage, the page's crc32 checksum is cached; ReadPage recomputes
	// and compares, logging (never failing) a mismatch. This never gates
	// the core's fatal-on-I/O-error contract from spec.md §7.
	checksums *ristretto.Cache[int64, uint32]

	deallocated map[page.PageID]bool

	log *logrus.Entry
}

// NewFileDiskManager opens (creating if necessary) path as the backing
// file for pages of size pageSize.
func NewFileDiskManager(path string, pageSize int) (*FileDiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("diskmanager: open %s: %w", path, err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[int64, uint32]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("diskmanager: checksum cache: %w", err)
	}

	return &FileDiskManager{
		file:        f,
		pageSize:    pageSize,
		checksums:   cache,
		deallocated: make(map[page.PageID]bool),
		log:         logrus.WithField("component", "diskmanager"),
	}, nil
}

// Close releases the backing file and the checksum cache.
func (dm *FileDiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.checksums.Close()
	return dm.file.Close()
}

func (dm *FileDiskManager) offset(id page.PageID) int64 {
	return int64(id) * int64(dm.pageSize)
}

// ReadPage fills buf with the stable-storage contents of id. A page never
// written (past end-of-file, or in the sparse gap before it) reads as
// zeros, matching a freshly zeroed frame.
func (dm *FileDiskManager) ReadPage(id page.PageID, buf []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(buf) != dm.pageSize {
		return fmt.Errorf("diskmanager: buffer size %d != page size %d", len(buf), dm.pageSize)
	}

	n, err := dm.file.ReadAt(buf, dm.offset(id))
	if err == io.EOF && n == 0 {
		// Treat a page that was never written as all-zero rather than a
		// fatal I/O error; io.EOF at offset 0 bytes read means exactly
		// that for a page beyond current file length.
		for i := range buf {
			buf[i] = 0
		}
	} else if err != nil && n < len(buf) {
		return fmt.Errorf("diskmanager: short read of page %d: %w", id, err)
	}

	if want, ok := dm.checksums.Get(int64(id)); ok {
		if got := crc32.ChecksumIEEE(buf); got != want {
			dm.log.WithFields(logrus.Fields{
				"page_id": id,
				"want":    want,
				"got":     got,
			}).Warn("page checksum mismatch on read")
		}
	}

	return nil
}

// WritePage persists buf as the contents of id.
func (dm *FileDiskManager) WritePage(id page.PageID, buf []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if len(buf) != dm.pageSize {
		return fmt.Errorf("diskmanager: buffer size %d != page size %d", len(buf), dm.pageSize)
	}

	if _, err := dm.file.WriteAt(buf, dm.offset(id)); err != nil {
		return fmt.Errorf("diskmanager: write page %d: %w", id, err)
	}

	dm.checksums.Set(int64(id), crc32.ChecksumIEEE(buf), 1)
	dm.checksums.Wait()

	dm.log.WithField("page_id", id).Debug("wrote page")
	return nil
}

// Deallocate records id as freed. The core defers to this rather than
// reusing ids itself (spec.md §6).
func (dm *FileDiskManager) Deallocate(id page.PageID) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.deallocated[id] = true
	dm.checksums.Del(int64(id))
}

// IsDeallocated reports whether id has been released via Deallocate.
// Exposed for tests and the demo command; not part of the DiskManager
// interface the buffer pool consumes.
func (dm *FileDiskManager) IsDeallocated(id page.PageID) bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.deallocated[id]
}
