// Package diskmanager implements the disk manager the buffer pool manager
// consumes: read_page/write_page over a fixed-size page, plus the release
// half (Deallocate) of the page-id allocator; page ids themselves come from
// the buffer pool manager's own monotonic counter. Grounded on
// storage_engine/disk_manager/main.go's ReadAt/WriteAt-based page I/O,
// trimmed from the teacher's multi-file, catalog-driven layout down to the
// single backing file this spec's external interface needs (spec.md §6).
package diskmanager

import "cachecore/internal/page"

// DiskManager is the interface the buffer pool manager consumes from
// stable storage (spec.md §6). Both calls block until complete; I/O
// failures are environmental and, per spec.md §7, propagate as fatal to
// the core.
type DiskManager interface {
	ReadPage(id page.PageID, buf []byte) error
	WritePage(id page.PageID, buf []byte) error
}
