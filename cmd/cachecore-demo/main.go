// Command cachecore-demo wires a FileDiskManager and a bufferpool.Manager
// together and drives a short new/fetch/unpin/flush sequence, printing
// stats after each step. It is not part of the core: spec.md §6 is
// explicit that no CLI surface belongs to the core packages, but a real
// repository still needs something to run — grounded on the teacher's
// small single-purpose cmd/ programs (cmd/seed, cmd/dump_sample) rather
// than its SQL REPL, which has no home left once the query layer is out
// of scope.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"cachecore/internal/bufferpool"
	"cachecore/internal/diskmanager"
	"cachecore/internal/page"
	"cachecore/internal/walmanager"
)

func main() {
	poolSize := flag.Int("pool-size", 4, "number of frames in the buffer pool")
	replacerK := flag.Int("replacer-k", 2, "LRU-K history length")
	bucketCap := flag.Int("bucket-capacity", 4, "extendible hash bucket capacity")
	dbPath := flag.String("db", "cachecore-demo.db", "backing page file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	disk, err := diskmanager.NewFileDiskManager(*dbPath, page.Size)
	if err != nil {
		logrus.WithError(err).Fatal("open disk manager")
	}
	defer disk.Close()
	defer os.Remove(*dbPath)

	mgr := bufferpool.New(bufferpool.Config{
		PoolSize:       *poolSize,
		PageSize:       page.Size,
		ReplacerK:      *replacerK,
		BucketCapacity: *bucketCap,
	}, disk, disk)

	// The log manager handle is wired in exactly as spec.md §4.3
	// describes: stored, and never called by the core.
	mgr.SetLogManager(walmanager.NewInMemory())

	ids := make([]page.PageID, 0, *poolSize)
	for i := 0; i < *poolSize; i++ {
		id, frame, ok := mgr.NewPage()
		if !ok {
			logrus.Fatal("pool exhausted while seeding pages")
		}
		copy(frame.Data(), fmt.Sprintf("page %d payload", id))
		mgr.UnpinPage(id, true)
		ids = append(ids, id)
	}
	fmt.Println("after seeding:", mgr.GetStats())

	for _, id := range ids {
		if frame, ok := mgr.FetchPage(id); ok {
			fmt.Printf("fetched page %d: %q\n", id, string(frame.Data()[:24]))
			mgr.UnpinPage(id, false)
		}
	}
	fmt.Println("after fetch pass:", mgr.GetStats())

	mgr.FlushAllPages()
	fmt.Println("after flush:", mgr.GetStats())
}
