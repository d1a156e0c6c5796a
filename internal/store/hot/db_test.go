package pebblestore

import (
	"testing"
	"time"

	"github.com/segqueue/segqueue/internal/store"
)

type testMetrics struct {
	wrote        int
	read         int
	batchCommits int
	batchBytes   int
}

func (m *testMetrics) ObserveWrite(d time.Duration, bytes int) { m.wrote += bytes }
func (m *testMetrics) ObserveRead(d time.Duration, bytes int)  { m.read += bytes }
func (m *testMetrics) ObserveBatchCommit(d time.Duration, numOps int, bytes int) {
	m.batchCommits++
	m.batchBytes += bytes
}

func newTestDB(t *testing.T) (*DB, *testMetrics) {
	t.Helper()
	dir := t.TempDir()
	metrics := &testMetrics{}
	db, err := Open(Options{
		DataDir:       dir,
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
		Metrics:       metrics,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, metrics
}

func TestCRUD(t *testing.T) {
	db, metrics := newTestDB(t)

	key := []byte("k1")
	val := []byte("v1")
	b := db.NewBatch()
	b.Set(key, val)
	if err := db.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("got %q want %q", got, val)
	}
	if metrics.read == 0 {
		t.Fatalf("expected read metrics to record bytes")
	}

	b2 := db.NewBatch()
	b2.Delete(key)
	if err := db.Commit(b2); err != nil {
		t.Fatalf("delete commit: %v", err)
	}
	if _, err := db.Get(key); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBatchCommitMetrics(t *testing.T) {
	db, metrics := newTestDB(t)

	b := db.NewBatch()
	b.Set([]byte("a"), []byte("1"))
	b.Set([]byte("b"), []byte("2"))
	if err := db.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if metrics.batchCommits != 1 {
		t.Fatalf("want 1 batch commit, got %d", metrics.batchCommits)
	}
	if metrics.batchBytes <= 0 {
		t.Fatalf("expected positive batch bytes")
	}
}

func TestScanOrdering(t *testing.T) {
	db, _ := newTestDB(t)

	b := db.NewBatch()
	b.Set([]byte("seg_0002"), []byte("b"))
	b.Set([]byte("seg_0001"), []byte("a"))
	b.Set([]byte("seg_0003"), []byte("c"))
	if err := db.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	var got []string
	err := db.Scan([]byte("seg_"), []byte("seg_\xff"), func(k, v []byte) bool {
		got = append(got, string(v))
		return true
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected scan order: %v", got)
	}
}

func TestScanEarlyStop(t *testing.T) {
	db, _ := newTestDB(t)

	b := db.NewBatch()
	b.Set([]byte("k1"), []byte("1"))
	b.Set([]byte("k2"), []byte("2"))
	b.Set([]byte("k3"), []byte("3"))
	if err := db.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	count := 0
	err := db.Scan([]byte("k1"), []byte("k4"), func(k, v []byte) bool {
		count++
		return count < 2
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected scan to stop after 2, got %d", count)
	}
}
