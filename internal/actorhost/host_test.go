package actorhost

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/segqueue/segqueue/internal/config"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.HotDataDir = filepath.Join(t.TempDir(), "hot")
	cfg.Storage.ColdDataDir = filepath.Join(t.TempDir(), "cold")
	h, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("open host: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestPushPopRoundTrip(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	if err := h.Push(ctx, "orders", []byte("first"), 0); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, err := h.Pop(ctx, "orders")
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if len(got) != 1 || string(got[0]) != "first" {
		t.Fatalf("unexpected pop result: %v", got)
	}
}

func TestDistinctActorsAreIndependent(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	if err := h.Push(ctx, "a", []byte("for-a"), 0); err != nil {
		t.Fatalf("push a: %v", err)
	}
	if err := h.Push(ctx, "b", []byte("for-b"), 0); err != nil {
		t.Fatalf("push b: %v", err)
	}

	gotB, err := h.Pop(ctx, "b")
	if err != nil {
		t.Fatalf("pop b: %v", err)
	}
	if string(gotB[0]) != "for-b" {
		t.Fatalf("expected b's item, got %v", gotB)
	}

	gotA, err := h.Pop(ctx, "a")
	if err != nil {
		t.Fatalf("pop a: %v", err)
	}
	if string(gotA[0]) != "for-a" {
		t.Fatalf("expected a's item, got %v", gotA)
	}
}

func TestPopWithAckAndAcknowledgeThroughHost(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	if err := h.Push(ctx, "tasks", []byte("job-1"), 0); err != nil {
		t.Fatalf("push: %v", err)
	}
	ttl := 30
	res, err := h.PopWithAck(ctx, "tasks", &ttl)
	if err != nil {
		t.Fatalf("popwithack: %v", err)
	}
	if !res.Locked || res.LockID == "" {
		t.Fatalf("expected a lock, got %+v", res)
	}

	ackRes, err := h.Acknowledge(ctx, "tasks", res.LockID)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if ackRes.ItemsAcknowledged != 1 {
		t.Fatalf("expected 1 acknowledged item, got %d", ackRes.ItemsAcknowledged)
	}
}

func TestStatsThroughHost(t *testing.T) {
	h := newTestHost(t)
	ctx := context.Background()

	if err := h.Push(ctx, "metrics", []byte("x"), 2); err != nil {
		t.Fatalf("push: %v", err)
	}
	stats, err := h.Stats(ctx, "metrics")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Priority != 2 || stats[0].Count != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

// A configured lock.default_ttl_seconds must actually take effect on a
// real PopWithAck call through the host, not just round-trip through
// config loading.
func TestPopWithAckHonorsConfiguredDefaultTTL(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.HotDataDir = filepath.Join(t.TempDir(), "hot")
	cfg.Storage.ColdDataDir = filepath.Join(t.TempDir(), "cold")
	cfg.Lock.DefaultTTLSeconds = 90

	h, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("open host: %v", err)
	}
	defer h.Close()

	ctx := context.Background()
	if err := h.Push(ctx, "tasks", []byte("job"), 0); err != nil {
		t.Fatalf("push: %v", err)
	}

	before := time.Now()
	res, err := h.PopWithAck(ctx, "tasks", nil)
	if err != nil {
		t.Fatalf("popwithack: %v", err)
	}
	if !res.Locked {
		t.Fatalf("expected a lock")
	}
	got := res.ExpiresAt.Sub(before).Round(time.Second)
	if got != 90*time.Second {
		t.Fatalf("expected configured 90s default ttl to apply, got expires_at %v after (%v)", res.ExpiresAt, got)
	}
}

func TestActivationPersistsAcrossReopen(t *testing.T) {
	cfg := config.Default()
	hotDir := filepath.Join(t.TempDir(), "hot")
	coldDir := filepath.Join(t.TempDir(), "cold")
	cfg.Storage.HotDataDir = hotDir
	cfg.Storage.ColdDataDir = coldDir

	h1, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := h1.Push(ctx, "durable", []byte("payload"), 0); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := h1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	h2, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h2.Close()

	got, err := h2.Pop(ctx, "durable")
	if err != nil {
		t.Fatalf("pop after reopen: %v", err)
	}
	if len(got) != 1 || string(got[0]) != "payload" {
		t.Fatalf("expected item to survive reopen, got %v", got)
	}
}
