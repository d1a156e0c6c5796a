package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Queue.SegmentSize != 100 {
		t.Fatalf("segment size default")
	}
	if cfg.Queue.BufferSegments != 1 {
		t.Fatalf("buffer segments default")
	}
	if cfg.Lock.DefaultTTLSeconds != 30 {
		t.Fatalf("default ttl")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "segqueue.yaml")
	data := []byte("queue:\n  segment_size: 250\n  buffer_segments: 3\nlock:\n  min_ttl_seconds: 1\n  max_ttl_seconds: 600\n  default_ttl_seconds: 45\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Queue.SegmentSize != 250 {
		t.Fatalf("expected 250, got %d", cfg.Queue.SegmentSize)
	}
	if cfg.Queue.BufferSegments != 3 {
		t.Fatalf("expected 3, got %d", cfg.Queue.BufferSegments)
	}
	if cfg.Lock.DefaultTTLSeconds != 45 {
		t.Fatalf("expected 45, got %d", cfg.Lock.DefaultTTLSeconds)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Queue.SegmentSize != 100 {
		t.Fatalf("expected default segment size for missing file")
	}
}

func TestValidateRejectsBadTTLBounds(t *testing.T) {
	cfg := Default()
	cfg.Lock.MaxTTLSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for max < min")
	}
}

func TestValidateRejectsZeroSegmentSize(t *testing.T) {
	cfg := Default()
	cfg.Queue.SegmentSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for zero segment size")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("SEGQ_QUEUE_SEGMENT_SIZE", "64")
	os.Setenv("SEGQ_LOCK_DEFAULT_TTL_SECONDS", "90")
	t.Cleanup(func() {
		os.Unsetenv("SEGQ_QUEUE_SEGMENT_SIZE")
		os.Unsetenv("SEGQ_LOCK_DEFAULT_TTL_SECONDS")
	})
	FromEnv(&cfg)
	if cfg.Queue.SegmentSize != 64 {
		t.Fatalf("env override segment size")
	}
	if cfg.Lock.DefaultTTLSeconds != 90 {
		t.Fatalf("env override ttl")
	}
}
