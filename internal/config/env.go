package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SEGQ_* environment variables onto cfg, applied after
// Load so that deployment environments can override a checked-in file
// without editing it.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SEGQ_NODE_ID"); v != "" {
		cfg.Node.ID = v
	}
	if v := os.Getenv("SEGQ_NODE_DATA_DIR"); v != "" {
		cfg.Node.DataDir = v
	}
	if v := os.Getenv("SEGQ_QUEUE_SEGMENT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.SegmentSize = n
		}
	}
	if v := os.Getenv("SEGQ_QUEUE_BUFFER_SEGMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Queue.BufferSegments = n
		}
	}
	if v := os.Getenv("SEGQ_LOCK_DEFAULT_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Lock.DefaultTTLSeconds = n
		}
	}
	if v := os.Getenv("SEGQ_STORAGE_HOT_DATA_DIR"); v != "" {
		cfg.Storage.HotDataDir = v
	}
	if v := os.Getenv("SEGQ_STORAGE_COLD_DATA_DIR"); v != "" {
		cfg.Storage.ColdDataDir = v
	}
	if v := os.Getenv("SEGQ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SEGQ_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
