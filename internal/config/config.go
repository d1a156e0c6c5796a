// Package config loads and validates segqueue's runtime configuration: the
// per-activation queue defaults (§4.2), lock TTL bounds (§4.5), and the data
// directories for the hot and cold storage tiers (§4.1). Fields are only
// ever added, never renamed or removed, so that old config files keep
// loading after an upgrade.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a segqueue process.
type Config struct {
	Node    NodeConfig    `yaml:"node"`
	Queue   QueueConfig   `yaml:"queue"`
	Lock    LockConfig    `yaml:"lock"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Ingress IngressConfig `yaml:"ingress"`
}

// NodeConfig identifies this process and where it keeps local state.
type NodeConfig struct {
	// ID is a ULID. Use "auto" to generate and persist one on first start.
	ID      string `yaml:"id"`
	DataDir string `yaml:"data_dir"`
}

// QueueConfig carries the per-activation defaults described in §4.2. These
// are read once when an actor activates and are not retroactively applied
// to actors that activated under a previous config (§9, Open Questions).
type QueueConfig struct {
	SegmentSize    int `yaml:"segment_size"`
	BufferSegments int `yaml:"buffer_segments"`
}

// LockConfig bounds the PopWithAck TTL clamp described in §4.5.
type LockConfig struct {
	MinTTLSeconds     int `yaml:"min_ttl_seconds"`
	MaxTTLSeconds     int `yaml:"max_ttl_seconds"`
	DefaultTTLSeconds int `yaml:"default_ttl_seconds"`
}

// StorageConfig locates the hot (actor-local) and cold (shared) tiers.
type StorageConfig struct {
	HotDataDir  string `yaml:"hot_data_dir"`
	ColdDataDir string `yaml:"cold_data_dir"`
	// ColdUnavailable, when true, makes the offload manager act as if the
	// cold tier can never be reached, which exercises the hot-only
	// degradation path described in §4.4.
	ColdUnavailable bool `yaml:"cold_unavailable"`
}

// LoggingConfig controls the structured logger built at process start.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// IngressConfig bounds the rate at which the actor host accepts Push
// calls across all actors, protecting the hot tier from an unbounded
// burst of activations. Zero PushPerSecond disables limiting.
type IngressConfig struct {
	PushPerSecond float64 `yaml:"push_per_second"`
	PushBurst     int     `yaml:"push_burst"`
}

// Default returns built-in defaults matching §4.2 and §4.5.
func Default() Config {
	return Config{
		Node: NodeConfig{
			ID:      "auto",
			DataDir: "./data",
		},
		Queue: QueueConfig{
			SegmentSize:    100,
			BufferSegments: 1,
		},
		Lock: LockConfig{
			MinTTLSeconds:     1,
			MaxTTLSeconds:     300,
			DefaultTTLSeconds: 30,
		},
		Storage: StorageConfig{
			HotDataDir:  "./data/hot",
			ColdDataDir: "./data/cold",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads YAML configuration from path, overlaying it onto Default().
// An empty or missing path returns the defaults, matching the teacher's
// "no config file needed" convention.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configuration that would violate the invariants in §3
// and §4.5 before it ever reaches an activation.
func (c Config) Validate() error {
	if c.Queue.SegmentSize <= 0 {
		return errors.New("config: queue.segment_size must be > 0")
	}
	if c.Queue.BufferSegments < 1 {
		return errors.New("config: queue.buffer_segments must be >= 1")
	}
	if c.Lock.MinTTLSeconds <= 0 {
		return errors.New("config: lock.min_ttl_seconds must be > 0")
	}
	if c.Lock.MaxTTLSeconds < c.Lock.MinTTLSeconds {
		return errors.New("config: lock.max_ttl_seconds must be >= lock.min_ttl_seconds")
	}
	if c.Lock.DefaultTTLSeconds < c.Lock.MinTTLSeconds || c.Lock.DefaultTTLSeconds > c.Lock.MaxTTLSeconds {
		return errors.New("config: lock.default_ttl_seconds must be within [min_ttl_seconds, max_ttl_seconds]")
	}
	return nil
}
