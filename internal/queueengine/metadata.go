package queueengine

import "encoding/json"

// metadataKey is the hot-tier key for the single metadata document (§4.1).
const metadataKey = "metadata"

// schemaVersion lets a future loader distinguish document shapes without
// guessing from field presence (§9, forward-compatibility note).
const schemaVersion = 1

// Config carries the per-activation defaults read once at activation
// (§4.2, §9 Open Questions: read-once, never retroactive).
type Config struct {
	SegmentSize    int `json:"segment_size"`
	BufferSegments int `json:"buffer_segments"`

	// MinTTLSeconds, MaxTTLSeconds, and DefaultTTLSeconds bound the
	// PopWithAck TTL clamp described in §4.5. They come from the host's
	// configured internal/config.LockConfig rather than hardcoded
	// constants. Like the fields above, they are stored in the document
	// when it is first created; a later activation of the same actor
	// uses the stored values, not the current configuration.
	MinTTLSeconds     int `json:"min_ttl_seconds"`
	MaxTTLSeconds     int `json:"max_ttl_seconds"`
	DefaultTTLSeconds int `json:"default_ttl_seconds"`
}

// QueueMeta is the per-priority pointer record described in §3.
type QueueMeta struct {
	HeadSegment          int  `json:"head_segment"`
	TailSegment          int  `json:"tail_segment"`
	Count                int  `json:"count"`
	HeadOffloadedSegment *int `json:"head_offloaded_segment,omitempty"`
	TailOffloadedSegment *int `json:"tail_offloaded_segment,omitempty"`
}

// hasOffloaded reports whether any segment of this priority currently
// resides in the cold tier (invariant 6).
func (q *QueueMeta) hasOffloaded() bool {
	return q.HeadOffloadedSegment != nil && q.TailOffloadedSegment != nil
}

// LockItem pairs a popped item with the priority it came from, so that
// expiry recovery (§4.5) can restore it to the correct queue.
type LockItem struct {
	Item     []byte `json:"item"`
	Priority int    `json:"priority"`
}

// ActiveLock is the singleton lock structure described in §4.2 and §4.5.
type ActiveLock struct {
	LockID    string     `json:"lock_id"`
	CreatedAt int64      `json:"created_at"` // unix seconds
	ExpiresAt int64      `json:"expires_at"` // unix seconds
	Items     []LockItem `json:"items"`
}

// Metadata is the single logical document described in §4.2.
type Metadata struct {
	Version    int                `json:"version"`
	Config     Config             `json:"config"`
	Queues     map[int]*QueueMeta `json:"queues"`
	ActiveLock *ActiveLock        `json:"active_lock,omitempty"`
}

// defaultMetadata builds the document an activation initializes when
// none is found in the hot tier (§4.2).
func defaultMetadata(cfg Config) *Metadata {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = 100
	}
	if cfg.BufferSegments <= 0 {
		cfg.BufferSegments = 1
	}
	if cfg.MinTTLSeconds <= 0 {
		cfg.MinTTLSeconds = 1
	}
	if cfg.MaxTTLSeconds <= 0 {
		cfg.MaxTTLSeconds = 300
	}
	if cfg.DefaultTTLSeconds <= 0 {
		cfg.DefaultTTLSeconds = 30
	}
	return &Metadata{
		Version: schemaVersion,
		Config:  cfg,
		Queues:  make(map[int]*QueueMeta),
	}
}

// encodeMetadata serializes the document for the hot-tier commit. JSON
// is chosen over the lower-level framed binary format used for segments
// (segment.go) because the document is small, read/written as a whole,
// and benefits from being schema-tolerant across versions (§9's
// decode-once-at-load guidance).
func encodeMetadata(m *Metadata) ([]byte, error) {
	return json.Marshal(m)
}

func decodeMetadata(b []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m.Queues == nil {
		m.Queues = make(map[int]*QueueMeta)
	}
	return &m, nil
}

// cloneDoc returns a deep copy of the whole document. Every operation
// mutates a clone and only swaps it into the engine's cached pointer
// after a successful commit, so a failure between suspensions (§5)
// leaves the last committed state intact for replay.
func (m *Metadata) cloneDoc() *Metadata {
	c := &Metadata{
		Version: m.Version,
		Config:  m.Config,
		Queues:  make(map[int]*QueueMeta, len(m.Queues)),
	}
	for p, q := range m.Queues {
		c.Queues[p] = q.clone()
	}
	if m.ActiveLock != nil {
		lock := *m.ActiveLock
		lock.Items = append([]LockItem{}, m.ActiveLock.Items...)
		c.ActiveLock = &lock
	}
	return c
}

// clone returns a deep copy sufficient for safely mutating a queue's
// pointer record without aliasing a value still referenced elsewhere.
func (q *QueueMeta) clone() *QueueMeta {
	if q == nil {
		return nil
	}
	c := *q
	if q.HeadOffloadedSegment != nil {
		v := *q.HeadOffloadedSegment
		c.HeadOffloadedSegment = &v
	}
	if q.TailOffloadedSegment != nil {
		v := *q.TailOffloadedSegment
		c.TailOffloadedSegment = &v
	}
	return &c
}
