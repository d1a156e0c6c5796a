// Package queueengine implements the segmented, priority-ordered FIFO
// queue described in SPEC_FULL.md §3-§5: the metadata model, the
// segmented push/pop algorithm, the hot/cold offload policy, and the
// lock/ack controller, all for a single actor instance. Callers
// serialize access per instance (SPEC_FULL.md §4.7, §5); nothing in
// this package takes an internal lock.
package queueengine

import (
	"crypto/rand"
	"sort"
	"time"

	"github.com/segqueue/segqueue/internal/store"
	"github.com/segqueue/segqueue/pkg/log"
)

// lockIDAlphabet is URL-safe. §4.5 only asks for URL-safety and roughly
// 64 bits of entropy, which 11 characters from this 64-symbol alphabet
// comfortably exceeds.
const lockIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Engine owns one actor's queue state: its hot store, a reference to
// the shared cold store, and the in-memory metadata document loaded at
// activation (§4.2).
type Engine struct {
	actorID string
	hot     store.Hot
	cold    store.Cold
	// coldDisabled makes the offload manager behave as if the cold tier
	// can never be reached, exercising the hot-only degradation path
	// (§4.4) without needing to actually break a store.
	coldDisabled bool

	log  log.Logger
	meta *Metadata

	now func() time.Time
}

// Options configures a new Engine.
type Options struct {
	ActorID      string
	Hot          store.Hot
	Cold         store.Cold
	ColdDisabled bool
	Config       Config
	Logger       log.Logger
}

// Activate opens (or initializes) the metadata document for one actor
// (§4.2's activation rule) and returns a ready Engine.
func Activate(opts Options) (*Engine, error) {
	e := &Engine{
		actorID:      opts.ActorID,
		hot:          opts.Hot,
		cold:         opts.Cold,
		coldDisabled: opts.ColdDisabled,
		log:          opts.Logger,
		now:          time.Now,
	}
	if e.log == nil {
		e.log = log.NewLogger()
	}
	e.log = e.log.WithComponent("queueengine").WithField("actor_id", e.actorID)

	raw, err := e.hot.Get([]byte(metadataKey))
	if err != nil {
		if err == store.ErrNotFound {
			e.meta = defaultMetadata(opts.Config)
			return e, nil
		}
		return nil, wrapErr(CodeInternal, "load metadata", err)
	}
	meta, err := decodeMetadata(raw)
	if err != nil {
		return nil, wrapErr(CodeInternal, "decode metadata", err)
	}
	e.meta = meta
	return e, nil
}

func (e *Engine) loadSegment(priority, seg int) (*Segment, error) {
	raw, err := e.hot.Get(segmentKey(priority, seg))
	if err != nil {
		if err == store.ErrNotFound {
			return &Segment{}, nil
		}
		return nil, err
	}
	return decodeSegment(raw)
}

// Push appends item to priority's tail, allocating a new segment when
// the current tail is full (§4.3 Push).
func (e *Engine) Push(item []byte, priority int) error {
	if item == nil || priority < 0 {
		return ErrInvalidArgument
	}

	meta := e.meta.cloneDoc()
	q, ok := meta.Queues[priority]
	if !ok {
		q = &QueueMeta{}
		meta.Queues[priority] = q
	}

	seg, err := e.loadSegment(priority, q.TailSegment)
	if err != nil {
		return wrapErr(CodeInternal, "load tail segment", err)
	}

	segSize := meta.Config.SegmentSize
	if seg.Len() >= segSize {
		q.TailSegment++
		seg = &Segment{}
	}
	seg.Items = append(seg.Items, item)
	q.Count++

	batch := e.hot.NewBatch()
	batch.Set(segmentKey(priority, q.TailSegment), encodeSegment(seg))
	metaBytes, err := encodeMetadata(meta)
	if err != nil {
		return wrapErr(CodeInternal, "encode metadata", err)
	}
	batch.Set([]byte(metadataKey), metaBytes)
	if err := e.hot.Commit(batch); err != nil {
		return wrapErr(CodeInternal, "commit push", err)
	}
	e.meta = meta

	e.runOffloadScan(priority)
	return nil
}

// internalPopResult is what one successful internal pop produces,
// before the public Pop/PopWithAck wrappers decide what to expose.
type internalPopResult struct {
	item     []byte
	priority int
	ok       bool
}

// internalPop implements the algorithm in §4.3 Pop, steps 3-5, shared
// verbatim by Pop and PopWithAck (§4.3's note on internal pop).
func (e *Engine) internalPop() (internalPopResult, error) {
	meta := e.meta.cloneDoc()
	if len(meta.Queues) == 0 {
		return internalPopResult{}, nil
	}

	priorities := make([]int, 0, len(meta.Queues))
	for p := range meta.Queues {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	for _, p := range priorities {
		if err := e.runLoadScan(p); err != nil {
			return internalPopResult{}, err
		}
		meta = e.meta.cloneDoc()
		q := meta.Queues[p]

		if q == nil || q.Count == 0 {
			continue
		}

		head, err := e.loadSegment(p, q.HeadSegment)
		if err != nil {
			return internalPopResult{}, wrapErr(CodeInternal, "load head segment", err)
		}

		if head.Len() == 0 {
			// Desync: count says items exist but the head segment is
			// empty. Self-heal by dropping the priority record (§7).
			e.log.Warn("dropping desynced priority record", log.Int("priority", p), log.Int("count", q.Count))
			delete(meta.Queues, p)
			if err := e.commitMetaOnly(meta); err != nil {
				return internalPopResult{}, err
			}
			e.meta = meta
			continue
		}

		item, _ := head.PopFront()
		q.Count--

		batch := e.hot.NewBatch()
		if head.Len() == 0 {
			batch.Delete(segmentKey(p, q.HeadSegment))
			if q.HeadSegment < q.TailSegment {
				q.HeadSegment++
			} else {
				delete(meta.Queues, p)
			}
		} else {
			batch.Set(segmentKey(p, q.HeadSegment), encodeSegment(head))
		}
		metaBytes, err := encodeMetadata(meta)
		if err != nil {
			return internalPopResult{}, wrapErr(CodeInternal, "encode metadata", err)
		}
		batch.Set([]byte(metadataKey), metaBytes)
		if err := e.hot.Commit(batch); err != nil {
			return internalPopResult{}, wrapErr(CodeInternal, "commit pop", err)
		}
		e.meta = meta

		return internalPopResult{item: item, priority: p, ok: true}, nil
	}

	e.meta = meta
	return internalPopResult{}, nil
}

func (e *Engine) commitMetaOnly(meta *Metadata) error {
	metaBytes, err := encodeMetadata(meta)
	if err != nil {
		return wrapErr(CodeInternal, "encode metadata", err)
	}
	batch := e.hot.NewBatch()
	batch.Set([]byte(metadataKey), metaBytes)
	if err := e.hot.Commit(batch); err != nil {
		return wrapErr(CodeInternal, "commit metadata", err)
	}
	return nil
}

// Pop removes and returns the single next item across all priorities,
// or an empty slice if the queue is empty or a non-expired lock is
// outstanding (§4.3 Pop).
func (e *Engine) Pop() ([][]byte, error) {
	if e.meta.ActiveLock != nil {
		if !e.lockExpired(e.meta.ActiveLock) {
			return nil, nil
		}
		if err := e.recoverExpiredLock(); err != nil {
			return nil, err
		}
	}

	res, err := e.internalPop()
	if err != nil {
		return nil, err
	}
	if !res.ok {
		return nil, nil
	}
	return [][]byte{res.item}, nil
}

// PopWithAckResult is the typed response for PopWithAck (§6).
type PopWithAckResult struct {
	Locked    bool
	Count     int
	Items     [][]byte
	LockID    string
	ExpiresAt time.Time
}

// PopWithAck pops at most one item under a fresh lock that must later
// be acknowledged (§4.3 PopWithAck). ttlSeconds is nil when the caller
// omitted ttl_seconds entirely, in which case the configured default
// applies; a non-nil value (including 0) is clamped into the configured
// [min, max] range instead (§4.5).
func (e *Engine) PopWithAck(ttlSeconds *int) (PopWithAckResult, error) {
	ttl := e.clampTTL(ttlSeconds)

	if e.meta.ActiveLock != nil {
		if !e.lockExpired(e.meta.ActiveLock) {
			return PopWithAckResult{
				Locked:    true,
				Count:     0,
				ExpiresAt: time.Unix(e.meta.ActiveLock.ExpiresAt, 0),
			}, nil
		}
		if err := e.recoverExpiredLock(); err != nil {
			return PopWithAckResult{}, err
		}
	}

	res, err := e.internalPop()
	if err != nil {
		return PopWithAckResult{}, err
	}
	if !res.ok {
		return PopWithAckResult{Locked: false, Count: 0}, nil
	}

	lockID, err := newLockID()
	if err != nil {
		return PopWithAckResult{}, wrapErr(CodeInternal, "generate lock id", err)
	}

	meta := e.meta.cloneDoc()
	now := e.now()
	meta.ActiveLock = &ActiveLock{
		LockID:    lockID,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Duration(ttl) * time.Second).Unix(),
		Items:     []LockItem{{Item: res.item, Priority: res.priority}},
	}
	if err := e.commitMetaOnly(meta); err != nil {
		return PopWithAckResult{}, err
	}
	e.meta = meta

	e.log.Info("lock created", log.Str("lock_id", lockID), log.Int("ttl_seconds", ttl))

	return PopWithAckResult{
		Locked:    true,
		Count:     1,
		Items:     [][]byte{res.item},
		LockID:    lockID,
		ExpiresAt: time.Unix(meta.ActiveLock.ExpiresAt, 0),
	}, nil
}

// AcknowledgeResult is the typed response for Acknowledge (§6).
type AcknowledgeResult struct {
	ItemsAcknowledged int
}

// Acknowledge clears the active lock if lockID matches it and it has
// not expired, following the fixed check ordering in §7.
func (e *Engine) Acknowledge(lockID string) (AcknowledgeResult, error) {
	if lockID == "" {
		return AcknowledgeResult{}, ErrInvalidLockID
	}
	lock := e.meta.ActiveLock
	if lock == nil {
		return AcknowledgeResult{}, ErrLockNotFound
	}
	if lockID != lock.LockID {
		return AcknowledgeResult{}, ErrInvalidLockID
	}
	if e.lockExpired(lock) {
		if err := e.recoverExpiredLock(); err != nil {
			return AcknowledgeResult{}, err
		}
		return AcknowledgeResult{}, ErrLockExpired
	}

	n := len(lock.Items)
	meta := e.meta.cloneDoc()
	meta.ActiveLock = nil
	if err := e.commitMetaOnly(meta); err != nil {
		return AcknowledgeResult{}, err
	}
	e.meta = meta

	return AcknowledgeResult{ItemsAcknowledged: n}, nil
}

func (e *Engine) lockExpired(lock *ActiveLock) bool {
	return e.now().Unix() >= lock.ExpiresAt
}

// ExpireLockNow forces the expiry-recovery path unconditionally,
// regardless of wall-clock time. SPEC_FULL.md §9: this is an
// operator/test maintenance path, not one of the four public
// operations, and it is not reachable from Push/Pop/PopWithAck/Ack.
func (e *Engine) ExpireLockNow() error {
	if e.meta.ActiveLock == nil {
		return nil
	}
	return e.recoverExpiredLock()
}

// recoverExpiredLock implements §4.5's expiry recovery algorithm:
// group held items by priority preserving order, prepend each group to
// its priority's head segment, recreate destroyed priority records,
// then clear the lock.
func (e *Engine) recoverExpiredLock() error {
	lock := e.meta.ActiveLock
	if lock == nil {
		return nil
	}

	groups := make(map[int][][]byte)
	order := make([]int, 0)
	for _, it := range lock.Items {
		if _, seen := groups[it.Priority]; !seen {
			order = append(order, it.Priority)
		}
		groups[it.Priority] = append(groups[it.Priority], it.Item)
	}

	meta := e.meta.cloneDoc()
	batch := e.hot.NewBatch()

	for _, p := range order {
		items := groups[p]
		q, ok := meta.Queues[p]
		if !ok {
			q = &QueueMeta{HeadSegment: 0, TailSegment: 0}
			meta.Queues[p] = q
		}
		head, err := e.loadSegment(p, q.HeadSegment)
		if err != nil {
			return wrapErr(CodeInternal, "load head segment for recovery", err)
		}
		head.PrependAll(items)
		q.Count += len(items)
		batch.Set(segmentKey(p, q.HeadSegment), encodeSegment(head))
	}

	meta.ActiveLock = nil
	metaBytes, err := encodeMetadata(meta)
	if err != nil {
		return wrapErr(CodeInternal, "encode metadata", err)
	}
	batch.Set([]byte(metadataKey), metaBytes)
	if err := e.hot.Commit(batch); err != nil {
		return wrapErr(CodeInternal, "commit recovery", err)
	}
	e.meta = meta

	e.log.Info("recovered expired lock", log.Str("lock_id", lock.LockID), log.Int("items", len(lock.Items)))
	return nil
}

// clampTTL resolves the lock TTL to apply for PopWithAck (§4.5). A nil
// ttlSeconds means the caller omitted ttl_seconds, which resolves to the
// engine's configured default; any non-nil value, including an explicit
// 0, is clamped into [min, max] instead rather than replaced by the
// default.
func (e *Engine) clampTTL(ttlSeconds *int) int {
	cfg := e.meta.Config
	if ttlSeconds == nil {
		return cfg.DefaultTTLSeconds
	}
	ttl := *ttlSeconds
	if ttl < cfg.MinTTLSeconds {
		return cfg.MinTTLSeconds
	}
	if ttl > cfg.MaxTTLSeconds {
		return cfg.MaxTTLSeconds
	}
	return ttl
}

func newLockID() (string, error) {
	const length = 11
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, v := range b {
		out[i] = lockIDAlphabet[int(v)%len(lockIDAlphabet)]
	}
	return string(out), nil
}

// StatsEntry is one priority's read-only snapshot, returned by Stats
// (SPEC_FULL.md §9 addition, grounded in the reference implementation's
// introspection path).
type StatsEntry struct {
	Priority  int
	Count     int
	Offloaded bool
}

// Stats reports per-priority depth without consuming anything.
func (e *Engine) Stats() []StatsEntry {
	priorities := make([]int, 0, len(e.meta.Queues))
	for p := range e.meta.Queues {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	out := make([]StatsEntry, 0, len(priorities))
	for _, p := range priorities {
		q := e.meta.Queues[p]
		out = append(out, StatsEntry{Priority: p, Count: q.Count, Offloaded: q.hasOffloaded()})
	}
	return out
}
