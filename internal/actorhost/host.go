// Package actorhost is the local, in-process substitute for the actor
// runtime SPEC_FULL.md §1 and §4.7 treat as an external collaborator:
// it names actor instances, activates them on first reference, and
// serializes every operation against one instance onto that instance's
// own goroutine so the queue engine itself never needs an internal
// lock (§5).
package actorhost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"

	"github.com/segqueue/segqueue/internal/config"
	"github.com/segqueue/segqueue/internal/nodeid"
	"github.com/segqueue/segqueue/internal/queueengine"
	coldstore "github.com/segqueue/segqueue/internal/store/cold"
	pebblestore "github.com/segqueue/segqueue/internal/store/hot"
	"github.com/segqueue/segqueue/pkg/log"
)

// Host owns every active actor instance and the shared cold store.
type Host struct {
	cfg    config.Config
	log    log.Logger
	nodeID string
	cold   *coldstore.Store

	mu     sync.Mutex
	actors map[string]*instance

	pushLimiter *rate.Limiter
}

// instance is one actor's engine plus the goroutine that serializes
// every call made against it.
type instance struct {
	engine *queueengine.Engine
	hot    *pebblestore.DB
	ops    chan func()
	done   chan struct{}
}

// Open builds a Host rooted at cfg's data directories. It does not
// activate any actors; activation happens lazily on first reference.
func Open(cfg config.Config, logger log.Logger) (*Host, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	if err := os.MkdirAll(cfg.Storage.HotDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("actorhost: create hot data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.ColdDataDir, 0o755); err != nil {
		return nil, fmt.Errorf("actorhost: create cold data dir: %w", err)
	}

	cold, err := coldstore.Open(filepath.Join(cfg.Storage.ColdDataDir, "cold.db"))
	if err != nil {
		return nil, fmt.Errorf("actorhost: open cold store: %w", err)
	}

	id, err := nodeid.Resolve(cfg.Node.DataDir, cfg.Node.ID)
	if err != nil {
		_ = cold.Close()
		return nil, fmt.Errorf("actorhost: resolve node id: %w", err)
	}
	logger = logger.WithField("node_id", id)

	var limiter *rate.Limiter
	if cfg.Ingress.PushPerSecond > 0 {
		burst := cfg.Ingress.PushBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Ingress.PushPerSecond), burst)
	}

	return &Host{
		cfg:         cfg,
		log:         logger.WithComponent("actorhost"),
		nodeID:      id,
		cold:        cold,
		actors:      make(map[string]*instance),
		pushLimiter: limiter,
	}, nil
}

// NodeID returns this host process's persistent identity.
func (h *Host) NodeID() string { return h.nodeID }

// Close shuts down every active instance and the shared cold store.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, inst := range h.actors {
		close(inst.done)
		_ = inst.hot.Close()
		delete(h.actors, id)
	}
	return h.cold.Close()
}

// activate returns the instance for actorID, opening its hot store and
// engine on first reference.
func (h *Host) activate(actorID string) (*instance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if inst, ok := h.actors[actorID]; ok {
		return inst, nil
	}

	dataDir := filepath.Join(h.cfg.Storage.HotDataDir, actorID)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("actorhost: create actor data dir: %w", err)
	}
	hotDB, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		return nil, fmt.Errorf("actorhost: open hot store for %s: %w", actorID, err)
	}

	engine, err := queueengine.Activate(queueengine.Options{
		ActorID: actorID,
		Hot:     hotDB,
		Cold:    h.cold,
		ColdDisabled: h.cfg.Storage.ColdUnavailable,
		Config: queueengine.Config{
			SegmentSize:       h.cfg.Queue.SegmentSize,
			BufferSegments:    h.cfg.Queue.BufferSegments,
			MinTTLSeconds:     h.cfg.Lock.MinTTLSeconds,
			MaxTTLSeconds:     h.cfg.Lock.MaxTTLSeconds,
			DefaultTTLSeconds: h.cfg.Lock.DefaultTTLSeconds,
		},
		Logger:  h.log,
	})
	if err != nil {
		_ = hotDB.Close()
		return nil, fmt.Errorf("actorhost: activate engine for %s: %w", actorID, err)
	}

	inst := &instance{
		engine: engine,
		hot:    hotDB,
		ops:    make(chan func()),
		done:   make(chan struct{}),
	}
	go inst.run()

	h.actors[actorID] = inst
	h.log.Info("actor activated", log.Str("actor_id", actorID))
	return inst, nil
}

func (inst *instance) run() {
	for {
		select {
		case fn := <-inst.ops:
			fn()
		case <-inst.done:
			return
		}
	}
}

// submit runs fn on inst's dedicated goroutine and blocks until it
// completes, giving callers serialized access without the engine
// itself taking a lock.
func (inst *instance) submit(ctx context.Context, fn func()) error {
	result := make(chan struct{})
	wrapped := func() {
		fn()
		close(result)
	}
	select {
	case inst.ops <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-result:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Push enqueues item at priority on actorID, activating it if needed.
func (h *Host) Push(ctx context.Context, actorID string, item []byte, priority int) error {
	if h.pushLimiter != nil {
		if err := h.pushLimiter.Wait(ctx); err != nil {
			return err
		}
	}
	inst, err := h.activate(actorID)
	if err != nil {
		return err
	}
	var opErr error
	err = inst.submit(ctx, func() { opErr = inst.engine.Push(item, priority) })
	if err != nil {
		return err
	}
	return opErr
}

// Pop removes and returns the next item for actorID, or nil if empty.
func (h *Host) Pop(ctx context.Context, actorID string) ([][]byte, error) {
	inst, err := h.activate(actorID)
	if err != nil {
		return nil, err
	}
	var (
		items  [][]byte
		opErr  error
	)
	if err := inst.submit(ctx, func() { items, opErr = inst.engine.Pop() }); err != nil {
		return nil, err
	}
	return items, opErr
}

// PopWithAck pops at most one item under a fresh lock for actorID.
// ttlSeconds is nil when the caller omitted ttl_seconds.
func (h *Host) PopWithAck(ctx context.Context, actorID string, ttlSeconds *int) (queueengine.PopWithAckResult, error) {
	inst, err := h.activate(actorID)
	if err != nil {
		return queueengine.PopWithAckResult{}, err
	}
	var (
		res   queueengine.PopWithAckResult
		opErr error
	)
	if err := inst.submit(ctx, func() { res, opErr = inst.engine.PopWithAck(ttlSeconds) }); err != nil {
		return queueengine.PopWithAckResult{}, err
	}
	return res, opErr
}

// Acknowledge clears actorID's active lock if lockID matches it.
func (h *Host) Acknowledge(ctx context.Context, actorID, lockID string) (queueengine.AcknowledgeResult, error) {
	inst, err := h.activate(actorID)
	if err != nil {
		return queueengine.AcknowledgeResult{}, err
	}
	var (
		res   queueengine.AcknowledgeResult
		opErr error
	)
	if err := inst.submit(ctx, func() { res, opErr = inst.engine.Acknowledge(lockID) }); err != nil {
		return queueengine.AcknowledgeResult{}, err
	}
	return res, opErr
}

// Stats reports actorID's per-priority depth without consuming anything.
func (h *Host) Stats(ctx context.Context, actorID string) ([]queueengine.StatsEntry, error) {
	inst, err := h.activate(actorID)
	if err != nil {
		return nil, err
	}
	var stats []queueengine.StatsEntry
	if err := inst.submit(ctx, func() { stats = inst.engine.Stats() }); err != nil {
		return nil, err
	}
	return stats, nil
}

// ExpireLockNow forces actorID's lock-expiry recovery unconditionally.
func (h *Host) ExpireLockNow(ctx context.Context, actorID string) error {
	inst, err := h.activate(actorID)
	if err != nil {
		return err
	}
	var opErr error
	if err := inst.submit(ctx, func() { opErr = inst.engine.ExpireLockNow() }); err != nil {
		return err
	}
	return opErr
}
