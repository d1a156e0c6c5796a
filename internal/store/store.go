// Package store defines the storage contracts behind the two tiers
// described in §4.1: a Hot tier, private to one actor and committed
// atomically, and a Cold tier, shared across actors and written
// best-effort key by key.
package store

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("store: not found")

// ErrUnavailable is returned by Cold tier operations when the shared
// store cannot be reached. Callers translate this into the
// ColdStoreUnavailable error described in §7.
var ErrUnavailable = errors.New("store: cold tier unavailable")

// WriteOp is one write queued into a Batch. Value is nil for a delete.
type WriteOp struct {
	Key   []byte
	Value []byte
}

// Batch accumulates writes for a single atomic Commit. It is not safe
// for concurrent use; an actor's single-threaded execution model makes
// that unnecessary (§5).
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Len() int
}

// Hot is the actor-local tier (§4.1). All mutating access goes through
// a Batch so that a segment move or lock transition lands atomically
// or not at all.
type Hot interface {
	Get(key []byte) ([]byte, error)
	NewBatch() Batch
	Commit(batch Batch) error
	// Scan calls fn for every key in [start, end) in ascending order.
	// fn returning false stops the scan early.
	Scan(start, end []byte, fn func(key, value []byte) bool) error
	Close() error
}

// Cold is the shared tier (§4.1, §4.4). Every operation fails or
// succeeds independently; offload and load are therefore never atomic
// with respect to the hot tier and must tolerate partial completion.
type Cold interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
	Delete(key []byte) error
	Close() error
}
