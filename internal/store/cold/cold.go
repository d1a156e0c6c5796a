// Package coldstore is the shared, best-effort tier of §4.1 and §4.4: a
// single bbolt database holding offloaded segments for every actor,
// keyed by the actor-qualified keys the offload manager builds. bbolt
// is chosen for the same reasons as in the rest of the pack examined
// for this store: single file, ACID, pure Go, no server process to run
// alongside the actor host.
package coldstore

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/segqueue/segqueue/internal/store"
)

var bucketSegments = []byte("segments")

// Store is a bbolt-backed implementation of store.Cold.
type Store struct {
	db *bbolt.DB
}

var _ store.Cold = (*Store)(nil)

// Open opens (or creates) the cold store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o640, &bbolt.Options{Timeout: 0})
	if err != nil {
		return nil, fmt.Errorf("coldstore: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSegments)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("coldstore: init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value stored at key, or store.ErrNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSegments).Get(key)
		if v == nil {
			return store.ErrNotFound
		}
		val = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set upserts key to value.
func (s *Store) Set(key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSegments).Put(key, value)
	})
}

// Delete removes key. Deleting an absent key is not an error: the
// offload manager treats retried deletes as idempotent (§4.4).
func (s *Store) Delete(key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSegments).Delete(key)
	})
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}
