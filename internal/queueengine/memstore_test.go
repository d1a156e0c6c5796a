package queueengine

import (
	"bytes"
	"sort"

	"github.com/segqueue/segqueue/internal/store"
)

// memHot and memCold are minimal in-memory fakes of store.Hot/store.Cold,
// used so engine tests exercise the same batch/commit contract the real
// Pebble and bbolt backed stores provide, without disk I/O.

type memBatch struct {
	sets    map[string][]byte
	deletes map[string]bool
}

func newMemBatch() *memBatch {
	return &memBatch{sets: map[string][]byte{}, deletes: map[string]bool{}}
}

func (b *memBatch) Set(key, value []byte)  { b.sets[string(key)] = append([]byte(nil), value...) }
func (b *memBatch) Delete(key []byte)      { b.deletes[string(key)] = true }
func (b *memBatch) Len() int               { return len(b.sets) + len(b.deletes) }

type memHot struct {
	data map[string][]byte
	// failCommit, when true, makes Commit fail without mutating state,
	// so a test can exercise the "replay from consistent state" property.
	failCommit bool
}

func newMemHot() *memHot { return &memHot{data: map[string][]byte{}} }

func (m *memHot) Get(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memHot) NewBatch() store.Batch { return newMemBatch() }

func (m *memHot) Commit(b store.Batch) error {
	if m.failCommit {
		return bytes.ErrTooLarge
	}
	mb := b.(*memBatch)
	for k, v := range mb.sets {
		m.data[k] = v
	}
	for k := range mb.deletes {
		delete(m.data, k)
	}
	return nil
}

func (m *memHot) Scan(start, end []byte, fn func(key, value []byte) bool) error {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k < string(start) || k >= string(end) {
			continue
		}
		if !fn([]byte(k), m.data[k]) {
			break
		}
	}
	return nil
}

func (m *memHot) Close() error { return nil }

type memCold struct {
	data      map[string][]byte
	available bool
}

func newMemCold() *memCold { return &memCold{data: map[string][]byte{}, available: true} }

func (m *memCold) Get(key []byte) ([]byte, error) {
	if !m.available {
		return nil, store.ErrUnavailable
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memCold) Set(key, value []byte) error {
	if !m.available {
		return store.ErrUnavailable
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memCold) Delete(key []byte) error {
	if !m.available {
		return store.ErrUnavailable
	}
	delete(m.data, string(key))
	return nil
}

func (m *memCold) Close() error { return nil }
