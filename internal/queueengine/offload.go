package queueengine

import (
	"github.com/segqueue/segqueue/internal/store"
	"github.com/segqueue/segqueue/pkg/log"
)

// runOffloadScan implements §4.4's offload eligibility scan, called
// after every Push commit. Segments become eligible in ascending order
// and are offloaded one at a time so the offloaded range stays
// contiguous (invariant 6). Failures are logged and swallowed: the
// segment simply stays hot and the engine keeps working in full-memory
// mode, as §4.4 requires.
func (e *Engine) runOffloadScan(priority int) {
	if e.coldDisabled {
		return
	}

	for {
		meta := e.meta.cloneDoc()
		q, ok := meta.Queues[priority]
		if !ok {
			return
		}

		n := q.HeadSegment + meta.Config.BufferSegments + 1
		if q.hasOffloaded() {
			n = *q.TailOffloadedSegment + 1
		}
		if n >= q.TailSegment {
			return
		}

		seg, err := e.loadSegment(priority, n)
		if err != nil {
			e.log.Warn("offload scan: load candidate segment", log.Int("segment", n), log.Err(err))
			return
		}
		if seg.Len() != meta.Config.SegmentSize {
			return
		}

		if err := e.cold.Set(coldSegmentKey(e.actorID, priority, n), encodeSegment(seg)); err != nil {
			e.log.Warn("offload failed, staying hot", log.Int("priority", priority), log.Int("segment", n), log.Err(err))
			return
		}

		if !q.hasOffloaded() {
			head, tail := n, n
			q.HeadOffloadedSegment = &head
			q.TailOffloadedSegment = &tail
		} else {
			tail := n
			q.TailOffloadedSegment = &tail
		}

		batch := e.hot.NewBatch()
		batch.Delete(segmentKey(priority, n))
		metaBytes, err := encodeMetadata(meta)
		if err != nil {
			e.log.Warn("offload scan: encode metadata", log.Err(err))
			return
		}
		batch.Set([]byte(metadataKey), metaBytes)
		if err := e.hot.Commit(batch); err != nil {
			e.log.Warn("offload scan: commit", log.Err(err))
			return
		}
		e.meta = meta

		e.log.Debug("offloaded segment", log.Int("priority", priority), log.Int("segment", n))
	}
}

// runLoadScan implements §4.4's load scan, called before each consuming
// access. Unlike offload failures, load failures are surfaced: a
// cold-store outage here means the next pop could silently miss items.
func (e *Engine) runLoadScan(priority int) error {
	for {
		meta := e.meta.cloneDoc()
		q, ok := meta.Queues[priority]
		if !ok || !q.hasOffloaded() {
			return nil
		}

		n := *q.HeadOffloadedSegment
		if n > q.HeadSegment+meta.Config.BufferSegments {
			return nil
		}

		if e.coldDisabled {
			return &Error{Code: CodeColdStoreUnavailable, Message: "cold tier disabled"}
		}

		raw, err := e.cold.Get(coldSegmentKey(e.actorID, priority, n))
		if err != nil {
			if err == store.ErrNotFound {
				return wrapErr(CodeColdStoreUnavailable, "offloaded segment missing from cold tier", err)
			}
			return wrapErr(CodeColdStoreUnavailable, "load offloaded segment", err)
		}
		seg, err := decodeSegment(raw)
		if err != nil {
			return wrapErr(CodeColdStoreUnavailable, "decode offloaded segment", err)
		}

		if n == *q.TailOffloadedSegment {
			q.HeadOffloadedSegment = nil
			q.TailOffloadedSegment = nil
		} else {
			next := n + 1
			q.HeadOffloadedSegment = &next
		}

		batch := e.hot.NewBatch()
		batch.Set(segmentKey(priority, n), encodeSegment(seg))
		metaBytes, err := encodeMetadata(meta)
		if err != nil {
			return wrapErr(CodeInternal, "encode metadata", err)
		}
		batch.Set([]byte(metadataKey), metaBytes)
		if err := e.hot.Commit(batch); err != nil {
			return wrapErr(CodeInternal, "commit load scan", err)
		}
		e.meta = meta

		if err := e.cold.Delete(coldSegmentKey(e.actorID, priority, n)); err != nil {
			e.log.Warn("load scan: cold delete of promoted segment failed", log.Int("segment", n), log.Err(err))
		}

		e.log.Debug("loaded offloaded segment", log.Int("priority", priority), log.Int("segment", n))
	}
}
