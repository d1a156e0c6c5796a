package queueengine

import "fmt"

// Hot and cold key layouts, exactly as fixed by §4.1:
//
//	hot:  queue_{p}_seg_{n}
//	hot:  metadata
//	cold: offloaded_queue_{p}_seg_{n}_{actor_id}

func segmentKey(priority, seg int) []byte {
	return []byte(fmt.Sprintf("queue_%d_seg_%d", priority, seg))
}

func coldSegmentKey(actorID string, priority, seg int) []byte {
	return []byte(fmt.Sprintf("offloaded_queue_%d_seg_%d_%s", priority, seg, actorID))
}
