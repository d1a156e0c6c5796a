package queueengine

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Segment is the in-memory form of an ordered sequence of opaque items
// (§3). On disk it is framed as:
//
//	count(4B BE) | for each item: len(4B BE) | bytes | crc32c(everything above)
//
// This generalizes the header+payload framing used for message records
// elsewhere in this lineage (length-prefixed fields, trailing Castagnoli
// checksum) to an arbitrary-length list of opaque blobs.
type Segment struct {
	Items [][]byte
}

var segmentCRCTable = crc32.MakeTable(crc32.Castagnoli)

func (s *Segment) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// PopFront removes and returns the first item, or (nil, false) if empty.
func (s *Segment) PopFront() ([]byte, bool) {
	if s.Len() == 0 {
		return nil, false
	}
	item := s.Items[0]
	s.Items = s.Items[1:]
	return item, true
}

// PrependAll puts items at the front, preserving their relative order,
// used by expiry recovery (§4.5) to restore held items ahead of
// whatever the head segment already holds.
func (s *Segment) PrependAll(items [][]byte) {
	s.Items = append(append([][]byte{}, items...), s.Items...)
}

func encodeSegment(s *Segment) []byte {
	size := 4
	for _, it := range s.Items {
		size += 4 + len(it)
	}
	out := make([]byte, size+4)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(s.Items)))
	off := 4
	for _, it := range s.Items {
		binary.BigEndian.PutUint32(out[off:off+4], uint32(len(it)))
		off += 4
		copy(out[off:off+len(it)], it)
		off += len(it)
	}
	crc := crc32.Checksum(out[:off], segmentCRCTable)
	binary.BigEndian.PutUint32(out[off:off+4], crc)
	return out
}

func decodeSegment(b []byte) (*Segment, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("queueengine: segment record too short (%d bytes)", len(b))
	}
	body := b[:len(b)-4]
	want := binary.BigEndian.Uint32(b[len(b)-4:])
	got := crc32.Checksum(body, segmentCRCTable)
	if got != want {
		return nil, fmt.Errorf("queueengine: segment checksum mismatch")
	}

	count := binary.BigEndian.Uint32(body[0:4])
	off := 4
	items := make([][]byte, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+4 > len(body) {
			return nil, fmt.Errorf("queueengine: segment record truncated")
		}
		l := binary.BigEndian.Uint32(body[off : off+4])
		off += 4
		if off+int(l) > len(body) {
			return nil, fmt.Errorf("queueengine: segment record truncated")
		}
		item := append([]byte(nil), body[off:off+int(l)]...)
		items = append(items, item)
		off += int(l)
	}
	return &Segment{Items: items}, nil
}
