package collision

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// tickDigest hashes the hits of a tick in dispatch order. Objects enter the
// hash by registry slot rather than id, so two runs with the same
// registration order and geometry produce the same value.
type tickDigest struct {
	h   *xxhash.Digest
	buf []byte
}

func newTickDigest(tick uint64) *tickDigest {
	d := &tickDigest{h: xxhash.New(), buf: make([]byte, 0, 48)}
	d.buf = binary.LittleEndian.AppendUint64(d.buf[:0], tick)
	_, _ = d.h.Write(d.buf)
	return d
}

func (d *tickDigest) add(hit CollisionHit) {
	b := d.buf[:0]
	b = binary.LittleEndian.AppendUint64(b, uint64(hit.slots[0]))
	b = binary.LittleEndian.AppendUint64(b, uint64(hit.slots[1]))
	for _, f := range [4]float64{hit.ContactPoint[0], hit.ContactPoint[1], hit.ContactPoint[2], hit.SweepProgress} {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	}
	d.buf = b
	_, _ = d.h.Write(b)
}

func (d *tickDigest) sum() uint64 {
	return d.h.Sum64()
}
