package executor

import "fmt"

// limitedWriter keeps the first and the last half of limit bytes and drops
// the middle. Test runners print their summary last, so the tail must
// survive. Writes always report full length so the child never sees a
// short write.
type limitedWriter struct {
	limit int
	head  []byte

	// ring holds the most recent bytes; start indexes the oldest one
	ring    []byte
	start   int
	ringLen int

	dropped   int
	truncated bool
}

func newLimitedWriter(limit int) *limitedWriter {
	return &limitedWriter{limit: limit}
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if room := lw.limit/2 - len(lw.head); room > 0 {
		k := min(room, len(p))
		lw.head = append(lw.head, p[:k]...)
		p = p[k:]
	}
	if len(p) > 0 {
		lw.writeTail(p)
	}
	return n, nil
}

func (lw *limitedWriter) writeTail(p []byte) {
	size := lw.limit - lw.limit/2
	if size == 0 {
		lw.dropped += len(p)
		lw.truncated = true
		return
	}
	if lw.ring == nil {
		lw.ring = make([]byte, size)
	}

	if len(p) > size {
		lw.dropped += lw.ringLen + len(p) - size
		p = p[len(p)-size:]
		lw.start, lw.ringLen = 0, 0
	}
	if over := lw.ringLen + len(p) - size; over > 0 {
		lw.dropped += over
		lw.start = (lw.start + over) % size
		lw.ringLen -= over
	}

	end := (lw.start + lw.ringLen) % size
	k := copy(lw.ring[end:], p)
	copy(lw.ring, p[k:])
	lw.ringLen += len(p)
	lw.truncated = lw.truncated || lw.dropped > 0
}

// String returns the head, a marker naming the dropped byte count when
// anything was dropped, and the tail
func (lw *limitedWriter) String() string {
	out := make([]byte, 0, len(lw.head)+lw.ringLen+64)
	out = append(out, lw.head...)
	if lw.dropped > 0 {
		out = append(out, fmt.Sprintf("\n... [%d bytes truncated] ...\n", lw.dropped)...)
	}
	if lw.ringLen > 0 {
		size := len(lw.ring)
		first := min(lw.ringLen, size-lw.start)
		out = append(out, lw.ring[lw.start:lw.start+first]...)
		out = append(out, lw.ring[:lw.ringLen-first]...)
	}
	return string(out)
}
