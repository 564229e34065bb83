package shared

import "sync/atomic"

// RingBuffer is a bounded single-producer/single-consumer queue of
// message.Message-sized payloads (stored as []byte to stay
// transport-agnostic), sized for the native-callback-thread-to-consumer
// handoff spec.md §4.4 requires: the producer (a native MIDI callback)
// must never block or allocate on the hot path, so a full buffer simply
// drops the newest entry rather than growing.
type RingBuffer struct {
	buf    [][]byte
	mask   uint64
	head   atomic.Uint64 // next write index, producer-owned
	tail   atomic.Uint64 // next read index, consumer-owned
	Dropped atomic.Uint64
}

// NewRingBuffer builds a RingBuffer of capacity rounded up to the next
// power of two, matching the fixed-size preallocation backend native
// callbacks need.
func NewRingBuffer(capacity int) *RingBuffer {
	n := nextPow2(capacity)
	return &RingBuffer{buf: make([][]byte, n), mask: uint64(n - 1)}
}

// Push is called only from the single producer goroutine/callback. It
// returns false, incrementing Dropped, if the buffer is full.
func (r *RingBuffer) Push(payload []byte) bool {
	head := r.head.Load()
	tail := r.tail.Load()
	if head-tail >= uint64(len(r.buf)) {
		r.Dropped.Add(1)
		return false
	}
	r.buf[head&r.mask] = payload
	r.head.Store(head + 1)
	return true
}

// Pop is called only from the single consumer goroutine. ok is false
// when the buffer is currently empty.
func (r *RingBuffer) Pop() (payload []byte, ok bool) {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail == head {
		return nil, false
	}
	payload = r.buf[tail&r.mask]
	r.buf[tail&r.mask] = nil
	r.tail.Store(tail + 1)
	return payload, true
}

// Len reports the number of entries currently queued. It is a snapshot;
// under concurrent Push/Pop it may be stale by the time the caller reads
// it.
func (r *RingBuffer) Len() int {
	return int(r.head.Load() - r.tail.Load())
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
