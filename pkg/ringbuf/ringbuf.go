package ringbuf

// RingBuffer is a fixed-capacity circular store that overwrites its oldest
// value once full. A RingBuffer with capacity 0 accepts and discards every value.
//
// RingBuffer is not safe for concurrent use.
type RingBuffer[T any] struct {
	buf   []T
	pos   int // next write slot
	count int
}

// New creates a RingBuffer holding up to capacity values.
// Negative capacity is treated as 0.
func New[T any](capacity int) *RingBuffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &RingBuffer[T]{
		buf: make([]T, capacity),
	}
}

// Add stores v, overwriting the oldest value when the buffer is full.
func (r *RingBuffer[T]) Add(v T) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.pos] = v
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Available returns the number of stored values.
func (r *RingBuffer[T]) Available() int {
	return r.count
}

// Capacity returns the maximum number of stored values.
func (r *RingBuffer[T]) Capacity() int {
	return len(r.buf)
}

// Full reports whether the next Add overwrites a value.
func (r *RingBuffer[T]) Full() bool {
	return len(r.buf) > 0 && r.count == len(r.buf)
}

// start returns the slot of the oldest value.
func (r *RingBuffer[T]) start() int {
	if r.count == len(r.buf) {
		return r.pos
	}
	return 0
}

// At returns the i-th stored value in chronological order (0 is the oldest).
// It panics if i is out of [0, Available()).
func (r *RingBuffer[T]) At(i int) T {
	if i < 0 || i >= r.count {
		panic("ringbuf: index out of range")
	}
	return r.buf[(r.start()+i)%len(r.buf)]
}

// Oldest returns the oldest stored value.
func (r *RingBuffer[T]) Oldest() (T, bool) {
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.buf[r.start()], true
}

// CopyChronological writes the stored values into dst ordered oldest to newest
// and returns how many were written. dst must be at least Available() long;
// a shorter dst receives only the oldest len(dst) values.
func (r *RingBuffer[T]) CopyChronological(dst []T) int {
	if len(r.buf) == 0 {
		return 0
	}
	n := min(r.count, len(dst))
	start := r.start()
	// at most two contiguous runs
	first := min(n, len(r.buf)-start)
	copy(dst[:first], r.buf[start:start+first])
	copy(dst[first:n], r.buf[:n-first])
	return n
}

// Reset drops all stored values without releasing the backing store.
func (r *RingBuffer[T]) Reset() {
	clear(r.buf)
	r.pos = 0
	r.count = 0
}
