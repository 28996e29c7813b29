package filter

import "github.com/itohio/golux/pkg/ringbuf"

// history is the raw-sample window shared by SMA and Savitzky-Golay.
// It keeps a running sum so the warm-up mean is identical for both filters.
type history struct {
	buf     *ringbuf.RingBuffer[float64]
	sum     float64
	sinceRe int // pushes since the sum was last recomputed
}

func newHistory(size int) history {
	return history{buf: ringbuf.New[float64](size)}
}

// push adds v and returns the value it evicted, if any.
func (h *history) push(v float64) (evicted float64, ok bool) {
	if h.buf.Full() {
		evicted, ok = h.buf.Oldest()
		h.sum -= evicted
	}
	h.buf.Add(v)
	h.sum += v

	// resync once per full turn to bound rounding drift of the running sum
	h.sinceRe++
	if h.buf.Full() && h.sinceRe >= h.buf.Capacity() {
		h.resync()
	}
	return evicted, ok
}

func (h *history) resync() {
	h.sum = 0
	for i := range h.buf.Available() {
		h.sum += h.buf.At(i)
	}
	h.sinceRe = 0
}

func (h *history) full() bool {
	return h.buf.Full()
}

func (h *history) count() int {
	return h.buf.Available()
}

// mean returns the average of the samples seen so far (up to the window size).
func (h *history) mean() float64 {
	n := h.buf.Available()
	if n == 0 {
		return 0
	}
	return h.sum / float64(n)
}

func (h *history) reset() {
	h.buf.Reset()
	h.sum = 0
	h.sinceRe = 0
}
