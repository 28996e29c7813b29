package sample

import "time"

// Stage transforms a Sample stream.
type Stage func(in <-chan Sample) <-chan Sample

// NewResampler creates a stage emitting one sample per period. Samples are
// bucketed by timestamp into period-aligned slots; each slot that received
// data yields the mean lux stamped with its newest timestamp. A slot is
// emitted once a sample of a later slot arrives or the input closes.
// A period of zero passes samples through unchanged.
func NewResampler(period time.Duration, bufSize int) Stage {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var acc bucket
			for s := range in {
				if period <= 0 {
					out <- s
					continue
				}

				slot := s.Timestamp.Truncate(period)
				if acc.n > 0 && slot.After(acc.slot) {
					out <- acc.mean()
					acc = bucket{}
				}
				acc.add(slot, s)
			}

			if acc.n > 0 {
				out <- acc.mean()
			}
		}()

		return out
	}
}

type bucket struct {
	slot time.Time
	last time.Time
	sum  float64
	n    int
}

func (b *bucket) add(slot time.Time, s Sample) {
	if b.n == 0 {
		b.slot = slot
	}
	if s.Timestamp.After(b.last) {
		b.last = s.Timestamp
	}
	b.sum += s.Lux
	b.n++
}

func (b *bucket) mean() Sample {
	return Sample{Timestamp: b.last, Lux: b.sum / float64(b.n)}
}
