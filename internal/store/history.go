package store

import "github.com/skyrmion/antop/internal/metrics"

// DefaultHistorySize is the default number of rate samples retained per
// series, sized to fill a sparkline at the widest supported terminal.
const DefaultHistorySize = 60

// ring is a fixed-size circular buffer for float64 values. A full buffer
// evicts the oldest value on push.
type ring struct {
	data  []float64
	head  int
	count int
	size  int
}

func newRing(size int) *ring {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &ring{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value, overwriting the oldest when the buffer is full.
func (r *ring) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// last returns the most recent count values in chronological order,
// oldest first. Fewer values are returned if not enough history exists.
func (r *ring) last(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	// head points at the next write slot, so the newest value sits at
	// head-1 and the window of count values ends there.
	result := make([]float64, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}

// all returns every stored value in chronological order.
func (r *ring) all() []float64 {
	return r.last(r.count)
}

// counterRate derives a per-second rate from the named cumulative counter
// across two samples. It returns zero when either sample is missing, the
// counter is absent from either, no time elapsed between them, or the
// counter went backwards (a node restart resets its counters).
func counterRate(previous, latest *metrics.RawSample, name string) float64 {
	if previous == nil || latest == nil {
		return 0
	}

	elapsed := latest.CapturedAt.Sub(previous.CapturedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}

	prev, ok := previous.Get(name)
	if !ok {
		return 0
	}
	cur, ok := latest.Get(name)
	if !ok {
		return 0
	}

	delta := cur - prev
	if delta < 0 {
		delta = 0
	}
	return delta / elapsed
}
