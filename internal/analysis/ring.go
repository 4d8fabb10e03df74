package analysis

import "sync"

// sampleRing is a thread-safe circular buffer of mono samples. The
// capture callback writes from its own goroutine; the analyser reads the
// most recent window from the UI goroutine.
type sampleRing struct {
	mu   sync.Mutex
	buf  []float64
	w    int // write position
	fill int // current fill level
}

func newSampleRing(size int) *sampleRing {
	return &sampleRing{buf: make([]float64, size)}
}

// Write appends samples, overwriting the oldest data when full.
func (r *sampleRing) Write(p []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range p {
		r.buf[r.w] = v
		r.w = (r.w + 1) % len(r.buf)
	}
	r.fill += len(p)
	if r.fill > len(r.buf) {
		r.fill = len(r.buf)
	}
}

// Latest fills dst with the most recent len(dst) samples. When fewer
// samples have been written, the front of dst is zero-padded so the
// newest audio always sits at the end.
func (r *sampleRing) Latest(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	avail := r.fill
	if avail > n {
		avail = n
	}
	pad := n - avail
	for i := 0; i < pad; i++ {
		dst[i] = 0
	}
	start := (r.w - avail + len(r.buf)) % len(r.buf)
	for i := 0; i < avail; i++ {
		dst[pad+i] = r.buf[(start+i)%len(r.buf)]
	}
}

// Clear resets the buffer to silence.
func (r *sampleRing) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w = 0
	r.fill = 0
}
