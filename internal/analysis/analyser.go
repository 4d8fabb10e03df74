// Package analysis implements the audio-analysis node: a PCM ring buffer
// plus per-call FFT magnitude and time-domain snapshots, with configurable
// window size and magnitude smoothing.
package analysis

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/venalis/audioscope/internal/scope"
)

// Magnitudes are mapped from this dB range onto the 0..255 byte scale.
const (
	minDecibels = -100.0
	maxDecibels = -30.0
)

// ringCapacity must hold at least the largest FFT window. Extra headroom
// tolerates bursty capture callbacks.
const ringCapacity = 2 * 8192

// Analyser turns a live mono sample feed into per-frame spectral and
// time-domain snapshots. Window size and smoothing may be changed on the
// fly without reopening the capture stream. Safe for one producer
// (Push) and one consumer (the render driver) on separate goroutines.
type Analyser struct {
	mu        sync.Mutex
	ring      *sampleRing
	fftSize   int
	smoothing float64
	prev      []float64 // smoothed magnitudes, len fftSize/2
	win       []float64 // Hann coefficients, len fftSize
	scratch   []float64
}

// New creates an analyser using the window size and smoothing constant
// from cfg (clamped).
func New(cfg scope.Config) *Analyser {
	cfg = cfg.Clamped()
	a := &Analyser{
		ring:      newSampleRing(ringCapacity),
		smoothing: cfg.Smoothing,
	}
	a.setSize(cfg.FFTSize)
	return a
}

func (a *Analyser) setSize(n int) {
	a.fftSize = n
	a.prev = make([]float64, n/2)
	a.win = window.Hann(n)
	a.scratch = make([]float64, n)
}

// Push appends captured samples. Called from the capture callback.
func (a *Analyser) Push(samples []float64) {
	a.ring.Write(samples)
}

// FFTSize returns the active window length.
func (a *Analyser) FFTSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize
}

// BinCount returns the number of frequency bins (fftSize/2).
func (a *Analyser) BinCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize / 2
}

// SetFFTSize switches to the nearest allowed window length, applied live.
// Smoothed magnitudes restart from silence.
func (a *Analyser) SetFFTSize(n int) {
	n = scope.NearestFFTSize(n)
	a.mu.Lock()
	defer a.mu.Unlock()
	if n == a.fftSize {
		return
	}
	a.setSize(n)
}

// SetSmoothing updates the magnitude smoothing constant, clamped to its
// documented range.
func (a *Analyser) SetSmoothing(s float64) {
	if s < 0 {
		s = 0
	}
	if s > scope.MaxSmoothing {
		s = scope.MaxSmoothing
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.smoothing = s
}

// TimeDomain fills dst with the most recent len(dst) samples.
func (a *Analyser) TimeDomain(dst []float64) {
	a.ring.Latest(dst)
}

// FrequencyData fills dst with one byte per frequency bin: the Hann-
// windowed FFT magnitude, exponentially smoothed across calls, mapped
// from [minDecibels,maxDecibels] dB onto 0..255.
func (a *Analyser) FrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.fftSize
	a.ring.Latest(a.scratch)
	windowed := make([]float64, n)
	for i := range windowed {
		windowed[i] = a.scratch[i] * a.win[i]
	}

	spectrum := fft.FFTReal(windowed)
	bins := n / 2
	if len(dst) < bins {
		bins = len(dst)
	}
	dbRange := maxDecibels - minDecibels
	for i := 0; i < bins; i++ {
		mag := cmplx.Abs(spectrum[i]) / float64(n)
		a.prev[i] = a.smoothing*a.prev[i] + (1-a.smoothing)*mag

		var db float64
		if a.prev[i] > 0 {
			db = 20 * math.Log10(a.prev[i])
		} else {
			db = minDecibels
		}
		v := (db - minDecibels) / dbRange * 255
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		dst[i] = byte(v)
	}
	for i := bins; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Reset clears buffered audio and smoothed magnitudes.
func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ring.Clear()
	for i := range a.prev {
		a.prev[i] = 0
	}
}
