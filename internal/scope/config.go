package scope

// FFTSizes lists the analyser window lengths the pipeline accepts.
var FFTSizes = []int{512, 1024, 2048, 4096, 8192}

const (
	MinBarCount = 8
	MaxBarCount = 256

	MinGainBoost = 0.5
	MaxGainBoost = 3.0

	MaxSmoothing = 0.95
)

// Config holds the analysis and rendering settings. It is immutable for
// the duration of one frame; callers may swap it between frames.
type Config struct {
	FFTSize   int
	Smoothing float64
	BarCount  int
	GainBoost float64
}

// DefaultConfig returns the settings used before the user touches anything.
func DefaultConfig() Config {
	return Config{
		FFTSize:   2048,
		Smoothing: 0.8,
		BarCount:  64,
		GainBoost: 1.0,
	}
}

// Clamped forces every field into its documented range. Out-of-range
// settings are corrected, never rejected.
func (c Config) Clamped() Config {
	c.FFTSize = NearestFFTSize(c.FFTSize)
	c.Smoothing = clampFloat(c.Smoothing, 0, MaxSmoothing)
	c.BarCount = clampInt(c.BarCount, MinBarCount, MaxBarCount)
	c.GainBoost = clampFloat(c.GainBoost, MinGainBoost, MaxGainBoost)
	return c
}

// NearestFFTSize snaps n to the closest allowed window length.
func NearestFFTSize(n int) int {
	best := FFTSizes[0]
	for _, size := range FFTSizes {
		if abs(n-size) < abs(n-best) {
			best = size
		}
	}
	return best
}

// NextFFTSize returns the allowed window length adjacent to n in the given
// direction (+1 up, -1 down), clamping at the ends of the range.
func NextFFTSize(n, dir int) int {
	cur := NearestFFTSize(n)
	for i, size := range FFTSizes {
		if size != cur {
			continue
		}
		j := i + dir
		if j < 0 {
			j = 0
		}
		if j >= len(FFTSizes) {
			j = len(FFTSizes) - 1
		}
		return FFTSizes[j]
	}
	return cur
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}
