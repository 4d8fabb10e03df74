package scope

import "testing"

func uniformFreq(n int, v byte) []byte {
	f := make([]byte, n)
	for i := range f {
		f[i] = v
	}
	return f
}

func TestBarsUniformFullScale(t *testing.T) {
	bars := Bars(uniformFreq(1024, 255), 16, 1.0, 1.0)
	if len(bars) != 16 {
		t.Fatalf("expected 16 bars, got %d", len(bars))
	}
	for i, b := range bars {
		if b != 1.0 {
			t.Errorf("bar %d = %v, want 1.0", i, b)
		}
	}
}

func TestBarsSilenceIsZero(t *testing.T) {
	for _, k := range []int{8, 16, 61, 256} {
		bars := Bars(make([]byte, 512), k, 3.0, 1.0)
		for i, b := range bars {
			if b != 0 {
				t.Fatalf("barCount=%d: bar %d = %v, want 0", k, i, b)
			}
		}
	}
}

func TestBarsCountAndRange(t *testing.T) {
	freq := make([]byte, 1024)
	for i := range freq {
		freq[i] = byte(i * 7 % 256)
	}
	for k := MinBarCount; k <= MaxBarCount; k++ {
		bars := Bars(freq, k, 2.0, 1.0)
		if len(bars) != k {
			t.Fatalf("barCount=%d: got %d bars", k, len(bars))
		}
		for i, b := range bars {
			if b < 0 || b > 1 {
				t.Fatalf("barCount=%d: bar %d = %v out of [0,1]", k, i, b)
			}
		}
	}
}

func TestBarsClampsBarCount(t *testing.T) {
	freq := uniformFreq(256, 100)
	if got := len(Bars(freq, 2, 1, 1)); got != MinBarCount {
		t.Errorf("barCount below range: got %d bars, want %d", got, MinBarCount)
	}
	if got := len(Bars(freq, 4000, 1, 1)); got != MaxBarCount {
		t.Errorf("barCount above range: got %d bars, want %d", got, MaxBarCount)
	}
}

func TestBarsQuadraticFavorsLowBins(t *testing.T) {
	// Energy only in the lower half of the spectrum. With the quadratic
	// index curve, more than half of the bars must land on it.
	freq := make([]byte, 512)
	for i := 0; i < 256; i++ {
		freq[i] = 255
	}
	bars := Bars(freq, 32, 1.0, 1.0)
	lit := 0
	for _, b := range bars {
		if b > 0.5 {
			lit++
		}
	}
	if lit <= len(bars)/2 {
		t.Fatalf("expected quadratic warp to light most bars, lit %d of %d", lit, len(bars))
	}
}

func TestBarsEdgeBinsRepeatedByClamping(t *testing.T) {
	// Only bin 0 is hot. Bar 0 centers on bin 0 and clamps its negative
	// neighbors back to bin 0, so the average stays biased toward it:
	// window {0,0,1} -> 2/3 of the hot value, not 1/3.
	freq := make([]byte, 512)
	freq[0] = 255
	bars := Bars(freq, 256, 1.0, 1.0)
	want := 2.0 / 3.0
	if diff := bars[0] - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("bar 0 = %v, want %v (clamped-edge averaging)", bars[0], want)
	}
}

func TestMapBarsEmptyFrequencyInput(t *testing.T) {
	dst := []float64{0.3, 0.7}
	MapBars(dst, nil, 1, 1)
	if dst[0] != 0 || dst[1] != 0 {
		t.Fatalf("expected zeroed bars for empty input, got %v", dst)
	}
}
