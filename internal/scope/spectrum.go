package scope

// Bars maps a frequency-magnitude snapshot onto barCount visual levels in
// [0,1]. barCount is clamped to the documented range before mapping.
func Bars(freq []byte, barCount int, gain, fade float64) []float64 {
	bars := make([]float64, clampInt(barCount, MinBarCount, MaxBarCount))
	MapBars(bars, freq, gain, fade)
	return bars
}

// MapBars fills dst with one level per bar, aggregated from freq. Bar
// index is warped quadratically so low frequencies get most of the visual
// resolution; each bar averages a small neighborhood of bins around its
// center. The mapping is stateless and recomputed from scratch per frame.
//
// Out-of-range neighbor indices are clamped to the nearest valid bin, so
// edge bins are repeated rather than skipped. That over-weights the
// spectrum extremes slightly; kept as-is.
func MapBars(dst []float64, freq []byte, gain, fade float64) {
	k := len(dst)
	b := len(freq)
	if k == 0 {
		return
	}
	if b == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	halfWindow := b / (k * 3)
	if halfWindow < 1 {
		halfWindow = 1
	}
	span := float64(2*halfWindow + 1)

	for i := range dst {
		t := 0.0
		if k > 1 {
			t = float64(i) / float64(k-1)
		}
		curved := t * t
		centerBin := int(curved * float64(b-1))

		var sum float64
		for j := -halfWindow; j <= halfWindow; j++ {
			idx := clampInt(centerBin+j, 0, b-1)
			sum += float64(freq[idx])
		}

		level := sum / span / 255.0 * gain * fade
		dst[i] = clamp01(level)
	}
}
