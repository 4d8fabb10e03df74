package scope

import "math"

// vuHeadroom is how far the gain-boosted RMS may overshoot before the
// final display clamp. The overshoot keeps hot signals pinned at full
// scale instead of flickering around it.
const vuHeadroom = 1.25

// RMS returns the root-mean-square amplitude of s. Callers must
// guarantee len(s) > 0.
func RMS(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s)))
}

// VULevel computes the displayed loudness level for one frame: RMS scaled
// by the gain boost, clamped to the headroom range, scaled by the fade
// multiplier, and finally clamped to [0,1].
func VULevel(samples []float64, gain, fade float64) float64 {
	level := RMS(samples) * gain
	level = clampFloat(level, 0, vuHeadroom)
	return clamp01(level * fade)
}
