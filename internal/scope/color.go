package scope

import colorful "github.com/lucasb-eyer/go-colorful"

// LevelColor maps a normalized level to a color sweeping from blue at
// silence to red at full scale, getting slightly more saturated and
// brighter along the way. Pure.
func LevelColor(level float64) colorful.Color {
	l := clamp01(level)
	hue := 240 * (1 - l)
	sat := 0.80 + 0.20*l
	light := 0.50 + 0.10*l
	return colorful.Hsl(hue, sat, light)
}

// PeakColor returns a hotter accent for peak markers.
func PeakColor(level float64) colorful.Color {
	return LevelColor(clamp01(level + 0.2))
}
