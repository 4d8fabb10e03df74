package scope

import "github.com/charmbracelet/harmonica"

// peakSpring smooths the VU peak-hold marker. It rises instantly to new
// peaks and springs back down, which reads better than a hard drop. This
// is presentation state only; it never feeds back into computed levels.
type peakSpring struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newPeakSpring(fps int) peakSpring {
	return peakSpring{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (s *peakSpring) step(level float64) float64 {
	if level >= s.pos {
		s.pos = level
		s.vel = 0
		return s.pos
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, level)
	if s.pos < level {
		s.pos = level
	}
	return s.pos
}

func (s *peakSpring) reset() {
	s.pos = 0
	s.vel = 0
}
