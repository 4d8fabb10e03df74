package scope

import "time"

// FadeDuration is how long levels take to decay to zero after a stop.
const FadeDuration = 1000 * time.Millisecond

type fadePhase int

const (
	phaseIdle fadePhase = iota
	phaseRunning
	phaseFadingOut
)

// Fade tracks the visual decay that follows a stop request. While running
// the multiplier is 1.0; after a stop it ramps linearly to 0 over
// FadeDuration, then the fade settles in the idle phase.
type Fade struct {
	phase   fadePhase
	startAt time.Time
}

// Start puts the fade in the running phase, cancelling any decay in
// progress. A fresh capture session always starts at full level.
func (f *Fade) Start() {
	f.phase = phaseRunning
	f.startAt = time.Time{}
}

// Stop begins the decay. Stops issued while already fading or idle are
// ignored; the fade is only cancelable by a new Start.
func (f *Fade) Stop(now time.Time) {
	if f.phase != phaseRunning {
		return
	}
	f.phase = phaseFadingOut
	f.startAt = now
}

// Reset forces the fade to idle without ramping.
func (f *Fade) Reset() {
	f.phase = phaseIdle
	f.startAt = time.Time{}
}

// Multiplier returns the level scale for the current instant. Reaching
// zero progress transitions the fade to idle.
func (f *Fade) Multiplier(now time.Time) float64 {
	switch f.phase {
	case phaseRunning:
		return 1.0
	case phaseFadingOut:
		progress := float64(now.Sub(f.startAt)) / float64(FadeDuration)
		if progress >= 1 {
			f.phase = phaseIdle
			return 0
		}
		if progress < 0 {
			progress = 0
		}
		return 1 - progress
	default:
		return 0
	}
}

// Running reports whether levels come from a live session.
func (f *Fade) Running() bool { return f.phase == phaseRunning }

// Fading reports whether the decay ramp is in progress.
func (f *Fade) Fading() bool { return f.phase == phaseFadingOut }

// Idle reports whether the fade has fully settled.
func (f *Fade) Idle() bool { return f.phase == phaseIdle }
