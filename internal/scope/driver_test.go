package scope

import (
	"testing"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type fakeSurface struct {
	cols, rows int
	resizes    int
	clears     int
	rects      int
}

func (f *fakeSurface) Resize(cols, rows int) {
	f.cols, f.rows = cols, rows
	f.resizes++
}
func (f *fakeSurface) Width() int      { return f.cols }
func (f *fakeSurface) Height() int     { return f.rows * 2 }
func (f *fakeSurface) PixelRatio() int { return 2 }
func (f *fakeSurface) Clear(colorful.Color) {
	f.clears++
}
func (f *fakeSurface) FillRect(x, y, w, h int, c colorful.Color) {
	f.rects++
}

type fakeAnalyser struct {
	fftSize int
	level   float64
	mag     byte
}

func (a *fakeAnalyser) FFTSize() int  { return a.fftSize }
func (a *fakeAnalyser) BinCount() int { return a.fftSize / 2 }
func (a *fakeAnalyser) TimeDomain(dst []float64) {
	for i := range dst {
		dst[i] = a.level
	}
}
func (a *fakeAnalyser) FrequencyData(dst []byte) {
	for i := range dst {
		dst[i] = a.mag
	}
}

func newTestDriver() (*Driver, *fakeSurface) {
	s := &fakeSurface{}
	d := NewDriver(s)
	d.SetViewport(80, 24)
	return d, s
}

func TestAdvanceWithoutSurfaceStops(t *testing.T) {
	d := NewDriver(nil)
	if d.Advance(time.Now()) {
		t.Fatal("expected no rescheduling without a surface")
	}
}

func TestAdvanceWithZeroViewportStops(t *testing.T) {
	d, _ := newTestDriver()
	d.SetViewport(0, 0)
	if d.Advance(time.Now()) {
		t.Fatal("expected no rescheduling on a zero-sized surface")
	}
}

func TestAdvanceResizesStaleSurface(t *testing.T) {
	d, s := newTestDriver()
	d.Advance(time.Now())
	if s.resizes != 1 || s.cols != 80 || s.rows != 24 {
		t.Fatalf("expected one resize to 80x24, got %d resizes (%dx%d)", s.resizes, s.cols, s.rows)
	}
	d.Advance(time.Now())
	if s.resizes != 1 {
		t.Fatalf("expected no resize while viewport unchanged, got %d", s.resizes)
	}
	d.SetViewport(100, 30)
	d.Advance(time.Now())
	if s.resizes != 2 {
		t.Fatalf("expected resize after viewport change, got %d", s.resizes)
	}
}

func TestSessionLifecycle(t *testing.T) {
	d, _ := newTestDriver()
	released := 0
	node := &fakeAnalyser{fftSize: 512, level: 0.5, mag: 255}
	d.Attach(node, func() error { released++; return nil })

	t0 := time.Now()
	if !d.Advance(t0) {
		t.Fatal("expected rescheduling while running")
	}
	if d.VULevel() != 0.5 {
		t.Fatalf("expected VU 0.5 from live frame, got %v", d.VULevel())
	}

	d.Stop(t0)
	if released != 1 {
		t.Fatalf("expected capture released immediately on stop, released=%d", released)
	}

	// Loop keeps running on zero frames during the fade.
	if !d.Advance(t0.Add(500 * time.Millisecond)) {
		t.Fatal("expected rescheduling while fading")
	}
	if d.VULevel() != 0 {
		t.Fatalf("expected zero VU from synthesized silence, got %v", d.VULevel())
	}

	// Fade complete: paint final frame, then stop scheduling.
	if d.Advance(t0.Add(FadeDuration)) {
		t.Fatal("expected terminal teardown at fade end")
	}
	if d.Active() {
		t.Fatal("expected idle after teardown")
	}
	if released != 1 {
		t.Fatalf("expected no double release, released=%d", released)
	}
}

func TestAttachTearsDownPriorSession(t *testing.T) {
	d, _ := newTestDriver()
	first := 0
	d.Attach(&fakeAnalyser{fftSize: 512}, func() error { first++; return nil })
	d.Attach(&fakeAnalyser{fftSize: 1024}, func() error { return nil })
	if first != 1 {
		t.Fatalf("expected prior session released on new attach, released=%d", first)
	}
	if !d.Active() {
		t.Fatal("expected running after reattach")
	}
}

func TestAttachDuringFadeRestartsCleanly(t *testing.T) {
	d, _ := newTestDriver()
	d.Attach(&fakeAnalyser{fftSize: 512}, func() error { return nil })
	t0 := time.Now()
	d.Stop(t0)

	released := 0
	d.Attach(&fakeAnalyser{fftSize: 512, level: 0.25}, func() error { released++; return nil })
	if !d.Advance(t0.Add(2 * FadeDuration)) {
		t.Fatal("expected running session to outlive the cancelled fade")
	}
	if d.VULevel() != 0.25 {
		t.Fatalf("expected live VU after restart, got %v", d.VULevel())
	}
	if released != 0 {
		t.Fatal("new session must not be released by the cancelled fade")
	}
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	d, _ := newTestDriver()
	d.Stop(time.Now())
	if d.Active() {
		t.Fatal("expected idle to stay idle")
	}
}

func TestAdvancePaintsSomething(t *testing.T) {
	d, s := newTestDriver()
	d.Attach(&fakeAnalyser{fftSize: 512, level: 0.5, mag: 200}, func() error { return nil })
	d.Advance(time.Now())
	if s.clears != 1 {
		t.Fatalf("expected one background clear, got %d", s.clears)
	}
	if s.rects == 0 {
		t.Fatal("expected VU and bar fills to be painted")
	}
}

func TestConfigAppliedNextFrame(t *testing.T) {
	d, _ := newTestDriver()
	d.Attach(&fakeAnalyser{fftSize: 512, mag: 128}, func() error { return nil })
	d.SetConfig(Config{FFTSize: 512, Smoothing: 0.5, BarCount: 10, GainBoost: 1})
	d.Advance(time.Now())
	if got := d.Config().BarCount; got != 10 {
		t.Fatalf("expected bar count 10, got %d", got)
	}
	if len(d.bars) != d.Config().BarCount {
		t.Fatalf("expected %d bar levels, got %d", d.Config().BarCount, len(d.bars))
	}
}
