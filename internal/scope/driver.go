package scope

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Analyser is the audio-analysis node the driver pulls one frame from on
// every tick.
type Analyser interface {
	FFTSize() int
	BinCount() int
	TimeDomain(dst []float64)
	FrequencyData(dst []byte)
}

// Surface is the drawing target. Coordinates are physical pixels; a
// terminal canvas typically packs PixelRatio vertical pixels per cell.
type Surface interface {
	Resize(cols, rows int)
	Width() int
	Height() int
	PixelRatio() int
	Clear(c colorful.Color)
	FillRect(x, y, w, h int, c colorful.Color)
}

var (
	backgroundColor = colorful.Color{R: 0.04, G: 0.04, B: 0.07}
	trackColor      = colorful.Color{R: 0.16, G: 0.16, B: 0.21}
)

// frameRate is the nominal tick rate the peak spring is tuned for. The
// scheduler gives no fixed-rate guarantee; this only shapes the spring.
const frameRate = 30

// Driver owns the per-frame cycle: it holds the exclusive session handle
// (analyser plus its release function), pulls one audio frame per tick,
// runs the level/spectrum/fade/color pipeline, and paints the surface.
// All methods must be called from the UI goroutine.
type Driver struct {
	surface Surface
	cfg     Config
	fade    Fade
	peak    peakSpring

	node    Analyser
	release func() error

	viewCols, viewRows int

	// Frame-transient buffers, reused across ticks but never carrying
	// levels over; bar levels are recomputed from scratch every frame.
	samples []float64
	freq    []byte
	bars    []float64

	vu float64
}

// NewDriver creates a driver painting on surface.
func NewDriver(surface Surface) *Driver {
	return &Driver{
		surface: surface,
		cfg:     DefaultConfig(),
		peak:    newPeakSpring(frameRate),
	}
}

// SetViewport records the terminal size in cells. The surface is resized
// lazily on the next tick.
func (d *Driver) SetViewport(cols, rows int) {
	d.viewCols = cols
	d.viewRows = rows
}

// SetConfig installs new settings, clamped to their documented ranges.
// Takes effect on the next tick.
func (d *Driver) SetConfig(c Config) {
	d.cfg = c.Clamped()
}

// Config returns the active (clamped) settings.
func (d *Driver) Config() Config {
	if d.cfg == (Config{}) {
		d.cfg = DefaultConfig()
	}
	return d.cfg
}

// Attach hands the driver a fresh analyser and the release function for
// its capture resources. Any prior session is torn down unconditionally
// first, including a decay in progress.
func (d *Driver) Attach(node Analyser, release func() error) {
	d.Teardown()
	d.node = node
	d.release = release
	d.fade.Start()
	d.peak.reset()
}

// Stop releases the capture resources immediately and begins the visual
// decay. The render loop keeps ticking on zero-valued frames until the
// fade settles. Stop while not running is a no-op.
func (d *Driver) Stop(now time.Time) {
	if !d.fade.Running() {
		return
	}
	d.releaseSession()
	d.fade.Stop(now)
}

// Teardown releases any session and forces the idle state without fading.
func (d *Driver) Teardown() {
	d.releaseSession()
	d.fade.Reset()
}

func (d *Driver) releaseSession() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.node = nil
}

// Active reports whether ticks should currently be scheduled.
func (d *Driver) Active() bool { return !d.fade.Idle() }

// VULevel returns the display level computed on the last tick.
func (d *Driver) VULevel() float64 { return d.vu }

// Advance runs one frame: resize the surface if the viewport went stale,
// pull the current audio frame (or synthesize silence when no analyser is
// attached), compute levels, paint, and report whether another tick
// should be scheduled. A missing or zero-sized surface stops the loop
// silently.
func (d *Driver) Advance(now time.Time) bool {
	if d.surface == nil {
		return false
	}
	d.resizeSurface()
	if d.surface.Width() <= 0 || d.surface.Height() <= 0 {
		return false
	}

	d.pullFrame()

	cfg := d.Config()
	mult := d.fade.Multiplier(now)

	d.vu = VULevel(d.samples, cfg.GainBoost, mult)
	if len(d.bars) != cfg.BarCount {
		d.bars = make([]float64, cfg.BarCount)
	}
	MapBars(d.bars, d.freq, cfg.GainBoost, mult)

	d.paint()

	if d.fade.Idle() {
		d.node = nil
		return false
	}
	return true
}

func (d *Driver) resizeSurface() {
	cols := d.viewCols
	rows := d.viewRows
	pr := d.surface.PixelRatio()
	if d.surface.Width() != cols || d.surface.Height() != rows*pr {
		d.surface.Resize(cols, rows)
	}
}

// pullFrame captures the analyser snapshot for this tick. The buffers are
// owned by the driver for the duration of one frame only.
func (d *Driver) pullFrame() {
	size := d.Config().FFTSize
	bins := size / 2
	if d.node != nil {
		size = d.node.FFTSize()
		bins = d.node.BinCount()
	}
	if len(d.samples) != size {
		d.samples = make([]float64, size)
	}
	if len(d.freq) != bins {
		d.freq = make([]byte, bins)
	}
	if d.node != nil {
		d.node.TimeDomain(d.samples)
		d.node.FrequencyData(d.freq)
		return
	}
	for i := range d.samples {
		d.samples[i] = 0
	}
	for i := range d.freq {
		d.freq[i] = 0
	}
}

// paint draws one frame: background, VU track/fill/peak on the left, then
// the spectrum bars. Geometry is a fixed function of the surface size and
// pixel ratio.
func (d *Driver) paint() {
	s := d.surface
	w, h := s.Width(), s.Height()
	pr := s.PixelRatio()

	pad := pr
	vuWidth := w / 10
	if vuWidth < 2 {
		vuWidth = 2
	}
	if vuWidth > 8 {
		vuWidth = 8
	}
	gap := pr
	plotX := pad + vuWidth + gap
	plotW := w - plotX - pad
	plotH := h - 2*pad
	if plotH < 1 {
		return
	}

	s.Clear(backgroundColor)

	// VU meter
	s.FillRect(pad, pad, vuWidth, plotH, trackColor)
	fillH := int(d.vu * float64(plotH))
	if fillH > 0 {
		s.FillRect(pad, pad+plotH-fillH, vuWidth, fillH, LevelColor(d.vu))
	}
	marker := d.peak.step(d.vu)
	markerY := pad + plotH - int(marker*float64(plotH))
	if marker > 0 {
		s.FillRect(pad, clampInt(markerY, pad, pad+plotH-1), vuWidth, 1, PeakColor(marker))
	}

	// Spectrum bars
	if plotW < 1 {
		return
	}
	barW := plotW / len(d.bars)
	if barW < 1 {
		barW = 1
	}
	drawW := barW
	if barW > 1 {
		drawW = barW - 1
	}
	for i, level := range d.bars {
		x := plotX + i*barW
		if x+drawW > w-pad {
			break
		}
		bh := int(level * float64(plotH))
		if bh < 1 {
			continue
		}
		s.FillRect(x, pad+plotH-bh, drawW, bh, LevelColor(level))
	}
}
