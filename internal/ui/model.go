package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/venalis/audioscope/internal/analysis"
	"github.com/venalis/audioscope/internal/canvas"
	"github.com/venalis/audioscope/internal/capture"
	"github.com/venalis/audioscope/internal/scope"
	"github.com/venalis/audioscope/internal/source"
	"github.com/venalis/audioscope/internal/util"
)

// The UI exposes a narrower bar-count range than the pipeline accepts;
// outside it the bars stop reading well in a terminal.
const (
	uiMinBars = 16
	uiMaxBars = 160
	barStep   = 8

	smoothStep = 0.05
	gainStep   = 0.1
)

// reservedRows is the screen space kept for the header and footer lines.
const reservedRows = 4

// Model is the Bubble Tea model for the audioscope TUI.
type Model struct {
	driver   *scope.Driver
	surface  *canvas.Canvas
	analyser *analysis.Analyser
	pump     *source.Pump
	cfg      scope.Config

	// openCapture is swapped for a stub in tests.
	openCapture func(capture.Source, func([]float64)) (io.Closer, error)

	sourceLabel string
	status      string
	width       int
	height      int
	startedAt   time.Time
	ticking     bool
	quitting    bool
}

// New creates the model. pump may be nil; when set, visualization of the
// file starts immediately.
func New(pump *source.Pump) Model {
	surface := canvas.New()
	m := Model{
		driver:  scope.NewDriver(surface),
		surface: surface,
		cfg:     scope.DefaultConfig(),
		openCapture: func(src capture.Source, sink func([]float64)) (io.Closer, error) {
			return capture.Open(src, sink)
		},
	}

	if pump != nil {
		an := analysis.New(m.cfg)
		pump.Start(an.Push)
		m.driver.Attach(an, pump.Close)
		m.analyser = an
		m.pump = pump
		m.sourceLabel = sourceTitle(pump.Meta())
		m.startedAt = time.Now()
		m.ticking = true
	}
	return m
}

func sourceTitle(meta source.Metadata) string {
	if meta.Artist != "" {
		return meta.Artist + " - " + meta.Title
	}
	return meta.Title
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("audioscope")}
	if m.ticking {
		cmds = append(cmds, tickCmd())
	}
	if m.pump != nil {
		cmds = append(cmds, watchPump(m.pump))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		rows := msg.Height - reservedRows
		if rows < 1 {
			rows = 1
		}
		m.driver.SetViewport(msg.Width, rows)
		if !m.ticking {
			// Repaint the idle scope once at the new size.
			m.driver.Advance(time.Now())
		}
		return m, nil

	case tickMsg:
		if !m.ticking {
			return m, nil
		}
		if m.driver.Advance(time.Time(msg)) {
			return m, tickCmd()
		}
		m.ticking = false
		m.analyser = nil
		return m, nil

	case sourceEndedMsg:
		if msg.pump != m.pump || m.pump == nil {
			return m, nil
		}
		m.driver.Stop(time.Now())
		m.pump = nil
		m.analyser = nil
		m.status = "end of file"
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.driver.Teardown()
		m.pump = nil
		m.analyser = nil
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, keys.Mic):
		return m.startCapture(capture.Microphone)

	case key.Matches(msg, keys.System):
		return m.startCapture(capture.SystemAudio)

	case key.Matches(msg, keys.Stop):
		m.driver.Stop(time.Now())
		m.pump = nil
		m.analyser = nil
		return m, nil

	case key.Matches(msg, keys.FFTUp):
		return m.applyConfig(func(c *scope.Config) { c.FFTSize = scope.NextFFTSize(c.FFTSize, 1) })
	case key.Matches(msg, keys.FFTDown):
		return m.applyConfig(func(c *scope.Config) { c.FFTSize = scope.NextFFTSize(c.FFTSize, -1) })
	case key.Matches(msg, keys.SmoothUp):
		return m.applyConfig(func(c *scope.Config) { c.Smoothing += smoothStep })
	case key.Matches(msg, keys.SmoothDown):
		return m.applyConfig(func(c *scope.Config) { c.Smoothing -= smoothStep })
	case key.Matches(msg, keys.BarsUp):
		return m.applyConfig(func(c *scope.Config) { c.BarCount = clampBars(c.BarCount + barStep) })
	case key.Matches(msg, keys.BarsDown):
		return m.applyConfig(func(c *scope.Config) { c.BarCount = clampBars(c.BarCount - barStep) })
	case key.Matches(msg, keys.GainUp):
		return m.applyConfig(func(c *scope.Config) { c.GainBoost += gainStep })
	case key.Matches(msg, keys.GainDown):
		return m.applyConfig(func(c *scope.Config) { c.GainBoost -= gainStep })
	}
	return m, nil
}

// startCapture opens a fresh live session. Attaching it to the driver
// tears down whatever session was active, including a fade in progress.
func (m Model) startCapture(src capture.Source) (tea.Model, tea.Cmd) {
	an := analysis.New(m.cfg)
	closer, err := m.openCapture(src, an.Push)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	m.driver.Attach(an, closer.Close)
	m.pump = nil
	m.analyser = an
	m.sourceLabel = src.String()
	m.status = ""
	m.startedAt = time.Now()

	var cmd tea.Cmd
	if !m.ticking {
		m.ticking = true
		cmd = tickCmd()
	}
	return m, cmd
}

// applyConfig mutates the settings, clamps them, and applies the analyser
// side live. Everything takes effect on the next frame; capture stays
// open throughout.
func (m Model) applyConfig(change func(*scope.Config)) (tea.Model, tea.Cmd) {
	change(&m.cfg)
	m.cfg = m.cfg.Clamped()
	m.driver.SetConfig(m.cfg)
	if m.analyser != nil {
		m.analyser.SetFFTSize(m.cfg.FFTSize)
		m.analyser.SetSmoothing(m.cfg.Smoothing)
	}
	return m, nil
}

func clampBars(n int) int {
	if n < uiMinBars {
		return uiMinBars
	}
	if n > uiMaxBars {
		return uiMaxBars
	}
	return n
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(" ")
	sb.WriteString(titleStyle.Render("audioscope"))
	if m.sourceLabel != "" {
		sb.WriteString("  ")
		sb.WriteString(sourceStyle.Render(m.sourceLabel))
		if m.driver.Active() {
			sb.WriteString(sourceStyle.Render("  " + util.FormatDuration(time.Since(m.startedAt))))
		}
	}
	sb.WriteString("\n")

	sb.WriteString(m.surface.Render())
	sb.WriteString("\n")

	settings := fmt.Sprintf(" fft %d   smoothing %.2f   bars %d   gain %.1fx   vu %s",
		m.cfg.FFTSize, m.cfg.Smoothing, m.cfg.BarCount, m.cfg.GainBoost,
		util.FormatLevel(m.driver.VULevel()))
	sb.WriteString(settingsStyle.Render(settings))
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString(statusStyle.Render(" " + m.status))
	}
	sb.WriteString("\n")

	sb.WriteString(helpStyle.Render(" " + helpText(m.driver.Active())))
	return sb.String()
}
