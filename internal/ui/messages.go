package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/venalis/audioscope/internal/source"
)

// frameInterval approximates a display refresh; the driver tolerates any
// actual tick spacing.
const frameInterval = time.Second / 30

type tickMsg time.Time
type sourceEndedMsg struct{ pump *source.Pump }

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func watchPump(p *source.Pump) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return sourceEndedMsg{pump: p}
	}
}
