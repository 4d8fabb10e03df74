package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Mic        key.Binding
	System     key.Binding
	Stop       key.Binding
	FFTUp      key.Binding
	FFTDown    key.Binding
	SmoothUp   key.Binding
	SmoothDown key.Binding
	BarsUp     key.Binding
	BarsDown   key.Binding
	GainUp     key.Binding
	GainDown   key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Mic:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mic")),
	System:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "system audio")),
	Stop:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "stop")),
	FFTUp:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fft up")),
	FFTDown:    key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "fft down")),
	SmoothUp:   key.NewBinding(key.WithKeys("."), key.WithHelp(".", "smoothing up")),
	SmoothDown: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "smoothing down")),
	BarsUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more bars")),
	BarsDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fewer bars")),
	GainUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "gain up")),
	GainDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "gain down")),
	Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func helpText(running bool) string {
	s := "m mic  s system"
	if running {
		s += "  space stop"
	}
	s += "  f/F fft  ,/. smoothing  [/] bars  -/+ gain  q quit"
	return s
}
