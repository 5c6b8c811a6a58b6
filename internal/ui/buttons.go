package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/substream/internal/engine"
)

// SquareButtonSize is the edge length of transport buttons.
const SquareButtonSize float32 = 60

// SquareButton is an icon-only button held at a fixed square size.
type SquareButton struct {
	Button *widget.Button
	box    *fyne.Container
}

// NewSquareButton builds a square button showing icon that calls tapped.
func NewSquareButton(icon fyne.Resource, tapped func()) *SquareButton {
	b := widget.NewButtonWithIcon("", icon, tapped)
	box := container.New(layout.NewGridWrapLayout(fyne.NewSize(SquareButtonSize, SquareButtonSize)), b)
	return &SquareButton{Button: b, box: box}
}

// CanvasObject returns the sized container for layouts.
func (s *SquareButton) CanvasObject() fyne.CanvasObject { return s.box }

// PlayStopButton shows "play" while the engine is stopped and "stop" otherwise.
type PlayStopButton struct {
	*SquareButton
	state engine.State
}

// NewPlayStopButton starts in the stopped look.
func NewPlayStopButton(tapped func()) *PlayStopButton {
	return &PlayStopButton{SquareButton: NewSquareButton(PlayStopIcon(engine.Stopped), tapped)}
}

// SetState mirrors an engine state into the icon. Call it on the UI thread.
func (p *PlayStopButton) SetState(s engine.State) {
	p.state = s
	p.Button.SetIcon(PlayStopIcon(s))
}

// State returns the state last shown.
func (p *PlayStopButton) State() engine.State { return p.state }

// PlayStopIcon picks the icon that represents the action available in s.
func PlayStopIcon(s engine.State) fyne.Resource {
	if s == engine.Playing {
		return theme.MediaStopIcon()
	}
	return theme.MediaPlayIcon()
}
