package playback

import (
	"fmt"

	"github.com/edward-ap/substream/internal/engine"
	"github.com/edward-ap/substream/internal/stationlist"
)

// DefaultVolume is the slider position on startup.
const DefaultVolume = 15

// Transport implements the previous/next buttons, the Return key and the
// volume slider.
type Transport struct {
	ctl  *Controller
	list *stationlist.Model
}

// NewTransport binds the controls to ctl and list.
func NewTransport(ctl *Controller, list *stationlist.Model) *Transport {
	return &Transport{ctl: ctl, list: list}
}

// PreviewPrevious selects the previous station without playing it.
func (t *Transport) PreviewPrevious() { t.list.Step(-1) }

// PreviewNext selects the next station without playing it.
func (t *Transport) PreviewNext() { t.list.Step(+1) }

// PlayPrevious selects the previous station and plays it. At the first
// station the selection stays put and that station is played.
func (t *Transport) PlayPrevious() error {
	t.PreviewPrevious()
	return t.PlaySelected()
}

// PlayNext selects the next station and plays it.
func (t *Transport) PlayNext() error {
	t.PreviewNext()
	return t.PlaySelected()
}

// PlaySelected plays the highlighted station, as a double click does.
func (t *Transport) PlaySelected() error {
	_, st := t.list.Selected()
	return t.ctl.SwitchStation(st)
}

// SetVolume forwards v (clamped to 0-100) to the engine unchanged.
func (t *Transport) SetVolume(v int) error {
	if err := t.ctl.Engine().SetVolume(engine.ClampVolume(v)); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	return nil
}
