// Package playback drives the media engine on behalf of the station list:
// the Controller switches and toggles streams, the Transport maps the
// previous/next/volume controls onto it.
package playback

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/edward-ap/substream/internal/catalog"
	"github.com/edward-ap/substream/internal/engine"
	"github.com/edward-ap/substream/internal/stationlist"
)

// Controller owns the single engine instance. It does not keep its own copy
// of the playback state; the engine's notifications are the only source.
type Controller struct {
	eng  engine.Engine
	list *stationlist.Model
	log  zerolog.Logger

	// cmdMu serialises engine commands so exactly one station is loaded at a
	// time even if callers race. Engines may notify listeners while it is held.
	cmdMu sync.Mutex

	mu         sync.Mutex
	current    catalog.Station
	hasCurrent bool
}

// NewController wraps eng. The list supplies the selected station when
// PlayStopToggle has to start playback.
func NewController(eng engine.Engine, list *stationlist.Model, log zerolog.Logger) *Controller {
	return &Controller{eng: eng, list: list, log: log}
}

// Engine returns the wrapped engine.
func (c *Controller) Engine() engine.Engine { return c.eng }

// Load hands st to the engine without starting playback.
func (c *Controller) Load(st catalog.Station) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	return c.load(st)
}

func (c *Controller) load(st catalog.Station) error {
	if err := c.eng.SetSource(st.URL); err != nil {
		return fmt.Errorf("load %q: %w", st.Name, err)
	}
	c.mu.Lock()
	c.current = st
	c.hasCurrent = true
	c.mu.Unlock()
	return nil
}

// SwitchStation loads st and starts it, whatever the current state.
func (c *Controller) SwitchStation(st catalog.Station) error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	return c.switchStation(st)
}

func (c *Controller) switchStation(st catalog.Station) error {
	if err := c.load(st); err != nil {
		return err
	}
	if err := c.eng.Play(); err != nil {
		return fmt.Errorf("play %q: %w", st.Name, err)
	}
	c.log.Info().Str("station", st.Name).Str("url", st.URL).Msg("switching station")
	return nil
}

// PlayStopToggle stops a playing engine; otherwise it plays the station
// selected in the list, which may differ from the one that last played. The
// state check and the resulting command run under one lock.
func (c *Controller) PlayStopToggle() error {
	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()
	if c.eng.State() != engine.Stopped {
		if err := c.eng.Stop(); err != nil {
			return fmt.Errorf("stop: %w", err)
		}
		cur, _ := c.Current()
		c.log.Info().Str("station", cur.Name).Msg("stopped")
		return nil
	}
	_, st := c.list.Selected()
	return c.switchStation(st)
}

// Current returns the station whose URL is loaded into the engine.
func (c *Controller) Current() (catalog.Station, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasCurrent
}

// State reports the engine state.
func (c *Controller) State() engine.State { return c.eng.State() }

// OnStateChanged subscribes fn to engine state notifications, including those
// the engine raises on its own such as a dropped stream.
func (c *Controller) OnStateChanged(fn func(engine.State)) {
	c.eng.OnStateChanged(fn)
}
