// Package enginetest provides an in-memory engine.Engine for tests.
package enginetest

import (
	"errors"
	"sync"

	"github.com/edward-ap/substream/internal/engine"
)

// ErrNoSource is returned by Play when no source was set.
var ErrNoSource = errors.New("no source loaded")

// Engine records every command and notifies listeners synchronously.
type Engine struct {
	mu        sync.Mutex
	source    string
	state     engine.State
	volume    int
	listeners []func(engine.State)

	// Calls holds the issued commands in order, e.g. "source http://a", "play".
	Calls []string
	// PlayErr, when set, is returned by the next Play call.
	PlayErr error
}

var _ engine.Engine = (*Engine)(nil)

// New returns a stopped engine with no source.
func New() *Engine { return &Engine{} }

func (e *Engine) SetSource(url string) error {
	e.mu.Lock()
	e.source = url
	e.Calls = append(e.Calls, "source "+url)
	e.mu.Unlock()
	return nil
}

func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

func (e *Engine) Play() error {
	e.mu.Lock()
	e.Calls = append(e.Calls, "play")
	if err := e.PlayErr; err != nil {
		e.PlayErr = nil
		e.mu.Unlock()
		return err
	}
	if e.source == "" {
		e.mu.Unlock()
		return ErrNoSource
	}
	e.mu.Unlock()
	e.transition(engine.Playing)
	return nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	e.Calls = append(e.Calls, "stop")
	e.mu.Unlock()
	e.transition(engine.Stopped)
	return nil
}

func (e *Engine) SetVolume(v int) error {
	e.mu.Lock()
	e.volume = engine.ClampVolume(v)
	e.mu.Unlock()
	return nil
}

func (e *Engine) Volume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) State() engine.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) OnStateChanged(fn func(engine.State)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

func (e *Engine) Close() {}

// Fail simulates the stream dropping: the engine reports Stopped on its own.
func (e *Engine) Fail() { e.transition(engine.Stopped) }

func (e *Engine) transition(s engine.State) {
	e.mu.Lock()
	changed := e.state != s
	e.state = s
	ls := append([]func(engine.State){}, e.listeners...)
	e.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range ls {
		fn(s)
	}
}
