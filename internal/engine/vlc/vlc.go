// Package vlc implements engine.Engine on top of libVLC. Every libVLC call is
// serialised through one mutex, and state notifications are delivered from a
// single dispatcher goroutine, never from libVLC's own event thread.
package vlc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	libvlc "github.com/adrg/libvlc-go/v3"
	"github.com/rs/zerolog"

	"github.com/edward-ap/substream/internal/engine"
)

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("vlc engine closed")

var mediaOptions = []string{
	":http-user-agent=RadioSubstream/1.0",
	":network-caching=1500",
	":live-caching=1500",
	":http-reconnect",
}

// Engine is the libVLC-backed media engine. At most one instance should exist
// per process because libVLC itself is initialised globally.
type Engine struct {
	// vlcMu guards every libVLC invocation.
	vlcMu   sync.Mutex
	player  *libvlc.Player
	media   *libvlc.Media
	events  *libvlc.EventManager
	eventID []libvlc.EventID

	// mu guards the fields below.
	mu     sync.Mutex
	source string
	volume int
	closed bool

	states *engine.Notifier
	log    zerolog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New initialises libVLC and creates the player. The volume is applied
// immediately so the first stream starts at the requested level.
func New(volume int, log zerolog.Logger) (*Engine, error) {
	// Prefer a plugins folder shipped next to the executable.
	if exe, err := os.Executable(); err == nil {
		plugins := filepath.Join(filepath.Dir(exe), "plugins")
		if st, err := os.Stat(plugins); err == nil && st.IsDir() {
			_ = os.Setenv("VLC_PLUGIN_PATH", plugins)
		}
	}

	args := []string{
		"--no-video",
		"--no-color",
		"--network-caching=1500",
		"--live-caching=1500",
		"--http-reconnect",
	}
	if traceLogEnabled.Load() {
		args = append(args,
			"--verbose=2",
			"--file-logging",
			"--log-verbose=2",
			"--logfile=vlc.log",
		)
	}
	if err := libvlc.Init(args...); err != nil {
		return nil, fmt.Errorf("libvlc init failed: %w", err)
	}
	log.Info().Str("version", libvlc.Version().String()).Msg("libvlc initialised")

	p, err := libvlc.NewPlayer()
	if err != nil {
		libvlc.Release()
		return nil, fmt.Errorf("new vlc player failed: %w", err)
	}

	e := &Engine{
		player: p,
		volume: engine.ClampVolume(volume),
		states: engine.NewNotifier(engine.Stopped),
		log:    log,
	}
	if err := e.attachEvents(); err != nil {
		e.states.Close()
		p.Release()
		libvlc.Release()
		return nil, err
	}
	_ = p.SetVolume(e.volume)
	return e, nil
}

func (e *Engine) attachEvents() error {
	em, err := e.player.EventManager()
	if err != nil {
		return fmt.Errorf("vlc event manager: %w", err)
	}
	e.events = em
	for _, ev := range []libvlc.Event{
		libvlc.MediaPlayerOpening,
		libvlc.MediaPlayerBuffering,
		libvlc.MediaPlayerPlaying,
		libvlc.MediaPlayerPaused,
		libvlc.MediaPlayerStopped,
		libvlc.MediaPlayerEndReached,
		libvlc.MediaPlayerEncounteredError,
	} {
		id, err := em.Attach(ev, e.onEvent, nil)
		if err != nil {
			em.Detach(e.eventID...)
			return fmt.Errorf("attach vlc event %v: %w", ev, err)
		}
		e.eventID = append(e.eventID, id)
	}
	return nil
}

// onEvent runs on libVLC's thread; calling back into libVLC here deadlocks,
// so it only queues the derived state.
func (e *Engine) onEvent(ev libvlc.Event, _ interface{}) {
	if ev == libvlc.MediaPlayerEncounteredError {
		e.log.Warn().Str("source", e.Source()).Msg("stream playback error")
	}
	e.states.Push(stateFromEvent(ev))
}

func stateFromEvent(ev libvlc.Event) engine.State {
	switch ev {
	case libvlc.MediaPlayerOpening, libvlc.MediaPlayerBuffering, libvlc.MediaPlayerPlaying, libvlc.MediaPlayerPaused:
		return engine.Playing
	default:
		return engine.Stopped
	}
}

func stateFromMedia(ms libvlc.MediaState) engine.State {
	switch ms {
	case libvlc.MediaOpening, libvlc.MediaBuffering, libvlc.MediaPlaying, libvlc.MediaPaused:
		return engine.Playing
	default:
		return engine.Stopped
	}
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// SetSource replaces the loaded media without starting playback.
func (e *Engine) SetSource(url string) error {
	if e.isClosed() {
		return ErrClosed
	}
	u := strings.TrimSpace(url)

	e.vlcMu.Lock()
	m, err := libvlc.NewMediaFromURL(u)
	if err != nil {
		e.vlcMu.Unlock()
		return fmt.Errorf("new media from url failed: %w", err)
	}
	_ = m.AddOptions(mediaOptions...)
	if err := e.player.SetMedia(m); err != nil {
		m.Release()
		e.vlcMu.Unlock()
		return fmt.Errorf("set media failed: %w", err)
	}
	if e.media != nil {
		e.media.Release()
	}
	e.media = m
	e.vlcMu.Unlock()

	e.mu.Lock()
	e.source = u
	e.mu.Unlock()
	return nil
}

// Source returns the URL last handed to SetSource.
func (e *Engine) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Play starts the loaded media.
func (e *Engine) Play() error {
	if e.isClosed() {
		return ErrClosed
	}
	e.vlcMu.Lock()
	err := e.player.Play()
	e.vlcMu.Unlock()
	if err != nil {
		return fmt.Errorf("play failed: %w", err)
	}
	return nil
}

// Stop halts playback; the Stopped notification follows from libVLC.
func (e *Engine) Stop() error {
	if e.isClosed() {
		return ErrClosed
	}
	e.vlcMu.Lock()
	err := e.player.Stop()
	e.vlcMu.Unlock()
	if err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}
	return nil
}

// SetVolume applies an absolute level, clamped to 0-100.
func (e *Engine) SetVolume(v int) error {
	if e.isClosed() {
		return ErrClosed
	}
	v = engine.ClampVolume(v)
	e.vlcMu.Lock()
	err := e.player.SetVolume(v)
	e.vlcMu.Unlock()

	e.mu.Lock()
	e.volume = v
	e.mu.Unlock()
	return err
}

// Volume returns the last requested level.
func (e *Engine) Volume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// State queries libVLC for the current media state.
func (e *Engine) State() engine.State {
	if e.isClosed() {
		return engine.Stopped
	}
	e.vlcMu.Lock()
	ms, err := e.player.MediaState()
	e.vlcMu.Unlock()
	if err != nil {
		return engine.Stopped
	}
	return stateFromMedia(ms)
}

// OnStateChanged registers fn. Callbacks run on the engine's dispatcher goroutine.
func (e *Engine) OnStateChanged(fn func(engine.State)) {
	e.states.Subscribe(fn)
}

// Close stops playback and releases every libVLC resource.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.vlcMu.Lock()
	if e.events != nil {
		e.events.Detach(e.eventID...)
	}
	e.states.Close()
	if e.player != nil {
		_ = e.player.Stop()
		e.player.Release()
		e.player = nil
	}
	if e.media != nil {
		e.media.Release()
		e.media = nil
	}
	libvlc.Release()
	e.vlcMu.Unlock()
}
