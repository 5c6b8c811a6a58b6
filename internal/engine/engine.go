// Package engine describes the media backend the player drives. The backend
// owns buffering, decoding and reconnects; callers only see two states.
package engine

// State is the playback state reported by an engine.
type State int

const (
	// Stopped means nothing is being played, including after a stream failure.
	Stopped State = iota
	// Playing covers opening, buffering and actual playback.
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Engine is the capability set consumed from the media backend.
//
// OnStateChanged callbacks may be invoked from a goroutine owned by the
// engine; receivers must hop to their own thread before touching UI state.
type Engine interface {
	SetSource(url string) error
	Source() string
	Play() error
	Stop() error
	SetVolume(v int) error
	Volume() int
	State() State
	OnStateChanged(fn func(State))
	Close()
}

// ClampVolume limits v to the 0-100 range engines accept.
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
