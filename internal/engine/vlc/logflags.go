package vlc

import "sync/atomic"

var traceLogEnabled atomic.Bool

// SetTraceLoggingEnabled turns libVLC's verbose file logging on or off. It only
// takes effect for engines initialised afterwards.
func SetTraceLoggingEnabled(enabled bool) {
	traceLogEnabled.Store(enabled)
}
