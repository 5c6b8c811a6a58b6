// Package history keeps the short list of track lookups shown next to the
// station list, newest first.
package history

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLimit is the number of entries kept.
const DefaultLimit = 50

// Entry is one lookup result. An empty Title means nothing was found.
type Entry struct {
	At      time.Time
	Station string
	Title   string
}

// Line formats the entry for display.
func (e Entry) Line() string {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Sprintf("%s  %s: no track information", e.At.Format("15:04"), e.Station)
	}
	return fmt.Sprintf("%s  %s - %s", e.At.Format("15:04"), e.Station, e.Title)
}

// Log is a bounded, newest-first list of entries. It is not safe for
// concurrent use.
type Log struct {
	limit   int
	entries []Entry
}

// New returns a log keeping at most limit entries (DefaultLimit if limit <= 0).
func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Add records e. A repeat of the newest entry's station and title is dropped
// so reselecting a station does not flood the panel.
func (l *Log) Add(e Entry) bool {
	if len(l.entries) > 0 {
		top := l.entries[0]
		if top.Station == e.Station && top.Title == e.Title {
			return false
		}
	}
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
	return true
}

// Entries returns a copy of the entries, newest first.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Text renders every entry on its own line.
func (l *Log) Text() string {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.Line()
	}
	return strings.Join(lines, "\n")
}
