// Package stationlist holds the selectable view-model behind the station list:
// the ordered items, which one is highlighted, and the icon bound to each.
// It knows nothing about widgets or playback.
package stationlist

import (
	"github.com/edward-ap/substream/internal/catalog"
)

// Item is one row of the list.
type Item struct {
	Name      string
	StreamURL string
	IconPath  string
}

// Model is the station list view-model. It is not safe for concurrent use;
// the UI thread owns it.
type Model struct {
	cat      *catalog.Catalog
	icons    []string
	selected int

	onSelect   []func(int, catalog.Station)
	onActivate []func(int, catalog.Station)
}

// New returns a model bound 1:1 to cat with the first station selected.
func New(cat *catalog.Catalog) *Model {
	return &Model{
		cat:   cat,
		icons: make([]string, cat.Len()),
	}
}

// Len returns the number of rows.
func (m *Model) Len() int { return m.cat.Len() }

// Item returns row i.
func (m *Model) Item(i int) Item {
	st := m.cat.At(i)
	return Item{Name: st.Name, StreamURL: st.URL, IconPath: m.icons[i]}
}

// Station returns the catalog entry behind row i.
func (m *Model) Station(i int) catalog.Station { return m.cat.At(i) }

// SetIcon binds a cached icon file to row i. Out-of-range rows are ignored.
func (m *Model) SetIcon(i int, path string) {
	if i < 0 || i >= len(m.icons) {
		return
	}
	m.icons[i] = path
}

// Selected returns the highlighted row and its station.
func (m *Model) Selected() (int, catalog.Station) {
	return m.selected, m.cat.At(m.selected)
}

// Select highlights row i, clamped to the list bounds. It reports whether the
// selection moved; observers are notified only when it did.
func (m *Model) Select(i int) bool {
	i = clamp(i, 0, m.cat.Len()-1)
	if i == m.selected {
		return false
	}
	m.selected = i
	st := m.cat.At(i)
	for _, fn := range m.onSelect {
		fn(i, st)
	}
	return true
}

// Step moves the selection by delta rows. Moving past either end is a no-op.
func (m *Model) Step(delta int) bool {
	return m.Select(m.selected + delta)
}

// Activate selects row i and notifies activation observers, as a double click
// or the Return key does.
func (m *Model) Activate(i int) {
	if i < 0 || i >= m.cat.Len() {
		return
	}
	m.Select(i)
	st := m.cat.At(i)
	for _, fn := range m.onActivate {
		fn(i, st)
	}
}

// OnSelectionChanged registers fn to run after the highlighted row changes.
func (m *Model) OnSelectionChanged(fn func(int, catalog.Station)) {
	if fn != nil {
		m.onSelect = append(m.onSelect, fn)
	}
}

// OnActivated registers fn to run when a row is activated.
func (m *Model) OnActivated(fn func(int, catalog.Station)) {
	if fn != nil {
		m.onActivate = append(m.onActivate, fn)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
