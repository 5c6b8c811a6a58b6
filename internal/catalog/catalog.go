// Package catalog loads the ordered list of radio stations the player offers.
// The catalog is read once at startup and never mutated afterwards.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultPath is the location of the station list relative to the working directory.
const DefaultPath = "data/radio_stations.json"

// ErrEmpty is reported when the station list contains no entries.
var ErrEmpty = errors.New("station list is empty")

// Station is a single entry of the station list.
type Station struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon"`
}

// LoadError describes why the station list could not be loaded. The player
// cannot start without a catalog, so callers treat it as fatal.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load stations: %v", e.Err)
	}
	return fmt.Sprintf("load stations from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Catalog is the immutable, ordered set of stations.
type Catalog struct {
	stations []Station
}

type document struct {
	Stations []Station `json:"radio_stations"`
}

// Load reads and parses the station list stored at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return c, nil
}

// Parse decodes a station list document, preserving the order of entries.
func Parse(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse error: %w", err)}
	}
	return New(doc.Stations)
}

// New builds a catalog from stations. At least one station is required and
// names must be unique because they key the icon cache. Names are stored
// trimmed, so the name compared for uniqueness is the one the cache sees.
func New(stations []Station) (*Catalog, error) {
	if len(stations) == 0 {
		return nil, &LoadError{Err: ErrEmpty}
	}
	seen := make(map[string]int, len(stations))
	out := make([]Station, len(stations))
	for i, st := range stations {
		name := strings.TrimSpace(st.Name)
		if name == "" {
			return nil, &LoadError{Err: fmt.Errorf("station %d has no name", i)}
		}
		if j, dup := seen[name]; dup {
			return nil, &LoadError{Err: fmt.Errorf("station %d duplicates name %q of station %d", i, name, j)}
		}
		seen[name] = i
		st.Name = name
		out[i] = st
	}
	return &Catalog{stations: out}, nil
}

// Len returns the number of stations.
func (c *Catalog) Len() int { return len(c.stations) }

// At returns the station at index i. It panics when i is out of range, like a
// slice access would.
func (c *Catalog) At(i int) Station { return c.stations[i] }

// Stations returns a copy of the ordered station list.
func (c *Catalog) Stations() []Station {
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Index reports the position of the station with the given name, or -1.
func (c *Catalog) Index(name string) int {
	for i, st := range c.stations {
		if st.Name == name {
			return i
		}
	}
	return -1
}
