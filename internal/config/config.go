// Package config holds the runtime options of the player: where the station
// list and icon cache live, window geometry, and network timeouts. Options are
// read from command-line flags; nothing is written back to disk.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

const (
	// AppID is the stable identifier handed to the GUI toolkit.
	AppID = "substream"
	// WindowTitle is shown in the title bar.
	WindowTitle = "Radio Substream"

	// DefaultCatalogPath is the station list location.
	DefaultCatalogPath = "data/radio_stations.json"
	// DefaultIconDir holds one cached icon per station.
	DefaultIconDir = "data/icons"
	// DefaultVolume is the initial slider position.
	DefaultVolume = 15
	// DefaultWidth and DefaultHeight size the main window.
	DefaultWidth  = 800
	DefaultHeight = 600
	// MinWindowWidth keeps the transport buttons visible.
	MinWindowWidth = 480
	// DefaultIconTimeout bounds a single icon download.
	DefaultIconTimeout = 10 * time.Second
	// DefaultProbeTimeout bounds a track lookup for the history panel.
	DefaultProbeTimeout = 6 * time.Second
)

// Options aggregates every tunable of a run.
type Options struct {
	CatalogPath  string
	IconDir      string
	Volume       int
	WindowW      int
	WindowH      int
	IconTimeout  time.Duration
	ProbeTimeout time.Duration
	NoHistory    bool
	Debug        bool
	TraceVLC     bool
}

// Default returns options populated with the standard values.
func Default() Options {
	o := Options{Volume: DefaultVolume}
	o.applyRuntimeDefaults()
	return o
}

// BindFlags registers the options on fs, using the current values as defaults.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.CatalogPath, "stations", "s", o.CatalogPath, "path to the radio stations JSON file")
	fs.StringVar(&o.IconDir, "icons", o.IconDir, "directory for cached station icons")
	fs.IntVar(&o.Volume, "volume", o.Volume, "initial volume (0-100)")
	fs.IntVar(&o.WindowW, "width", o.WindowW, "window width")
	fs.IntVar(&o.WindowH, "height", o.WindowH, "window height")
	fs.DurationVar(&o.IconTimeout, "icon-timeout", o.IconTimeout, "timeout for a single icon download")
	fs.DurationVar(&o.ProbeTimeout, "probe-timeout", o.ProbeTimeout, "timeout for a track information lookup")
	fs.BoolVar(&o.NoHistory, "no-history", o.NoHistory, "do not look up track information on selection")
	fs.BoolVarP(&o.Debug, "debug", "d", o.Debug, "enable debug logging")
	fs.BoolVar(&o.TraceVLC, "traceLog", o.TraceVLC, "enable verbose libVLC logging to vlc.log")
}

// Parse binds the options to a fresh flag set and parses args into it.
func Parse(name string, args []string) (Options, error) {
	o := Default()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	o.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if err := o.Validate(); err != nil {
		return o, err
	}
	o.applyRuntimeDefaults()
	return o, nil
}

// Validate rejects values that cannot be normalised.
func (o Options) Validate() error {
	var errs []error
	if o.Volume < 0 || o.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume %d out of range 0-100", o.Volume))
	}
	if o.IconTimeout < 0 {
		errs = append(errs, fmt.Errorf("icon-timeout must not be negative"))
	}
	if o.ProbeTimeout < 0 {
		errs = append(errs, fmt.Errorf("probe-timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// applyRuntimeDefaults fills empty fields so the rest of the program always
// receives usable values.
func (o *Options) applyRuntimeDefaults() {
	if strings.TrimSpace(o.CatalogPath) == "" {
		o.CatalogPath = DefaultCatalogPath
	}
	if strings.TrimSpace(o.IconDir) == "" {
		o.IconDir = DefaultIconDir
	}
	if o.Volume < 0 || o.Volume > 100 {
		o.Volume = DefaultVolume
	}
	if o.WindowW <= 0 {
		o.WindowW = DefaultWidth
	}
	if o.WindowW < MinWindowWidth {
		o.WindowW = MinWindowWidth
	}
	if o.WindowH <= 0 {
		o.WindowH = DefaultHeight
	}
	if o.IconTimeout == 0 {
		o.IconTimeout = DefaultIconTimeout
	}
	if o.ProbeTimeout == 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
}
