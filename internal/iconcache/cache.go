// Package iconcache keeps one local image file per station so icons are only
// downloaded the first time a station is seen.
package iconcache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edward-ap/substream/internal/catalog"
)

const (
	// DefaultDir is the cache directory relative to the working directory.
	DefaultDir = "data/icons"
	// Ext is appended to every cached file regardless of the real image format.
	Ext = ".ico"
	// nameSeparator replaces spaces and path separators in station names.
	nameSeparator = "-"
)

// nameReplacer keeps a station name a single path element inside the cache
// directory.
var nameReplacer = strings.NewReplacer(
	" ", nameSeparator,
	"/", nameSeparator,
	`\`, nameSeparator,
	"\x00", "",
)

// FetchError is returned when an icon could not be downloaded or stored.
// Callers are expected to fall back to a default icon.
type FetchError struct {
	Station string
	URL     string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("icon for %q (%s): %v", e.Station, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cache maps stations to icon files under a single directory.
type Cache struct {
	dir     string
	fetcher Fetcher
	log     zerolog.Logger
}

// New returns a cache rooted at dir that downloads missing icons with fetcher.
func New(dir string, fetcher Fetcher, log zerolog.Logger) *Cache {
	if dir == "" {
		dir = DefaultDir
	}
	return &Cache{dir: dir, fetcher: fetcher, log: log}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// FileName derives the cache file name for a station name. Spaces and path
// separators become "-", so "AC/DC Radio" maps to "AC-DC-Radio.ico" and a
// name can never climb out of the cache directory.
func FileName(name string) string {
	return nameReplacer.Replace(name) + Ext
}

// Path returns where the icon of st is (or would be) stored.
func (c *Cache) Path(st catalog.Station) string {
	return filepath.Join(c.dir, FileName(st.Name))
}

// Ensure returns the local icon path for st, downloading the icon when no
// cached file exists yet. A cached file is never refreshed.
func (c *Cache) Ensure(ctx context.Context, st catalog.Station) (string, error) {
	path := c.Path(st)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", &FetchError{Station: st.Name, URL: st.Icon, Err: err}
	}

	if strings.TrimSpace(st.Icon) == "" {
		return "", &FetchError{Station: st.Name, Err: errors.New("no icon url")}
	}
	if c.fetcher == nil {
		return "", &FetchError{Station: st.Name, URL: st.Icon, Err: errors.New("no fetcher configured")}
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", &FetchError{Station: st.Name, URL: st.Icon, Err: err}
	}

	body, err := c.fetcher.Fetch(ctx, st.Icon)
	if err != nil {
		return "", &FetchError{Station: st.Name, URL: st.Icon, Err: err}
	}
	if err := writeFileAtomic(path, body); err != nil {
		return "", &FetchError{Station: st.Name, URL: st.Icon, Err: err}
	}
	c.log.Debug().Str("station", st.Name).Str("path", path).Int("bytes", len(body)).Msg("icon cached")
	return path, nil
}

// Warm ensures the icon of every station in order and reports each outcome to
// fn. Failures are logged and do not stop the remaining stations.
func (c *Cache) Warm(ctx context.Context, stations []catalog.Station, fn func(i int, path string, err error)) {
	for i, st := range stations {
		if ctx.Err() != nil {
			return
		}
		path, err := c.Ensure(ctx, st)
		if err != nil {
			c.log.Warn().Err(err).Str("station", st.Name).Msg("icon unavailable, using default")
		}
		if fn != nil {
			fn(i, path, err)
		}
	}
}

// writeFileAtomic writes data next to path and renames it into place so an
// interrupted download never leaves a truncated icon behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".icon-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
