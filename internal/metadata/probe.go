// Package metadata looks up what a stream is currently playing. A lookup is a
// single bounded probe: inline ICY metadata first, then the Icecast
// status-json.xsl endpoint on the same host.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SourceICY marks titles read from inline ICY metadata.
	SourceICY = "ICY"
	// SourceJSON marks titles read from an Icecast status document.
	SourceJSON = "JSON"

	// DefaultTimeout bounds a whole Probe call.
	DefaultTimeout = 6 * time.Second
)

// ErrNoMetadata is returned when neither strategy yields a title.
var ErrNoMetadata = errors.New("no track information available")

var errNoICY = errors.New("icy metadata unavailable")

var defaultUA = "RadioSubstream/1.0 (+https://local)"

// Info is the result of a successful probe.
type Info struct {
	Station string
	Title   string
	Source  string
}

// Prober performs one-shot metadata lookups.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

// NewProber returns a prober using client (http.DefaultClient when nil).
// A non-positive timeout selects DefaultTimeout.
func NewProber(client *http.Client, timeout time.Duration, log zerolog.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{client: client, timeout: timeout, log: log}
}

// Probe reports the current title of streamURL.
func (p *Prober) Probe(ctx context.Context, streamURL string) (Info, error) {
	if strings.TrimSpace(streamURL) == "" {
		return Info{}, fmt.Errorf("probe: empty stream url")
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	info, err := p.probeICY(ctx, streamURL)
	if err == nil {
		return info, nil
	}
	if ctx.Err() != nil {
		return Info{}, ctx.Err()
	}
	p.log.Debug().Err(err).Str("url", streamURL).Msg("icy probe failed, trying status-json")

	info, err = p.probeStatus(ctx, streamURL)
	if err != nil {
		p.log.Debug().Err(err).Str("url", streamURL).Msg("status-json probe failed")
		return Info{}, ErrNoMetadata
	}
	return info, nil
}
