package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// probeStatus reads the Icecast status document next to the stream mount.
func (p *Prober) probeStatus(ctx context.Context, streamURL string) (Info, error) {
	api, err := statusURL(streamURL)
	if err != nil {
		return Info{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api, nil)
	if err != nil {
		return Info{}, err
	}
	req.Header.Set("User-Agent", defaultUA)
	resp, err := p.client.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Info{}, fmt.Errorf("status-json: unexpected status %s", resp.Status)
	}

	var doc struct {
		IceStats struct {
			Source json.RawMessage `json:"source"`
		} `json:"icestats"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return Info{}, fmt.Errorf("status-json: %w", err)
	}
	sources, err := decodeSources(doc.IceStats.Source)
	if err != nil {
		return Info{}, err
	}
	mount := mountOf(streamURL)
	best := -1
	for i, src := range sources {
		if strings.TrimSpace(src.Title) == "" {
			continue
		}
		if mount != "" && strings.HasSuffix(src.ListenURL, mount) {
			best = i
			break
		}
		if best < 0 {
			best = i
		}
	}
	if best < 0 {
		return Info{}, ErrNoMetadata
	}
	src := sources[best]
	station := src.ServerName
	if strings.TrimSpace(station) == "" {
		station = src.IcyName
	}
	return Info{Station: strings.TrimSpace(station), Title: strings.TrimSpace(src.Title), Source: SourceJSON}, nil
}

type iceSource struct {
	Title      string `json:"title"`
	ServerName string `json:"server_name"`
	IcyName    string `json:"icy-name"`
	ListenURL  string `json:"listenurl"`
}

// decodeSources accepts Icecast's "source" field, which is an object for a
// single mount and an array otherwise.
func decodeSources(raw json.RawMessage) ([]iceSource, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrNoMetadata
	}
	if raw[0] == '[' {
		var many []iceSource
		if err := json.Unmarshal(raw, &many); err != nil {
			return nil, fmt.Errorf("status-json sources: %w", err)
		}
		return many, nil
	}
	var one iceSource
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("status-json source: %w", err)
	}
	return []iceSource{one}, nil
}

// statusURL converts "/live/rock" into "/live/status-json.xsl" on the same host.
func statusURL(streamURL string) (string, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", err
	}
	u.Path = path.Join("/", path.Dir(u.Path), "status-json.xsl")
	u.RawQuery = ""
	return u.String(), nil
}

func mountOf(streamURL string) string {
	u, err := url.Parse(streamURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return ""
	}
	return u.Path
}
