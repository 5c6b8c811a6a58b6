package metadata

import (
	"bufio"
	"context"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// probeICY requests inline metadata and decodes the first metadata block that
// carries a StreamTitle.
func (p *Prober) probeICY(ctx context.Context, streamURL string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return Info{}, err
	}
	req.Header.Set("Icy-MetaData", "1")
	req.Header.Set("User-Agent", defaultUA)

	resp, err := p.client.Do(req)
	if err != nil {
		return Info{}, err
	}
	defer resp.Body.Close()

	metaInt, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("icy-metaint")))
	if err != nil || metaInt <= 0 {
		return Info{}, errNoICY
	}
	title, err := firstTitle(bufio.NewReader(resp.Body), metaInt)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Station: html.UnescapeString(strings.TrimSpace(resp.Header.Get("icy-name"))),
		Title:   title,
		Source:  SourceICY,
	}, nil
}

// maxBlocks limits how many metadata blocks are skipped while waiting for a
// non-empty title; most servers send one with the first block.
const maxBlocks = 4

// firstTitle skips audio payloads of metaInt bytes and returns the first
// non-empty StreamTitle.
func firstTitle(r *bufio.Reader, metaInt int) (string, error) {
	for i := 0; i < maxBlocks; i++ {
		if _, err := io.CopyN(io.Discard, r, int64(metaInt)); err != nil {
			return "", err
		}
		lb, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if lb == 0 {
			continue
		}
		meta := make([]byte, int(lb)*16)
		if _, err := io.ReadFull(r, meta); err != nil {
			return "", err
		}
		if title := extractStreamTitle(string(meta)); title != "" {
			return title, nil
		}
	}
	return "", errNoICY
}

// extractStreamTitle returns the StreamTitle value of an ICY metadata block.
// Titles may contain the quote character itself, so a quote only closes the
// value when it ends the block or precedes ";key=".
func extractStreamTitle(meta string) string {
	meta = strings.TrimRight(meta, "\x00")
	idx := strings.Index(meta, "StreamTitle=")
	if idx < 0 {
		return ""
	}
	meta = strings.TrimSpace(meta[idx+len("StreamTitle="):])
	if meta == "" {
		return ""
	}

	if q := meta[0]; q == '\'' || q == '"' {
		meta = meta[1:]
		end := -1
		for i := 0; i < len(meta); i++ {
			if meta[i] != q {
				continue
			}
			rest := strings.TrimLeft(meta[i+1:], " \t")
			if rest == "" || (rest[0] == ';' && (len(rest) == 1 || strings.Contains(rest[1:], "="))) {
				end = i
				break
			}
		}
		if end < 0 {
			end = strings.LastIndexByte(meta, q)
		}
		if end >= 0 {
			meta = meta[:end]
		}
	} else if end := strings.IndexByte(meta, ';'); end >= 0 {
		meta = meta[:end]
	}
	return html.UnescapeString(strings.TrimSpace(meta))
}
