package iconcache

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/edward-ap/substream/internal/catalog"
)

var iconBytes = []byte("\x89PNG fake icon payload")

func newIconServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/icon.png":
			hits.Add(1)
			w.Write(iconBytes)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "A", want: "A.ico"},
		{name: "Groove Salad", want: "Groove-Salad.ico"},
		{name: "Radio  One FM", want: "Radio--One-FM.ico"},
		{name: "AC/DC Radio", want: "AC-DC-Radio.ico"},
		{name: `Back\Slash`, want: "Back-Slash.ico"},
		{name: "../escape", want: "..-escape.ico"},
		{name: "..", want: "...ico"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.name); got != tt.want {
				t.Fatalf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestEnsureFetchesOnce(t *testing.T) {
	var hits atomic.Int32
	srv := newIconServer(t, &hits)

	dir := filepath.Join(t.TempDir(), "icons")
	cache := New(dir, &HTTPFetcher{Client: srv.Client()}, zerolog.Nop())
	st := catalog.Station{Name: "Groove Salad", URL: "http://a/stream", Icon: srv.URL + "/icon.png"}

	first, err := cache.Ensure(context.Background(), st)
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	second, err := cache.Ensure(context.Background(), st)
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if first != second {
		t.Fatalf("paths differ: %q vs %q", first, second)
	}
	if want := filepath.Join(dir, "Groove-Salad.ico"); first != want {
		t.Fatalf("path = %q, want %q", first, want)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("icon fetched %d times, want 1", n)
	}
	b, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, iconBytes) {
		t.Fatalf("cached bytes = %q, want verbatim body", b)
	}
}

func TestEnsureKeepsFilesInsideDir(t *testing.T) {
	var hits atomic.Int32
	srv := newIconServer(t, &hits)
	dir := filepath.Join(t.TempDir(), "icons")
	cache := New(dir, &HTTPFetcher{Client: srv.Client()}, zerolog.Nop())

	for _, name := range []string{"AC/DC Radio", "../escape", `..\up`, ".."} {
		t.Run(name, func(t *testing.T) {
			st := catalog.Station{Name: name, Icon: srv.URL + "/icon.png"}
			path, err := cache.Ensure(context.Background(), st)
			if err != nil {
				t.Fatalf("Ensure: %v", err)
			}
			if filepath.Dir(path) != dir {
				t.Fatalf("icon stored at %q, outside %q", path, dir)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("cached file missing: %v", err)
			}
		})
	}
	if n := hits.Load(); n != 4 {
		t.Fatalf("icon fetched %d times, want 4", n)
	}
	entries, err := os.ReadDir(filepath.Dir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "icons" {
		t.Fatalf("files leaked next to the cache dir: %v", entries)
	}
}

func TestEnsureUsesExistingFileWithoutNetwork(t *testing.T) {
	dir := t.TempDir()
	st := catalog.Station{Name: "Cached One", Icon: "http://unreachable.invalid/icon.png"}
	path := filepath.Join(dir, FileName(st.Name))
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache := New(dir, failingFetcher{}, zerolog.Nop())
	got, err := cache.Ensure(context.Background(), st)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if got != path {
		t.Fatalf("path = %q, want %q", got, path)
	}
}

func TestEnsureFailureLeavesNoFile(t *testing.T) {
	var hits atomic.Int32
	srv := newIconServer(t, &hits)
	dir := t.TempDir()
	cache := New(dir, &HTTPFetcher{Client: srv.Client()}, zerolog.Nop())
	st := catalog.Station{Name: "Broken", Icon: srv.URL + "/missing.png"}

	_, err := cache.Ensure(context.Background(), st)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FetchError", err)
	}
	if fe.Station != "Broken" {
		t.Errorf("FetchError.Station = %q", fe.Station)
	}
	if _, err := os.Stat(cache.Path(st)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no cached file after failure, stat err = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected empty cache dir, found %d entries", len(entries))
	}
}

func TestWarmReportsEveryStation(t *testing.T) {
	var hits atomic.Int32
	srv := newIconServer(t, &hits)
	cache := New(t.TempDir(), &HTTPFetcher{Client: srv.Client()}, zerolog.Nop())
	stations := []catalog.Station{
		{Name: "A", Icon: srv.URL + "/icon.png"},
		{Name: "B", Icon: srv.URL + "/missing.png"},
		{Name: "C", Icon: ""},
	}

	type result struct {
		path string
		err  error
	}
	got := make([]result, len(stations))
	calls := 0
	cache.Warm(context.Background(), stations, func(i int, path string, err error) {
		calls++
		got[i] = result{path, err}
	})
	if calls != 3 {
		t.Fatalf("callback invoked %d times, want 3", calls)
	}
	if got[0].err != nil || got[0].path == "" {
		t.Errorf("station A: %+v", got[0])
	}
	if got[1].err == nil || got[2].err == nil {
		t.Errorf("stations B and C should fail: %+v %+v", got[1], got[2])
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(100 * time.Millisecond)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("network disabled")
}

func TestEnsureRejectsOversizedIcon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xFF}, maxIconBytes+1))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cache := New(dir, &HTTPFetcher{Client: srv.Client()}, zerolog.Nop())
	st := catalog.Station{Name: "Huge", Icon: srv.URL + "/huge.png"}

	if _, err := cache.Ensure(context.Background(), st); err == nil {
		t.Fatal("expected error for icon over the size cap")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("oversized icon left %d entries in the cache dir", len(entries))
	}
}

func TestHTTPFetcherAcceptsIconAtCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte{0xFF}, maxIconBytes))
	}))
	defer srv.Close()

	body, err := (&HTTPFetcher{Client: srv.Client()}).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(body) != maxIconBytes {
		t.Fatalf("body = %d bytes, want %d", len(body), maxIconBytes)
	}
}
