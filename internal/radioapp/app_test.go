package radioapp

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/rs/zerolog"

	"github.com/edward-ap/substream/internal/catalog"
	"github.com/edward-ap/substream/internal/config"
	"github.com/edward-ap/substream/internal/engine"
	"github.com/edward-ap/substream/internal/engine/enginetest"
	"github.com/edward-ap/substream/internal/iconcache"
	"github.com/edward-ap/substream/internal/metadata"
	"github.com/edward-ap/substream/internal/ui"
)

type fakeProber struct {
	mu    sync.Mutex
	calls []string
}

func (p *fakeProber) Probe(_ context.Context, url string) (metadata.Info, error) {
	p.mu.Lock()
	p.calls = append(p.calls, url)
	p.mu.Unlock()
	if strings.Contains(url, "silent") {
		return metadata.Info{}, metadata.ErrNoMetadata
	}
	return metadata.Info{Title: "Artist - Track", Source: metadata.SourceICY}, nil
}

func newTestApp(t *testing.T, stations []catalog.Station, deps Deps) (*App, *enginetest.Engine) {
	t.Helper()
	test.NewApp()
	cat, err := catalog.New(stations)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	eng := enginetest.New()
	deps.App = fyne.CurrentApp()
	deps.Engine = eng
	deps.Log = zerolog.Nop()
	a := New(config.Default(), cat, deps)
	a.dispatch = func(f func()) { f() }
	t.Cleanup(a.Close)
	return a, eng
}

func twoStations() []catalog.Station {
	return []catalog.Station{
		{Name: "A", URL: "http://a/stream", Icon: "http://a/icon.png"},
		{Name: "B", URL: "http://b/silent", Icon: "http://b/icon.png"},
	}
}

func TestNewLoadsFirstStation(t *testing.T) {
	a, eng := newTestApp(t, twoStations(), Deps{})

	if got := a.w.Title(); got != config.WindowTitle {
		t.Fatalf("title = %q, want %q", got, config.WindowTitle)
	}
	if idx, _ := a.model.Selected(); idx != 0 {
		t.Fatalf("selected = %d, want 0", idx)
	}
	if eng.Source() != "http://a/stream" {
		t.Fatalf("source = %q, want first station", eng.Source())
	}
	if eng.State() != engine.Stopped {
		t.Fatal("engine should not play before the user asks")
	}
	if eng.Volume() != config.DefaultVolume {
		t.Fatalf("volume = %d, want %d", eng.Volume(), config.DefaultVolume)
	}
	if a.playBtn.State() != engine.Stopped {
		t.Fatal("play button should offer play")
	}
}

func TestPlayNextButton(t *testing.T) {
	a, eng := newTestApp(t, twoStations(), Deps{})

	test.Tap(a.nextPlay.Button)

	if eng.Source() != "http://b/silent" || eng.State() != engine.Playing {
		t.Fatalf("engine = %q/%v, want B playing", eng.Source(), eng.State())
	}
	if idx, _ := a.model.Selected(); idx != 1 {
		t.Fatalf("selected = %d, want 1", idx)
	}
	if a.playBtn.Button.Icon.Name() != theme.MediaStopIcon().Name() {
		t.Fatal("play button should offer stop while playing")
	}
	if got := a.ticker.Text(); got != "Playing: B" {
		t.Fatalf("status = %q", got)
	}
	if !a.ind.Active() {
		t.Fatal("indicator should run while playing")
	}
}

func TestPreviewButtonsDoNotPlay(t *testing.T) {
	a, eng := newTestApp(t, twoStations(), Deps{})

	test.Tap(a.nextPreview.Button)
	test.Tap(a.nextPreview.Button)
	if idx, _ := a.model.Selected(); idx != 1 {
		t.Fatalf("selected = %d, want 1", idx)
	}
	test.Tap(a.prevPreview.Button)
	if idx, _ := a.model.Selected(); idx != 0 {
		t.Fatalf("selected = %d, want 0", idx)
	}
	want := []string{"source http://a/stream"}
	if strings.Join(eng.Calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", eng.Calls, want)
	}
}

func TestKeyboardShortcuts(t *testing.T) {
	a, eng := newTestApp(t, twoStations(), Deps{})
	typeKey := a.w.Canvas().OnTypedKey()

	typeKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	typeKey(&fyne.KeyEvent{Name: fyne.KeyReturn})
	if eng.Source() != "http://b/silent" || eng.State() != engine.Playing {
		t.Fatalf("engine = %q/%v, want B playing", eng.Source(), eng.State())
	}

	typeKey(&fyne.KeyEvent{Name: fyne.KeySpace})
	if eng.State() != engine.Stopped {
		t.Fatal("space should stop playback")
	}

	typeKey(&fyne.KeyEvent{Name: fyne.KeyPlus})
	if eng.Volume() != config.DefaultVolume+5 {
		t.Fatalf("volume = %d, want %d", eng.Volume(), config.DefaultVolume+5)
	}
	typeKey(&fyne.KeyEvent{Name: fyne.KeyMinus})
	typeKey(&fyne.KeyEvent{Name: fyne.KeyMinus})
	if eng.Volume() != config.DefaultVolume-5 {
		t.Fatalf("volume = %d, want %d", eng.Volume(), config.DefaultVolume-5)
	}
}

func TestStreamFailureRestoresPlayIcon(t *testing.T) {
	a, eng := newTestApp(t, twoStations(), Deps{})

	test.Tap(a.playBtn.Button)
	if a.playBtn.State() != engine.Playing {
		t.Fatal("toggle should start playback")
	}
	eng.Fail()
	if a.playBtn.Button.Icon.Name() != theme.MediaPlayIcon().Name() {
		t.Fatal("play button should offer play after the stream dropped")
	}
	if got := a.ticker.Text(); got != "Stopped: A" {
		t.Fatalf("status = %q", got)
	}
}

func TestSelectionAddsHistory(t *testing.T) {
	prober := &fakeProber{}
	a, _ := newTestApp(t, twoStations(), Deps{Prober: prober})

	a.model.Select(1)
	a.lookups.Wait()
	a.model.Select(0)
	a.lookups.Wait()

	if a.history.Len() != 2 {
		t.Fatalf("history has %d entries, want 2", a.history.Len())
	}
	text := a.historyBox.Text
	if !strings.Contains(text, "A - Artist - Track") {
		t.Fatalf("history missing track line:\n%s", text)
	}
	if !strings.Contains(text, "B: no track information") {
		t.Fatalf("history missing fallback line:\n%s", text)
	}
	if len(prober.calls) != 2 || prober.calls[0] != "http://b/silent" {
		t.Fatalf("probe calls = %v", prober.calls)
	}
}

func TestLoadIconsUpdatesRows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(0, 0, color.NRGBA{A: 0xFF})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good.png" {
			w.Write(buf.Bytes())
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	stations := []catalog.Station{
		{Name: "Good FM", URL: "http://good/stream", Icon: srv.URL + "/good.png"},
		{Name: "Bad FM", URL: "http://bad/stream", Icon: srv.URL + "/missing.png"},
	}
	dir := filepath.Join(t.TempDir(), "icons")
	cache := iconcache.New(dir, &iconcache.HTTPFetcher{Client: srv.Client()}, zerolog.Nop())
	a, _ := newTestApp(t, stations, Deps{Icons: cache})

	a.LoadIcons(context.Background())

	if got := a.model.Item(0).IconPath; got != cache.Path(stations[0]) {
		t.Fatalf("icon path = %q, want %q", got, cache.Path(stations[0]))
	}
	if a.stationList.Icon(0).Name() == ui.DefaultStationIcon().Name() {
		t.Fatal("fetched icon was not shown")
	}
	if a.model.Item(1).IconPath != "" {
		t.Fatal("failed icon should leave the row unbound")
	}
	if a.stationList.Icon(1).Name() != ui.DefaultStationIcon().Name() {
		t.Fatal("failed icon should keep the default")
	}
}

// contains reports whether target is reachable from obj through containers
// and split panes.
func contains(obj, target fyne.CanvasObject) bool {
	if obj == target {
		return true
	}
	switch o := obj.(type) {
	case *fyne.Container:
		for _, child := range o.Objects {
			if contains(child, target) {
				return true
			}
		}
	case *container.Split:
		return contains(o.Leading, target) || contains(o.Trailing, target)
	}
	return false
}

func TestLyricsPlaceholderPane(t *testing.T) {
	a, _ := newTestApp(t, twoStations(), Deps{Prober: &fakeProber{}})

	if !contains(a.w.Content(), a.lyricsBox) {
		t.Fatal("lyrics pane is not part of the window")
	}
	if !contains(a.w.Content(), a.historyBox) {
		t.Fatal("history pane is not part of the window")
	}
	if !a.lyricsBox.Disabled() {
		t.Fatal("lyrics pane should be read-only")
	}

	a.model.Select(1)
	a.lookups.Wait()
	if a.lyricsBox.Text != "" {
		t.Fatalf("lyrics pane should stay empty, got %q", a.lyricsBox.Text)
	}
}
