// Package radioapp wires the station catalog, icon cache, playback controller
// and fyne widgets together into the Radio Substream window.
package radioapp

import (
	"context"
	"errors"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/edward-ap/substream/internal/catalog"
	"github.com/edward-ap/substream/internal/config"
	"github.com/edward-ap/substream/internal/engine"
	"github.com/edward-ap/substream/internal/history"
	"github.com/edward-ap/substream/internal/iconcache"
	"github.com/edward-ap/substream/internal/metadata"
	"github.com/edward-ap/substream/internal/playback"
	"github.com/edward-ap/substream/internal/stationlist"
	"github.com/edward-ap/substream/internal/ui"
)

// TrackProber looks up what a stream currently plays.
type TrackProber interface {
	Probe(ctx context.Context, streamURL string) (metadata.Info, error)
}

// Deps are the collaborators the window is built from. Prober may be nil to
// disable track lookups.
type Deps struct {
	App    fyne.App
	Engine engine.Engine
	Icons  *iconcache.Cache
	Prober TrackProber
	Log    zerolog.Logger
}

// App owns the main window and routes user input to the transport.
type App struct {
	opts config.Options
	log  zerolog.Logger

	fa fyne.App
	w  fyne.Window

	cat     *catalog.Catalog
	model   *stationlist.Model
	ctl     *playback.Controller
	tr      *playback.Transport
	icons   *iconcache.Cache
	prober  TrackProber
	history *history.Log

	stationList *ui.StationList
	historyBox  *widget.Entry
	lyricsBox   *widget.Entry
	playBtn     *ui.PlayStopButton
	prevPreview *ui.SquareButton
	prevPlay    *ui.SquareButton
	nextPreview *ui.SquareButton
	nextPlay    *ui.SquareButton
	volSlider   *widget.Slider
	statusLbl   *widget.Label
	ticker      *ui.TickerController
	ind         *ui.StreamIndicator

	// dispatch runs a function on the UI thread.
	dispatch func(func())

	lookupMu     sync.Mutex
	lookupCancel context.CancelFunc
	// lookups counts running track probes; tests wait on it.
	lookups sync.WaitGroup

	closeOnce sync.Once
	stopIcons context.CancelFunc
}

// New builds the window for cat. The first station is selected and loaded
// into the engine but not played.
func New(opts config.Options, cat *catalog.Catalog, deps Deps) *App {
	a := &App{
		opts:     opts,
		log:      deps.Log,
		fa:       deps.App,
		cat:      cat,
		icons:    deps.Icons,
		prober:   deps.Prober,
		history:  history.New(history.DefaultLimit),
		dispatch: ui.CallOnMain,
	}
	a.model = stationlist.New(cat)
	a.ctl = playback.NewController(deps.Engine, a.model, a.log)
	a.tr = playback.NewTransport(a.ctl, a.model)

	a.fa.SetIcon(appIcon())
	a.w = a.fa.NewWindow(config.WindowTitle)
	a.w.SetMaster()
	a.w.SetIcon(appIcon())
	a.w.Resize(fyne.NewSize(float32(opts.WindowW), float32(opts.WindowH)))

	a.buildUI()

	a.model.OnSelectionChanged(a.onSelectionChanged)
	a.model.OnActivated(func(int, catalog.Station) { a.play(a.tr.PlaySelected) })
	a.ctl.OnStateChanged(func(s engine.State) {
		a.dispatch(func() { a.renderState(s) })
	})

	_, first := a.model.Selected()
	if err := a.ctl.Load(first); err != nil {
		a.log.Error().Err(err).Msg("cannot load initial station")
	}
	if err := a.tr.SetVolume(opts.Volume); err != nil {
		a.log.Warn().Err(err).Msg("cannot apply initial volume")
	}

	a.w.Canvas().SetOnTypedKey(a.handleKey)
	a.w.SetCloseIntercept(func() {
		a.Close()
		a.w.Close()
	})
	return a
}

// Run loads the station icons in the background and enters the event loop.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopIcons = cancel
	go a.LoadIcons(ctx)
	a.w.ShowAndRun()
}

// Close stops playback, background lookups and releases the engine.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.stopIcons != nil {
			a.stopIcons()
		}
		a.cancelLookup()
		if a.ticker != nil {
			a.ticker.Close()
		}
		if a.ind != nil {
			a.ind.SetActive(false)
		}
		a.ctl.Engine().Close()
	})
}

// buildUI lays out the info panel (stations, history and lyrics) above the
// control panel (volume, transport buttons and status line).
func (a *App) buildUI() {
	a.stationList = ui.NewStationList(a.model)

	a.historyBox = widget.NewMultiLineEntry()
	a.historyBox.SetPlaceHolder("Select a station to see what it is playing")
	a.historyBox.Wrapping = fyne.TextWrapWord
	a.historyBox.Disable()

	a.lyricsBox = widget.NewMultiLineEntry()
	a.lyricsBox.SetPlaceHolder("Lyrics are not available")
	a.lyricsBox.Wrapping = fyne.TextWrapWord
	a.lyricsBox.Disable()

	panes := container.NewHSplit(a.historyBox, a.lyricsBox)
	info := container.NewHSplit(a.stationList.CanvasObject(), panes)
	info.Offset = 0.4

	a.volSlider = widget.NewSlider(0, 100)
	a.volSlider.Orientation = widget.Vertical
	a.volSlider.Step = 1
	a.volSlider.Value = float64(a.opts.Volume)
	a.volSlider.OnChanged = func(v float64) {
		if err := a.tr.SetVolume(int(v + 0.5)); err != nil {
			a.log.Warn().Err(err).Msg("volume change failed")
		}
	}
	volBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(32, ui.SquareButtonSize)), a.volSlider)

	a.prevPreview = ui.NewSquareButton(previewPrevIcon(), a.tr.PreviewPrevious)
	a.prevPlay = ui.NewSquareButton(playPrevIcon(), func() { a.play(a.tr.PlayPrevious) })
	a.playBtn = ui.NewPlayStopButton(func() { a.play(a.ctl.PlayStopToggle) })
	a.nextPreview = ui.NewSquareButton(previewNextIcon(), a.tr.PreviewNext)
	a.nextPlay = ui.NewSquareButton(playNextIcon(), func() { a.play(a.tr.PlayNext) })

	controls := container.NewHBox(
		volBox,
		layout.NewSpacer(),
		a.prevPreview.CanvasObject(),
		a.prevPlay.CanvasObject(),
		a.playBtn.CanvasObject(),
		a.nextPreview.CanvasObject(),
		a.nextPlay.CanvasObject(),
		layout.NewSpacer(),
	)

	a.statusLbl = widget.NewLabel("")
	a.statusLbl.Truncation = fyne.TextTruncateClip
	statusWrap := container.NewStack(a.statusLbl)
	a.ticker = ui.NewTickerController(a.statusLbl, statusWrap, "Stopped")
	a.ind = ui.NewStreamIndicator(14)
	status := container.NewBorder(nil, nil, a.ind.CanvasObject(), nil, statusWrap)

	bottom := container.NewVBox(widget.NewSeparator(), status, controls)
	a.w.SetContent(container.NewBorder(nil, bottom, nil, nil, info))
}

// play runs a transport command and reports failures on the status line.
func (a *App) play(cmd func() error) {
	if err := cmd(); err != nil {
		a.log.Error().Err(err).Msg("playback command failed")
		a.ticker.SetText("Playback failed")
	}
}

// renderState mirrors an engine state into the widgets. UI thread only.
func (a *App) renderState(s engine.State) {
	a.playBtn.SetState(s)
	a.ind.SetActive(s == engine.Playing)
	cur, ok := a.ctl.Current()
	switch {
	case s == engine.Playing && ok:
		a.ticker.SetText("Playing: " + cur.Name)
	case ok:
		a.ticker.SetText("Stopped: " + cur.Name)
	default:
		a.ticker.SetText("Stopped")
	}
}

func (a *App) onSelectionChanged(_ int, st catalog.Station) {
	a.stationList.SyncSelection()
	a.log.Debug().Str("station", st.Name).Str("url", st.URL).Msg("selection changed")
	a.lookupTrack(st)
}

// lookupTrack probes st in the background and appends the result to the
// history panel. A newer selection cancels an older lookup.
func (a *App) lookupTrack(st catalog.Station) {
	if a.prober == nil || a.opts.NoHistory {
		return
	}
	a.cancelLookup()
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.ProbeTimeout)
	a.lookupMu.Lock()
	a.lookupCancel = cancel
	a.lookupMu.Unlock()

	a.lookups.Add(1)
	go func() {
		defer a.lookups.Done()
		defer cancel()
		info, err := a.prober.Probe(ctx, st.URL)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			a.log.Debug().Err(err).Str("station", st.Name).Msg("track lookup failed")
		}
		entry := history.Entry{At: time.Now(), Station: st.Name, Title: info.Title}
		a.dispatch(func() { a.addHistory(entry) })
	}()
}

func (a *App) cancelLookup() {
	a.lookupMu.Lock()
	if a.lookupCancel != nil {
		a.lookupCancel()
		a.lookupCancel = nil
	}
	a.lookupMu.Unlock()
}

func (a *App) addHistory(e history.Entry) {
	if a.history.Add(e) {
		a.historyBox.SetText(a.history.Text())
	}
}

// LoadIcons ensures every station icon is cached and shows it in the list.
// Stations whose icon cannot be fetched or decoded keep the default icon.
func (a *App) LoadIcons(ctx context.Context) {
	if a.icons == nil {
		return
	}
	a.icons.Warm(ctx, a.cat.Stations(), func(i int, path string, err error) {
		if err != nil {
			return
		}
		res, derr := ui.LoadStationIcon(path)
		if derr != nil {
			a.log.Debug().Err(derr).Str("path", path).Msg("icon not decodable, using default")
		}
		a.dispatch(func() {
			a.model.SetIcon(i, path)
			a.stationList.SetIcon(i, res)
		})
	})
}

// handleKey implements the keyboard shortcuts of the main window.
func (a *App) handleKey(ke *fyne.KeyEvent) {
	if ke == nil {
		return
	}
	switch ke.Name {
	case fyne.KeyReturn, fyne.KeyEnter:
		a.play(a.tr.PlaySelected)
	case fyne.KeySpace:
		a.play(a.ctl.PlayStopToggle)
	case fyne.KeyUp:
		a.tr.PreviewPrevious()
	case fyne.KeyDown:
		a.tr.PreviewNext()
	case fyne.KeyLeft:
		a.play(a.tr.PlayPrevious)
	case fyne.KeyRight:
		a.play(a.tr.PlayNext)
	case fyne.KeyPlus, fyne.KeyEqual:
		a.changeVolume(+5)
	case fyne.KeyMinus:
		a.changeVolume(-5)
	}
}

// changeVolume moves the slider, which forwards the level to the engine.
func (a *App) changeVolume(delta int) {
	v := engine.ClampVolume(int(a.volSlider.Value+0.5) + delta)
	a.volSlider.SetValue(float64(v))
}
