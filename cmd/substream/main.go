package main

import (
	"errors"
	"os"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/edward-ap/substream/internal/catalog"
	"github.com/edward-ap/substream/internal/config"
	"github.com/edward-ap/substream/internal/engine/vlc"
	"github.com/edward-ap/substream/internal/iconcache"
	"github.com/edward-ap/substream/internal/metadata"
	"github.com/edward-ap/substream/internal/radioapp"
)

func main() {
	opts, err := config.Parse(os.Args[0], os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid options")
	}
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	log = log.Level(level)

	cat, err := catalog.Load(opts.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load station list")
	}
	log.Info().Int("stations", cat.Len()).Str("path", opts.CatalogPath).Msg("station list loaded")

	vlc.SetTraceLoggingEnabled(opts.TraceVLC)
	eng, err := vlc.New(opts.Volume, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot start audio engine")
	}

	deps := radioapp.Deps{
		App:    app.NewWithID(config.AppID),
		Engine: eng,
		Icons:  iconcache.New(opts.IconDir, iconcache.NewHTTPFetcher(opts.IconTimeout), log),
		Log:    log,
	}
	if !opts.NoHistory {
		deps.Prober = metadata.NewProber(nil, opts.ProbeTimeout, log)
	}
	a := radioapp.New(opts, cat, deps)
	defer a.Close()
	a.Run()
}
