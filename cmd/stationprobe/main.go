// stationprobe prints what the stations of a station list are playing. It uses
// the same ICY and status-json lookups as the player's history panel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/edward-ap/substream/internal/catalog"
	"github.com/edward-ap/substream/internal/config"
	"github.com/edward-ap/substream/internal/metadata"
)

type result struct {
	st   catalog.Station
	info metadata.Info
	err  error
}

func main() {
	fs := pflag.NewFlagSet("stationprobe", pflag.ContinueOnError)
	path := fs.StringP("stations", "s", config.DefaultCatalogPath, "path to the station list JSON")
	name := fs.StringP("name", "n", "", "probe only the station with this name")
	timeout := fs.Duration("timeout", config.DefaultProbeTimeout, "per-station lookup timeout")
	debug := fs.BoolP("debug", "d", false, "log every lookup step")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	cat, err := catalog.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load station list")
	}
	stations := cat.Stations()
	if *name != "" {
		i := cat.Index(*name)
		if i < 0 {
			log.Fatal().Str("name", *name).Msg("no such station")
		}
		stations = stations[i : i+1]
	}

	prober := metadata.NewProber(nil, *timeout, log)
	results := make([]result, len(stations))
	var wg sync.WaitGroup
	for i, st := range stations {
		wg.Add(1)
		go func(i int, st catalog.Station) {
			defer wg.Done()
			info, err := prober.Probe(context.Background(), st.URL)
			results[i] = result{st: st, info: info, err: err}
		}(i, st)
	}
	wg.Wait()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tSOURCE\tTITLE")
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t-\t(%v)\n", r.st.Name, r.err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.st.Name, r.info.Source, r.info.Title)
	}
	tw.Flush()
	if failed == len(results) {
		os.Exit(1)
	}
}
