// Command etl runs one pass of the inspection-station and air-quality
// pipeline: it parses both XML feeds, cleans the station table, joins it
// with per-county air-quality means and writes the results to CSV, SQLite
// and terminal charts.
//
// Usage:
//
//	etl [station.xml [air.xml]]
//
// Positional arguments override STATION_XML and AIR_XML.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/air-station-etl/internal/adapter/csvexport"
	"github.com/couchcryptid/air-station-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/air-station-etl/internal/adapter/textchart"
	"github.com/couchcryptid/air-station-etl/internal/adapter/xmlfeed"
	"github.com/couchcryptid/air-station-etl/internal/config"
	"github.com/couchcryptid/air-station-etl/internal/observability"
	"github.com/couchcryptid/air-station-etl/internal/pipeline"
	"github.com/couchcryptid/air-station-etl/internal/region"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [station.xml [air.xml]]\n", os.Args[0])
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		cfg.StationXML = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		cfg.AirXML = flag.Arg(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, cfg, logger, metrics)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics export failed", "error", err)
		}
	}
	if code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) int {
	classifier, err := newClassifier(cfg, metrics)
	if err != nil {
		logger.Error("failed to create region cache", "error", err)
		return 1
	}

	stations := xmlfeed.NewStationReader(cfg.StationXML, classifier, logger)
	air := xmlfeed.NewAirQualityReader(cfg.AirXML, logger)

	loaders := []pipeline.Loader{csvexport.NewWriter(cfg.OutputDir, logger)}
	if cfg.SQLitePath != "" {
		loaders = append(loaders, sqlite.NewStore(cfg.SQLitePath, logger))
	} else {
		logger.Info("sqlite sink disabled")
	}
	if cfg.Charts {
		loaders = append(loaders, textchart.NewRenderer(os.Stdout, logger))
	}

	p := pipeline.New(stations, air, loaders, logger, metrics, cfg.TopN)

	report, err := p.Run(ctx)
	if errors.Is(err, pipeline.ErrNoStations) {
		logger.Error("station data is empty, nothing to analyze", "path", cfg.StationXML)
		return 1
	}
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return 1
	}

	if cached, ok := classifier.(*region.CachedClassifier); ok {
		hits, misses := cached.Stats()
		logger.Debug("region cache", "hits", hits, "misses", misses)
	}
	logger.Info("run complete",
		"run_id", report.Run.ID,
		"stations", len(report.Stations),
		"air_records", len(report.AirQuality),
		"cities", len(report.CityJoin),
		"output_dir", cfg.OutputDir,
	)
	return 0
}

func newClassifier(cfg *config.Config, metrics *observability.Metrics) (region.Classifier, error) {
	if cfg.RegionCacheSize == 0 {
		return region.Parser{}, nil
	}
	return region.NewCachedClassifier(region.Parser{}, cfg.RegionCacheSize, metrics.ObserveCacheLookup)
}
