// Command airquality converts an air-quality XML feed into
// air_quality.csv without running the rest of the pipeline.
//
// Usage:
//
//	airquality [-in 空汙.xml] [-out output/air_quality.csv]
//
// Defaults come from AIR_XML and OUTPUT_DIR.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/air-station-etl/internal/adapter/csvexport"
	"github.com/couchcryptid/air-station-etl/internal/adapter/xmlfeed"
	"github.com/couchcryptid/air-station-etl/internal/config"
	"github.com/couchcryptid/air-station-etl/internal/domain"
	"github.com/couchcryptid/air-station-etl/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	in := flag.String("in", cfg.AirXML, "air-quality XML feed")
	out := flag.String("out", filepath.Join(cfg.OutputDir, csvexport.AirQualityFile), "CSV output path")
	flag.Parse()

	logger := observability.NewLogger(cfg)
	if err := convert(context.Background(), *in, *out, logger); err != nil {
		if errors.Is(err, domain.ErrMissingFile) {
			logger.Error("air-quality feed not found", "path", *in)
		} else {
			logger.Error("conversion failed", "error", err)
		}
		os.Exit(1)
	}
}

func convert(ctx context.Context, in, out string, logger *slog.Logger) error {
	records, err := xmlfeed.NewAirQualityReader(in, logger).ExtractAirQuality(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := csvexport.WriteAirQuality(out, records); err != nil {
		return err
	}
	logger.Info("air quality csv written", "path", out, "records", len(records))
	return nil
}
