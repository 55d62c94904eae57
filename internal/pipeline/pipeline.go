package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/air-station-etl/internal/domain"
	"github.com/couchcryptid/air-station-etl/internal/observability"
)

// ErrNoStations ends a run whose station feed yielded no records.
var ErrNoStations = errors.New("station data is empty")

// StationExtractor reads raw, region-classified station records.
type StationExtractor interface {
	ExtractStations(ctx context.Context) ([]domain.StationRecord, error)
}

// AirQualityExtractor reads air-quality monitoring records.
type AirQualityExtractor interface {
	ExtractAirQuality(ctx context.Context) ([]domain.AirQualityRecord, error)
}

// Loader writes a finished report to one destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, report *domain.Report) error
}

// Pipeline runs one extract-clean-aggregate-load pass over the two feeds.
type Pipeline struct {
	stations StationExtractor
	air      AirQualityExtractor
	loaders  []Loader
	logger   *slog.Logger
	metrics  *observability.Metrics
	topN     int
}

// New creates a Pipeline. Loaders run in the order given; topN bounds how
// many high-PM2.5 cities get a district breakdown.
func New(stations StationExtractor, air AirQualityExtractor, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, topN int) *Pipeline {
	return &Pipeline{
		stations: stations,
		air:      air,
		loaders:  loaders,
		logger:   logger,
		metrics:  metrics,
		topN:     topN,
	}
}

// Run executes the pipeline once and returns the report handed to the
// loaders. A missing feed file yields an empty stage result; an empty
// station feed ends the run with ErrNoStations. Any other extract error and
// the first loader error abort the run.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	start := time.Now()
	run := domain.NewRunInfo()
	logger := p.logger.With("run_id", run.ID)
	logger.Info("pipeline started", "top_n", p.topN, "sinks", len(p.loaders))

	raw, err := p.extractStations(ctx, logger)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoStations
	}

	stations := p.clean(raw, logger)

	air, err := p.extractAirQuality(ctx, logger)
	if err != nil {
		return nil, err
	}

	report := domain.BuildReport(run, stations, air, p.topN)
	p.metrics.JoinRows.Set(float64(len(report.CityJoin)))
	logger.Info("join rows", "rows", len(report.CityJoin), "high_pm25_districts", len(report.HighPM25Districts))

	for _, l := range p.loaders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.Load(ctx, report); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.Name(), err)
		}
	}

	elapsed := time.Since(start)
	p.metrics.RunDuration.Observe(elapsed.Seconds())
	logger.Info("pipeline finished", "duration", elapsed)
	return report, nil
}

func (p *Pipeline) extractStations(ctx context.Context, logger *slog.Logger) ([]domain.StationRecord, error) {
	records, err := p.stations.ExtractStations(ctx)
	if errors.Is(err, domain.ErrMissingFile) {
		logger.Error("station feed missing", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract stations: %w", err)
	}

	unrecognized := 0
	for _, r := range records {
		if r.City == "" {
			unrecognized++
		}
	}
	p.metrics.StationsParsed.Add(float64(len(records)))
	p.metrics.RegionUnrecognized.Add(float64(unrecognized))
	logger.Info("stations parsed", "records", len(records), "unrecognized_region", unrecognized)
	return records, nil
}

func (p *Pipeline) clean(raw []domain.StationRecord, logger *slog.Logger) []domain.StationRecord {
	cleaned, stats := domain.Clean(raw)

	p.metrics.StationsCleaned.Add(float64(len(cleaned)))
	p.metrics.StationRowsDropped.WithLabelValues(observability.ReasonInvalidCity).Add(float64(stats.InvalidCity))
	p.metrics.StationRowsDropped.WithLabelValues(observability.ReasonEmptyDistrict).Add(float64(stats.EmptyDistrict))
	p.metrics.StationRowsDropped.WithLabelValues(observability.ReasonDuplicate).Add(float64(stats.Duplicates))

	logger.Info("stations cleaned",
		"kept", len(cleaned),
		"invalid_city", stats.InvalidCity,
		"empty_district", stats.EmptyDistrict,
		"duplicates", stats.Duplicates,
	)
	return cleaned
}

func (p *Pipeline) extractAirQuality(ctx context.Context, logger *slog.Logger) ([]domain.AirQualityRecord, error) {
	records, err := p.air.ExtractAirQuality(ctx)
	if errors.Is(err, domain.ErrMissingFile) {
		logger.Error("air-quality feed missing", "error", err)
		return []domain.AirQualityRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract air quality: %w", err)
	}

	p.metrics.AirRecordsParsed.Add(float64(len(records)))
	logger.Info("air records parsed", "records", len(records))
	return records, nil
}
