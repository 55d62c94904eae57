// Package csvexport writes run results as UTF-8 CSV files with a byte order
// mark, so spreadsheet tools detect the encoding of the Chinese text.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/air-station-etl/internal/domain"
)

// Output file names, relative to the export directory.
const (
	StationsFile          = "inspection_stations_clean.csv"
	AirQualityFile        = "air_quality.csv"
	CityJoinFile          = "city_air_vs_station.csv"
	HighPM25DistrictsFile = "high_pm25_city_district_station.csv"
	TopDistrictsFile      = "top_district_by_city.csv"
)

var (
	districtColumns    = []string{"city", "district", "station_count"}
	topDistrictColumns = []string{"city", "top_district", "station_count"}
)

// Writer exports a report as a set of CSV files in one directory.
// It implements pipeline.Loader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for dir. The directory is created on first Load.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in logs and errors.
func (w *Writer) Name() string { return "csv" }

// Load writes every table of the report.
func (w *Writer) Load(_ context.Context, report *domain.Report) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tables := []struct {
		file   string
		header []string
		rows   [][]string
	}{
		{StationsFile, domain.StationColumns, stationRows(report.Stations)},
		{AirQualityFile, domain.AirQualityColumns, airQualityRows(report.AirQuality)},
		{CityJoinFile, domain.CityAggregateColumns, cityRows(report.CityJoin)},
		{HighPM25DistrictsFile, districtColumns, districtRows(report.HighPM25Districts)},
		{TopDistrictsFile, topDistrictColumns, districtRows(report.TopDistricts)},
	}
	for _, t := range tables {
		path := filepath.Join(w.dir, t.file)
		if err := WriteTable(path, t.header, t.rows); err != nil {
			return err
		}
		w.logger.Info("csv written", "path", path, "rows", len(t.rows))
	}
	return nil
}

// WriteAirQuality writes only the air-quality table to path.
func WriteAirQuality(path string, records []domain.AirQualityRecord) error {
	return WriteTable(path, domain.AirQualityColumns, airQualityRows(records))
}

// WriteTable writes a header and rows to path, replacing any existing file.
func WriteTable(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	enc := unicode.UTF8BOM.NewEncoder().Writer(f)
	cw := csv.NewWriter(enc)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if c, ok := enc.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("flush %s: %w", path, err)
		}
	}
	return nil
}

// ReadTable reads a CSV file written by WriteTable, dropping the byte order
// mark if present. It returns the header and the data rows separately.
func ReadTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	all, err := csv.NewReader(dec).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("read %s: no header row", path)
	}
	return all[0], all[1:], nil
}

func stationRows(records []domain.StationRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return rows
}

func airQualityRows(records []domain.AirQualityRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return rows
}

func cityRows(aggs []domain.CityAggregate) [][]string {
	rows := make([][]string, len(aggs))
	for i, a := range aggs {
		rows[i] = []string{
			a.City,
			strconv.Itoa(a.StationCount),
			domain.FormatMeasurement(a.MeanPM25),
			domain.FormatMeasurement(a.MeanAQI),
		}
	}
	return rows
}

func districtRows(aggs []domain.DistrictAggregate) [][]string {
	rows := make([][]string, len(aggs))
	for i, a := range aggs {
		rows[i] = []string{a.City, a.District, strconv.Itoa(a.StationCount)}
	}
	return rows
}
