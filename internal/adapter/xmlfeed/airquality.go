package xmlfeed

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	"github.com/couchcryptid/air-station-etl/internal/domain"
	"github.com/couchcryptid/air-station-etl/internal/region"
)

// ParseAirQuality reads an air-quality feed. Any element, at any depth,
// with both a sitename and a county child is one record; records are
// returned in document order. Numeric fields that are missing or not numbers
// read as nil.
func ParseAirQuality(r io.Reader) ([]domain.AirQualityRecord, error) {
	root, err := readDocument(r)
	if err != nil {
		return nil, err
	}

	var out []domain.AirQualityRecord
	for _, el := range collect(root, isAirQualityRecord) {
		site, _ := childText(el, "sitename")
		county, _ := childText(el, "county")
		pollutant, _ := childText(el, "pollutant")
		status, _ := childText(el, "status")

		out = append(out, domain.AirQualityRecord{
			SiteName:  strings.TrimSpace(site),
			County:    strings.TrimSpace(region.NormalizeChar(county)),
			AQI:       measurement(el, "aqi"),
			Pollutant: pollutant,
			Status:    status,
			CO:        measurement(el, "co"),
			PM25:      measurement(el, "pm2.5"),
			PM25Avg:   measurement(el, "pm2.5_avg"),
			NOx:       measurement(el, "nox"),
		})
	}
	return out, nil
}

func isAirQualityRecord(el *etree.Element) bool {
	_, hasSite := childText(el, "sitename")
	_, hasCounty := childText(el, "county")
	return hasSite && hasCounty
}

func measurement(el *etree.Element, tag string) *float64 {
	s, ok := childText(el, tag)
	if !ok {
		return nil
	}
	return domain.ParseMeasurement(s)
}

// collect walks the tree rooted at root in document order, root included,
// and returns every element matching keep. The walk uses an explicit stack so
// deeply nested feeds cannot exhaust the goroutine stack.
func collect(root *etree.Element, keep func(*etree.Element) bool) []*etree.Element {
	var out []*etree.Element
	stack := []*etree.Element{root}
	for len(stack) > 0 {
		el := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if keep(el) {
			out = append(out, el)
		}
		children := el.ChildElements()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// AirQualityReader extracts air-quality records from a feed file.
// It implements pipeline.AirQualityExtractor.
type AirQualityReader struct {
	path   string
	logger *slog.Logger
}

// NewAirQualityReader creates a reader for the air-quality feed at path.
func NewAirQualityReader(path string, logger *slog.Logger) *AirQualityReader {
	return &AirQualityReader{path: path, logger: logger}
}

// ExtractAirQuality parses the feed file. A missing file wraps
// domain.ErrMissingFile.
func (a *AirQualityReader) ExtractAirQuality(_ context.Context) ([]domain.AirQualityRecord, error) {
	f, err := openFeed(a.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ParseAirQuality(f)
	if err != nil {
		return nil, err
	}
	a.logger.Info("air quality feed parsed", "path", a.path, "records", len(records))
	return records, nil
}
