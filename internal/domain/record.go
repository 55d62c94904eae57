package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingFile reports an input path that does not exist. Stages that hit
	// it produce an empty result instead of failing the run.
	ErrMissingFile = errors.New("input file not found")

	// ErrMalformedFeed reports a feed document that could not be parsed at all.
	ErrMalformedFeed = errors.New("malformed feed document")
)

// StationRecord is one motorcycle emissions inspection station.
type StationRecord struct {
	StationNo   string `json:"station_no"`
	StationName string `json:"station_name"`
	Tel         string `json:"tel"`
	Address     string `json:"address"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Note        string `json:"note"`
	City        string `json:"city"`
	District    string `json:"district"`
}

// StationColumns is the column order used by every tabular station export.
var StationColumns = []string{
	"station_no", "station_name", "tel", "address", "latitude", "longitude", "note", "city", "district",
}

// Values returns the record's fields in StationColumns order.
func (r StationRecord) Values() []string {
	return []string{
		r.StationNo, r.StationName, r.Tel, r.Address, r.Latitude, r.Longitude, r.Note, r.City, r.District,
	}
}

// Field names an air-quality measurement or an aggregate column.
type Field string

const (
	FieldAQI          Field = "aqi"
	FieldCO           Field = "co"
	FieldPM25         Field = "pm2.5"
	FieldPM25Avg      Field = "pm2.5_avg"
	FieldNOx          Field = "nox"
	FieldStationCount Field = "station_count"
)

// AirQualityRecord is one monitoring site's reading. Numeric fields are nil
// when the feed value was missing or not a number.
type AirQualityRecord struct {
	SiteName  string   `json:"sitename"`
	County    string   `json:"county"`
	AQI       *float64 `json:"aqi"`
	Pollutant string   `json:"pollutant"`
	Status    string   `json:"status"`
	CO        *float64 `json:"co"`
	PM25      *float64 `json:"pm2.5"`
	PM25Avg   *float64 `json:"pm2.5_avg"`
	NOx       *float64 `json:"nox"`
}

// AirQualityColumns is the column order of the air-quality export.
var AirQualityColumns = []string{
	"sitename", "county", "aqi", "pollutant", "status", "co", "pm2.5", "pm2.5_avg", "nox",
}

// Value returns the numeric field f, or nil if it is absent or not a
// measurement field.
func (r AirQualityRecord) Value(f Field) *float64 {
	switch f {
	case FieldAQI:
		return r.AQI
	case FieldCO:
		return r.CO
	case FieldPM25:
		return r.PM25
	case FieldPM25Avg:
		return r.PM25Avg
	case FieldNOx:
		return r.NOx
	default:
		return nil
	}
}

// ParseMeasurement coerces feed text to a number. Blank text, placeholders
// such as "-" or "ND", NaN and infinities all yield nil.
func ParseMeasurement(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatMeasurement renders a measurement for tabular output; nil renders as "".
func FormatMeasurement(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Values returns the record's fields in AirQualityColumns order.
func (r AirQualityRecord) Values() []string {
	return []string{
		r.SiteName, r.County, FormatMeasurement(r.AQI), r.Pollutant, r.Status,
		FormatMeasurement(r.CO), FormatMeasurement(r.PM25), FormatMeasurement(r.PM25Avg), FormatMeasurement(r.NOx),
	}
}
