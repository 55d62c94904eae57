package xmlfeed

import (
	"context"
	"io"
	"log/slog"

	"github.com/couchcryptid/air-station-etl/internal/domain"
	"github.com/couchcryptid/air-station-etl/internal/region"
)

// ParseStations reads an inspection-station feed. Every immediate child of
// the root is one station; missing fields read as "". City and district are
// derived from the trimmed address.
func ParseStations(r io.Reader, classifier region.Classifier) ([]domain.StationRecord, error) {
	root, err := readDocument(r)
	if err != nil {
		return nil, err
	}

	items := root.ChildElements()
	out := make([]domain.StationRecord, 0, len(items))
	for _, item := range items {
		address := trimmedText(item, "address")
		name := classifier.Classify(address)
		out = append(out, domain.StationRecord{
			StationNo:   trimmedText(item, "sno"),
			StationName: trimmedText(item, "sname"),
			Tel:         trimmedText(item, "tel"),
			Address:     address,
			Latitude:    trimmedText(item, "latitude"),
			Longitude:   trimmedText(item, "longitude"),
			Note:        trimmedText(item, "note"),
			City:        string(name.City),
			District:    name.District,
		})
	}
	return out, nil
}

// StationReader extracts station records from a feed file.
// It implements pipeline.StationExtractor.
type StationReader struct {
	path       string
	classifier region.Classifier
	logger     *slog.Logger
}

// NewStationReader creates a reader for the station feed at path.
func NewStationReader(path string, classifier region.Classifier, logger *slog.Logger) *StationReader {
	return &StationReader{path: path, classifier: classifier, logger: logger}
}

// ExtractStations parses the feed file. A missing file wraps
// domain.ErrMissingFile.
func (s *StationReader) ExtractStations(_ context.Context) ([]domain.StationRecord, error) {
	f, err := openFeed(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ParseStations(f, s.classifier)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.City == "" {
			s.logger.Debug("unrecognized station region", "station_no", r.StationNo, "address", r.Address)
		}
	}
	s.logger.Info("station feed parsed", "path", s.path, "records", len(records))
	return records, nil
}
