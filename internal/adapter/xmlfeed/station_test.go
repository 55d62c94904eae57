package xmlfeed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-station-etl/internal/domain"
	"github.com/couchcryptid/air-station-etl/internal/region"
)

const stationFeed = `<?xml version="1.0" encoding="utf-8"?>
<InspectionStations>
  <Data>
    <sno> M0001 </sno>
    <sname>大安機車行</sname>
    <tel>02-27001234</tel>
    <address>  臺北市大安區復興南路一段1號 </address>
    <latitude>25.0330</latitude>
    <longitude>121.5436</longitude>
    <note></note>
  </Data>
  <Data>
    <sno>M0002</sno>
    <sname>竹北檢驗站</sname>
    <address>新竹縣竹北市光明路6號</address>
  </Data>
  <Data>
    <sno>M0003</sno>
    <sname>無地址</sname>
  </Data>
</InspectionStations>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseStations(t *testing.T) {
	records, err := ParseStations(strings.NewReader(stationFeed), region.Parser{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, domain.StationRecord{
		StationNo:   "M0001",
		StationName: "大安機車行",
		Tel:         "02-27001234",
		Address:     "臺北市大安區復興南路一段1號",
		Latitude:    "25.0330",
		Longitude:   "121.5436",
		Note:        "",
		City:        "台北市",
		District:    "大安區",
	}, records[0])

	t.Run("missing children default to empty", func(t *testing.T) {
		assert.Equal(t, "M0002", records[1].StationNo)
		assert.Empty(t, records[1].Tel)
		assert.Empty(t, records[1].Latitude)
		assert.Equal(t, "新竹縣", records[1].City)
		assert.Equal(t, "竹北市", records[1].District)
	})

	t.Run("unrecognized region is retained", func(t *testing.T) {
		assert.Equal(t, "M0003", records[2].StationNo)
		assert.Empty(t, records[2].Address)
		assert.Empty(t, records[2].City)
		assert.Empty(t, records[2].District)
	})
}

func TestParseStations_EmptyRoot(t *testing.T) {
	records, err := ParseStations(strings.NewReader(`<root/>`), region.Parser{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseStations_Malformed(t *testing.T) {
	for _, doc := range []string{"", "not xml", "<root><Data></root>"} {
		_, err := ParseStations(strings.NewReader(doc), region.Parser{})
		require.Error(t, err, "%q", doc)
		assert.ErrorIs(t, err, domain.ErrMalformedFeed)
	}
}

func TestStationReader_ExtractStations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.xml")
	require.NoError(t, os.WriteFile(path, []byte(stationFeed), 0o600))

	reader := NewStationReader(path, region.Parser{}, discardLogger())
	records, err := reader.ExtractStations(context.Background())

	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestStationReader_MissingFile(t *testing.T) {
	dir := t.TempDir()

	for _, path := range []string{filepath.Join(dir, "nope.xml"), dir} {
		reader := NewStationReader(path, region.Parser{}, discardLogger())
		records, err := reader.ExtractStations(context.Background())

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingFile)
		assert.Contains(t, err.Error(), path)
		assert.Nil(t, records)
	}
}
