package csvexport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-station-etl/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func ptr(v float64) *float64 { return &v }

func testReport() *domain.Report {
	return &domain.Report{
		Stations: []domain.StationRecord{
			{StationNo: "M1", StationName: "中正車業, 分店", Address: "台北市中正區忠孝西路100號", City: "台北市", District: "中正區"},
			{StationNo: "M2", StationName: "竹北站", Address: "新竹縣竹北市光明路6號", City: "新竹縣", District: "竹北市"},
		},
		AirQuality: []domain.AirQualityRecord{
			{SiteName: "中山", County: "台北市", AQI: ptr(45), PM25: ptr(12.5)},
		},
		CityJoin: []domain.CityAggregate{
			{City: "台北市", StationCount: 1, MeanPM25: ptr(12.5), MeanAQI: nil},
		},
		HighPM25Districts: []domain.DistrictAggregate{
			{City: "台北市", District: "中正區", StationCount: 1},
		},
		TopDistricts: []domain.DistrictAggregate{
			{City: "台北市", District: "中正區", StationCount: 1},
			{City: "新竹縣", District: "竹北市", StationCount: 1},
		},
	}
}

func TestWriter_Load(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, w.Load(context.Background(), testReport()))

	t.Run("stations", func(t *testing.T) {
		header, rows, err := ReadTable(filepath.Join(dir, StationsFile))
		require.NoError(t, err)
		assert.Equal(t, domain.StationColumns, header)
		require.Len(t, rows, 2)
		assert.Equal(t, "中正車業, 分店", rows[0][1], "commas survive quoting")
		assert.Equal(t, "竹北市", rows[1][8])
	})

	t.Run("city join", func(t *testing.T) {
		header, rows, err := ReadTable(filepath.Join(dir, CityJoinFile))
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "station_count", "pm2.5", "aqi"}, header)
		if diff := cmp.Diff([][]string{{"台北市", "1", "12.5", ""}}, rows); diff != "" {
			t.Fatalf("city join mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("air quality", func(t *testing.T) {
		_, rows, err := ReadTable(filepath.Join(dir, AirQualityFile))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"中山", "台北市", "45", "", "", "", "12.5", "", ""}}, rows)
	})

	t.Run("district tables", func(t *testing.T) {
		header, rows, err := ReadTable(filepath.Join(dir, HighPM25DistrictsFile))
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "district", "station_count"}, header)
		assert.Equal(t, [][]string{{"台北市", "中正區", "1"}}, rows)

		header, rows, err = ReadTable(filepath.Join(dir, TopDistrictsFile))
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "top_district", "station_count"}, header)
		assert.Len(t, rows, 2)
	})
}

func TestWriteTable_BOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, WriteTable(path, []string{"city"}, [][]string{{"台北市"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Equal(t, "city\n台北市\n", string(data[len(utf8BOM):]))
}

func TestWriteTable_EmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteTable(path, []string{"a", "b"}, nil))

	header, rows, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, header)
	assert.Empty(t, rows)
}

func TestWriteAirQuality(t *testing.T) {
	path := filepath.Join(t.TempDir(), AirQualityFile)
	require.NoError(t, WriteAirQuality(path, testReport().AirQuality))

	header, rows, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, domain.AirQualityColumns, header)
	assert.Len(t, rows, 1)
}

func TestReadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := ReadTable(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, _, err = ReadTable(empty)
	assert.ErrorContains(t, err, "no header row")
}

func TestWriteTable_BadDir(t *testing.T) {
	err := WriteTable(filepath.Join(t.TempDir(), "no", "such", "dir.csv"), []string{"a"}, nil)
	assert.Error(t, err)
}
