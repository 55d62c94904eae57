package sqlite

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/air-station-etl/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.db")
	return NewStore(path, slog.New(slog.NewTextHandler(io.Discard, nil))), path
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func report(runID string, stations ...domain.StationRecord) *domain.Report {
	return &domain.Report{
		Run:      domain.RunInfo{ID: runID, GeneratedAt: time.Date(2025, 12, 1, 1, 30, 0, 0, time.UTC)},
		Stations: stations,
		AirQuality: []domain.AirQualityRecord{
			{SiteName: "中山", County: "台北市"},
		},
	}
}

func TestStore_Load(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	err := store.Load(ctx, report("run-1",
		domain.StationRecord{StationNo: "M1", StationName: "中正站", City: "台北市", District: "中正區"},
		domain.StationRecord{StationNo: "M2", StationName: "竹北站", City: "新竹縣", District: "竹北市"},
	))
	require.NoError(t, err)

	db := openDB(t, path)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations WHERE city = ?`, "台北市").Scan(&count))
	assert.Equal(t, 1, count)

	var name, district string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT station_name, district FROM stations WHERE station_no = ?`, "M2").Scan(&name, &district))
	assert.Equal(t, "竹北站", name)
	assert.Equal(t, "竹北市", district)

	var generatedAt string
	var stationCount, airCount int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT generated_at, station_count, air_record_count FROM runs WHERE run_id = ?`, "run-1").
		Scan(&generatedAt, &stationCount, &airCount))
	assert.Equal(t, "2025-12-01T01:30:00Z", generatedAt)
	assert.Equal(t, 2, stationCount)
	assert.Equal(t, 1, airCount)
}

func TestStore_Load_ReplacesStationsKeepsRuns(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Load(ctx, report("run-1",
		domain.StationRecord{StationNo: "M1", City: "台北市", District: "中正區"},
		domain.StationRecord{StationNo: "M2", City: "台北市", District: "大安區"},
	)))
	require.NoError(t, store.Load(ctx, report("run-2",
		domain.StationRecord{StationNo: "M3", City: "高雄市", District: "苓雅區"},
	)))

	db := openDB(t, path)

	var stations, runs int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations`).Scan(&stations))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 1, stations)
	assert.Equal(t, 2, runs)
}

func TestStore_Load_DuplicateRunID(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Load(ctx, report("run-1", domain.StationRecord{StationNo: "M1"})))
	err := store.Load(ctx, report("run-1", domain.StationRecord{StationNo: "M9"}))
	require.Error(t, err)

	db := openDB(t, path)
	var no string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT station_no FROM stations`).Scan(&no))
	assert.Equal(t, "M1", no, "failed load rolls back the station replacement")
}

func TestStore_Name(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Equal(t, "sqlite", store.Name())
}
