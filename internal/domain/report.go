package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunInfo identifies one batch run.
type RunInfo struct {
	ID          string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewRunInfo stamps a new run with a random ID and the current clock time.
func NewRunInfo() RunInfo {
	return RunInfo{
		ID:          uuid.NewString(),
		GeneratedAt: clock.Now().UTC(),
	}
}

// Report carries everything a run produces to the sinks.
type Report struct {
	Run RunInfo

	// Stations is the cleaned station table.
	Stations   []StationRecord
	AirQuality []AirQualityRecord

	// CityRanking is every city's station count, largest first.
	CityRanking []CityAggregate

	// CityJoin is the inner join of station counts and air-quality means.
	CityJoin []CityAggregate

	// HighPM25Districts is the district breakdown of the top cities by PM2.5.
	HighPM25Districts []DistrictAggregate

	// TopDistricts holds each city's busiest district.
	TopDistricts []DistrictAggregate
}

// BuildReport aggregates cleaned stations and air-quality records. topN
// bounds how many high-PM2.5 cities get a district breakdown.
func BuildReport(run RunInfo, stations []StationRecord, air []AirQualityRecord, topN int) *Report {
	join := InnerJoinOnCity(CountByCity(stations), MeanByCounty(air, FieldPM25, FieldAQI))
	return &Report{
		Run:               run,
		Stations:          stations,
		AirQuality:        air,
		CityRanking:       RankCitiesByCount(stations),
		CityJoin:          join,
		HighPM25Districts: HighPM25Districts(stations, join, topN),
		TopDistricts:      TopDistrictByCity(stations),
	}
}
