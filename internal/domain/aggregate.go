package domain

import (
	"cmp"
	"slices"

	"github.com/couchcryptid/air-station-etl/internal/region"
)

// CityAggregate pairs a city's inspection-station count with its mean
// air-quality readings. A mean is nil when no reading contributed to it.
type CityAggregate struct {
	City         string   `json:"city"`
	StationCount int      `json:"station_count"`
	MeanPM25     *float64 `json:"pm2.5"`
	MeanAQI      *float64 `json:"aqi"`
}

// CityAggregateColumns is the column order of the city join export.
var CityAggregateColumns = []string{"city", "station_count", "pm2.5", "aqi"}

// Metric returns the value of f for ranking, or nil if f is absent.
func (a CityAggregate) Metric(f Field) *float64 {
	switch f {
	case FieldStationCount:
		v := float64(a.StationCount)
		return &v
	case FieldPM25:
		return a.MeanPM25
	case FieldAQI:
		return a.MeanAQI
	default:
		return nil
	}
}

// DistrictKey identifies a district within a city.
type DistrictKey struct {
	City     string
	District string
}

// DistrictAggregate is the station count of one district.
type DistrictAggregate struct {
	City         string `json:"city"`
	District     string `json:"district"`
	StationCount int    `json:"station_count"`
}

// CountByCity counts stations per city.
func CountByCity(stations []StationRecord) map[string]int {
	counts := make(map[string]int)
	for _, s := range stations {
		counts[s.City]++
	}
	return counts
}

// CountByCityDistrict counts stations per (city, district).
func CountByCityDistrict(stations []StationRecord) map[DistrictKey]int {
	counts := make(map[DistrictKey]int)
	for _, s := range stations {
		counts[DistrictKey{City: s.City, District: s.District}]++
	}
	return counts
}

// SortDistricts flattens district counts into rows ordered by city, then district.
func SortDistricts(counts map[DistrictKey]int) []DistrictAggregate {
	out := make([]DistrictAggregate, 0, len(counts))
	for k, n := range counts {
		out = append(out, DistrictAggregate{City: k.City, District: k.District, StationCount: n})
	}
	slices.SortFunc(out, func(a, b DistrictAggregate) int {
		return cmp.Or(cmp.Compare(a.City, b.City), cmp.Compare(a.District, b.District))
	})
	return out
}

// MeanByCounty averages each field per county over the present values only.
// Every county seen gets an entry for every field; the mean is nil when the
// county has no present value for that field.
func MeanByCounty(records []AirQualityRecord, fields ...Field) map[string]map[Field]*float64 {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[string]map[Field]*acc)

	for _, r := range records {
		byField, ok := sums[r.County]
		if !ok {
			byField = make(map[Field]*acc, len(fields))
			for _, f := range fields {
				byField[f] = &acc{}
			}
			sums[r.County] = byField
		}
		for _, f := range fields {
			if v := r.Value(f); v != nil {
				byField[f].sum += *v
				byField[f].n++
			}
		}
	}

	means := make(map[string]map[Field]*float64, len(sums))
	for county, byField := range sums {
		m := make(map[Field]*float64, len(byField))
		for f, a := range byField {
			if a.n == 0 {
				m[f] = nil
				continue
			}
			mean := a.sum / float64(a.n)
			m[f] = &mean
		}
		means[county] = m
	}
	return means
}

// InnerJoinOnCity keeps the cities present in both station counts and
// air-quality means, ordered by city name. Counts and means are copied
// unchanged; no fuzzy name matching is performed.
func InnerJoinOnCity(stationCounts map[string]int, airMeans map[string]map[Field]*float64) []CityAggregate {
	out := make([]CityAggregate, 0, min(len(stationCounts), len(airMeans)))
	for city, n := range stationCounts {
		means, ok := airMeans[city]
		if !ok {
			continue
		}
		out = append(out, CityAggregate{
			City:         city,
			StationCount: n,
			MeanPM25:     means[FieldPM25],
			MeanAQI:      means[FieldAQI],
		})
	}
	slices.SortFunc(out, func(a, b CityAggregate) int { return cmp.Compare(a.City, b.City) })
	return out
}

// TopNByField returns the n rows with the largest value of field, in
// descending order. Ties keep their input order; rows where the field is
// absent sort after every present value.
func TopNByField(aggregates []CityAggregate, field Field, n int) []CityAggregate {
	if n <= 0 {
		return []CityAggregate{}
	}
	sorted := slices.Clone(aggregates)
	slices.SortStableFunc(sorted, func(a, b CityAggregate) int {
		return compareDesc(a.Metric(field), b.Metric(field))
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// compareDesc orders present values from largest to smallest, then nils.
func compareDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*b, *a)
	}
}

// RankCitiesByCount returns per-city station counts, largest first. Cities
// with equal counts are ordered by name. Means are left nil.
func RankCitiesByCount(stations []StationRecord) []CityAggregate {
	counts := CountByCity(stations)
	out := make([]CityAggregate, 0, len(counts))
	for city, n := range counts {
		out = append(out, CityAggregate{City: city, StationCount: n})
	}
	slices.SortFunc(out, func(a, b CityAggregate) int {
		return cmp.Or(cmp.Compare(b.StationCount, a.StationCount), cmp.Compare(a.City, b.City))
	})
	return out
}

// DistrictCountsForCity returns the district breakdown of one city, largest
// first, ties ordered by district name. The city name is normalized before
// matching. The result is empty when the city has no stations.
func DistrictCountsForCity(stations []StationRecord, city string) []DistrictAggregate {
	city = region.NormalizeChar(city)
	counts := make(map[string]int)
	for _, s := range stations {
		if s.City == city {
			counts[s.District]++
		}
	}
	out := make([]DistrictAggregate, 0, len(counts))
	for d, n := range counts {
		out = append(out, DistrictAggregate{City: city, District: d, StationCount: n})
	}
	slices.SortFunc(out, byCountDesc)
	return out
}

// TopDistrictByCity returns, for every city, the district with the most
// stations. Ties within a city go to the district that sorts first by name.
// Rows are ordered by station count descending, then city name.
func TopDistrictByCity(stations []StationRecord) []DistrictAggregate {
	best := make(map[string]DistrictAggregate)
	for _, d := range SortDistricts(CountByCityDistrict(stations)) {
		cur, ok := best[d.City]
		if !ok || d.StationCount > cur.StationCount {
			best[d.City] = d
		}
	}
	out := make([]DistrictAggregate, 0, len(best))
	for _, d := range best {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b DistrictAggregate) int {
		return cmp.Or(cmp.Compare(b.StationCount, a.StationCount), cmp.Compare(a.City, b.City))
	})
	return out
}

// HighPM25Districts returns the district breakdown of the n cities with the
// highest mean PM2.5 in the join, ordered by city, then district.
func HighPM25Districts(stations []StationRecord, join []CityAggregate, n int) []DistrictAggregate {
	top := TopNByField(join, FieldPM25, n)
	cities := make(map[string]struct{}, len(top))
	for _, a := range top {
		cities[a.City] = struct{}{}
	}

	counts := make(map[DistrictKey]int)
	for k, c := range CountByCityDistrict(stations) {
		if _, ok := cities[k.City]; ok {
			counts[k] = c
		}
	}
	return SortDistricts(counts)
}

func byCountDesc(a, b DistrictAggregate) int {
	return cmp.Or(cmp.Compare(b.StationCount, a.StationCount), cmp.Compare(a.District, b.District))
}
