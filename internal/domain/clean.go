package domain

import (
	"strings"

	"github.com/couchcryptid/air-station-etl/internal/region"
)

// CleanStats counts the rows removed by each cleaning step.
type CleanStats struct {
	InvalidCity   int
	EmptyDistrict int
	Duplicates    int
}

// Dropped returns the total number of removed rows.
func (s CleanStats) Dropped() int {
	return s.InvalidCity + s.EmptyDistrict + s.Duplicates
}

// Clean filters station records down to rows with a valid city and a
// non-blank district, normalizing the region fields and removing exact
// duplicates. Input order is preserved. Clean(Clean(x)) == Clean(x).
//
// Station fields are plain strings, so a "missing" region is always the empty
// string: an empty city fails the valid-city check and an empty district
// fails the blank-district check.
func Clean(records []StationRecord) ([]StationRecord, CleanStats) {
	var stats CleanStats
	kept := make([]StationRecord, 0, len(records))

	for _, r := range records {
		r.City = region.NormalizeChar(r.City)
		r.District = region.NormalizeChar(r.District)

		if !region.IsValid(r.City) {
			stats.InvalidCity++
			continue
		}
		if strings.TrimSpace(r.District) == "" {
			stats.EmptyDistrict++
			continue
		}
		kept = append(kept, r)
	}

	// Dedup runs last: normalization above can turn distinct rows into equal ones.
	seen := make(map[StationRecord]struct{}, len(kept))
	out := kept[:0]
	for _, r := range kept {
		if _, dup := seen[r]; dup {
			stats.Duplicates++
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, stats
}
