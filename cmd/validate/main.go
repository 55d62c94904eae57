// Command validate checks the integrity of a finished run's output tables:
// the cleaned station CSV, the derived city and district tables, and the
// SQLite mirror. It verifies cleaning invariants, recomputes every count from
// the cleaned station table and compares it with the exported aggregates.
//
// Usage:
//
//	go run ./cmd/validate -dir output [-sqlite output/inspection_stations.db]
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/air-station-etl/internal/adapter/csvexport"
	"github.com/couchcryptid/air-station-etl/internal/domain"
	"github.com/couchcryptid/air-station-etl/internal/region"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// table is a CSV export with field values keyed by header name.
type table struct {
	header []string
	rows   []map[string]string
}

func main() {
	dir := flag.String("dir", "output", "directory containing the run's CSV exports")
	dbPath := flag.String("sqlite", "", `SQLite database to compare (default <dir>/inspection_stations.db, "-" to skip)`)
	flag.Parse()

	if *dbPath == "" {
		*dbPath = filepath.Join(*dir, "inspection_stations.db")
	}
	if *dbPath == "-" {
		*dbPath = ""
	}

	os.Exit(run(*dir, *dbPath))
}

func run(dir, dbPath string) int {
	fmt.Println("=== Inspection Station Output Validation ===")
	fmt.Println()

	tables := make(map[string]*table)
	for _, name := range []string{
		csvexport.StationsFile,
		csvexport.CityJoinFile,
		csvexport.HighPM25DistrictsFile,
		csvexport.TopDistrictsFile,
	} {
		t, err := loadTable(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", name, err)
			return 1
		}
		tables[name] = t
	}
	stations := tables[csvexport.StationsFile]

	phases := []*phase{
		validateCleanedStations(stations),
		validateCityJoin(stations, tables[csvexport.CityJoinFile]),
		validateDistrictTables(stations, tables[csvexport.HighPM25DistrictsFile], tables[csvexport.TopDistrictsFile]),
	}
	if dbPath != "" {
		phases = append(phases, validateSQLite(dbPath, stations))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d stations, %d cities, %d high-PM2.5 districts, %d top districts\n",
		len(stations.rows),
		len(tables[csvexport.CityJoinFile].rows),
		len(tables[csvexport.HighPM25DistrictsFile].rows),
		len(tables[csvexport.TopDistrictsFile].rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadTable(path string) (*table, error) {
	header, records, err := csvexport.ReadTable(path)
	if err != nil {
		return nil, err
	}
	t := &table{header: header, rows: make([]map[string]string, 0, len(records))}
	for _, rec := range records {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[h] = rec[j]
			}
		}
		t.rows = append(t.rows, fields)
	}
	return t, nil
}

// ── Phase 1: Cleaned Stations ──
// Every surviving row has a valid city, a non-blank district and is unique.

func validateCleanedStations(stations *table) *phase {
	p := &phase{name: "Phase 1: Cleaned Stations"}

	if !slices.Equal(stations.header, domain.StationColumns) {
		p.errorf("header = %v, want %v", stations.header, domain.StationColumns)
	}

	seen := make(map[string]int, len(stations.rows))
	for i, row := range stations.rows {
		line := i + 2
		city, district := row["city"], row["district"]
		if !region.IsValid(city) {
			p.errorf("line %d: invalid city %q", line, city)
		}
		if strings.TrimSpace(district) == "" {
			p.errorf("line %d: empty district", line)
		}
		if strings.Contains(city+district, "臺") {
			p.errorf("line %d: region not normalized: %q %q", line, city, district)
		}

		key := rowKey(stations.header, row)
		if first, dup := seen[key]; dup {
			p.errorf("line %d: duplicate of line %d", line, first)
			continue
		}
		seen[key] = line
	}
	return p
}

func rowKey(header []string, row map[string]string) string {
	vals := make([]string, len(header))
	for i, h := range header {
		vals[i] = row[h]
	}
	return strings.Join(vals, "\x1f")
}

// ── Phase 2: City Join ──
// Station counts in the join match the cleaned table; cities are unique and sorted.

func validateCityJoin(stations, join *table) *phase {
	p := &phase{name: "Phase 2: City Join"}

	if !slices.Equal(join.header, domain.CityAggregateColumns) {
		p.errorf("header = %v, want %v", join.header, domain.CityAggregateColumns)
	}

	counts := countBy(stations, "city")
	var cities []string
	for i, row := range join.rows {
		line := i + 2
		city := row["city"]
		cities = append(cities, city)

		n, err := strconv.Atoi(row["station_count"])
		if err != nil {
			p.errorf("line %d: station_count %q is not an integer", line, row["station_count"])
			continue
		}
		if n != counts[city] {
			p.errorf("line %d: %s station_count = %d, cleaned table has %d", line, city, n, counts[city])
		}
		for _, col := range []string{"pm2.5", "aqi"} {
			if v := row[col]; v != "" && domain.ParseMeasurement(v) == nil {
				p.errorf("line %d: %s %s = %q is not a number", line, city, col, v)
			}
		}
	}

	if !slices.IsSorted(cities) {
		p.errorf("cities are not sorted: %v", cities)
	}
	if len(slices.Compact(slices.Clone(cities))) != len(cities) {
		p.errorf("cities are not unique: %v", cities)
	}
	return p
}

// ── Phase 3: District Tables ──
// District counts match the cleaned table and each top district is a maximum.

func validateDistrictTables(stations, high, top *table) *phase {
	p := &phase{name: "Phase 3: District Tables"}

	counts := make(map[domain.DistrictKey]int)
	best := make(map[string]int)
	for _, row := range stations.rows {
		k := domain.DistrictKey{City: row["city"], District: row["district"]}
		counts[k]++
		best[k.City] = max(best[k.City], counts[k])
	}

	for i, row := range high.rows {
		k := domain.DistrictKey{City: row["city"], District: row["district"]}
		checkCount(p, csvexport.HighPM25DistrictsFile, i+2, row, counts[k])
	}

	if len(top.rows) != len(best) {
		p.errorf("%s has %d cities, cleaned table has %d", csvexport.TopDistrictsFile, len(top.rows), len(best))
	}
	for i, row := range top.rows {
		k := domain.DistrictKey{City: row["city"], District: row["top_district"]}
		checkCount(p, csvexport.TopDistrictsFile, i+2, row, counts[k])
		if counts[k] != best[k.City] {
			p.errorf("%s line %d: %s %s has %d stations, busiest district has %d",
				csvexport.TopDistrictsFile, i+2, k.City, k.District, counts[k], best[k.City])
		}
	}
	return p
}

func checkCount(p *phase, file string, line int, row map[string]string, want int) {
	n, err := strconv.Atoi(row["station_count"])
	if err != nil {
		p.errorf("%s line %d: station_count %q is not an integer", file, line, row["station_count"])
		return
	}
	if n != want {
		p.errorf("%s line %d: station_count = %d, cleaned table has %d", file, line, n, want)
	}
}

func countBy(t *table, col string) map[string]int {
	counts := make(map[string]int)
	for _, row := range t.rows {
		counts[row[col]]++
	}
	return counts
}

// ── Phase 4: SQLite Mirror ──
// The stations table holds the same rows as the cleaned CSV.

func validateSQLite(path string, stations *table) *phase {
	p := &phase{name: "Phase 4: SQLite Mirror"}

	if _, err := os.Stat(path); err != nil {
		p.errorf("open %s: %v", path, err)
		return p
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		p.errorf("open %s: %v", path, err)
		return p
	}
	defer db.Close()

	rows, err := db.Query(`SELECT ` + strings.Join(quoted(domain.StationColumns), ", ") + ` FROM stations`)
	if err != nil {
		p.errorf("query stations: %v", err)
		return p
	}
	defer rows.Close()

	want := make(map[string]int, len(stations.rows))
	for _, row := range stations.rows {
		want[rowKey(domain.StationColumns, row)]++
	}

	n := 0
	vals := make([]string, len(domain.StationColumns))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			p.errorf("scan station: %v", err)
			return p
		}
		n++
		key := strings.Join(vals, "\x1f")
		if want[key] == 0 {
			p.errorf("station %s in database but not in %s", vals[0], csvexport.StationsFile)
			continue
		}
		want[key]--
	}
	if err := rows.Err(); err != nil {
		p.errorf("iterate stations: %v", err)
	}
	if n != len(stations.rows) {
		p.errorf("database has %d stations, %s has %d", n, csvexport.StationsFile, len(stations.rows))
	}

	var runs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs); err != nil {
		p.errorf("count runs: %v", err)
	} else if runs == 0 {
		p.errorf("runs table is empty")
	}
	return p
}

func quoted(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strconv.Quote(c)
	}
	return out
}
