package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func station(no, city, district string) StationRecord {
	return StationRecord{
		StationNo:   no,
		StationName: "車行" + no,
		Address:     city + district + "中山路1號",
		City:        city,
		District:    district,
	}
}

func TestClean(t *testing.T) {
	in := []StationRecord{
		station("1", "台北市", "中正區"),
		station("2", "", ""),       // unrecognized address
		station("3", "台中市", ""),    // no district
		station("4", "台中市", "   "), // blank district
		station("5", "東京都", "新宿區"), // not a valid city
		station("6", "新竹縣", "竹北市"),
		station("1", "台北市", "中正區"), // exact duplicate
	}

	out, stats := Clean(in)

	want := []StationRecord{
		station("1", "台北市", "中正區"),
		station("6", "新竹縣", "竹北市"),
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("Clean mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, CleanStats{InvalidCity: 2, EmptyDistrict: 2, Duplicates: 1}, stats)
	assert.Equal(t, 5, stats.Dropped())
}

func TestClean_NormalizesRegionFields(t *testing.T) {
	r := station("7", "臺東縣", "臺東市")
	r.Address = "臺東縣臺東市中華路1段"

	out, _ := Clean([]StationRecord{r})

	assert.Len(t, out, 1)
	assert.Equal(t, "台東縣", out[0].City)
	assert.Equal(t, "台東市", out[0].District)
	assert.Equal(t, "臺東縣臺東市中華路1段", out[0].Address, "only region fields are normalized")
}

func TestClean_DuplicatesCreatedByNormalization(t *testing.T) {
	a := station("8", "台南市", "東區")
	b := a
	b.City = "臺南市"

	out, stats := Clean([]StationRecord{a, b})

	assert.Len(t, out, 1)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestClean_KDuplicatesCollapseToOne(t *testing.T) {
	r := station("9", "高雄市", "苓雅區")
	for k := 1; k <= 5; k++ {
		in := make([]StationRecord, 0, k+1)
		in = append(in, station("10", "高雄市", "前鎮區"))
		for range k {
			in = append(in, r)
		}

		out, _ := Clean(in)

		count := 0
		for _, o := range out {
			if o == r {
				count++
			}
		}
		assert.Equal(t, 1, count, "k=%d", k)
		assert.Equal(t, "10", out[0].StationNo, "first-seen order preserved")
	}
}

func TestClean_Idempotent(t *testing.T) {
	in := []StationRecord{
		station("1", "臺北市", "中正區"),
		station("1", "台北市", "中正區"),
		station("2", "新北市", "板橋區"),
		station("3", "", ""),
		station("4", "基隆市", " "),
		station("2", "新北市", "板橋區"),
	}

	once, _ := Clean(in)
	twice, stats := Clean(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("Clean not idempotent (-once +twice):\n%s", diff)
	}
	assert.Zero(t, stats.Dropped())
}

func TestClean_Empty(t *testing.T) {
	out, stats := Clean(nil)
	assert.Empty(t, out)
	assert.Zero(t, stats.Dropped())
}
