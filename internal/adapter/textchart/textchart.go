// Package textchart renders run results as horizontal bar charts on a
// terminal. Labels mix CJK and ASCII text, so column alignment is computed
// from display width rather than byte or rune length.
package textchart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/couchcryptid/air-station-etl/internal/domain"
)

const (
	DefaultWidth = 40
	DefaultGlyph = "█"

	noData = "（無資料）"
)

// Renderer draws report charts to an io.Writer.
// It implements pipeline.Loader.
type Renderer struct {
	out    io.Writer
	width  int
	glyph  string
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the length, in glyphs, of the longest bar.
func WithWidth(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.width = n
		}
	}
}

// WithGlyph sets the bar glyph.
func WithGlyph(g string) Option {
	return func(r *Renderer) {
		if g != "" {
			r.glyph = g
		}
	}
}

// NewRenderer creates a Renderer writing to out.
func NewRenderer(out io.Writer, logger *slog.Logger, opts ...Option) *Renderer {
	r := &Renderer{out: out, width: DefaultWidth, glyph: DefaultGlyph, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name identifies the sink in logs and errors.
func (r *Renderer) Name() string { return "textchart" }

// Load draws the station count per city, the city comparison, the top district of every city and the
// district breakdown of each high-PM2.5 city.
func (r *Renderer) Load(_ context.Context, report *domain.Report) error {
	charts := []chart{
		cityRankingChart(report.CityRanking),
		cityJoinChart(report.CityJoin),
		topDistrictChart(report.TopDistricts),
	}
	for _, city := range highPM25Cities(report.HighPM25Districts) {
		charts = append(charts, districtChart(city, domain.DistrictCountsForCity(report.Stations, city)))
	}

	for _, c := range charts {
		if err := r.render(c); err != nil {
			return fmt.Errorf("render %q: %w", c.title, err)
		}
	}
	r.logger.Info("charts rendered", "charts", len(charts))
	return nil
}

type bar struct {
	label string
	value float64
	note  string
}

type chart struct {
	title string
	bars  []bar
}

func cityRankingChart(ranking []domain.CityAggregate) chart {
	c := chart{title: "各縣市機車排氣檢測站數量"}
	for _, a := range ranking {
		c.bars = append(c.bars, bar{
			label: a.City,
			value: float64(a.StationCount),
			note:  strconv.Itoa(a.StationCount),
		})
	}
	return c
}

func cityJoinChart(join []domain.CityAggregate) chart {
	c := chart{title: "各縣市 空汙程度 × 機車檢測站密度"}
	for _, a := range join {
		pm := "-"
		if a.MeanPM25 != nil {
			pm = strconv.FormatFloat(*a.MeanPM25, 'f', 1, 64)
		}
		c.bars = append(c.bars, bar{
			label: a.City,
			value: float64(a.StationCount),
			note:  fmt.Sprintf("%d 站  PM2.5 %s", a.StationCount, pm),
		})
	}
	return c
}

func topDistrictChart(top []domain.DistrictAggregate) chart {
	c := chart{title: "各縣市機車排氣檢測站數量最多的行政區（Top 1）"}
	for _, d := range top {
		c.bars = append(c.bars, bar{
			label: d.City + " " + d.District,
			value: float64(d.StationCount),
			note:  strconv.Itoa(d.StationCount),
		})
	}
	return c
}

func districtChart(city string, districts []domain.DistrictAggregate) chart {
	c := chart{title: city + "｜行政區機車檢測站分布（高 PM2.5 縣市）"}
	for _, d := range districts {
		c.bars = append(c.bars, bar{
			label: d.District,
			value: float64(d.StationCount),
			note:  strconv.Itoa(d.StationCount),
		})
	}
	return c
}

// highPM25Cities lists the distinct cities of the breakdown in first-seen order.
func highPM25Cities(rows []domain.DistrictAggregate) []string {
	var cities []string
	seen := make(map[string]struct{})
	for _, d := range rows {
		if _, ok := seen[d.City]; ok {
			continue
		}
		seen[d.City] = struct{}{}
		cities = append(cities, d.City)
	}
	return cities
}

func (r *Renderer) render(c chart) error {
	var b strings.Builder
	b.WriteString("\n" + c.title + "\n")
	b.WriteString(strings.Repeat("─", runewidth.StringWidth(c.title)) + "\n")

	if len(c.bars) == 0 {
		b.WriteString(noData + "\n")
		_, err := io.WriteString(r.out, b.String())
		return err
	}

	labelWidth, maxValue := 0, 0.0
	for _, br := range c.bars {
		labelWidth = max(labelWidth, runewidth.StringWidth(br.label))
		maxValue = max(maxValue, br.value)
	}

	for _, br := range c.bars {
		b.WriteString(runewidth.FillRight(br.label, labelWidth))
		b.WriteString(" │")
		b.WriteString(strings.Repeat(r.glyph, r.barLength(br.value, maxValue)))
		b.WriteString(" " + br.note + "\n")
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// barLength scales v against maxValue. Any positive value gets at least one glyph.
func (r *Renderer) barLength(v, maxValue float64) int {
	if v <= 0 || maxValue <= 0 {
		return 0
	}
	n := int(math.Round(v / maxValue * float64(r.width)))
	return max(n, 1)
}
