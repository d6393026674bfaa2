package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/plataa/triagedash/internal/geo"
	"github.com/plataa/triagedash/internal/service"
)

const (
	MapWidth  = 800
	MapHeight = 500

	maleColor   = "#DC3545"
	femaleColor = "#007BFF"
	raceTotal   = "#007bff"
	raceAutism  = "#28a745"

	noMap     = "Map data unavailable."
	noGender  = "No data by sex."
	noRace    = "No data by race."
	legendMin = "0%"
	legendMax = "≥ 3%"
)

// ChoroplethMap draws every shaded feature projected onto the Brazil
// viewport. Hovering a region shows its name and value.
func ChoroplethMap(w io.Writer, features []geo.ShadedFeature) {
	if len(features) == 0 {
		Empty(w, MapWidth, MapHeight, noMap)
		return
	}

	proj := geo.BrazilMercator(MapWidth, MapHeight)
	canvas := begin(w, MapWidth, MapHeight)
	for _, f := range features {
		d := ringsPath(proj, f.Rings)
		if d == "" {
			continue
		}
		canvas.Group(fmt.Sprintf(`data-region="%s"`, escapeAttr(f.Key)))
		canvas.Title(f.Tooltip.Title + ": " + f.Tooltip.Value)
		canvas.Path(d, fill(f.Fill), stroke("#ffffff", 0.5), `fill-rule="evenodd"`)
		canvas.Gend()
	}

	for i, c := range geo.Reds5 {
		canvas.Rect(20+i*24, MapHeight-34, 24, 12, fill(c))
	}
	canvas.Text(20, MapHeight-40, legendMin, `font-size="11"`, mutedText)
	canvas.Text(20+len(geo.Reds5)*24, MapHeight-40, legendMax, `text-anchor="end"`, `font-size="11"`, mutedText)
	canvas.Rect(160, MapHeight-34, 24, 12, fill(geo.NoDataFill))
	canvas.Text(190, MapHeight-24, geo.NotAvailable, `font-size="11"`, mutedText)
	canvas.End()
}

// GenderPie draws the male and female share of resident autism cases.
// A zero share is labeled "0%" rather than treated as missing.
func GenderPie(w io.Writer, g service.GenderDistribution) {
	if g.MalePercentage+g.FemalePercentage <= 0 {
		Empty(w, Width, Height, noGender)
		return
	}

	const (
		cx, cy = 200, 200
		radius = 140.0
	)
	slices := []struct {
		label string
		value float64
		color string
	}{
		{"Homens", g.MalePercentage, maleColor},
		{"Mulheres", g.FemalePercentage, femaleColor},
	}

	canvas := begin(w, Width, Height)
	total := g.MalePercentage + g.FemalePercentage
	// a circle of radius r/2 stroked r wide fills the whole disc
	inner := radius / 2
	circumference := 2 * math.Pi * inner
	start := 0.0
	for _, s := range slices {
		frac := s.value / total
		arc := circumference * frac
		if arc > 0 {
			canvas.Circle(cx, cy, int(inner),
				`fill="none"`,
				stroke(s.color, radius),
				fmt.Sprintf(`stroke-dasharray="%.3f %.3f"`, arc, circumference-arc),
				fmt.Sprintf(`stroke-dashoffset="%.3f"`, -start*circumference),
				fmt.Sprintf(`transform="rotate(-90 %d %d)"`, cx, cy))
			mid := (start + frac/2) * 2 * math.Pi
			lx := cx + int(math.Round(radius*0.6*math.Sin(mid)))
			ly := cy - int(math.Round(radius*0.6*math.Cos(mid)))
			canvas.Text(lx, ly+5, percent(s.value), `text-anchor="middle"`, `fill="#fff"`, `font-size="14"`, `font-weight="700"`)
		}
		start += frac
	}

	for i, s := range slices {
		y := 160 + i*36
		canvas.Rect(420, y-12, 14, 14, fill(s.color), `rx="3"`)
		canvas.Text(444, y, fmt.Sprintf("%s: %s", s.label, percent(s.value)), `font-size="15"`, `fill="#333"`)
	}
	canvas.End()
}

// EthnicityBars draws total students against autism cases per race.
func EthnicityBars(w io.Writer, rows []service.RaceBreakdown) {
	if len(rows) == 0 {
		Empty(w, Width, Height, noRace)
		return
	}

	m := margins{top: 20, right: 30, bottom: 60, left: 70}
	plotW, plotH := m.plot(Width, Height)

	var peak int64
	for _, r := range rows {
		peak = max(peak, r.Total, r.Autism)
	}
	if peak == 0 {
		Empty(w, Width, Height, noRace)
		return
	}
	top := niceMax(clampInt(peak))

	canvas := begin(w, Width, Height)
	yAxis(canvas, m, plotW, plotH, top)

	band := plotW / len(rows)
	barW := band * 8 / 10 / 2
	for i, r := range rows {
		x0 := m.left + i*band + band/10
		bars := []struct {
			label string
			value int64
			color string
		}{
			{"Total", r.Total, raceTotal},
			{"Autismo", r.Autism, raceAutism},
		}
		for j, b := range bars {
			h := scale(clampInt(b.value), top, plotH)
			canvas.Group()
			canvas.Title(fmt.Sprintf("%s · %s: %d", r.Race, b.label, b.value))
			canvas.Rect(x0+j*barW, m.top+plotH-h, barW-4, h, fill(b.color))
			canvas.Gend()
		}
		canvas.Text(m.left+i*band+band/2, m.top+plotH+20, r.Race, `text-anchor="middle"`, mutedText, `font-size="12"`)
	}

	legendY := Height - 14
	canvas.Rect(m.left, legendY-10, 12, 12, fill(raceTotal))
	canvas.Text(m.left+18, legendY, "Total", `font-size="12"`, mutedText)
	canvas.Rect(m.left+80, legendY-10, 12, 12, fill(raceAutism))
	canvas.Text(m.left+98, legendY, "Autismo", `font-size="12"`, mutedText)
	canvas.End()
}

func ringsPath(proj geo.Mercator, rings [][][2]float64) string {
	var b strings.Builder
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		for i, pt := range ring {
			x, y := proj.Project(pt[0], pt[1])
			if i == 0 {
				b.WriteString("M")
			} else {
				b.WriteString("L")
			}
			b.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(y, 'f', 1, 64))
		}
		b.WriteString("Z")
	}
	return b.String()
}

func clampInt(v int64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
