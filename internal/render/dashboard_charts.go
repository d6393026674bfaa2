package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/plataa/triagedash/internal/records"
	"github.com/plataa/triagedash/internal/service"
)

const (
	totalColor = "#4e73df"

	noRecords  = "No records for the selected filters."
	noTrend    = "Not enough data to show the trend."
	noRegions  = "No high-risk cases by region."
	noAgeGroup = "No age group data."
)

// RiskDonut draws the share of each risk level around the total.
func RiskDonut(w io.Writer, counts service.RiskCounts) {
	total := counts.Total()
	if total == 0 {
		Empty(w, Width, Height, noRecords)
		return
	}

	canvas := begin(w, Width, Height)
	const (
		cx, cy = 200, 200
		radius = 120.0
		ring   = 46.0
	)
	circumference := 2 * math.Pi * radius

	offset := 0.0
	for _, level := range records.RiskLevels {
		n := counts.Get(level)
		if n == 0 {
			continue
		}
		arc := circumference * float64(n) / float64(total)
		canvas.Circle(cx, cy, int(radius),
			`fill="none"`,
			stroke(level.Color(), ring),
			fmt.Sprintf(`stroke-dasharray="%.3f %.3f"`, arc, circumference-arc),
			fmt.Sprintf(`stroke-dashoffset="%.3f"`, -offset),
			fmt.Sprintf(`transform="rotate(-90 %d %d)"`, cx, cy))
		offset += arc
	}

	canvas.Text(cx, cy-4, strconv.Itoa(total), `text-anchor="middle"`, `font-size="32"`, `font-weight="700"`, `fill="#0f172a"`)
	canvas.Text(cx, cy+20, "Total", `text-anchor="middle"`, mutedText, `font-size="13"`)

	for i, level := range records.RiskLevels {
		y := 150 + i*36
		canvas.Rect(420, y-12, 14, 14, fill(level.Color()), `rx="3"`)
		canvas.Text(444, y, fmt.Sprintf("%s: %d", level.Label(), counts.Get(level)), `font-size="15"`, `fill="#1f2937"`)
	}
	canvas.End()
}

// AgeBars draws one group of risk bars per age group, in the given order.
func AgeBars(w io.Writer, groups []service.AgeGroupRisk) {
	if len(groups) == 0 {
		Empty(w, Width, Height, noAgeGroup)
		return
	}

	m := margins{top: 20, right: 20, bottom: 60, left: 50}
	plotW, plotH := m.plot(Width, Height)

	peak := 0
	for _, g := range groups {
		for _, level := range records.RiskLevels {
			peak = max(peak, g.Get(level))
		}
	}
	top := niceMax(peak)

	canvas := begin(w, Width, Height)
	yAxis(canvas, m, plotW, plotH, top)

	band := plotW / len(groups)
	barW := max(2, band*8/10/len(records.RiskLevels))
	for i, g := range groups {
		x0 := m.left + i*band + band/10
		for j, level := range records.RiskLevels {
			v := g.Get(level)
			h := scale(v, top, plotH)
			x := x0 + j*barW
			canvas.Group()
			canvas.Title(fmt.Sprintf("%s · %s: %d", g.AgeGroup, level.Label(), v))
			canvas.Rect(x, m.top+plotH-h, barW-2, h, fill(level.Color()), `rx="3"`)
			canvas.Gend()
		}
		canvas.Text(m.left+i*band+band/2, m.top+plotH+20, g.AgeGroup, `text-anchor="middle"`, mutedText, `font-size="12"`)
	}
	canvas.End()
}

// RegionBars draws the high-risk ranking as horizontal bars.
func RegionBars(w io.Writer, regions []service.RegionCount) {
	if len(regions) == 0 {
		Empty(w, Width, Height, noRegions)
		return
	}

	m := margins{top: 20, right: 60, bottom: 20, left: 180}
	plotW, plotH := m.plot(Width, Height)

	peak := 0
	for _, r := range regions {
		peak = max(peak, r.HighRiskCount)
	}

	row := min(56, plotH/len(regions))
	barH := row * 6 / 10
	canvas := begin(w, Width, Height)
	for i, r := range regions {
		y := m.top + i*row
		width := max(2, scale(r.HighRiskCount, peak, plotW))
		canvas.Text(m.left-10, y+barH/2+5, r.Region, `text-anchor="end"`, `font-size="13"`, `fill="#1f2937"`)
		canvas.Rect(m.left, y, plotW, barH, `fill="#f3f4f6"`, `rx="6"`)
		canvas.Rect(m.left, y, width, barH, fill(records.RiskHigh.Color()), `rx="6"`)
		canvas.Text(m.left+width+8, y+barH/2+5, strconv.Itoa(r.HighRiskCount), `font-size="13"`, mutedText)
	}
	canvas.End()
}

// Trend draws total and high-risk counts per day. A single day is drawn
// as flat segments across the plot so the value still reads as a line.
func Trend(w io.Writer, points []service.TrendPoint) {
	if len(points) == 0 {
		Empty(w, Width, Height, noTrend)
		return
	}

	m := margins{top: 20, right: 30, bottom: 70, left: 50}
	plotW, plotH := m.plot(Width, Height)

	peak := 0
	for _, p := range points {
		peak = max(peak, p.TotalCount, p.HighRiskCount)
	}
	top := niceMax(peak)

	canvas := begin(w, Width, Height)
	yAxis(canvas, m, plotW, plotH, top)

	y := func(v int) int { return m.top + plotH - scale(v, top, plotH) }
	series := []struct {
		color string
		value func(service.TrendPoint) int
	}{
		{totalColor, func(p service.TrendPoint) int { return p.TotalCount }},
		{records.RiskHigh.Color(), func(p service.TrendPoint) int { return p.HighRiskCount }},
	}

	if len(points) == 1 {
		p := points[0]
		cx := m.left + plotW/2
		for _, s := range series {
			v := y(s.value(p))
			canvas.Line(m.left, v, m.left+plotW, v, stroke(s.color, 2), `stroke-dasharray="6 4"`)
			canvas.Circle(cx, v, 4, fill(s.color))
		}
		canvas.Text(cx, m.top+plotH+20, p.Date, `text-anchor="middle"`, mutedText, `font-size="11"`)
	} else {
		step := float64(plotW) / float64(len(points)-1)
		xs := make([]int, len(points))
		for i := range points {
			xs[i] = m.left + int(math.Round(float64(i)*step))
		}
		for _, s := range series {
			ys := make([]int, len(points))
			for i, p := range points {
				ys[i] = y(s.value(p))
			}
			canvas.Polyline(xs, ys, `fill="none"`, stroke(s.color, 2))
			for i, p := range points {
				canvas.Group()
				canvas.Title(fmt.Sprintf("%s: %d", p.Date, s.value(p)))
				canvas.Circle(xs[i], ys[i], 3, fill(s.color))
				canvas.Gend()
			}
		}
		every := max(1, len(points)/10)
		for i, p := range points {
			if i%every != 0 && i != len(points)-1 {
				continue
			}
			canvas.Text(xs[i], m.top+plotH+20, p.Date, `text-anchor="middle"`, mutedText, `font-size="11"`)
		}
	}

	legendY := Height - 18
	canvas.Rect(m.left, legendY-10, 12, 12, fill(totalColor), `rx="3"`)
	canvas.Text(m.left+18, legendY, "Total", `font-size="12"`, mutedText)
	canvas.Rect(m.left+80, legendY-10, 12, 12, fill(records.RiskHigh.Color()), `rx="3"`)
	canvas.Text(m.left+98, legendY, records.RiskHigh.Label(), `font-size="12"`, mutedText)
	canvas.End()
}
