// Package render draws the dashboard charts as standalone SVG documents.
// Every chart degrades to an empty-state document instead of failing.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

const (
	Width  = 800
	Height = 400

	fontFamily = `font-family="Inter, Helvetica, Arial, sans-serif"`
	mutedText  = `fill="#6b7280"`
	axisStroke = `stroke="#e5e7eb"`
)

type margins struct {
	top, right, bottom, left int
}

func (m margins) plot(width, height int) (w, h int) {
	return width - m.left - m.right, height - m.top - m.bottom
}

func begin(w io.Writer, width, height int) *svg.SVG {
	canvas := svg.New(w)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height), fontFamily)
	return canvas
}

// Empty draws a placeholder carrying message.
func Empty(w io.Writer, width, height int, message string) {
	canvas := begin(w, width, height)
	canvas.Rect(0, 0, width, height, `fill="#fafafa"`, `rx="8"`)
	canvas.Text(width/2, height/2, message, `text-anchor="middle"`, mutedText, `font-size="15"`)
	canvas.End()
}

// niceMax rounds v up to a multiple of five, never below 1.
func niceMax(v int) int {
	n := int(math.Ceil(float64(v)/5)) * 5
	if n < 1 {
		return 1
	}
	return n
}

// ticks returns five evenly spaced, rounded tick values from top to 0.
func ticks(top int) []int {
	out := make([]int, 5)
	for i := range out {
		out[i] = int(math.Round(float64(top) / 4 * float64(4-i)))
	}
	return out
}

// scale maps v in [0, top] onto [0, span] pixels.
func scale(v, top, span int) int {
	if top <= 0 {
		return 0
	}
	return int(math.Round(float64(v) / float64(top) * float64(span)))
}

func fill(color string) string {
	return fmt.Sprintf(`fill="%s"`, color)
}

func stroke(color string, width float64) string {
	return fmt.Sprintf(`stroke="%s" stroke-width="%s"`, color, strconv.FormatFloat(width, 'f', -1, 64))
}

// percent formats v with at most one decimal; zero reads "0%".
func percent(v float64) string {
	if v == 0 {
		return "0%"
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64) + "%"
}

// yAxis draws horizontal grid lines and tick labels for [0, top].
func yAxis(canvas *svg.SVG, m margins, plotW, plotH, top int) {
	for _, t := range ticks(top) {
		y := m.top + plotH - scale(t, top, plotH)
		canvas.Line(m.left, y, m.left+plotW, y, axisStroke)
		canvas.Text(m.left-8, y+4, strconv.Itoa(t), `text-anchor="end"`, mutedText, `font-size="11"`)
	}
}
