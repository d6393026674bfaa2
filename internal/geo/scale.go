package geo

import "math"

// Reds5 is the five-step sequential red scheme used by the map.
var Reds5 = []string{"#fee5d9", "#fcae91", "#fb6a4a", "#de2d26", "#a50f15"}

// QuantizeScale splits [Min, Max] into len(Range) equal buckets.
// Values outside the domain clamp to the first or last color.
type QuantizeScale struct {
	Min, Max float64
	Range    []string
}

// Color returns the bucket color for v, or "" for NaN or an empty range.
func (q QuantizeScale) Color(v float64) string {
	n := len(q.Range)
	if n == 0 || math.IsNaN(v) {
		return ""
	}
	return q.Range[q.bucket(v)]
}

// Thresholds returns the n-1 inner bucket boundaries.
func (q QuantizeScale) Thresholds() []float64 {
	n := len(q.Range)
	if n < 2 {
		return nil
	}
	out := make([]float64, n-1)
	for i := range out {
		out[i] = (float64(i+1)*q.Max + float64(n-1-i)*q.Min) / float64(n)
	}
	return out
}

// bucket counts thresholds <= v, so boundary values land in the upper bucket.
func (q QuantizeScale) bucket(v float64) int {
	i := 0
	for _, t := range q.Thresholds() {
		if v < t {
			break
		}
		i++
	}
	return i
}
