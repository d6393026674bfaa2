package geo

import "fmt"

// NoDataFill is used for features without a matching metric.
const NoDataFill = "#eee"

// NotAvailable is the tooltip marker for features without a value.
const NotAvailable = "N/D"

// Tooltip is what hovering a feature shows.
type Tooltip struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// ShadedFeature is a feature with its computed fill.
type ShadedFeature struct {
	Name     string         `json:"name"`
	Key      string         `json:"key"`
	Fill     string         `json:"fill"`
	Value    float64        `json:"value"`
	HasValue bool           `json:"has_value"`
	Tooltip  Tooltip        `json:"tooltip"`
	Rings    [][][2]float64 `json:"-"`
}

// Choropleth colors features by a region metric.
type Choropleth struct {
	Scale  QuantizeScale
	NoData string
}

// DefaultChoropleth maps percentages in [0, 3] onto five reds; the data's
// expected range sits well under 3%, higher values clamp to the darkest.
func DefaultChoropleth() Choropleth {
	return Choropleth{
		Scale:  QuantizeScale{Min: 0, Max: 3, Range: Reds5},
		NoData: NoDataFill,
	}
}

// Fill returns the color for a feature name. It depends only on the name
// and the metric.
func (c Choropleth) Fill(name string, metric RegionMetric) string {
	v, ok := metric.Lookup(name)
	if !ok {
		return c.NoData
	}
	if color := c.Scale.Color(v); color != "" {
		return color
	}
	return c.NoData
}

// Shade computes fill and tooltip for every feature. Neither input is
// modified.
func (c Choropleth) Shade(features []Feature, metric RegionMetric) []ShadedFeature {
	out := make([]ShadedFeature, 0, len(features))
	for _, f := range features {
		v, ok := metric.Lookup(f.Name)
		sf := ShadedFeature{
			Name:     f.Name,
			Key:      NormalizeName(f.Name),
			Fill:     c.Fill(f.Name, metric),
			HasValue: ok,
			Tooltip:  HoverText(f.Name, v, ok),
			Rings:    f.Rings,
		}
		if ok {
			sf.Value = v
		}
		out = append(out, sf)
	}
	return out
}

// HoverText formats the tooltip for a feature.
func HoverText(name string, v float64, ok bool) Tooltip {
	title := name
	if title == "" {
		title = "Unknown"
	}
	if !ok {
		return Tooltip{Title: title, Value: NotAvailable}
	}
	return Tooltip{Title: title, Value: fmt.Sprintf("%.2f%%", v)}
}
