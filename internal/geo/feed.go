package geo

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Feature is one boundary polygon set with its display name.
type Feature struct {
	Name string
	// Rings holds every linear ring as [lon, lat] pairs; holes are kept
	// and rendered with the even-odd rule.
	Rings [][][2]float64
}

// DecodeFeatures parses a GeoJSON FeatureCollection. On malformed input
// it returns an empty, non-nil slice together with the error so callers
// can log it and render nothing.
func DecodeFeatures(data []byte) ([]Feature, error) {
	if len(data) == 0 {
		return []Feature{}, nil
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return []Feature{}, fmt.Errorf("decode feature collection: %w", err)
	}

	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		out = append(out, Feature{
			Name:  featureName(f.Properties),
			Rings: rings(f.Geometry),
		})
	}
	return out, nil
}

func featureName(props map[string]interface{}) string {
	if props == nil {
		return ""
	}
	if s, ok := props["name"].(string); ok {
		return s
	}
	return ""
}

func rings(g geom.T) [][][2]float64 {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonRings(t.Coords())
	case *geom.MultiPolygon:
		var out [][][2]float64
		for _, p := range t.Coords() {
			out = append(out, polygonRings(p)...)
		}
		return out
	default:
		return nil
	}
}

func polygonRings(coords [][]geom.Coord) [][][2]float64 {
	out := make([][][2]float64, 0, len(coords))
	for _, ring := range coords {
		pts := make([][2]float64, 0, len(ring))
		for _, c := range ring {
			if len(c) < 2 {
				continue
			}
			pts = append(pts, [2]float64{c[0], c[1]})
		}
		if len(pts) > 0 {
			out = append(out, pts)
		}
	}
	return out
}
