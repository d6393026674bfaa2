package geo

import "math"

// Mercator projects longitude/latitude degrees onto screen coordinates.
type Mercator struct {
	Scale      float64
	CenterLon  float64
	CenterLat  float64
	TranslateX float64
	TranslateY float64
}

// BrazilMercator frames Brazil inside an 800x500 viewport.
func BrazilMercator(width, height float64) Mercator {
	return Mercator{
		Scale:      650,
		CenterLon:  -52,
		CenterLat:  -15,
		TranslateX: width / 2,
		TranslateY: height / 2,
	}
}

// Project returns the screen point for (lon, lat).
func (m Mercator) Project(lon, lat float64) (x, y float64) {
	x = m.TranslateX + m.Scale*(radians(lon)-radians(m.CenterLon))
	y = m.TranslateY - m.Scale*(mercatorY(lat)-mercatorY(m.CenterLat))
	return x, y
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Latitudes are clamped short of the poles where the projection diverges.
func mercatorY(lat float64) float64 {
	lat = math.Max(-85, math.Min(85, lat))
	return math.Log(math.Tan(math.Pi/4 + radians(lat)/2))
}
