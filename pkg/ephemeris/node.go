package ephemeris

import "math"

// MeanNode returns the tropical longitude (degrees) and speed (degrees/day)
// of the Moon's mean ascending node (Rahu) at the given Julian Day.
//
// Closed-form polynomial in Julian centuries since J2000:
// N = 125.04452 − 1934.136261·T + 0.0020708·T² + T³/450000.
// The node regresses ~19°/year, hence the large negative speed.
func MeanNode(jd float64) (longitude, speed float64) {
	t := (jd - 2451545.0) / 36525.0
	n := 125.04452 - 1934.136261*t + 0.0020708*t*t + t*t*t/450000.0
	// Derivative in degrees per century, scaled to per day
	dn := (-1934.136261 + 2*0.0020708*t + 3*t*t/450000.0) / 36525.0

	n = math.Mod(n, 360.0)
	if n < 0 {
		n += 360.0
	}
	return n, dn
}

// NodePosition returns the tropical position of Rahu or Ketu.
// Ketu is exactly 180° from Rahu, always.
func NodePosition(jd float64, body Body) Position {
	lon, speed := MeanNode(jd)
	if body == Ketu {
		lon = math.Mod(lon+180.0, 360.0)
	}
	return Position{Body: body, Longitude: lon, Speed: speed}
}
