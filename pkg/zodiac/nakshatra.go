package zodiac

import "fmt"

// Nakshatra is one of the 27 lunar mansions, each spanning 13°20' of the
// ecliptic. Boundaries are stored as cumulative end-degrees; a longitude
// exactly on a boundary belongs to the following nakshatra.
type Nakshatra struct {
	// Name of the nakshatra (e.g., "Ashwini")
	Name string

	// RulingPlanet follows the canonical 9-planet cycle
	// (Ketu, Venus, Sun, Moon, Mars, Rahu, Jupiter, Saturn, Mercury),
	// repeated three times across the 27 segments
	RulingPlanet string

	// EndDegree is the cumulative ecliptic longitude where this
	// nakshatra ends
	EndDegree float64
}

// Nakshatras lists the 27 segments in ecliptic order.
var Nakshatras = [27]Nakshatra{
	{"Ashwini", "Ketu", 13.33333},
	{"Bharani", "Venus", 26.66666},
	{"Krittika", "Sun", 40.0},
	{"Rohini", "Moon", 53.33333},
	{"Mrigashira", "Mars", 66.66666},
	{"Ardra", "Rahu", 80.0},
	{"Punarvasu", "Jupiter", 93.33333},
	{"Pushya", "Saturn", 106.66666},
	{"Ashlesha", "Mercury", 120.0},
	{"Magha", "Ketu", 133.33333},
	{"Purva Phalguni", "Venus", 146.66666},
	{"Uttara Phalguni", "Sun", 160.0},
	{"Hasta", "Moon", 173.33333},
	{"Chitra", "Mars", 186.66666},
	{"Swati", "Rahu", 200.0},
	{"Vishakha", "Jupiter", 213.33333},
	{"Anuradha", "Saturn", 226.66666},
	{"Jyeshtha", "Mercury", 240.0},
	{"Mula", "Ketu", 253.33333},
	{"Purva Ashadha", "Venus", 266.66666},
	{"Uttara Ashadha", "Sun", 280.0},
	{"Shravana", "Moon", 293.33333},
	{"Dhanishta", "Mars", 306.66666},
	{"Shatabhisha", "Rahu", 320.0},
	{"Purva Bhadrapada", "Jupiter", 333.33333},
	{"Uttara Bhadrapada", "Saturn", 346.66666},
	{"Revati", "Mercury", 360.0},
}

// NakshatraPosition locates a longitude within its nakshatra.
type NakshatraPosition struct {
	Name         string
	RulingPlanet string

	// Percent traversed through the segment, 0 at the start boundary
	Percent float64
}

// Position renders the traversal percentage as "12.3%".
func (p NakshatraPosition) Position() string {
	return fmt.Sprintf("%.1f%%", p.Percent)
}

// NakshatraFromLongitude maps a sidereal longitude to its nakshatra and the
// percentage traversed through it. Every longitude in [0, 360) maps to
// exactly one segment.
func NakshatraFromLongitude(longitude float64) NakshatraPosition {
	l := NormalizeLongitude(longitude)
	start := 0.0
	for _, n := range Nakshatras {
		if l < n.EndDegree {
			return NakshatraPosition{
				Name:         n.Name,
				RulingPlanet: n.RulingPlanet,
				Percent:      (l - start) / (n.EndDegree - start) * 100.0,
			}
		}
		start = n.EndDegree
	}
	// Unreachable after normalization; the last end-degree is 360.
	return NakshatraPosition{Name: Nakshatras[0].Name, RulingPlanet: Nakshatras[0].RulingPlanet}
}
