// Package ephemeris yields tropical ecliptic longitudes and longitudinal
// speeds for chart bodies at a given Julian Day, wrapping a JPL DE
// ephemeris file behind a provider interface with a static-table fallback.
package ephemeris

// Body identifies a chart body.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Rahu
	Ketu
)

var bodyNames = [...]string{
	"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn",
	"Uranus", "Neptune", "Pluto", "Rahu", "Ketu",
}

func (b Body) String() string {
	if b < 0 || int(b) >= len(bodyNames) {
		return "Unknown"
	}
	return bodyNames[b]
}

// ClassicalBodies are the seven classical planets used for aspect
// computation.
var ClassicalBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn}

// ChartBodies are all bodies rendered in a natal chart, in display order.
var ChartBodies = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn,
	Uranus, Neptune, Pluto, Rahu, Ketu,
}

// IsNode reports whether the body is a lunar node.
func (b Body) IsNode() bool { return b == Rahu || b == Ketu }

// Retrograde applies the astrological conventions on top of a computed
// longitudinal speed: the Sun and Moon are never retrograde, the nodes
// always are, everything else follows the speed sign.
func (b Body) Retrograde(speed float64) bool {
	switch {
	case b == Sun || b == Moon:
		return false
	case b.IsNode():
		return true
	default:
		return speed < 0
	}
}
