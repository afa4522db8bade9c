// Package aspects classifies the angular relationships between chart
// points into the nine standard aspect types.
package aspects

import (
	"fmt"
	"math"
	"sort"
)

// Type is one of the nine recognized aspect geometries, ordered by
// classification priority: when a separation falls within the orb of more
// than one type, the lowest-numbered type wins.
type Type int

const (
	Conjunction Type = iota
	Opposition
	Trine
	Square
	Sextile
	Quincunx
	SemiSextile
	SemiSquare
	Sesquiquadrate
)

// Definition describes an aspect geometry.
type Definition struct {
	Type Type

	// Name in the conventional lowercase form ("semi-sextile")
	Name string

	// Angle is the exact separation in degrees
	Angle float64

	// Orb is the tolerance around the exact angle
	Orb float64

	// Symbol is the astrological glyph
	Symbol string

	// Nature is a qualitative tag: harmonious, challenging, minor, ...
	Nature string
}

// Definitions lists the aspect table in classification priority order.
var Definitions = [9]Definition{
	{Conjunction, "conjunction", 0, 8, "☌", "varies"},
	{Opposition, "opposition", 180, 8, "☍", "challenging"},
	{Trine, "trine", 120, 8, "△", "harmonious"},
	{Square, "square", 90, 7, "□", "challenging"},
	{Sextile, "sextile", 60, 6, "⚹", "harmonious"},
	{Quincunx, "quincunx", 150, 5, "⚻", "challenging"},
	{SemiSextile, "semi-sextile", 30, 3, "⚺", "minor"},
	{SemiSquare, "semi-square", 45, 3, "∠", "minor-challenging"},
	{Sesquiquadrate, "sesquiquadrate", 135, 3, "⚼", "minor-challenging"},
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(Definitions) {
		return "unknown"
	}
	return Definitions[t].Name
}

// Point is a named chart point with a sidereal longitude. Planets and the
// ascendant both qualify.
type Point struct {
	Name      string
	Longitude float64
}

// Aspect is a classified relationship between two chart points.
//
// Applying/separating is not computed: it needs reliable relative angular
// velocities for both points, which the ascendant in particular does not
// have. Reporting a guess would be fabricated precision.
type Aspect struct {
	Point1    string  `json:"point1"`
	Point2    string  `json:"point2"`
	Type      Type    `json:"-"`
	TypeName  string  `json:"aspect_type"`
	Angle     float64 `json:"angle"`
	Orb       float64 `json:"orb"`
	Symbol    string  `json:"symbol"`
	Nature    string  `json:"nature"`
	Interpret string  `json:"interpretation"`
}

// Separation returns the minimal angular separation between two
// longitudes, in [0, 180].
func Separation(lon1, lon2 float64) float64 {
	diff := math.Abs(lon1 - lon2)
	diff = math.Mod(diff, 360.0)
	if diff > 180.0 {
		diff = 360.0 - diff
	}
	return diff
}

// Classify finds the first aspect definition (in priority order) whose
// exact angle lies within its orb of the given separation. The second
// return is false when no definition matches.
func Classify(separation float64) (Definition, float64, bool) {
	for _, def := range Definitions {
		orb := math.Abs(separation - def.Angle)
		if orb <= def.Orb {
			return def, orb, true
		}
	}
	return Definition{}, 0, false
}

// Compute classifies every unordered pair of points and returns the
// matches sorted by (type priority, ascending orb), so the most exact,
// most significant aspects lead.
func Compute(points []Point) []Aspect {
	var out []Aspect
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if points[i].Name == points[j].Name {
				continue
			}
			sep := Separation(points[i].Longitude, points[j].Longitude)
			def, orb, ok := Classify(sep)
			if !ok {
				continue
			}
			out = append(out, Aspect{
				Point1:    points[i].Name,
				Point2:    points[j].Name,
				Type:      def.Type,
				TypeName:  def.Name,
				Angle:     sep,
				Orb:       math.Round(orb*10) / 10,
				Symbol:    def.Symbol,
				Nature:    def.Nature,
				Interpret: interpretation(points[i].Name, points[j].Name, def.Name),
			})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Type != out[b].Type {
			return out[a].Type < out[b].Type
		}
		return out[a].Orb < out[b].Orb
	})
	return out
}

func interpretation(p1, p2, aspectName string) string {
	if generic, ok := genericInterpretations[aspectName]; ok {
		return fmt.Sprintf(generic, p1, p2)
	}
	return fmt.Sprintf("This %s represents a significant connection between %s and %s.", aspectName, p1, p2)
}

var genericInterpretations = map[string]string{
	"conjunction": "%s and %s blend their energies, intensifying both.",
	"opposition":  "%s and %s pull in opposite directions, demanding balance.",
	"trine":       "%s and %s support each other with an easy, natural flow.",
	"square":      "%s and %s create friction that pushes toward action.",
	"sextile":     "%s and %s cooperate when given conscious effort.",
	"quincunx":    "%s and %s require continual adjustment to work together.",
}
