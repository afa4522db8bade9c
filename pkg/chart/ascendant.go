// Package chart derives the ascendant and house structure from time and
// place, and assembles complete natal charts from the ephemeris, ayanamsa
// and zodiac layers.
package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/nmurthy/natalscope/pkg/astrotime"
	"github.com/nmurthy/natalscope/pkg/zodiac"
)

// ErrPolarLatitude is returned for observer latitudes where the ascendant
// formula degenerates (tan φ diverges and the ecliptic can stay above or
// below the horizon for days).
var ErrPolarLatitude = errors.New("latitude too close to the poles for ascendant calculation")

// MaxLatitude is the highest absolute observer latitude accepted.
const MaxLatitude = 89.9

// Ascendant computes the tropical ecliptic longitude of the rising point
// for a Julian Day and observer coordinates (degrees, east/north positive).
//
// tan(asc) = −cos LST / (sin LST·cos ε + tan φ·sin ε), with LST the local
// sidereal time in degrees and ε the mean obliquity at jd. The tangent
// form alone is ambiguous by 180° (it holds for both horizon crossings);
// the atan2 argument signs below select the eastern, rising intersection.
// Cross-check: at Greenwich on J2000 noon this yields ~24° Aries with the
// midheaven at ~9.6° Capricorn and the Sun on the meridian.
func Ascendant(jd, latitude, longitude float64) (float64, error) {
	if math.Abs(latitude) > MaxLatitude {
		return 0, fmt.Errorf("%w: %.4f°", ErrPolarLatitude, latitude)
	}

	lst := astrotime.LocalSiderealTime(jd, longitude) * astrotime.DegreesToRadians
	eps := astrotime.Obliquity(jd) * astrotime.DegreesToRadians
	lat := latitude * astrotime.DegreesToRadians

	asc := math.Atan2(
		math.Cos(lst),
		-(math.Sin(lst)*math.Cos(eps)+math.Tan(lat)*math.Sin(eps)),
	) * astrotime.RadiansToDegrees

	return zodiac.NormalizeLongitude(asc), nil
}

// MidheavenLongitude computes the tropical longitude of the midheaven (MC)
// from the same sidereal time geometry. Used by the Placidus cusp solver.
func MidheavenLongitude(jd, longitude float64) float64 {
	lst := astrotime.LocalSiderealTime(jd, longitude) * astrotime.DegreesToRadians
	eps := astrotime.Obliquity(jd) * astrotime.DegreesToRadians

	mc := math.Atan2(math.Sin(lst), math.Cos(lst)*math.Cos(eps)) * astrotime.RadiansToDegrees
	return zodiac.NormalizeLongitude(mc)
}
