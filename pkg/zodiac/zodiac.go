// Package zodiac maps sidereal ecliptic longitudes onto the 12 zodiac signs
// and 27 nakshatras, and formats positions in the conventional
// degree-minute-second notation.
package zodiac

import (
	"fmt"
	"math"
)

// Sign is one of the 12 zodiac signs, each spanning 30° of the ecliptic.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer",
	"Leo", "Virgo", "Libra", "Scorpio",
	"Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Modern rulerships (Mars, Saturn and Jupiter are the traditional rulers
// of Scorpio, Aquarius and Pisces respectively)
var signRulers = [12]string{
	"Mars", "Venus", "Mercury", "Moon",
	"Sun", "Mercury", "Venus", "Pluto",
	"Jupiter", "Saturn", "Uranus", "Neptune",
}

func (s Sign) String() string {
	if s < 0 || s > 11 {
		return "Unknown"
	}
	return signNames[s]
}

// Ruler returns the modern planetary ruler of the sign.
func (s Sign) Ruler() string {
	if s < 0 || s > 11 {
		return "Unknown"
	}
	return signRulers[s]
}

// Offset returns the sign reached by stepping n signs forward, wrapping
// through Pisces back to Aries.
func (s Sign) Offset(n int) Sign {
	return Sign(((int(s)+n)%12 + 12) % 12)
}

// NormalizeLongitude wraps an ecliptic longitude into [0, 360).
func NormalizeLongitude(longitude float64) float64 {
	l := math.Mod(longitude, 360.0)
	if l < 0 {
		l += 360.0
	}
	return l
}

// SignFromLongitude returns the sign containing the given longitude.
func SignFromLongitude(longitude float64) Sign {
	return Sign(int(NormalizeLongitude(longitude)/30.0) % 12)
}

// DegreeInSign returns the degree offset within the sign, in [0, 30).
func DegreeInSign(longitude float64) float64 {
	return math.Mod(NormalizeLongitude(longitude), 30.0)
}

// DMS is a degree-minute-second breakdown of a degree-in-sign value.
// The total is truncated to whole arcseconds, not rounded: rounding
// shifts the displayed position, which astrological convention does
// not do.
type DMS struct {
	Degrees int
	Minutes int
	Seconds int
}

// DMSFromDegrees breaks a degree value into truncated D/M/S components.
// The split works from total arcseconds with a small epsilon; truncating
// each component in sequence loses a full arcsecond whenever the binary
// representation of degrees*60 lands just under an integer (0.37° is
// 22'11.999..." that way, but prints as 22'12").
func DMSFromDegrees(degree float64) DMS {
	total := int(degree*3600.0 + 1e-6)
	return DMS{
		Degrees: total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// Decimal reconstructs the decimal degree value. The result is within one
// arcsecond below the original input to DMSFromDegrees.
func (d DMS) Decimal() float64 {
	return float64(d.Degrees) + float64(d.Minutes)/60.0 + float64(d.Seconds)/3600.0
}

// FormatLongitude renders a sidereal longitude as `<Sign> <D>°<M>'<S>"`,
// with a ` (R)` suffix for retrograde bodies.
func FormatLongitude(longitude float64, retrograde bool) string {
	l := NormalizeLongitude(longitude)
	sign := SignFromLongitude(l)
	dms := DMSFromDegrees(DegreeInSign(l))
	formatted := fmt.Sprintf("%s %d°%d'%d\"", sign, dms.Degrees, dms.Minutes, dms.Seconds)
	if retrograde {
		formatted += " (R)"
	}
	return formatted
}

// ErrorPlaceholder is the formatted position substituted for a body whose
// ephemeris computation failed. The chart still renders; the body is
// visibly flagged.
const ErrorPlaceholder = `Aries 0°0'0" (Error)`
