// Package astrotime converts civil birth timestamps into the continuous
// astronomical time scales (Julian Day, sidereal time) that ephemeris and
// ascendant calculations run on.
package astrotime

import (
	"fmt"
	"log"
	"math"
	"time"
)

// Constants for time and angle calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// JulianDayJ2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 UT)
	JulianDayJ2000 = 2451545.0

	// DaysPerJulianCentury is the number of days in a Julian century
	DaysPerJulianCentury = 36525.0
)

// ParseError reports a malformed civil date or time string.
// Input errors fail fast; they are never silently defaulted.
type ParseError struct {
	Field string // "date" or "time"
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// BirthMoment is the result of normalizing a civil birth timestamp.
type BirthMoment struct {
	// Local is the birth time localized to the resolved timezone
	Local time.Time

	// UTC is the birth time converted to UTC
	UTC time.Time

	// JulianDay is the Julian Day (UT) of the birth moment
	JulianDay float64

	// Timezone is the IANA zone actually used ("UTC" after fallback)
	Timezone string

	// TimezoneFallback is true when the requested zone could not be
	// loaded and UTC was substituted
	TimezoneFallback bool
}

// CivilToUT normalizes a civil date ("YYYY-MM-DD"), time ("HH:MM", noon when
// empty) and IANA timezone name into a UTC moment and its Julian Day.
//
// An unresolvable timezone falls back to UTC with a logged warning rather
// than failing: a chart at the wrong offset is recoverable, no chart is not.
// Malformed date or time strings return a *ParseError.
func CivilToUT(dateStr, timeStr, timezone string) (BirthMoment, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return BirthMoment{}, &ParseError{Field: "date", Value: dateStr, Err: err}
	}

	hour, minute := 12, 0 // noon default when birth time is unknown
	if timeStr != "" {
		clock, err := time.Parse("15:04", timeStr)
		if err != nil {
			return BirthMoment{}, &ParseError{Field: "time", Value: timeStr, Err: err}
		}
		hour, minute = clock.Hour(), clock.Minute()
	}

	loc := time.UTC
	usedZone := "UTC"
	fallback := false
	if timezone != "" && timezone != "UTC" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			log.Printf("WARNING: timezone %q not found, falling back to UTC: %v", timezone, err)
			fallback = true
		} else {
			loc = l
			usedZone = timezone
		}
	}

	local := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
	utc := local.UTC()

	return BirthMoment{
		Local:            local,
		UTC:              utc,
		JulianDay:        JulianDay(utc),
		Timezone:         usedZone,
		TimezoneFallback: fallback,
	}, nil
}

// JulianDay converts a time.Time (interpreted in UTC) to Julian Day.
// Uses the standard Gregorian calendar formula.
func JulianDay(t time.Time) float64 {
	utc := t.UTC()
	year := utc.Year()
	month := int(utc.Month())
	day := utc.Day()

	decimalDay := float64(day) +
		float64(utc.Hour())/24.0 +
		float64(utc.Minute())/(24.0*60.0) +
		float64(utc.Second())/(24.0*60.0*60.0)

	// Adjust for January/February
	if month <= 2 {
		year--
		month += 12
	}

	a := year / 100
	b := 2 - a + a/4

	return float64(int(365.25*float64(year+4716))) +
		float64(int(30.6001*float64(month+1))) +
		decimalDay + float64(b) - 1524.5
}

// JulianCenturies returns Julian centuries elapsed since J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - JulianDayJ2000) / DaysPerJulianCentury
}

// GreenwichSiderealTime calculates Greenwich Mean Sidereal Time in degrees
// for a given Julian Day (UT). Accurate to about one second of time.
func GreenwichSiderealTime(jd float64) float64 {
	jc := JulianCenturies(jd)
	gmst := 280.46061837 + 360.98564736629*(jd-JulianDayJ2000) +
		0.000387933*jc*jc - jc*jc*jc/38710000.0
	return normalizeDegrees(gmst)
}

// LocalSiderealTime calculates Local Sidereal Time in degrees for a given
// Julian Day and observer longitude (east-positive decimal degrees).
func LocalSiderealTime(jd, longitudeDeg float64) float64 {
	return normalizeDegrees(GreenwichSiderealTime(jd) + longitudeDeg)
}

// Obliquity returns the mean obliquity of the ecliptic in degrees at the
// given Julian Day. Computed from the polynomial rather than hardcoded:
// the tilt drifts ~47" per century.
func Obliquity(jd float64) float64 {
	jc := JulianCenturies(jd)
	sec := 21.448 - jc*(46.815+jc*(0.00059-jc*0.001813))
	return 23.0 + (26.0+sec/60.0)/60.0
}

func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
