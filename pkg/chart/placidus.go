package chart

import (
	"fmt"
	"math"

	"github.com/nmurthy/natalscope/pkg/astrotime"
	"github.com/nmurthy/natalscope/pkg/zodiac"
)

// PlacidusCusps computes the 12 tropical Placidus cusps for a Julian Day
// and observer coordinates using the classical semi-arc iteration.
//
// Cusp 1 is the ascendant and cusp 10 the midheaven; cusps 11, 12, 2 and 3
// trisect the diurnal and nocturnal arcs by time and are found by fixed-
// point iteration on right ascension; cusps 4-9 oppose cusps 10-3.
//
// Inside the polar circles the semi-arc is undefined for parts of the
// ecliptic and the iteration has no solution; that case returns an error
// rather than a fabricated cusp.
func PlacidusCusps(jd, latitude, longitude float64) ([12]float64, error) {
	var cusps [12]float64

	if math.Abs(latitude) > 66.0 {
		return cusps, fmt.Errorf("%w: placidus undefined at %.4f°", ErrPolarLatitude, latitude)
	}

	asc, err := Ascendant(jd, latitude, longitude)
	if err != nil {
		return cusps, err
	}

	ramc := astrotime.LocalSiderealTime(jd, longitude)
	eps := astrotime.Obliquity(jd) * astrotime.DegreesToRadians
	lat := latitude * astrotime.DegreesToRadians

	cusps[0] = asc
	cusps[9] = MidheavenLongitude(jd, longitude)

	type arc struct {
		index    int     // cusp index (0-based)
		offset   float64 // starting RA offset from RAMC
		fraction float64 // fraction of the semi-arc
		diurnal  bool    // above-horizon (diurnal) arc
	}
	arcs := []arc{
		{10, 30, 1.0 / 3.0, true},  // cusp 11
		{11, 60, 2.0 / 3.0, true},  // cusp 12
		{1, 120, 2.0 / 3.0, false}, // cusp 2
		{2, 150, 1.0 / 3.0, false}, // cusp 3
	}

	for _, a := range arcs {
		lon, err := placidusIterate(ramc, a.offset, a.fraction, a.diurnal, eps, lat)
		if err != nil {
			return cusps, err
		}
		cusps[a.index] = lon
	}

	// Opposite cusps
	for _, k := range []int{0, 1, 2, 9, 10, 11} {
		cusps[(k+6)%12] = zodiac.NormalizeLongitude(cusps[k] + 180.0)
	}
	return cusps, nil
}

// placidusIterate solves for the ecliptic longitude whose right ascension
// sits at the given fraction of its own semi-arc from the meridian.
func placidusIterate(ramc, offset, fraction float64, diurnal bool, eps, lat float64) (float64, error) {
	ra := ramc + offset
	for i := 0; i < 50; i++ {
		raRad := ra * astrotime.DegreesToRadians

		// Ecliptic longitude and declination of the point with this
		// right ascension on the ecliptic
		lon := math.Atan2(math.Sin(raRad), math.Cos(raRad)*math.Cos(eps))
		dec := math.Asin(math.Sin(eps) * math.Sin(lon))

		x := -math.Tan(lat) * math.Tan(dec)
		if x < -1 || x > 1 {
			return 0, fmt.Errorf("%w: circumpolar ecliptic point", ErrPolarLatitude)
		}
		// Diurnal semi-arc; the nocturnal semi-arc is its supplement
		semiArc := math.Acos(x) * astrotime.RadiansToDegrees

		var next float64
		if diurnal {
			next = ramc + fraction*semiArc
		} else {
			next = ramc + 180.0 - fraction*(180.0-semiArc)
		}

		if math.Abs(next-ra) < 1e-7 {
			ra = next
			break
		}
		ra = next
	}

	raRad := ra * astrotime.DegreesToRadians
	lon := math.Atan2(math.Sin(raRad), math.Cos(raRad)*math.Cos(eps)) * astrotime.RadiansToDegrees
	return zodiac.NormalizeLongitude(lon), nil
}
