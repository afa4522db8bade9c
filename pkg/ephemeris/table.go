package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/nmurthy/natalscope/pkg/ayanamsa"
)

// TableProvider serves positions from a small built-in table of
// pre-computed sidereal (Lahiri) longitudes keyed by calendar date. It
// backs deployments without a DE file and gives tests a deterministic
// provider. Speeds are unknown and reported as zero.
type TableProvider struct {
	dates map[string]map[Body]float64
}

// NewTableProvider returns a provider over the built-in date table.
func NewTableProvider() *TableProvider {
	return &TableProvider{dates: builtinEphemerides}
}

// Dates lists the calendar dates the table covers.
func (p *TableProvider) Dates() []string {
	out := make([]string, 0, len(p.dates))
	for d := range p.dates {
		out = append(out, d)
	}
	return out
}

// Position looks up the body for the calendar date containing jd. Stored
// longitudes are sidereal (Lahiri), so the Lahiri model value is added
// back to return the tropical longitude the Provider contract promises.
func (p *TableProvider) Position(jd float64, body Body) (Position, error) {
	if body.IsNode() {
		// Nodes are tabulated too, but the polynomial is exact enough
		// and keeps Ketu = Rahu + 180° by construction.
		return NodePosition(jd, body), nil
	}

	date := julianDayToDate(jd)
	positions, ok := p.dates[date]
	if !ok {
		return Position{}, fmt.Errorf("%w: no table entry for %s", ErrBodyUnavailable, date)
	}
	sidereal, ok := positions[body]
	if !ok {
		return Position{}, fmt.Errorf("%w: %s not tabulated for %s", ErrBodyUnavailable, body, date)
	}

	tropical := math.Mod(sidereal+ayanamsa.Model(jd, ayanamsa.Lahiri), 360.0)
	return Position{Body: body, Longitude: tropical, Speed: 0}, nil
}

// julianDayToDate renders the calendar date (UTC) containing jd.
func julianDayToDate(jd float64) string {
	// Days since the Unix epoch (JD 2440587.5)
	seconds := (jd - 2440587.5) * 86400.0
	return time.Unix(int64(seconds), 0).UTC().Format("2006-01-02")
}

// Sidereal longitudes (Lahiri) in decimal degrees for reference dates.
var builtinEphemerides = map[string]map[Body]float64{
	"1993-02-17": {
		Sun:     304.83555556,
		Moon:    257.5839444,
		Mars:    74.93263889,
		Mercury: 302.0583333,
		Jupiter: 170.3455556,
		Venus:   347.9261111,
		Saturn:  298.0786944,
	},
	"1990-01-15": {
		Sun:     270.5,
		Moon:    160.2,
		Mars:    320.7,
		Mercury: 255.3,
		Jupiter: 90.1,
		Venus:   290.8,
		Saturn:  275.5,
	},
	"2000-06-21": {
		Sun:     66.2,
		Moon:    120.5,
		Mars:    145.7,
		Mercury: 70.3,
		Jupiter: 50.1,
		Venus:   85.8,
		Saturn:  30.5,
	},
}
