package ephemeris

import (
	"fmt"
	"math"
	"sync"

	"github.com/mshafiee/jpleph"
)

// Obliquity of the ecliptic at J2000, degrees. The DE position vectors are
// referred to the J2000 equatorial frame, so the rotation into the ecliptic
// uses this fixed epoch value, not the time-varying obliquity.
const obliquityJ2000 = 23.4392911

// JPLProvider computes geocentric tropical longitudes from a JPL DE
// ephemeris file (DE405, DE421, DE440, ...).
//
// The underlying file reader keeps shared record buffers, so every
// calculation is serialized behind a mutex. Treat mode-like state as an
// explicit per-call concern: nothing here caches "current" settings
// between calls.
type JPLProvider struct {
	mu  sync.Mutex
	eph *jpleph.Ephemeris
}

// NewJPLProvider opens a DE ephemeris file.
func NewJPLProvider(path string) (*JPLProvider, error) {
	eph, err := jpleph.NewEphemeris(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening ephemeris %s: %w", path, err)
	}
	return &JPLProvider{eph: eph}, nil
}

// Close releases the ephemeris file handle.
func (p *JPLProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eph.Close()
}

// TimeRange returns the Julian Day span covered by the loaded file.
func (p *JPLProvider) TimeRange() (start, end float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eph.GetEphemerisDouble(jpleph.EphemerisStartJD),
		p.eph.GetEphemerisDouble(jpleph.EphemerisEndJD)
}

var jplTargets = map[Body]jpleph.Planet{
	Sun:     jpleph.Sun,
	Moon:    jpleph.Moon,
	Mercury: jpleph.Mercury,
	Venus:   jpleph.Venus,
	Mars:    jpleph.Mars,
	Jupiter: jpleph.Jupiter,
	Saturn:  jpleph.Saturn,
	Uranus:  jpleph.Uranus,
	Neptune: jpleph.Neptune,
	Pluto:   jpleph.Pluto,
}

// Position returns the geocentric tropical position of body at jd.
// Lunar nodes come from the mean-node polynomial; the DE files carry no
// node body. Light-time and nutation corrections are not applied; for
// natal-chart purposes the resulting error is well under an arcminute.
func (p *JPLProvider) Position(jd float64, body Body) (Position, error) {
	if body.IsNode() {
		return NodePosition(jd, body), nil
	}

	target, ok := jplTargets[body]
	if !ok {
		return Position{}, fmt.Errorf("%w: no DE target for %s", ErrBodyUnavailable, body)
	}

	p.mu.Lock()
	pos, vel, err := p.eph.CalculatePV(jd, target, jpleph.CenterEarth, true)
	p.mu.Unlock()
	if err != nil {
		return Position{}, fmt.Errorf("%w: %s at JD %.4f: %v", ErrBodyUnavailable, body, jd, err)
	}

	lon, speed := equatorialToEclipticLongitude(pos, vel)
	return Position{Body: body, Longitude: lon, Speed: speed}, nil
}

// equatorialToEclipticLongitude rotates a J2000 equatorial PV vector into
// the ecliptic plane and extracts longitude (degrees) and its rate
// (degrees/day).
func equatorialToEclipticLongitude(pos jpleph.Position, vel jpleph.Velocity) (float64, float64) {
	eps := obliquityJ2000 * math.Pi / 180.0
	cosE, sinE := math.Cos(eps), math.Sin(eps)

	// Rotate about the X axis (vernal equinox direction)
	x := pos.X
	y := pos.Y*cosE + pos.Z*sinE
	dx := vel.DX
	dy := vel.DY*cosE + vel.DZ*sinE

	lon := math.Atan2(y, x) * 180.0 / math.Pi
	if lon < 0 {
		lon += 360.0
	}

	// d/dt atan2(y, x) = (x·dy − y·dx) / (x² + y²), radians/day
	speed := (x*dy - y*dx) / (x*x + y*y) * 180.0 / math.Pi

	return lon, speed
}
