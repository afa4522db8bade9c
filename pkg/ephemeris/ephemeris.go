package ephemeris

import "errors"

// Position is a body's instantaneous tropical state.
type Position struct {
	// Body this position belongs to
	Body Body

	// Longitude is the tropical ecliptic longitude in degrees, [0, 360)
	Longitude float64

	// Speed is the longitudinal rate in degrees/day. Negative speed
	// means apparent retrograde motion.
	Speed float64
}

// ErrBodyUnavailable is returned when a provider cannot compute the
// requested body at the requested time. Callers substitute a flagged
// placeholder; one failed body never aborts a chart.
var ErrBodyUnavailable = errors.New("body position unavailable")

// Provider computes tropical positions. Implementations must be safe for
// concurrent use: a server computes many charts in parallel and DE file
// readers keep process-wide state.
type Provider interface {
	// Position returns the tropical position of body at jd (UT).
	Position(jd float64, body Body) (Position, error)
}
