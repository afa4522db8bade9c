package chart

import (
	"fmt"
	"log"

	"github.com/nmurthy/natalscope/pkg/aspects"
	"github.com/nmurthy/natalscope/pkg/astrotime"
	"github.com/nmurthy/natalscope/pkg/ayanamsa"
	"github.com/nmurthy/natalscope/pkg/ephemeris"
	"github.com/nmurthy/natalscope/pkg/zodiac"
)

// Request carries everything needed to compute one natal chart.
type Request struct {
	// Name of the chart subject (echoed into the result)
	Name string

	// Date as "YYYY-MM-DD" and Time as "HH:MM" (noon when empty)
	Date string
	Time string

	// Latitude/Longitude of the birth place, decimal degrees
	Latitude  float64
	Longitude float64

	// Timezone is the IANA zone; empty or unknown falls back to UTC
	Timezone string

	// HouseSystem and Ayanamsa select the chart conventions
	HouseSystem HouseSystem
	Ayanamsa    ayanamsa.Convention
}

// BirthDetails echoes the normalized inputs back to the caller.
type BirthDetails struct {
	Name             string  `json:"name"`
	Date             string  `json:"date"`
	Time             string  `json:"time"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Timezone         string  `json:"timezone"`
	TimezoneFallback bool    `json:"timezone_fallback,omitempty"`
}

// AyanamsaInfo reports the applied precession correction.
type AyanamsaInfo struct {
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// NakshatraInfo is the JSON shape of a nakshatra placement.
type NakshatraInfo struct {
	Name         string `json:"name"`
	RulingPlanet string `json:"ruling_planet"`
	Position     string `json:"position"`
}

// AscendantInfo is the computed rising point.
type AscendantInfo struct {
	Longitude   float64       `json:"longitude"` // sidereal
	Tropical    float64       `json:"tropical_longitude"`
	Sign        string        `json:"sign"`
	Degree      float64       `json:"degree"`
	Formatted   string        `json:"formatted"`
	Nakshatra   NakshatraInfo `json:"nakshatra"`
	Description string        `json:"description"`
}

// PlanetInfo is one body's placement in the chart.
type PlanetInfo struct {
	Name           string        `json:"name"`
	Longitude      float64       `json:"longitude"` // sidereal
	Sign           string        `json:"sign"`
	Degree         float64       `json:"degree"`
	Retrograde     bool          `json:"retrograde"`
	Formatted      string        `json:"formatted"`
	House          int           `json:"house"`
	Nakshatra      NakshatraInfo `json:"nakshatra"`
	Interpretation string        `json:"interpretation"`

	// Failed marks a body whose ephemeris computation errored; its
	// Formatted field carries the error placeholder
	Failed bool `json:"error,omitempty"`
}

// Chart is the full natal chart payload.
type Chart struct {
	BirthDetails BirthDetails     `json:"birth_details"`
	HouseSystem  string           `json:"house_system"`
	JulianDay    float64          `json:"julian_day"`
	Ayanamsa     AyanamsaInfo     `json:"ayanamsa"`
	Ascendant    AscendantInfo    `json:"ascendant"`
	Houses       []House          `json:"houses"`
	Planets      []PlanetInfo     `json:"planets"`
	Aspects      []aspects.Aspect `json:"aspects"`
}

// Service computes charts from an ephemeris provider and an ayanamsa
// calculator. Stateless per request; safe for concurrent use as long as
// the provider is.
type Service struct {
	provider ephemeris.Provider
	ayanamsa *ayanamsa.Calculator
}

// NewService builds a chart service.
func NewService(provider ephemeris.Provider, ayanamsaCalc *ayanamsa.Calculator) *Service {
	return &Service{provider: provider, ayanamsa: ayanamsaCalc}
}

// Compute runs the full pipeline: civil time normalization, ayanamsa,
// planetary longitudes, ascendant, houses and aspects.
//
// Individual body failures degrade to flagged placeholders; errors are
// returned only for unusable inputs (bad date/time, polar latitude, or a
// house-cusp solver failure).
func (s *Service) Compute(req Request) (*Chart, error) {
	moment, err := astrotime.CivilToUT(req.Date, req.Time, req.Timezone)
	if err != nil {
		return nil, err
	}
	jd := moment.JulianDay

	ayan := s.ayanamsa.Value(jd, req.Ayanamsa)

	tropicalAsc, err := Ascendant(jd, req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}
	siderealAsc := zodiac.NormalizeLongitude(tropicalAsc - ayan)
	ascSign := zodiac.SignFromLongitude(siderealAsc)

	ascendant := AscendantInfo{
		Longitude:   siderealAsc,
		Tropical:    tropicalAsc,
		Sign:        ascSign.String(),
		Degree:      zodiac.DegreeInSign(siderealAsc),
		Formatted:   zodiac.FormatLongitude(siderealAsc, false),
		Nakshatra:   nakshatraInfo(siderealAsc),
		Description: AscendantDescription(ascSign),
	}

	planets := make([]PlanetInfo, 0, len(ephemeris.ChartBodies))
	for _, body := range ephemeris.ChartBodies {
		planets = append(planets, s.planetInfo(jd, body, ayan, ascSign))
	}

	houses, err := s.houses(req, jd, ayan, siderealAsc)
	if err != nil {
		return nil, err
	}

	return &Chart{
		BirthDetails: BirthDetails{
			Name:             req.Name,
			Date:             req.Date,
			Time:             req.Time,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			Timezone:         moment.Timezone,
			TimezoneFallback: moment.TimezoneFallback,
		},
		HouseSystem: req.HouseSystem.String(),
		JulianDay:   jd,
		Ayanamsa:    AyanamsaInfo{Value: ayan, Type: req.Ayanamsa.String()},
		Ascendant:   ascendant,
		Houses:      houses,
		Planets:     planets,
		Aspects:     s.chartAspects(planets, siderealAsc),
	}, nil
}

func (s *Service) planetInfo(jd float64, body ephemeris.Body, ayan float64, ascSign zodiac.Sign) PlanetInfo {
	pos, err := s.provider.Position(jd, body)
	if err != nil {
		log.Printf("WARNING: %s position failed, rendering placeholder: %v", body, err)
		return PlanetInfo{
			Name:           body.String(),
			Formatted:      zodiac.ErrorPlaceholder,
			Sign:           zodiac.Aries.String(),
			House:          PlanetHouse(zodiac.Aries, ascSign),
			Nakshatra:      nakshatraInfo(0),
			Interpretation: "Interpretation not available",
			Failed:         true,
		}
	}

	sidereal := zodiac.NormalizeLongitude(pos.Longitude - ayan)
	sign := zodiac.SignFromLongitude(sidereal)
	retro := body.Retrograde(pos.Speed)

	return PlanetInfo{
		Name:           body.String(),
		Longitude:      sidereal,
		Sign:           sign.String(),
		Degree:         zodiac.DegreeInSign(sidereal),
		Retrograde:     retro,
		Formatted:      zodiac.FormatLongitude(sidereal, retro),
		House:          PlanetHouse(sign, ascSign),
		Nakshatra:      nakshatraInfo(sidereal),
		Interpretation: PlanetInSign(body.String(), sign),
	}
}

func (s *Service) houses(req Request, jd, ayan, siderealAsc float64) ([]House, error) {
	switch req.HouseSystem {
	case WholeSign:
		return WholeSignHouses(siderealAsc), nil
	case EqualHouse:
		return EqualHouses(siderealAsc), nil
	case Placidus:
		cusps, err := PlacidusCusps(jd, req.Latitude, req.Longitude)
		if err != nil {
			return nil, fmt.Errorf("placidus cusps: %w", err)
		}
		return PlacidusHouses(cusps, ayan, siderealAsc), nil
	default:
		return nil, fmt.Errorf("unknown house system %d", req.HouseSystem)
	}
}

// chartAspects classifies aspects among the classical planets and the
// ascendant. Failed bodies are excluded; their placeholder longitude would
// fabricate conjunctions at 0° Aries.
func (s *Service) chartAspects(planets []PlanetInfo, siderealAsc float64) []aspects.Aspect {
	classical := make(map[string]bool, len(ephemeris.ClassicalBodies))
	for _, b := range ephemeris.ClassicalBodies {
		classical[b.String()] = true
	}

	points := make([]aspects.Point, 0, len(ephemeris.ClassicalBodies)+1)
	for _, p := range planets {
		if p.Failed || !classical[p.Name] {
			continue
		}
		points = append(points, aspects.Point{Name: p.Name, Longitude: p.Longitude})
	}
	points = append(points, aspects.Point{Name: "Ascendant", Longitude: siderealAsc})

	return aspects.Compute(points)
}

func nakshatraInfo(longitude float64) NakshatraInfo {
	n := zodiac.NakshatraFromLongitude(longitude)
	return NakshatraInfo{
		Name:         n.Name,
		RulingPlanet: n.RulingPlanet,
		Position:     n.Position(),
	}
}
