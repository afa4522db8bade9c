package chart

import (
	"fmt"
	"log"

	"github.com/nmurthy/natalscope/pkg/zodiac"
)

// HouseSystem selects how the ecliptic is partitioned into houses.
// The set is closed; every switch over it is exhaustive, with no
// "unsupported system, defaulting" path.
type HouseSystem int

const (
	// WholeSign assigns each house an entire sign, starting from the
	// sign holding the ascendant
	WholeSign HouseSystem = iota

	// EqualHouse spaces cusps exactly 30° apart from the ascendant's
	// exact degree
	EqualHouse

	// Placidus divides the diurnal and nocturnal arcs by time,
	// producing unequal cusps
	Placidus
)

func (h HouseSystem) String() string {
	switch h {
	case WholeSign:
		return "whole_sign"
	case EqualHouse:
		return "equal_house"
	case Placidus:
		return "placidus"
	default:
		return "unknown"
	}
}

// ParseHouseSystem maps a config/API string to a HouseSystem.
// The empty string defaults to WholeSign.
func ParseHouseSystem(s string) (HouseSystem, error) {
	switch s {
	case "", "whole_sign", "whole", "W":
		return WholeSign, nil
	case "equal_house", "equal", "E":
		return EqualHouse, nil
	case "placidus", "P":
		return Placidus, nil
	default:
		return WholeSign, fmt.Errorf("unknown house system %q", s)
	}
}

// House is one of the 12 chart houses.
type House struct {
	// Number is the house ordinal, 1-12
	Number int `json:"house"`

	// Sign holding the cusp
	Sign string `json:"sign"`

	// Cusp is the sidereal longitude of the house cusp
	Cusp float64 `json:"cusp"`

	// Formatted is the cusp in DMS notation
	Formatted string `json:"formatted"`

	// Meaning is the interpretive text for the house
	Meaning string `json:"meaning"`
}

// WholeSignHouses builds the 12 whole-sign houses from a sidereal
// ascendant. House k occupies the sign k−1 signs after the ascendant's
// sign, and its cusp is that sign's 0° boundary.
//
// House 1 carrying the ascendant's sign is the defining property of the
// system. It holds by construction here, but the postcondition is still
// verified and repaired loudly: a silently wrong chart is worse than a
// corrected, logged one.
func WholeSignHouses(ascendant float64) []House {
	ascSign := zodiac.SignFromLongitude(ascendant)

	houses := make([]House, 12)
	for k := 1; k <= 12; k++ {
		sign := ascSign.Offset(k - 1)
		cusp := float64(int(sign)) * 30.0
		houses[k-1] = newHouse(k, cusp)
	}

	if got := zodiac.SignFromLongitude(houses[0].Cusp); got != ascSign {
		log.Printf("WARNING: whole-sign house 1 sign %v does not match ascendant sign %v, repairing", got, ascSign)
		houses[0] = newHouse(1, float64(int(ascSign))*30.0)
	}
	return houses
}

// EqualHouses builds 12 equal houses: cusp k at ascendant + (k−1)·30°.
// House 1 keeps the ascendant's exact degree within its sign.
func EqualHouses(ascendant float64) []House {
	houses := make([]House, 12)
	for k := 1; k <= 12; k++ {
		cusp := zodiac.NormalizeLongitude(ascendant + float64(k-1)*30.0)
		houses[k-1] = newHouse(k, cusp)
	}
	return houses
}

// PlacidusHouses converts externally computed tropical cusps to sidereal
// and forces house 1 to the exact ascendant, keeping house-1 semantics
// consistent across all three systems.
func PlacidusHouses(tropicalCusps [12]float64, ayanamsaValue, siderealAscendant float64) []House {
	houses := make([]House, 12)
	for k := 1; k <= 12; k++ {
		cusp := zodiac.NormalizeLongitude(tropicalCusps[k-1] - ayanamsaValue)
		houses[k-1] = newHouse(k, cusp)
	}
	houses[0] = newHouse(1, zodiac.NormalizeLongitude(siderealAscendant))
	return houses
}

// PlanetHouse returns the whole-sign house of a planet relative to the
// ascendant sign.
func PlanetHouse(planetSign, ascendantSign zodiac.Sign) int {
	return ((int(planetSign)-int(ascendantSign))%12+12)%12 + 1
}

func newHouse(number int, cusp float64) House {
	return House{
		Number:    number,
		Sign:      zodiac.SignFromLongitude(cusp).String(),
		Cusp:      cusp,
		Formatted: zodiac.FormatLongitude(cusp, false),
		Meaning:   HouseMeaning(number),
	}
}
