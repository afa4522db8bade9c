package chart

import (
	"fmt"

	"github.com/nmurthy/natalscope/pkg/zodiac"
)

// Interpretation lookups are pure tables with a generic fallback. A missing
// key yields a usable sentence, never an error: interpretive text is
// decoration around the computed chart, not part of its correctness.

var houseMeanings = map[int]string{
	1:  "Self, physical body, personality, appearance, life approach",
	2:  "Possessions, values, money, resources, self-worth",
	3:  "Communication, siblings, short trips, early education, neighbors",
	4:  "Home, family, roots, real estate, emotional foundation",
	5:  "Creativity, romance, children, pleasure, self-expression",
	6:  "Health, daily routines, service, work environment, skills",
	7:  "Partnerships, marriage, contracts, open enemies, relationships",
	8:  "Shared resources, transformation, sexuality, rebirth, others' money",
	9:  "Higher education, philosophy, travel, spirituality, expansion",
	10: "Career, public reputation, authority, ambition, structure",
	11: "Friends, groups, hopes, wishes, collective support",
	12: "Unconscious, hidden strengths/weaknesses, spirituality, isolation",
}

// HouseMeaning returns the interpretive text for a house number.
func HouseMeaning(number int) string {
	if m, ok := houseMeanings[number]; ok {
		return m
	}
	return "Interpretation not available"
}

var ascendantDescriptions = map[zodiac.Sign]string{
	zodiac.Aries:       "Direct, energetic and quick to act; meets life head-on.",
	zodiac.Taurus:      "Steady, deliberate and sensual; builds before moving.",
	zodiac.Gemini:      "Curious, verbal and adaptable; engages through ideas.",
	zodiac.Cancer:      "Protective, receptive and intuitive; leads with feeling.",
	zodiac.Leo:         "Warm, expressive and proud; naturally takes the stage.",
	zodiac.Virgo:       "Precise, observant and practical; improves what it touches.",
	zodiac.Libra:       "Gracious, balanced and relational; seeks the fair middle.",
	zodiac.Scorpio:     "Intense, private and penetrating; nothing is casual.",
	zodiac.Sagittarius: "Expansive, frank and restless; aims beyond the horizon.",
	zodiac.Capricorn:   "Reserved, ambitious and enduring; climbs methodically.",
	zodiac.Aquarius:    "Independent, inventive and detached; thinks in systems.",
	zodiac.Pisces:      "Impressionable, compassionate and fluid; absorbs the room.",
}

// AscendantDescription returns the interpretive text for a rising sign.
func AscendantDescription(sign zodiac.Sign) string {
	if d, ok := ascendantDescriptions[sign]; ok {
		return d
	}
	return "Interpretation not available"
}

// PlanetInSign returns a short interpretation of a body's sign placement.
func PlanetInSign(body string, sign zodiac.Sign) string {
	theme, ok := planetThemes[body]
	if !ok {
		return "Interpretation not available"
	}
	return fmt.Sprintf("%s expresses %s through %s qualities, ruled by %s.",
		body, theme, sign, sign.Ruler())
}

var planetThemes = map[string]string{
	"Sun":     "core identity and vitality",
	"Moon":    "emotional nature and instinct",
	"Mercury": "thought and communication",
	"Venus":   "affection and aesthetics",
	"Mars":    "drive and assertion",
	"Jupiter": "growth and belief",
	"Saturn":  "discipline and limitation",
	"Uranus":  "disruption and originality",
	"Neptune": "imagination and dissolution",
	"Pluto":   "power and transformation",
	"Rahu":    "worldly appetite and obsession",
	"Ketu":    "detachment and past mastery",
}
