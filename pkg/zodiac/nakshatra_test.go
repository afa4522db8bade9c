package zodiac

import (
	"math"
	"testing"
)

// TestNakshatraFromLongitude tests segment lookup including the boundary
// convention: a longitude equal to an end-degree belongs to the next segment.
func TestNakshatraFromLongitude(t *testing.T) {
	tests := []struct {
		name        string
		longitude   float64
		wantName    string
		wantRuler   string
		wantPercent float64
		tolerance   float64
	}{
		{
			name:        "start of the zodiac",
			longitude:   0.0,
			wantName:    "Ashwini",
			wantRuler:   "Ketu",
			wantPercent: 0.0,
			tolerance:   0.001,
		},
		{
			name:        "just inside the first boundary",
			longitude:   13.33332,
			wantName:    "Ashwini",
			wantRuler:   "Ketu",
			wantPercent: 99.9,
			tolerance:   0.1,
		},
		{
			name:        "just past the first boundary",
			longitude:   13.33334,
			wantName:    "Bharani",
			wantRuler:   "Venus",
			wantPercent: 0.0,
			tolerance:   0.1,
		},
		{
			name:        "exact table boundary goes to the next segment",
			longitude:   13.33333,
			wantName:    "Bharani",
			wantRuler:   "Venus",
			wantPercent: 0.0,
			tolerance:   0.001,
		},
		{
			name:        "middle of Swati",
			longitude:   193.33333,
			wantName:    "Swati",
			wantRuler:   "Rahu",
			wantPercent: 50.0,
			tolerance:   0.01,
		},
		{
			name:        "last segment",
			longitude:   359.9,
			wantName:    "Revati",
			wantRuler:   "Mercury",
			wantPercent: 99.2,
			tolerance:   0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NakshatraFromLongitude(tt.longitude)
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.RulingPlanet != tt.wantRuler {
				t.Errorf("RulingPlanet = %q, want %q", got.RulingPlanet, tt.wantRuler)
			}
			if math.Abs(got.Percent-tt.wantPercent) > tt.tolerance {
				t.Errorf("Percent = %.3f, want %.3f (±%.3f)", got.Percent, tt.wantPercent, tt.tolerance)
			}
		})
	}
}

// TestNakshatraCoverage verifies every longitude maps to exactly one segment
// and the percentage stays in [0, 100)
func TestNakshatraCoverage(t *testing.T) {
	for l := 0.0; l < 360.0; l += 0.1 {
		p := NakshatraFromLongitude(l)
		if p.Name == "" {
			t.Fatalf("no nakshatra for longitude %.1f", l)
		}
		if p.Percent < 0 || p.Percent >= 100.0 {
			t.Errorf("percent out of range at %.1f: %.3f", l, p.Percent)
		}
	}
}

// TestNakshatraTable checks table integrity: 27 ascending segments ending at 360
func TestNakshatraTable(t *testing.T) {
	if len(Nakshatras) != 27 {
		t.Fatalf("table has %d entries, want 27", len(Nakshatras))
	}
	prev := 0.0
	for i, n := range Nakshatras {
		if n.EndDegree <= prev {
			t.Errorf("entry %d (%s): end degree %.5f not ascending", i, n.Name, n.EndDegree)
		}
		// Each segment is 13°20' up to table rounding
		if width := n.EndDegree - prev; math.Abs(width-360.0/27.0) > 0.001 {
			t.Errorf("entry %d (%s): width %.5f, want ~13.33333", i, n.Name, width)
		}
		prev = n.EndDegree
	}
	if Nakshatras[26].EndDegree != 360.0 {
		t.Errorf("last end degree = %.5f, want 360.0", Nakshatras[26].EndDegree)
	}

	// Ruler cycle repeats every 9 segments
	for i := 0; i < 27; i++ {
		if Nakshatras[i].RulingPlanet != Nakshatras[i%9].RulingPlanet {
			t.Errorf("ruler cycle broken at %d (%s)", i, Nakshatras[i].Name)
		}
	}
}
