package astrotime

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestJulianDay tests the Julian Day calculation against known epochs
func TestJulianDay(t *testing.T) {
	tests := []struct {
		name      string
		time      time.Time
		want      float64
		tolerance float64
	}{
		{
			name:      "J2000.0 epoch",
			time:      time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			want:      2451545.0,
			tolerance: 0.001,
		},
		{
			name:      "Unix epoch",
			time:      time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			want:      2440587.5,
			tolerance: 0.001,
		},
		{
			name:      "Lahiri reference epoch 1950-01-01",
			time:      time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
			want:      2433282.5,
			tolerance: 0.001,
		},
		{
			name:      "February date (month adjustment branch)",
			time:      time.Date(1993, 2, 17, 0, 0, 0, 0, time.UTC),
			want:      2449035.5,
			tolerance: 0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jd := JulianDay(tt.time)
			if math.Abs(jd-tt.want) > tt.tolerance {
				t.Errorf("JulianDay = %.5f, want %.5f (±%.3f)", jd, tt.want, tt.tolerance)
			}
		})
	}
}

// TestGreenwichSiderealTime tests GMST against the known J2000 value
func TestGreenwichSiderealTime(t *testing.T) {
	// At J2000.0, GMST is approximately 18.697 hours = 280.46 degrees
	gmst := GreenwichSiderealTime(JulianDayJ2000)
	expected := 18.697374558 * 15.0
	if math.Abs(gmst-expected) > 0.01 {
		t.Errorf("GMST at J2000 = %.4f°, want %.4f°", gmst, expected)
	}

	// GMST must stay in [0, 360) over a range of days
	for _, offset := range []float64{-40000, -1000, 0, 1000, 40000} {
		g := GreenwichSiderealTime(JulianDayJ2000 + offset)
		if g < 0 || g >= 360 {
			t.Errorf("GMST out of range [0, 360) at offset %.0f: %.4f", offset, g)
		}
	}
}

// TestLocalSiderealTime tests longitude offset and wrap-around
func TestLocalSiderealTime(t *testing.T) {
	jd := JulianDayJ2000

	// At Greenwich, LST equals GMST
	if lst := LocalSiderealTime(jd, 0.0); math.Abs(lst-GreenwichSiderealTime(jd)) > 1e-9 {
		t.Errorf("LST at Greenwich = %.6f, want GMST %.6f", lst, GreenwichSiderealTime(jd))
	}

	// LST must stay in [0, 360) for any longitude
	for _, lon := range []float64{-180.0, -90.0, 0.0, 90.0, 180.0} {
		lst := LocalSiderealTime(jd, lon)
		if lst < 0 || lst >= 360 {
			t.Errorf("LST out of range [0, 360) for longitude %.1f: %.4f", lon, lst)
		}
	}
}

// TestObliquity checks the mean obliquity near the present era
func TestObliquity(t *testing.T) {
	eps := Obliquity(JulianDayJ2000)
	if math.Abs(eps-23.4392911) > 0.0001 {
		t.Errorf("Obliquity at J2000 = %.7f, want 23.4392911", eps)
	}

	// Obliquity is currently decreasing
	later := Obliquity(JulianDayJ2000 + 36525)
	if later >= eps {
		t.Errorf("Obliquity should decrease over a century: %.7f -> %.7f", eps, later)
	}
}

// TestCivilToUT tests timezone localization and the UTC fallback path
func TestCivilToUT(t *testing.T) {
	t.Run("known timezone", func(t *testing.T) {
		m, err := CivilToUT("1993-02-17", "14:30", "Asia/Kolkata")
		if err != nil {
			t.Fatalf("CivilToUT returned error: %v", err)
		}
		if m.TimezoneFallback {
			t.Error("unexpected timezone fallback for Asia/Kolkata")
		}
		// IST is UTC+5:30, so 14:30 local = 09:00 UTC
		want := time.Date(1993, 2, 17, 9, 0, 0, 0, time.UTC)
		if !m.UTC.Equal(want) {
			t.Errorf("UTC = %v, want %v", m.UTC, want)
		}
	})

	t.Run("default noon", func(t *testing.T) {
		m, err := CivilToUT("2000-01-01", "", "UTC")
		if err != nil {
			t.Fatalf("CivilToUT returned error: %v", err)
		}
		if m.UTC.Hour() != 12 {
			t.Errorf("default hour = %d, want 12", m.UTC.Hour())
		}
		if math.Abs(m.JulianDay-2451545.0) > 0.001 {
			t.Errorf("JulianDay = %.5f, want 2451545.0", m.JulianDay)
		}
	})

	t.Run("unknown timezone falls back to UTC", func(t *testing.T) {
		m, err := CivilToUT("2000-01-01", "06:00", "Mars/Olympus_Mons")
		if err != nil {
			t.Fatalf("fallback must not be a hard failure, got: %v", err)
		}
		if !m.TimezoneFallback {
			t.Error("expected TimezoneFallback to be set")
		}
		if m.Timezone != "UTC" {
			t.Errorf("Timezone = %q, want UTC", m.Timezone)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := CivilToUT("17-02-1993", "12:00", "UTC")
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %v", err)
		}
		if pe.Field != "date" {
			t.Errorf("ParseError.Field = %q, want date", pe.Field)
		}
	})

	t.Run("bad time", func(t *testing.T) {
		_, err := CivilToUT("1993-02-17", "25:99", "UTC")
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %v", err)
		}
		if pe.Field != "time" {
			t.Errorf("ParseError.Field = %q, want time", pe.Field)
		}
	})
}
