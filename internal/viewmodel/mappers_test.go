package viewmodel

import "testing"

func TestScoreBandBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, BandExcellent},
		{80, BandExcellent},
		{79.9, BandGood},
		{60, BandGood},
		{59.9, BandModerate},
		{40, BandModerate},
		{39.9, BandWeak},
		{0, BandWeak},
		// Out-of-band inputs band by the same thresholds.
		{150, BandExcellent},
		{-5, BandWeak},
	}
	for _, c := range cases {
		if got := ScoreBand(c.score); got != c.want {
			t.Errorf("ScoreBand(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestScoreBandTotal(t *testing.T) {
	valid := map[string]bool{
		BandExcellent: true, BandGood: true, BandModerate: true, BandWeak: true,
	}
	for _, s := range []float64{-1e9, -0.1, 0, 39.999, 40, 79.999, 80, 1e9} {
		if got := ScoreBand(s); !valid[got] {
			t.Errorf("ScoreBand(%v) = %q, not a defined band", s, got)
		}
	}
}

func TestRiskClass(t *testing.T) {
	cases := []struct {
		level string
		want  string
	}{
		{"Low", RiskLowClass},
		{"Medium", RiskMediumClass},
		{"High", RiskHighClass},
		// Unknown and missing input falls back to the Medium class.
		{"", RiskMediumClass},
		{"Extreme", RiskMediumClass},
		{"low", RiskMediumClass},
	}
	for _, c := range cases {
		if got := RiskClass(c.level); got != c.want {
			t.Errorf("RiskClass(%q) = %q, want %q", c.level, got, c.want)
		}
	}
}

func TestRiskColorClass(t *testing.T) {
	cases := []struct {
		color string
		want  string
	}{
		{"green", ColorGreenClass},
		{"orange", ColorOrangeClass},
		{"red", ColorRedClass},
		{"", ColorNeutralClass},
		{"magenta", ColorNeutralClass},
	}
	for _, c := range cases {
		if got := RiskColorClass(c.color); got != c.want {
			t.Errorf("RiskColorClass(%q) = %q, want %q", c.color, got, c.want)
		}
	}
}

func TestTrendClass(t *testing.T) {
	cases := []struct {
		trend string
		want  string
	}{
		{"Bullish", TrendBullishClass},
		{"Bearish", TrendBearishClass},
		{"Neutral", TrendNeutralClass},
		{"", TrendNeutralClass},
		{"Sideways", TrendNeutralClass},
	}
	for _, c := range cases {
		if got := TrendClass(c.trend); got != c.want {
			t.Errorf("TrendClass(%q) = %q, want %q", c.trend, got, c.want)
		}
	}
}

func TestGainClass(t *testing.T) {
	if got := GainClass(2.5); got != GainPositiveClass {
		t.Errorf("GainClass(2.5) = %q, want %q", got, GainPositiveClass)
	}
	if got := GainClass(-0.1); got != GainNegativeClass {
		t.Errorf("GainClass(-0.1) = %q, want %q", got, GainNegativeClass)
	}
	if got := GainClass(0); got != GainFlatClass {
		t.Errorf("GainClass(0) = %q, want %q", got, GainFlatClass)
	}
}
