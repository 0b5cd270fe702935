// Package viewmodel maps raw analytic values onto the discrete display
// categories the renderer keys styles on. Every mapper is a pure, total
// function: unknown input resolves to a documented fallback, never to an
// empty class and never to an error.
package viewmodel

// Score bands for a PulseScore value.
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandModerate  = "moderate"
	BandWeak      = "weak"
)

// ScoreBand returns the display band for a PulseScore. Thresholds are
// closed-open: ≥80 excellent, ≥60 good, ≥40 moderate, below that weak.
// Out-of-band inputs fall through the same thresholds, so the function is
// defined for every real number.
func ScoreBand(score float64) string {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandModerate
	default:
		return BandWeak
	}
}

// Risk level classes.
const (
	RiskLowClass    = "risk-low"
	RiskMediumClass = "risk-medium"
	RiskHighClass   = "risk-high"
)

// RiskClass maps a server risk level onto its display class. Unknown or
// missing levels map to the Medium class.
func RiskClass(level string) string {
	switch level {
	case "Low":
		return RiskLowClass
	case "Medium":
		return RiskMediumClass
	case "High":
		return RiskHighClass
	default:
		return RiskMediumClass
	}
}

// Color classes for the risk color token.
const (
	ColorGreenClass   = "text-green"
	ColorOrangeClass  = "text-orange"
	ColorRedClass     = "text-red"
	ColorNeutralClass = "text-neutral"
)

// RiskColorClass maps a server color token onto its display class. Unknown
// or missing tokens map to the neutral class.
func RiskColorClass(color string) string {
	switch color {
	case "green":
		return ColorGreenClass
	case "orange":
		return ColorOrangeClass
	case "red":
		return ColorRedClass
	default:
		return ColorNeutralClass
	}
}

// Trend classes for the PulseScore trend field.
const (
	TrendBullishClass = "trend-bullish"
	TrendBearishClass = "trend-bearish"
	TrendNeutralClass = "trend-neutral"
)

// TrendClass maps a trend label onto its display class. Unknown trends map
// to the neutral class.
func TrendClass(trend string) string {
	switch trend {
	case "Bullish":
		return TrendBullishClass
	case "Bearish":
		return TrendBearishClass
	default:
		return TrendNeutralClass
	}
}

// Gain classes for signed change values.
const (
	GainPositiveClass = "gain-positive"
	GainNegativeClass = "gain-negative"
	GainFlatClass     = "gain-flat"
)

// GainClass maps the sign of a change onto its display class.
func GainClass(change float64) string {
	switch {
	case change > 0:
		return GainPositiveClass
	case change < 0:
		return GainNegativeClass
	default:
		return GainFlatClass
	}
}
