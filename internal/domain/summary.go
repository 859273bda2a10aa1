package domain

// VerdictBand buckets a pass rate into the categorical verdict consumed by
// downstream badge and report rendering.
type VerdictBand string

// VerdictBand enum values, ordered from best to worst.
const (
	// VerdictExcellent indicates a pass rate of at least 90%.
	VerdictExcellent VerdictBand = "excellent"

	// VerdictGood indicates a pass rate of at least 70%.
	VerdictGood VerdictBand = "good"

	// VerdictNeedsAttention indicates a pass rate of at least 50%.
	VerdictNeedsAttention VerdictBand = "needs_attention"

	// VerdictCritical indicates a pass rate below 50%.
	VerdictCritical VerdictBand = "critical"
)

// Verdict band thresholds. These match the badge-color policy consumed by
// downstream renderers.
const (
	ExcellentThreshold      = 0.90
	GoodThreshold           = 0.70
	NeedsAttentionThreshold = 0.50
)

// BandForRate maps an overall pass rate in [0, 1] to its verdict band.
func BandForRate(rate float64) VerdictBand {
	switch {
	case rate >= ExcellentThreshold:
		return VerdictExcellent
	case rate >= GoodThreshold:
		return VerdictGood
	case rate >= NeedsAttentionThreshold:
		return VerdictNeedsAttention
	default:
		return VerdictCritical
	}
}

// IsValidVerdictBand reports whether the band is a recognized bucket.
func IsValidVerdictBand(band VerdictBand) bool {
	switch band {
	case VerdictExcellent, VerdictGood, VerdictNeedsAttention, VerdictCritical:
		return true
	default:
		return false
	}
}

// ScoreSummary is the derived, stateless reduction of a SuiteResult. It has
// no independent lifecycle and is recomputed on demand, never cached across
// runs.
type ScoreSummary struct {
	// OverallPassRate is passed cases over total cases, in [0, 1].
	OverallPassRate float64 `json:"overall_pass_rate"`

	// PerCategoryPassRate maps each case category to its pass rate.
	PerCategoryPassRate map[string]float64 `json:"per_category_pass_rate"`

	// VerdictBand is the categorical bucket for OverallPassRate.
	VerdictBand VerdictBand `json:"verdict_band"`
}
