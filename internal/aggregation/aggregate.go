// Package aggregation reduces a frozen SuiteResult into scalar and
// categorical scores. Summarize is a pure function: no side effects, safe to
// call repeatedly and concurrently, and recomputable from the same result at
// any time.
package aggregation

import (
	"github.com/kindershield/kindershield/internal/domain"
)

// Summarize folds a SuiteResult into its ScoreSummary: overall pass rate,
// per-category pass rates, and the verdict band.
//
// A result with zero cases is a construction-invariant violation surfaced as
// domain.ErrNoCaseResults, never masked as a zero rate.
func Summarize(result *domain.SuiteResult) (domain.ScoreSummary, error) {
	if result == nil || len(result.CaseResults) == 0 {
		return domain.ScoreSummary{}, domain.ErrNoCaseResults
	}

	var passed int
	categoryTotals := make(map[string]int)
	categoryPassed := make(map[string]int)

	for i := range result.CaseResults {
		cr := &result.CaseResults[i]
		categoryTotals[cr.Category]++
		if cr.CasePassed {
			passed++
			categoryPassed[cr.Category]++
		}
	}

	overall := float64(passed) / float64(len(result.CaseResults))

	perCategory := make(map[string]float64, len(categoryTotals))
	for category, total := range categoryTotals {
		perCategory[category] = float64(categoryPassed[category]) / float64(total)
	}

	return domain.ScoreSummary{
		OverallPassRate:     overall,
		PerCategoryPassRate: perCategory,
		VerdictBand:         domain.BandForRate(overall),
	}, nil
}
