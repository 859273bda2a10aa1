package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/kindershield/kindershield/internal/domain"
)

// csvHeader defines the flat per-case export schema.
var csvHeader = []string{
	"run_id", "suite_name", "case_id", "category",
	"case_passed", "attempts", "latency_ms",
	"provider_error_kind", "failed_rules", "response",
}

// WriteCSV writes one row per case result. Rule outcomes are flattened into
// a failed-rule description list; consumers needing full outcome detail use
// the JSON export.
func WriteCSV(w io.Writer, result *domain.SuiteResult) error {
	if result == nil || len(result.CaseResults) == 0 {
		return domain.ErrNoCaseResults
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range result.CaseResults {
		cr := &result.CaseResults[i]

		errorKind := ""
		if cr.ProviderError != nil {
			errorKind = cr.ProviderError.Kind
		}

		row := []string{
			result.RunID,
			result.SuiteName,
			cr.CaseID,
			cr.Category,
			strconv.FormatBool(cr.CasePassed),
			strconv.Itoa(cr.Attempts),
			strconv.FormatInt(cr.LatencyMillis, 10),
			errorKind,
			failedRules(cr.RuleOutcomes),
			cr.ResponseText,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for case %s: %w", cr.CaseID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// failedRules joins the descriptions of failing outcomes with "; ".
func failedRules(outcomes []domain.RuleOutcome) string {
	joined := ""
	for _, outcome := range outcomes {
		if outcome.Passed {
			continue
		}
		if joined != "" {
			joined += "; "
		}
		joined += outcome.RuleDescription
	}
	return joined
}
