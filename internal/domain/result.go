package domain

import (
	"fmt"
	"time"
)

// RuleOutcome records one rule's verdict against one response. Outcomes are
// produced exactly once per (case, rule) pair and never mutated.
type RuleOutcome struct {
	// RuleDescription is the evaluated rule's Describe() text.
	RuleDescription string `json:"rule_description"`

	// Passed reports whether the predicate held.
	Passed bool `json:"passed"`

	// Detail explains the verdict (matched text, extracted number, judge
	// reply summary, failure reason).
	Detail string `json:"detail,omitempty"`
}

// ProviderFailure captures a case's terminal provider error. Kind mirrors
// the provider error taxonomy (timeout, rate_limited, auth_failed,
// network_error, invalid_response).
type ProviderFailure struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Attempts int    `json:"attempts"`
}

// CaseResult is the frozen outcome of evaluating one case. Exactly one
// CaseResult exists per suite case, in suite order, regardless of provider
// failures or execution concurrency.
//
// Invariant: when ProviderError is set, CasePassed is false and RuleOutcomes
// is empty — a provider failure short-circuits scoring. Otherwise CasePassed
// is the AND of all rule outcomes.
type CaseResult struct {
	// ID is a deterministic identifier derived from the run and case index.
	ID string `json:"id"`

	// CaseID references the evaluated case.
	CaseID string `json:"case_id"`

	// Category is copied from the case so summaries need only the result.
	Category string `json:"category"`

	// ResponseText is the raw provider response, empty on provider failure.
	ResponseText string `json:"response_text,omitempty"`

	// LatencyMillis is the successful provider call's latency.
	LatencyMillis int64 `json:"latency_ms,omitempty"`

	// Attempts counts provider call attempts, including the successful one.
	Attempts int `json:"attempts"`

	// RuleOutcomes holds one outcome per case rule, in rule order.
	RuleOutcomes []RuleOutcome `json:"rule_outcomes"`

	// CasePassed is the AND-reduction of RuleOutcomes, false on provider
	// failure.
	CasePassed bool `json:"case_passed"`

	// ProviderError is set when the provider terminally failed for this case.
	ProviderError *ProviderFailure `json:"provider_error,omitempty"`
}

// Validate checks the CaseResult short-circuit invariant.
func (cr *CaseResult) Validate() error {
	if cr.CaseID == "" {
		return newConfigError("case_result.case_id", "case id must not be empty", nil)
	}
	if cr.ProviderError != nil {
		if cr.CasePassed {
			return fmt.Errorf("case %s: passed despite provider error", cr.CaseID)
		}
		if len(cr.RuleOutcomes) != 0 {
			return fmt.Errorf("case %s: rule outcomes present despite provider error", cr.CaseID)
		}
		return nil
	}
	for _, outcome := range cr.RuleOutcomes {
		if !outcome.Passed && cr.CasePassed {
			return fmt.Errorf("case %s: passed despite failing rule outcome", cr.CaseID)
		}
	}
	return nil
}

// SuiteResult is the complete, frozen outcome of one suite run. It is
// assembled exactly once by the orchestrator and handed to aggregation and
// reporting as an immutable value.
type SuiteResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// SuiteName echoes the evaluated suite's name.
	SuiteName string `json:"suite_name"`

	// Provider and Model identify the backend that produced the responses.
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// CaseResults holds one result per suite case, in suite order.
	CaseResults []CaseResult `json:"case_results"`

	// GeneratedAt marks result assembly time.
	GeneratedAt time.Time `json:"generated_at"`

	// DurationMillis measures the whole run, end to end.
	DurationMillis int64 `json:"duration_ms"`
}

// Validate checks result completeness and every case result's invariants.
func (sr *SuiteResult) Validate() error {
	if sr.SuiteName == "" {
		return newConfigError("suite_result.suite_name", "suite name must not be empty", nil)
	}
	if len(sr.CaseResults) == 0 {
		return ErrNoCaseResults
	}
	for i := range sr.CaseResults {
		if err := sr.CaseResults[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PassedCount returns the number of passing case results.
func (sr *SuiteResult) PassedCount() int {
	count := 0
	for i := range sr.CaseResults {
		if sr.CaseResults[i].CasePassed {
			count++
		}
	}
	return count
}
