// Package domain defines the data model for suite-based evaluation of
// language-model responses: suites, cases, rules, results, and score
// summaries. All invariants are enforced at construction time so that
// evaluation itself never fails on malformed configuration.
package domain

import (
	"errors"
	"fmt"
)

// Construction-time errors. Only these may abort a run, and only before any
// provider call is made.
var (
	// ErrEmptySuite indicates a suite was constructed without cases.
	ErrEmptySuite = errors.New("suite must contain at least one case")

	// ErrDuplicateCaseID indicates two cases in one suite share an ID.
	ErrDuplicateCaseID = errors.New("duplicate case id in suite")

	// ErrNoRules indicates a case was constructed without rules.
	ErrNoRules = errors.New("case must contain at least one rule")

	// ErrInvalidRule indicates rule parameters failed construction validation.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrNoCaseResults indicates a summary was requested for a result set
	// with no case results. An empty suite cannot be constructed, so this
	// only guards hand-built SuiteResult values.
	ErrNoCaseResults = errors.New("suite result contains no case results")
)

// ConfigError captures a construction-time validation failure with the field
// that caused it. It wraps the relevant sentinel so callers can classify with
// errors.Is while still seeing the offending field.
type ConfigError struct {
	Field   string // Field or parameter that failed validation
	Message string // Human-readable validation message
	Err     error  // Underlying sentinel error
}

// Error returns the formatted configuration error with field context.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *ConfigError) Unwrap() error { return e.Err }

// newConfigError builds a ConfigError wrapping ErrInvalidRule by default.
func newConfigError(field, message string, sentinel error) *ConfigError {
	if sentinel == nil {
		sentinel = ErrInvalidRule
	}
	return &ConfigError{Field: field, Message: message, Err: sentinel}
}
