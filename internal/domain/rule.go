package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleKind identifies one of the closed set of rule variants. The set is
// deliberately closed: evaluation dispatches over these kinds exhaustively
// rather than through open-ended registration.
type RuleKind string

// RuleKind enum values.
const (
	// RuleContains requires a substring to appear in the response.
	RuleContains RuleKind = "contains"

	// RuleNotContains requires a substring to be absent from the response.
	RuleNotContains RuleKind = "not_contains"

	// RuleRegexMatch requires the response to match a regular expression.
	RuleRegexMatch RuleKind = "regex_match"

	// RuleExactNumeric requires the first numeric token in the response to
	// be within tolerance of an expected value.
	RuleExactNumeric RuleKind = "exact_numeric"

	// RuleLengthBounds requires the response length to fall inside [min, max].
	RuleLengthBounds RuleKind = "length_bounds"

	// RuleForbiddenTerms requires none of a set of terms to appear.
	RuleForbiddenTerms RuleKind = "forbidden_terms"

	// RuleLLMJudge delegates the verdict to a judge model with a rubric.
	RuleLLMJudge RuleKind = "llm_judge"
)

// IsValidRuleKind reports whether the kind is a recognized rule variant.
func IsValidRuleKind(kind RuleKind) bool {
	switch kind {
	case RuleContains, RuleNotContains, RuleRegexMatch, RuleExactNumeric,
		RuleLengthBounds, RuleForbiddenTerms, RuleLLMJudge:
		return true
	default:
		return false
	}
}

// Rule is a single declarative pass/fail predicate over response text.
// A Rule is constructed through one of the New*Rule constructors, which
// validate all parameters up front; a successfully constructed Rule never
// fails to evaluate on malformed configuration. Rules are immutable and safe
// for concurrent use.
type Rule struct {
	// Kind selects which parameter set below is meaningful.
	Kind RuleKind `json:"kind"`

	// Substring is the needle for contains / not_contains rules.
	Substring string `json:"substring,omitempty"`

	// CaseSensitive controls matching for contains rules. The default is
	// case-insensitive matching.
	CaseSensitive bool `json:"case_sensitive,omitempty"`

	// Pattern is the source text of a regex_match rule's expression.
	Pattern string `json:"pattern,omitempty"`

	// Expected and Tolerance parameterize exact_numeric rules.
	Expected  float64 `json:"expected,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`

	// MinLen and MaxLen bound response length for length_bounds rules,
	// measured in bytes of the response text.
	MinLen int `json:"min_len,omitempty"`
	MaxLen int `json:"max_len,omitempty"`

	// Terms is the blocklist for forbidden_terms rules.
	Terms []string `json:"terms,omitempty"`

	// Rubric is the judge instruction for llm_judge rules.
	Rubric string `json:"rubric,omitempty"`

	// PassingThreshold is retained for suite-format compatibility and shown
	// in the rule description; the judge verdict parse itself is binary.
	PassingThreshold float64 `json:"passing_threshold,omitempty"`

	// re is the compiled Pattern, populated at construction for regex_match.
	re *regexp.Regexp
}

// NewContainsRule builds a rule requiring substring to appear in the
// response. Matching is case-insensitive unless caseSensitive is set.
func NewContainsRule(substring string, caseSensitive bool) (Rule, error) {
	if substring == "" {
		return Rule{}, newConfigError("contains.substring", "substring must not be empty", nil)
	}
	return Rule{Kind: RuleContains, Substring: substring, CaseSensitive: caseSensitive}, nil
}

// NewNotContainsRule builds a rule requiring substring to be absent from the
// response. Matching is case-insensitive.
func NewNotContainsRule(substring string) (Rule, error) {
	if substring == "" {
		return Rule{}, newConfigError("not_contains.substring", "substring must not be empty", nil)
	}
	return Rule{Kind: RuleNotContains, Substring: substring}, nil
}

// NewRegexMatchRule builds a rule requiring the response to match pattern.
// The pattern is compiled here; an uncompilable pattern fails construction,
// never evaluation.
func NewRegexMatchRule(pattern string) (Rule, error) {
	if pattern == "" {
		return Rule{}, newConfigError("regex_match.pattern", "pattern must not be empty", nil)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, newConfigError("regex_match.pattern", fmt.Sprintf("pattern does not compile: %v", err), nil)
	}
	return Rule{Kind: RuleRegexMatch, Pattern: pattern, re: re}, nil
}

// NewExactNumericRule builds a rule comparing the first numeric token of the
// response against expected within tolerance.
func NewExactNumericRule(expected, tolerance float64) (Rule, error) {
	if tolerance < 0 {
		return Rule{}, newConfigError("exact_numeric.tolerance", "tolerance must not be negative", nil)
	}
	return Rule{Kind: RuleExactNumeric, Expected: expected, Tolerance: tolerance}, nil
}

// NewLengthBoundsRule builds a rule bounding response length to [min, max].
func NewLengthBoundsRule(minLen, maxLen int) (Rule, error) {
	if minLen < 0 {
		return Rule{}, newConfigError("length_bounds.min", "min must not be negative", nil)
	}
	if minLen > maxLen {
		return Rule{}, newConfigError("length_bounds", fmt.Sprintf("min %d exceeds max %d", minLen, maxLen), nil)
	}
	return Rule{Kind: RuleLengthBounds, MinLen: minLen, MaxLen: maxLen}, nil
}

// NewForbiddenTermsRule builds a rule failing when any term appears in the
// response. Terms are matched case-insensitively; empty terms are rejected.
func NewForbiddenTermsRule(terms []string) (Rule, error) {
	if len(terms) == 0 {
		return Rule{}, newConfigError("forbidden_terms.terms", "at least one term is required", nil)
	}
	copied := make([]string, len(terms))
	for i, term := range terms {
		if strings.TrimSpace(term) == "" {
			return Rule{}, newConfigError("forbidden_terms.terms", fmt.Sprintf("term %d is empty", i), nil)
		}
		copied[i] = term
	}
	return Rule{Kind: RuleForbiddenTerms, Terms: copied}, nil
}

// NewLLMJudgeRule builds a rule that delegates the verdict to a judge model.
// The rubric must be non-empty and the threshold must lie in (0, 1].
func NewLLMJudgeRule(rubric string, passingThreshold float64) (Rule, error) {
	if strings.TrimSpace(rubric) == "" {
		return Rule{}, newConfigError("llm_judge.rubric", "rubric must not be empty", nil)
	}
	if passingThreshold <= 0 || passingThreshold > 1 {
		return Rule{}, newConfigError("llm_judge.passing_threshold",
			fmt.Sprintf("threshold %v outside (0, 1]", passingThreshold), nil)
	}
	return Rule{Kind: RuleLLMJudge, Rubric: rubric, PassingThreshold: passingThreshold}, nil
}

// Regexp returns the compiled pattern for regex_match rules, nil otherwise.
func (r Rule) Regexp() *regexp.Regexp { return r.re }

// Validate reports whether the rule was produced by a constructor and still
// satisfies its parameter invariants. Suites call this when assembled from
// decoded data to reject rules built by hand.
func (r Rule) Validate() error {
	switch r.Kind {
	case RuleContains:
		if r.Substring == "" {
			return newConfigError("contains.substring", "substring must not be empty", nil)
		}
	case RuleNotContains:
		if r.Substring == "" {
			return newConfigError("not_contains.substring", "substring must not be empty", nil)
		}
	case RuleRegexMatch:
		if r.re == nil {
			return newConfigError("regex_match.pattern", "pattern was not compiled at construction", nil)
		}
	case RuleExactNumeric:
		if r.Tolerance < 0 {
			return newConfigError("exact_numeric.tolerance", "tolerance must not be negative", nil)
		}
	case RuleLengthBounds:
		if r.MinLen < 0 || r.MinLen > r.MaxLen {
			return newConfigError("length_bounds", "bounds must satisfy 0 <= min <= max", nil)
		}
	case RuleForbiddenTerms:
		if len(r.Terms) == 0 {
			return newConfigError("forbidden_terms.terms", "at least one term is required", nil)
		}
	case RuleLLMJudge:
		if r.Rubric == "" {
			return newConfigError("llm_judge.rubric", "rubric must not be empty", nil)
		}
		if r.PassingThreshold <= 0 || r.PassingThreshold > 1 {
			return newConfigError("llm_judge.passing_threshold", "threshold outside (0, 1]", nil)
		}
	default:
		return newConfigError("rule.kind", fmt.Sprintf("unknown rule kind %q", r.Kind), nil)
	}
	return nil
}

// Describe returns a short human-readable description of the predicate,
// recorded on each RuleOutcome for reporting.
func (r Rule) Describe() string {
	switch r.Kind {
	case RuleContains:
		if r.CaseSensitive {
			return fmt.Sprintf("contains %q (case-sensitive)", r.Substring)
		}
		return fmt.Sprintf("contains %q", r.Substring)
	case RuleNotContains:
		return fmt.Sprintf("does not contain %q", r.Substring)
	case RuleRegexMatch:
		return fmt.Sprintf("matches /%s/", r.Pattern)
	case RuleExactNumeric:
		return fmt.Sprintf("numeric answer %v (tolerance %v)", r.Expected, r.Tolerance)
	case RuleLengthBounds:
		return fmt.Sprintf("length within [%d, %d]", r.MinLen, r.MaxLen)
	case RuleForbiddenTerms:
		return fmt.Sprintf("avoids %d forbidden terms", len(r.Terms))
	case RuleLLMJudge:
		return fmt.Sprintf("judge rubric (threshold %v)", r.PassingThreshold)
	default:
		return fmt.Sprintf("unknown rule %q", r.Kind)
	}
}
