// Package scoring implements the rule engine: evaluation of each declarative
// rule kind against a single response text. Evaluation is synchronous and
// side-effect-free except for llm_judge, which performs one judge provider
// call. Rules never error at evaluation time — malformed configuration is
// rejected at construction by the domain package.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kindershield/kindershield/internal/domain"
	"github.com/kindershield/kindershield/internal/llm"
	"github.com/kindershield/kindershield/internal/llm/ratelimit"
)

// Engine evaluates rules against response text. The judge client serves
// llm_judge rules only; all other kinds are pure string predicates. Judge
// calls go through the same token bucket as the orchestrator's provider
// calls. Engines are immutable and safe for concurrent use by case workers.
type Engine struct {
	judge          llm.Client
	judgeTimeout   time.Duration
	judgeMaxTokens int
	limiter        *ratelimit.Limiter
	logger         *slog.Logger
}

// NewEngine creates a rule engine. judge may be nil when no suite uses
// llm_judge rules; evaluating such a rule without a judge fails that rule
// conservatively rather than erroring. limiter is the shared bucket guarding
// the judge backend; nil applies no throttling.
func NewEngine(judge llm.Client, judgeTimeout time.Duration, limiter *ratelimit.Limiter) *Engine {
	return &Engine{
		judge:          judge,
		judgeTimeout:   judgeTimeoutOrDefault(judgeTimeout),
		judgeMaxTokens: 16, // A verdict token, not prose.
		limiter:        limiter,
		logger:         slog.Default().With("component", "scoring"),
	}
}

// Evaluate applies one rule to the response text, dispatching exhaustively
// over the closed rule kinds.
func (e *Engine) Evaluate(ctx context.Context, rule domain.Rule, response string) domain.RuleOutcome {
	switch rule.Kind {
	case domain.RuleContains:
		return evaluateContains(rule, response)
	case domain.RuleNotContains:
		return evaluateNotContains(rule, response)
	case domain.RuleRegexMatch:
		return evaluateRegexMatch(rule, response)
	case domain.RuleExactNumeric:
		return evaluateExactNumeric(rule, response)
	case domain.RuleLengthBounds:
		return evaluateLengthBounds(rule, response)
	case domain.RuleForbiddenTerms:
		return evaluateForbiddenTerms(rule, response)
	case domain.RuleLLMJudge:
		return e.evaluateJudge(ctx, rule, response)
	default:
		// Unreachable for constructor-built rules; report rather than panic.
		return domain.RuleOutcome{
			RuleDescription: rule.Describe(),
			Detail:          fmt.Sprintf("unknown rule kind %q", rule.Kind),
		}
	}
}

// EvaluateAll applies every rule in order and reports the AND-reduction of
// their outcomes. Order matters only for reporting.
func (e *Engine) EvaluateAll(ctx context.Context, rules []domain.Rule, response string) ([]domain.RuleOutcome, bool) {
	outcomes := make([]domain.RuleOutcome, 0, len(rules))
	allPassed := true
	for _, rule := range rules {
		outcome := e.Evaluate(ctx, rule, response)
		allPassed = allPassed && outcome.Passed
		outcomes = append(outcomes, outcome)
	}
	return outcomes, allPassed
}

func evaluateContains(rule domain.Rule, response string) domain.RuleOutcome {
	haystack, needle := response, rule.Substring
	if !rule.CaseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}

	outcome := domain.RuleOutcome{RuleDescription: rule.Describe()}
	if strings.Contains(haystack, needle) {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("found %q", rule.Substring)
	} else {
		outcome.Detail = fmt.Sprintf("%q not found in response", rule.Substring)
	}
	return outcome
}

func evaluateNotContains(rule domain.Rule, response string) domain.RuleOutcome {
	outcome := domain.RuleOutcome{RuleDescription: rule.Describe()}
	if strings.Contains(strings.ToLower(response), strings.ToLower(rule.Substring)) {
		outcome.Detail = fmt.Sprintf("forbidden substring %q present", rule.Substring)
	} else {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("%q absent", rule.Substring)
	}
	return outcome
}

func evaluateRegexMatch(rule domain.Rule, response string) domain.RuleOutcome {
	outcome := domain.RuleOutcome{RuleDescription: rule.Describe()}
	re := rule.Regexp()
	if re == nil {
		// Only reachable for rules built outside the domain constructors.
		outcome.Detail = "pattern not compiled"
		return outcome
	}
	if re.MatchString(response) {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("matched %q", re.FindString(response))
	} else {
		outcome.Detail = fmt.Sprintf("no match for /%s/", rule.Pattern)
	}
	return outcome
}

func evaluateExactNumeric(rule domain.Rule, response string) domain.RuleOutcome {
	outcome := domain.RuleOutcome{RuleDescription: rule.Describe()}

	value, found := extractNumericToken(response)
	if !found {
		outcome.Detail = "no numeric answer found"
		return outcome
	}

	diff := math.Abs(value - rule.Expected)
	if diff <= rule.Tolerance {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("extracted %v, within tolerance of %v", value, rule.Expected)
	} else {
		outcome.Detail = fmt.Sprintf("extracted %v, expected %v (tolerance %v)", value, rule.Expected, rule.Tolerance)
	}
	return outcome
}

func evaluateLengthBounds(rule domain.Rule, response string) domain.RuleOutcome {
	outcome := domain.RuleOutcome{RuleDescription: rule.Describe()}
	length := len(response)
	if length >= rule.MinLen && length <= rule.MaxLen {
		outcome.Passed = true
		outcome.Detail = fmt.Sprintf("length %d within [%d, %d]", length, rule.MinLen, rule.MaxLen)
	} else {
		outcome.Detail = fmt.Sprintf("length %d outside [%d, %d]", length, rule.MinLen, rule.MaxLen)
	}
	return outcome
}

func evaluateForbiddenTerms(rule domain.Rule, response string) domain.RuleOutcome {
	outcome := domain.RuleOutcome{RuleDescription: rule.Describe()}
	lower := strings.ToLower(response)

	var found []string
	for _, term := range rule.Terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}

	if len(found) == 0 {
		outcome.Passed = true
		outcome.Detail = "no forbidden terms present"
	} else {
		outcome.Detail = fmt.Sprintf("found forbidden terms: %s", strings.Join(found, ", "))
	}
	return outcome
}
