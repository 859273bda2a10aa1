// Package runner implements the evaluation orchestrator: it drives a
// provider through every case of a suite under timeout/retry policy, scores
// each response with the rule engine, and assembles the complete, ordered
// SuiteResult. One case's provider failure never aborts the suite; every run
// yields exactly one CaseResult per case.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kindershield/kindershield/internal/domain"
	"github.com/kindershield/kindershield/internal/llm"
	llmerrors "github.com/kindershield/kindershield/internal/llm/errors"
	"github.com/kindershield/kindershield/internal/llm/ratelimit"
	"github.com/kindershield/kindershield/internal/llm/retry"
	"github.com/kindershield/kindershield/internal/scoring"
)

// Option validation errors.
var (
	ErrNilProvider        = errors.New("provider must not be nil")
	ErrInvalidConcurrency = errors.New("concurrency must not be negative")
	ErrInvalidMaxRetries  = errors.New("max retries must not be negative")
)

// defaultConcurrency bounds the worker pool when the caller leaves it unset.
const defaultConcurrency = 4

// Options configures a suite run.
type Options struct {
	// Concurrency bounds the number of cases evaluated in parallel.
	// Zero selects the default; the pool respects provider rate limits via
	// the shared Limiter.
	Concurrency int

	// SuiteDeadline bounds the whole run. Zero means no suite deadline.
	// On expiry, in-flight and pending cases are marked with a timeout
	// provider error and the run still returns a complete SuiteResult.
	SuiteDeadline time.Duration

	// CallTimeout bounds each individual provider call.
	CallTimeout time.Duration

	// MaxRetries caps additional attempts after a transient provider
	// failure (timeout, rate limited, network). Zero disables retries.
	// Non-transient failures are never retried.
	MaxRetries int

	// Backoff configures the delay between retry attempts. A zero value
	// selects the default policy.
	Backoff retry.Config

	// Limiter is the shared token bucket guarding provider calls. Nil
	// applies no throttling.
	Limiter *ratelimit.Limiter

	// Judge handles llm_judge rules. Nil falls back to the run provider.
	Judge llm.Client

	// MaxTokens and Temperature are forwarded on every generation request.
	MaxTokens   int
	Temperature float64

	// RedactPrompts logs prompt and response lengths instead of content.
	RedactPrompts bool
}

// OptionsFromConfig seeds run options from a resolved provider
// configuration, carrying the backend's retry budget and request parameters
// into the orchestrator. Callers layer run-level settings (concurrency,
// deadline, limiter, judge) on top.
func OptionsFromConfig(cfg llm.ProviderConfig) Options {
	cfg = cfg.WithDefaults()
	return Options{
		CallTimeout: cfg.RequestTimeout,
		MaxRetries:  cfg.MaxRetries,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// withDefaults fills zero-valued tunables.
func (o Options) withDefaults() Options {
	if o.Concurrency == 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.CallTimeout == 0 {
		o.CallTimeout = llm.DefaultRequestTimeout
	}
	if o.Backoff == (retry.Config{}) {
		o.Backoff = retry.DefaultConfig()
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = llm.DefaultMaxTokens
	}
	return o
}

// SleepFunc abstracts the retry delay so backoff behavior is testable
// without real waiting. Implementations return ctx.Err() when the context
// ends before the delay elapses.
type SleepFunc func(ctx context.Context, d time.Duration) error

// defaultSleep waits with context cancellation.
func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunnerOption customizes a Runner beyond Options, used mainly by tests.
type RunnerOption func(*Runner)

// WithSleeper replaces the retry delay implementation.
func WithSleeper(sleep SleepFunc) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

// WithClock replaces the time source used for run timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger.With("component", "runner") }
}

// Runner orchestrates suite evaluation against one provider instance. A
// Runner is immutable after construction and safe for concurrent runs.
type Runner struct {
	provider llm.Client
	engine   *scoring.Engine
	opts     Options
	logger   *slog.Logger
	sleep    SleepFunc
	now      func() time.Time
}

// New creates a Runner. Configuration is validated here so Run can assume a
// well-formed setup; only suite validation remains ahead of provider calls.
func New(provider llm.Client, opts Options, runnerOpts ...RunnerOption) (*Runner, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidConcurrency, opts.Concurrency)
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidMaxRetries, opts.MaxRetries)
	}
	opts = opts.withDefaults()
	if err := opts.Backoff.Validate(); err != nil {
		return nil, err
	}

	judge := opts.Judge
	if judge == nil {
		judge = provider
	}

	r := &Runner{
		provider: provider,
		engine:   scoring.NewEngine(judge, opts.CallTimeout, opts.Limiter),
		opts:     opts,
		logger:   slog.Default().With("component", "runner"),
		sleep:    defaultSleep,
		now:      time.Now,
	}
	for _, opt := range runnerOpts {
		opt(r)
	}
	return r, nil
}

// Run evaluates every case in the suite and returns the complete, ordered
// SuiteResult. The only error return is a construction-time configuration
// failure (an invalid suite); provider failures are captured per case.
//
// Cases run concurrently under the configured bound. Results are written
// into pre-indexed slots so ordering always matches the suite's case order
// regardless of completion order.
func (r *Runner) Run(ctx context.Context, suite domain.Suite) (*domain.SuiteResult, error) {
	if err := suite.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	start := r.now()

	runCtx := ctx
	if r.opts.SuiteDeadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.SuiteDeadline)
		defer cancel()
	}

	r.logger.Info("suite run started",
		"run_id", runID,
		"suite", suite.Name,
		"cases", len(suite.Cases),
		"provider", r.provider.Name(),
		"model", r.provider.Model(),
		"concurrency", r.opts.Concurrency)

	// Pre-allocate result slots to preserve suite order deterministically.
	results := make([]domain.CaseResult, len(suite.Cases))
	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup

	for i := range suite.Cases {
		wg.Add(1)
		go func(idx int, c domain.Case) {
			defer wg.Done()

			// Acquire a worker slot unless the suite deadline expires first;
			// unstarted cases are marked as timed out, never dropped.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-runCtx.Done():
				results[idx] = r.deadlineResult(runID, idx, c, 0)
				return
			}

			results[idx] = r.evaluateCase(runCtx, runID, idx, c)
		}(i, suite.Cases[i])
	}

	wg.Wait()

	end := r.now()
	result := &domain.SuiteResult{
		RunID:          runID,
		SuiteName:      suite.Name,
		Provider:       r.provider.Name(),
		Model:          r.provider.Model(),
		CaseResults:    results,
		GeneratedAt:    end,
		DurationMillis: end.Sub(start).Milliseconds(),
	}

	r.logger.Info("suite run completed",
		"run_id", runID,
		"suite", suite.Name,
		"cases", len(result.CaseResults),
		"passed", result.PassedCount(),
		"duration_ms", result.DurationMillis)

	return result, nil
}

// evaluateCase drives one case through the state machine: awaiting_provider
// with retry/backoff, then scoring, then done — or failed when the provider
// terminally errs. Each invocation owns its execution state and result slot;
// cancelling this case's in-flight call never affects sibling cases.
func (r *Runner) evaluateCase(ctx context.Context, runID string, idx int, c domain.Case) domain.CaseResult {
	logger := r.logger.With("run_id", runID, "case_id", c.ID)
	exec := &caseExecution{index: idx, state: statePending}
	exec.advance(stateAwaitingProvider)

	maxAttempts := r.opts.MaxRetries + 1
	var resp *llm.Response
	var provErr *llmerrors.ProviderError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		exec.attempts = attempt

		// The shared token bucket is the only synchronized resource between
		// concurrent case evaluations.
		if err := r.opts.Limiter.Wait(ctx); err != nil {
			return r.deadlineResult(runID, idx, c, exec.attempts)
		}

		callCtx, cancel := context.WithTimeout(ctx, r.opts.CallTimeout)
		generated, err := r.provider.Generate(callCtx, llm.Request{
			Prompt:      c.Prompt,
			MaxTokens:   r.opts.MaxTokens,
			Temperature: r.opts.Temperature,
		})
		cancel()

		if err == nil {
			resp = generated
			provErr = nil
			if attempt > 1 {
				logger.Info("provider call succeeded after retry", "attempt", attempt)
			}
			break
		}

		provErr = llmerrors.Classify(r.provider.Name(), err)

		// A suite deadline expiry overrides per-call classification.
		if ctx.Err() != nil {
			return r.deadlineResult(runID, idx, c, exec.attempts)
		}

		if !provErr.IsRetryable() {
			logger.Warn("non-retryable provider error",
				"attempt", attempt,
				"error_type", provErr.Type,
				"error", provErr.Message)
			break
		}

		if attempt == maxAttempts {
			logger.Warn("provider retries exhausted",
				"attempts", attempt,
				"error_type", provErr.Type)
			break
		}

		delay := retry.Delay(attempt, r.opts.Backoff, provErr)
		logger.Debug("retrying provider call after backoff",
			"attempt", attempt,
			"backoff", delay,
			"error_type", provErr.Type)
		if err := r.sleep(ctx, delay); err != nil {
			return r.deadlineResult(runID, idx, c, exec.attempts)
		}
	}

	if provErr != nil {
		exec.advance(stateFailed)
		return domain.CaseResult{
			ID:           caseResultID(runID, idx),
			CaseID:       c.ID,
			Category:     c.Category,
			Attempts:     exec.attempts,
			RuleOutcomes: []domain.RuleOutcome{},
			CasePassed:   false,
			ProviderError: &domain.ProviderFailure{
				Kind:     string(provErr.Type),
				Message:  provErr.Message,
				Attempts: exec.attempts,
			},
		}
	}

	exec.advance(stateScoring)
	r.logResponse(logger, c, resp)

	outcomes, passed := r.engine.EvaluateAll(ctx, c.Rules, resp.Content)
	exec.advance(stateDone)

	return domain.CaseResult{
		ID:            caseResultID(runID, idx),
		CaseID:        c.ID,
		Category:      c.Category,
		ResponseText:  resp.Content,
		LatencyMillis: resp.LatencyMillis,
		Attempts:      exec.attempts,
		RuleOutcomes:  outcomes,
		CasePassed:    passed,
	}
}

// deadlineResult marks a case as timed out by the suite deadline while
// keeping the result set complete.
func (r *Runner) deadlineResult(runID string, idx int, c domain.Case, attempts int) domain.CaseResult {
	return domain.CaseResult{
		ID:           caseResultID(runID, idx),
		CaseID:       c.ID,
		Category:     c.Category,
		Attempts:     attempts,
		RuleOutcomes: []domain.RuleOutcome{},
		CasePassed:   false,
		ProviderError: &domain.ProviderFailure{
			Kind:     string(llmerrors.ErrorTypeTimeout),
			Message:  "suite deadline exceeded",
			Attempts: attempts,
		},
	}
}

// logResponse logs the scored response, honoring prompt redaction.
func (r *Runner) logResponse(logger *slog.Logger, c domain.Case, resp *llm.Response) {
	if r.opts.RedactPrompts {
		logger.Debug("scoring response",
			"prompt_length", len(c.Prompt),
			"response_length", len(resp.Content),
			"latency_ms", resp.LatencyMillis)
		return
	}
	preview := resp.Content
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	logger.Debug("scoring response",
		"response_preview", preview,
		"latency_ms", resp.LatencyMillis)
}

// caseResultID derives a deterministic result identifier from the run and
// case index, stable across retries within one run.
func caseResultID(runID string, idx int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "case-%s-%d", runID, idx)).String()
}
