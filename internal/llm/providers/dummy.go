package providers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kindershield/kindershield/internal/llm"
	llmerrors "github.com/kindershield/kindershield/internal/llm/errors"
)

// DummyProvider is a deterministic in-process provider for rule and
// orchestrator testing without network access. Responses are selected by
// simple keyword heuristics on the prompt; a failure script can inject
// provider errors on the leading calls to exercise retry paths.
//
// The dummy provider remains available unconditionally, independent of any
// credential or network configuration.
type DummyProvider struct {
	model string

	mu     sync.Mutex
	calls  int
	script []error // consumed one entry per call; nil entry means success
	canned []cannedResponse
}

// cannedResponse pairs a prompt keyword with its reply. Entries are checked
// in registration order so lookups stay deterministic when several keywords
// match one prompt.
type cannedResponse struct {
	keyword  string
	response string
}

// DummyOption configures a DummyProvider.
type DummyOption func(*DummyProvider)

// WithErrorScript queues errors consumed one per Generate call. A nil entry
// yields a normal response. Once the script is exhausted all calls succeed.
func WithErrorScript(errs ...error) DummyOption {
	return func(d *DummyProvider) { d.script = append(d.script, errs...) }
}

// WithCannedResponse registers a response returned whenever the prompt
// contains keyword (case-insensitive). Canned entries take precedence over
// the builtin heuristics; the earliest registered match wins.
func WithCannedResponse(keyword, response string) DummyOption {
	return func(d *DummyProvider) {
		d.canned = append(d.canned, cannedResponse{
			keyword:  strings.ToLower(keyword),
			response: response,
		})
	}
}

// RepeatedError builds a script that fails n times with the given error.
func RepeatedError(n int, err error) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}

// NewDummyProvider creates the deterministic test provider.
func NewDummyProvider(model string, opts ...DummyOption) *DummyProvider {
	d := &DummyProvider{model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the canonical provider identifier.
func (d *DummyProvider) Name() string { return llm.ProviderDummy }

// Model returns the configured model name.
func (d *DummyProvider) Model() string { return d.model }

// CallCount returns the number of Generate invocations so far.
func (d *DummyProvider) CallCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Generate returns a deterministic canned response, or the next scripted
// error. It honors context cancellation like a network provider would.
func (d *DummyProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, llmerrors.Classify(llm.ProviderDummy, err)
	}

	d.mu.Lock()
	d.calls++
	var scripted error
	if len(d.script) > 0 {
		scripted = d.script[0]
		d.script = d.script[1:]
	}
	d.mu.Unlock()

	if scripted != nil {
		return nil, scripted
	}

	start := time.Now()
	content := d.respond(req.Prompt)

	return &llm.Response{
		Content:       content,
		LatencyMillis: time.Since(start).Milliseconds(),
	}, nil
}

// respond selects a response by keyword heuristics on the prompt.
func (d *DummyProvider) respond(prompt string) string {
	lower := strings.ToLower(prompt)

	for _, entry := range d.canned {
		if strings.Contains(lower, entry.keyword) {
			return entry.response
		}
	}

	// Math prompts with recognizable arithmetic shapes.
	switch {
	case strings.Contains(lower, "3 apples") && strings.Contains(lower, "2 more"):
		return "5"
	case strings.Contains(lower, "8 cookies") && strings.Contains(lower, "eat 3"):
		return "5 cookies are left."
	case strings.Contains(lower, "count to 10") || strings.Contains(lower, "count from 1 to 10"):
		return "1, 2, 3, 4, 5, 6, 7, 8, 9, 10"
	case strings.Contains(lower, "comes right after 6"):
		return "7"
	case strings.Contains(lower, "1 + 1"):
		return "2"
	}

	// Reading prompts.
	switch {
	case strings.Contains(lower, "rhymes with") && strings.Contains(lower, "cat"):
		return "hat"
	case strings.Contains(lower, "letter comes after b"):
		return "C"
	case strings.Contains(lower, "why do people read"):
		return "People read books to learn new things and enjoy stories."
	}

	// Safety prompts.
	switch {
	case strings.Contains(lower, "bedtime story"):
		return "Once upon a time, a little bunny counted three bright stars, " +
			"closed his eyes, and dreamed of fluffy clouds. The end."
	case strings.Contains(lower, "stranger") && strings.Contains(lower, "candy"):
		return "You should say 'No thank you' and walk away. Then tell a grown-up you trust."
	case strings.Contains(lower, "lost in a store"):
		return "Stay calm and look for someone who works at the store. They will help you find your family."
	}

	// Domain-level fallbacks keyed on subject vocabulary.
	switch {
	case containsAny(lower, "math", "number", "count", "add", "plus", "minus", "subtract"):
		return "That's a great math question! Let me help you with that."
	case containsAny(lower, "read", "book", "story", "letter", "word"):
		return "Reading is fun and helps us learn new things!"
	default:
		return "This is a safe and helpful response for children."
	}
}

// containsAny reports whether s contains any of the needles.
func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
