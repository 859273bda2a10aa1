package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindershield/kindershield/internal/domain"
	llmerrors "github.com/kindershield/kindershield/internal/llm/errors"
	"github.com/kindershield/kindershield/internal/llm/providers"
	"github.com/kindershield/kindershield/internal/llm/ratelimit"
)

func judgeRule(t *testing.T) domain.Rule {
	t.Helper()
	rule, err := domain.NewLLMJudgeRule("The response must be age-appropriate for young children.", 0.8)
	require.NoError(t, err)
	return rule
}

func TestEvaluateJudge(t *testing.T) {
	ctx := context.Background()

	t.Run("pass verdict", func(t *testing.T) {
		judge := providers.NewDummyProvider("judge-model",
			providers.WithCannedResponse("age-appropriate", "PASS"))
		engine := NewEngine(judge, time.Second, nil)

		outcome := engine.Evaluate(ctx, judgeRule(t), "A sweet story about friendship.")
		assert.True(t, outcome.Passed)
		assert.Equal(t, "judge verdict: pass", outcome.Detail)
	})

	t.Run("fail verdict", func(t *testing.T) {
		judge := providers.NewDummyProvider("judge-model",
			providers.WithCannedResponse("age-appropriate", "FAIL"))
		engine := NewEngine(judge, time.Second, nil)

		outcome := engine.Evaluate(ctx, judgeRule(t), "Something unsuitable.")
		assert.False(t, outcome.Passed)
		assert.Equal(t, "judge verdict: fail", outcome.Detail)
	})

	t.Run("unparseable reply fails conservatively", func(t *testing.T) {
		judge := providers.NewDummyProvider("judge-model",
			providers.WithCannedResponse("age-appropriate", "Yes, I think it is fine."))
		engine := NewEngine(judge, time.Second, nil)

		outcome := engine.Evaluate(ctx, judgeRule(t), "A story.")
		assert.False(t, outcome.Passed)
		assert.Equal(t, "unparseable judge reply", outcome.Detail)
	})

	t.Run("judge error is a soft rule failure, not retried", func(t *testing.T) {
		judge := providers.NewDummyProvider("judge-model",
			providers.WithErrorScript(&llmerrors.ProviderError{
				Provider: "dummy",
				Message:  "judge unavailable",
				Type:     llmerrors.ErrorTypeTimeout,
			}))
		engine := NewEngine(judge, time.Second, nil)

		outcome := engine.Evaluate(ctx, judgeRule(t), "A story.")
		assert.False(t, outcome.Passed)
		assert.Contains(t, outcome.Detail, "judge call failed")
		assert.Equal(t, 1, judge.CallCount(), "judge failures must not trigger retries")
	})

	t.Run("nil judge fails the rule", func(t *testing.T) {
		engine := NewEngine(nil, time.Second, nil)

		outcome := engine.Evaluate(ctx, judgeRule(t), "A story.")
		assert.False(t, outcome.Passed)
		assert.Equal(t, "no judge provider configured", outcome.Detail)
	})

	t.Run("judge call waits on the shared token bucket", func(t *testing.T) {
		judge := providers.NewDummyProvider("judge-model",
			providers.WithCannedResponse("age-appropriate", "PASS"))
		limiter := ratelimit.New("dummy", 0.0001, 1)
		require.NoError(t, limiter.Wait(ctx), "drain the burst token")

		engine := NewEngine(judge, 50*time.Millisecond, limiter)

		outcome := engine.Evaluate(ctx, judgeRule(t), "A story.")
		assert.False(t, outcome.Passed)
		assert.Contains(t, outcome.Detail, "judge call failed")
		assert.Zero(t, judge.CallCount(), "an exhausted bucket must block the judge call")
	})

	t.Run("judge call proceeds when a token is available", func(t *testing.T) {
		judge := providers.NewDummyProvider("judge-model",
			providers.WithCannedResponse("age-appropriate", "PASS"))
		limiter := ratelimit.New("dummy", 100, 1)

		engine := NewEngine(judge, time.Second, limiter)

		outcome := engine.Evaluate(ctx, judgeRule(t), "A story.")
		assert.True(t, outcome.Passed)
		assert.Equal(t, 1, judge.CallCount())
	})
}

func TestParseJudgeVerdict(t *testing.T) {
	tests := []struct {
		name   string
		reply  string
		passed bool
		parsed bool
	}{
		{"bare pass", "PASS", true, true},
		{"bare fail", "FAIL", false, true},
		{"lowercase pass", "pass", true, true},
		{"pass in sentence", "The response passes the rubric.", true, true},
		{"fail in sentence", "Unfortunately this fails.", false, true},
		{"pass before fail", "PASS. It does not fail any criterion.", true, true},
		{"fail before pass", "FAIL — it cannot pass as written.", false, true},
		{"neither token", "Yes, it looks fine to me.", false, false},
		{"empty reply", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed, parsed := parseJudgeVerdict(tt.reply)
			assert.Equal(t, tt.parsed, parsed)
			assert.Equal(t, tt.passed, passed)
		})
	}
}
