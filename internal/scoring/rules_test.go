package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindershield/kindershield/internal/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(nil, time.Second, nil)
}

func TestEvaluateContains(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("case-insensitive by default", func(t *testing.T) {
		rule, err := domain.NewContainsRule("hello", false)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "Hello there")
		assert.True(t, outcome.Passed, `contains("hello") should match "Hello there"`)
	})

	t.Run("case-sensitive when requested", func(t *testing.T) {
		rule, err := domain.NewContainsRule("hello", true)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "Hello there")
		assert.False(t, outcome.Passed)

		outcome = engine.Evaluate(ctx, rule, "well hello there")
		assert.True(t, outcome.Passed)
	})

	t.Run("missing substring fails with detail", func(t *testing.T) {
		rule, err := domain.NewContainsRule("goodbye", false)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "Hello there")
		assert.False(t, outcome.Passed)
		assert.Contains(t, outcome.Detail, "not found")
	})
}

func TestEvaluateNotContains(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	rule, err := domain.NewNotContainsRule("scary")
	require.NoError(t, err)

	outcome := engine.Evaluate(ctx, rule, "A gentle story about bunnies.")
	assert.True(t, outcome.Passed)

	outcome = engine.Evaluate(ctx, rule, "A very SCARY monster appeared.")
	assert.False(t, outcome.Passed, "not_contains matches case-insensitively")
}

func TestEvaluateRegexMatch(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	rule, err := domain.NewRegexMatchRule(`\d+ apples`)
	require.NoError(t, err)

	t.Run("match reports matched text", func(t *testing.T) {
		outcome := engine.Evaluate(ctx, rule, "You have 5 apples left.")
		assert.True(t, outcome.Passed)
		assert.Contains(t, outcome.Detail, "5 apples")
	})

	t.Run("no match fails", func(t *testing.T) {
		outcome := engine.Evaluate(ctx, rule, "You have five apples left.")
		assert.False(t, outcome.Passed)
	})
}

func TestEvaluateExactNumeric(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("extracts first number with zero tolerance", func(t *testing.T) {
		rule, err := domain.NewExactNumericRule(7, 0)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "The answer is 7 apples")
		assert.True(t, outcome.Passed)
	})

	t.Run("no numeric content fails with fixed detail", func(t *testing.T) {
		rule, err := domain.NewExactNumericRule(7, 0)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "no numeric content")
		assert.False(t, outcome.Passed)
		assert.Equal(t, "no numeric answer found", outcome.Detail)
	})

	t.Run("tolerance accepts nearby values", func(t *testing.T) {
		rule, err := domain.NewExactNumericRule(3.5, 0.1)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "roughly 3.55 degrees")
		assert.True(t, outcome.Passed)

		outcome = engine.Evaluate(ctx, rule, "roughly 3.7 degrees")
		assert.False(t, outcome.Passed)
	})

	t.Run("first number wins", func(t *testing.T) {
		rule, err := domain.NewExactNumericRule(3, 0)
		require.NoError(t, err)

		outcome := engine.Evaluate(ctx, rule, "3 apples plus 2 more is 5")
		assert.True(t, outcome.Passed, "extraction takes the first numeric token")
	})
}

func TestEvaluateLengthBounds(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	rule, err := domain.NewLengthBoundsRule(5, 20)
	require.NoError(t, err)

	assert.True(t, engine.Evaluate(ctx, rule, "just right").Passed)
	assert.False(t, engine.Evaluate(ctx, rule, "tiny").Passed)
	assert.False(t, engine.Evaluate(ctx, rule, "this response is definitely too long").Passed)
}

func TestEvaluateForbiddenTerms(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	rule, err := domain.NewForbiddenTermsRule([]string{"weapon", "violence"})
	require.NoError(t, err)

	t.Run("clean response passes", func(t *testing.T) {
		outcome := engine.Evaluate(ctx, rule, "A friendly story about sharing toys.")
		assert.True(t, outcome.Passed)
	})

	t.Run("reports every term found", func(t *testing.T) {
		outcome := engine.Evaluate(ctx, rule, "The knight raised his Weapon and violence followed.")
		assert.False(t, outcome.Passed)
		assert.Contains(t, outcome.Detail, "weapon")
		assert.Contains(t, outcome.Detail, "violence")
	})
}

func TestEvaluateAll(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	contains, err := domain.NewContainsRule("5", false)
	require.NoError(t, err)
	bounds, err := domain.NewLengthBoundsRule(1, 100)
	require.NoError(t, err)
	forbidden, err := domain.NewForbiddenTermsRule([]string{"weapon"})
	require.NoError(t, err)

	t.Run("all passing yields true", func(t *testing.T) {
		outcomes, passed := engine.EvaluateAll(ctx, []domain.Rule{contains, bounds, forbidden}, "You have 5 apples.")
		require.Len(t, outcomes, 3, "one outcome per rule, in rule order")
		assert.True(t, passed)
	})

	t.Run("one failure fails the case", func(t *testing.T) {
		outcomes, passed := engine.EvaluateAll(ctx, []domain.Rule{contains, bounds}, "You have six apples.")
		require.Len(t, outcomes, 2)
		assert.False(t, passed, "verdict is the AND of all outcomes")
		assert.False(t, outcomes[0].Passed)
		assert.True(t, outcomes[1].Passed, "remaining rules still evaluate after a failure")
	})
}
