package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to caseState }{
		{statePending, stateAwaitingProvider},
		{stateAwaitingProvider, stateScoring},
		{stateAwaitingProvider, stateFailed},
		{stateScoring, stateDone},
	}
	for _, tr := range allowed {
		assert.True(t, canTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	forbidden := []struct{ from, to caseState }{
		{statePending, stateScoring},
		{statePending, stateDone},
		{statePending, stateFailed},
		{stateAwaitingProvider, stateDone},
		{stateScoring, stateFailed},
		{stateScoring, stateAwaitingProvider},
		{stateDone, stateAwaitingProvider},
		{stateDone, stateFailed},
		{stateFailed, stateAwaitingProvider},
		{stateFailed, stateDone},
	}
	for _, tr := range forbidden {
		assert.False(t, canTransition(tr.from, tr.to), "%s -> %s should be forbidden", tr.from, tr.to)
	}
}

func TestCaseExecutionAdvance(t *testing.T) {
	exec := &caseExecution{state: statePending}
	exec.advance(stateAwaitingProvider)
	exec.advance(stateScoring)
	exec.advance(stateDone)
	assert.Equal(t, stateDone, exec.state)

	t.Run("invalid transition panics", func(t *testing.T) {
		exec := &caseExecution{state: stateDone}
		assert.Panics(t, func() { exec.advance(stateScoring) },
			"terminal states must not advance")
	})
}
