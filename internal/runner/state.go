package runner

// caseState tracks one case's progress through evaluation. Transitions
// follow: pending -> awaiting_provider -> scoring -> done, with failed as an
// absorbing state reachable from awaiting_provider once retries are
// exhausted or a non-retryable provider error occurs.
type caseState string

const (
	statePending          caseState = "pending"
	stateAwaitingProvider caseState = "awaiting_provider"
	stateScoring          caseState = "scoring"
	stateDone             caseState = "done"
	stateFailed           caseState = "failed"
)

// canTransition reports whether the state machine permits moving from one
// state to another. Kept explicit so the orchestrator's control flow is
// checkable in tests without timing dependencies.
func canTransition(from, to caseState) bool {
	switch from {
	case statePending:
		return to == stateAwaitingProvider
	case stateAwaitingProvider:
		return to == stateScoring || to == stateFailed
	case stateScoring:
		return to == stateDone
	default:
		// done and failed are terminal.
		return false
	}
}

// caseExecution carries one case's mutable evaluation state. Each execution
// is owned by exactly one worker goroutine; no synchronization is needed.
type caseExecution struct {
	index    int
	state    caseState
	attempts int
}

// advance moves the execution to the next state, panicking on transitions
// the machine forbids. A panic here is a programming error in the
// orchestrator, never a data-dependent condition.
func (ce *caseExecution) advance(to caseState) {
	if !canTransition(ce.state, to) {
		panic("runner: invalid case state transition " + string(ce.state) + " -> " + string(to))
	}
	ce.state = to
}
