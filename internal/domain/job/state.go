package job

import "fmt"

// RunState makes the lifecycle of a page run explicit, so termination and
// retry semantics can be audited independent of the queue infrastructure.
type RunState string

const (
	StateIdle         RunState = "idle"
	StatePageInFlight RunState = "page_in_flight"
	StateCompleted    RunState = "completed"
	StateFailed       RunState = "failed"
)

var legalTransitions = map[RunState][]RunState{
	StateIdle:         {StatePageInFlight},
	StatePageInFlight: {StateCompleted, StateFailed},
	StateCompleted:    {},
	StateFailed:       {},
}

// Run tracks one page execution through the state machine.
type Run struct {
	state RunState
}

func NewRun() *Run {
	return &Run{state: StateIdle}
}

func (r *Run) State() RunState {
	return r.state
}

func (r *Run) Transition(to RunState) error {
	for _, allowed := range legalTransitions[r.state] {
		if allowed == to {
			r.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal run transition %s -> %s", r.state, to)
}

func (r *Run) Terminal() bool {
	return r.state == StateCompleted || r.state == StateFailed
}
