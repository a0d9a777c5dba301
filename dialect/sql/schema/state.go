package schema

import (
	"context"
	"fmt"
)

// State is the lifecycle state of a single operation.
type State int

// Operation states.
const (
	StateIdle State = iota
	StateValidating
	StateGenerating
	StateExecuting
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateValidating: "validating",
	StateGenerating: "generating",
	StateExecuting:  "executing",
	StateSucceeded:  "succeeded",
	StateFailed:     "failed",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no transition leaves the state.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// next lists the states reachable from each non-terminal state.
var next = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateGenerating, StateFailed},
	StateGenerating: {StateExecuting, StateFailed},
	StateExecuting:  {StateSucceeded, StateFailed},
}

// StateHook observes the state transitions of operations. It is called
// synchronously on the goroutine running the operation.
type StateHook func(ctx context.Context, op string, from, to State)

// operation tracks the state of one call. Operations are never reused.
type operation struct {
	name  string
	state State
	hook  StateHook
}

func newOperation(name string, hook StateHook) *operation {
	return &operation{name: name, hook: hook}
}

// to moves the operation to the given state. It reports false, and leaves
// the state unchanged, if the transition is not allowed.
func (o *operation) to(ctx context.Context, s State) bool {
	for _, n := range next[o.state] {
		if n == s {
			from := o.state
			o.state = s
			if o.hook != nil {
				o.hook(ctx, o.name, from, s)
			}
			return true
		}
	}
	return false
}
