package goap

import (
	"fmt"
	"sync"
)

// Action is the capability contract the planner consumes.
//
// Actions are identified by their position in the slice passed to the
// planner, never by structural equality, so two actions with identical
// cost, preconditions and effects are still distinct candidates.
type Action interface {
	// Cost is the non-negative price of performing the action. It must not
	// change for the duration of a planning call.
	Cost() float64

	// Preconditions must be a subset of the state for the action to apply.
	Preconditions() WorldState

	// Effects are overlaid onto the state when the action is applied.
	Effects() WorldState

	// CanRun is the agent-specific runnability gate. It is evaluated once
	// per action per planning call, before the search begins.
	CanRun() bool

	// Cancel resets any transient per-run status. It is called once per
	// action at the very start of every planning call.
	Cancel()
}

// Named may be implemented by actions to provide a display name.
type Named interface {
	Name() string
}

// Name returns a human-readable name for an action, for logging and output.
func Name(a Action) string {
	switch v := a.(type) {
	case nil:
		return "<nil>"
	case Named:
		return v.Name()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", a)
	}
}

// TotalCost sums the cost of every action in a plan.
func TotalCost(plan []Action) float64 {
	var total float64
	for _, a := range plan {
		total += a.Cost()
	}
	return total
}

// BasicAction is the stock Action implementation: static cost,
// preconditions and effects, plus an optional runnability predicate and a
// small transient status that Cancel resets.
type BasicAction struct {
	name          string
	cost          float64
	preconditions WorldState
	effects       WorldState
	canRun        func() bool

	mu       sync.Mutex
	attempts int
	done     bool
}

var (
	_ Action = (*BasicAction)(nil)
	_ Named  = (*BasicAction)(nil)
)

// NewAction creates a BasicAction with no preconditions, no effects, and
// no runnability predicate (it can always run).
func NewAction(name string, cost float64) *BasicAction {
	return &BasicAction{
		name:          name,
		cost:          cost,
		preconditions: NewWorldState(),
		effects:       NewWorldState(),
	}
}

// Requires adds a precondition.
func (a *BasicAction) Requires(key string, value any) *BasicAction {
	a.preconditions[key] = value
	return a
}

// Produces adds an effect.
func (a *BasicAction) Produces(key string, value any) *BasicAction {
	a.effects[key] = value
	return a
}

// When sets the runnability predicate. A nil predicate means always
// runnable.
func (a *BasicAction) When(canRun func() bool) *BasicAction {
	a.canRun = canRun
	return a
}

// Name implements Named.
func (a *BasicAction) Name() string { return a.name }

// String implements fmt.Stringer.
func (a *BasicAction) String() string { return a.name }

// Cost implements Action.
func (a *BasicAction) Cost() float64 { return a.cost }

// Preconditions implements Action.
func (a *BasicAction) Preconditions() WorldState { return a.preconditions }

// Effects implements Action.
func (a *BasicAction) Effects() WorldState { return a.effects }

// CanRun implements Action.
func (a *BasicAction) CanRun() bool {
	if a.canRun == nil {
		return true
	}
	return a.canRun()
}

// Cancel implements Action, clearing the attempt counter and done flag.
func (a *BasicAction) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts = 0
	a.done = false
}

// Attempt records one execution attempt, returning the new count.
func (a *BasicAction) Attempt() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts++
	return a.attempts
}

// Attempts returns the number of attempts since the last Cancel.
func (a *BasicAction) Attempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts
}

// MarkDone flags the action as completed for the current run.
func (a *BasicAction) MarkDone() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.done = true
}

// Done reports whether MarkDone was called since the last Cancel.
func (a *BasicAction) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}
