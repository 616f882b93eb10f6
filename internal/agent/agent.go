package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joeycumines/goap/internal/goap"
)

// DefaultTickInterval is the period between behavior tree ticks while a
// plan executes.
const DefaultTickInterval = 10 * time.Millisecond

var (
	// ErrNoPlan is returned by Execute when there is no stored plan.
	ErrNoPlan = errors.New("agent: no plan to execute")

	// ErrPlanFailed is returned by Pursue when planning found nothing.
	ErrPlanFailed = errors.New("agent: no plan satisfies goal")

	// ErrPlanAborted matches every *AbortError.
	ErrPlanAborted = errors.New("agent: plan aborted")
)

// AbortError reports the action that stopped plan execution, and the
// underlying error, if the action returned one.
type AbortError struct {
	Action goap.Action
	Err    error
}

func (e *AbortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent: plan aborted by %s: %v", goap.Name(e.Action), e.Err)
	}
	return fmt.Sprintf("agent: plan aborted by %s", goap.Name(e.Action))
}

func (e *AbortError) Is(target error) bool { return target == ErrPlanAborted }

func (e *AbortError) Unwrap() error { return e.Err }

// Agent owns a set of actions and a blackboard of facts, plans towards
// goals with a goap.Planner, executes the resulting plans, and reports the
// outcome to a Listener.
//
// Planning and execution are serialized per agent, as planning resets the
// transient status of every owned action. Actions must not be shared with
// another agent that may plan concurrently.
type Agent struct {
	id           string
	blackboard   *Blackboard
	planner      *goap.Planner
	listener     Listener
	logger       *slog.Logger
	tickInterval time.Duration

	// runMu is held for the duration of planning and execution
	runMu sync.Mutex

	mu      sync.Mutex
	actions []goap.Action
	goal    goap.WorldState
	plan    []goap.Action
}

// Option configures an Agent.
type Option func(*Agent)

// WithID sets the agent identifier. Defaults to a random UUID.
func WithID(id string) Option {
	return func(a *Agent) {
		a.id = id
	}
}

// WithBlackboard sets the blackboard holding the agent's facts.
func WithBlackboard(bb *Blackboard) Option {
	return func(a *Agent) {
		a.blackboard = bb
	}
}

// WithListener sets the notification target.
func WithListener(l Listener) Option {
	return func(a *Agent) {
		a.listener = l
	}
}

// WithLogger sets the logger. Unless WithPlanner is also used, the logger
// is shared with the agent's planner.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithPlanner sets the planner.
func WithPlanner(p *goap.Planner) Option {
	return func(a *Agent) {
		a.planner = p
	}
}

// WithTickInterval sets the period between execution ticks.
func WithTickInterval(d time.Duration) Option {
	return func(a *Agent) {
		a.tickInterval = d
	}
}

// New creates an Agent.
func New(opts ...Option) *Agent {
	a := &Agent{tickInterval: DefaultTickInterval}
	for _, opt := range opts {
		opt(a)
	}
	if a.id == "" {
		a.id = uuid.NewString()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.blackboard == nil {
		a.blackboard = new(Blackboard)
	}
	if a.planner == nil {
		a.planner = goap.NewPlanner(goap.WithLogger(a.logger))
	}
	if a.listener == nil {
		a.listener = ListenerFuncs{}
	}
	if a.tickInterval <= 0 {
		a.tickInterval = DefaultTickInterval
	}
	return a
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Blackboard returns the agent's fact store.
func (a *Agent) Blackboard() *Blackboard { return a.blackboard }

// Logger returns the agent's logger.
func (a *Agent) Logger() *slog.Logger { return a.logger }

// WorldState returns a snapshot of the agent's current facts.
func (a *Agent) WorldState() goap.WorldState { return a.blackboard.State() }

// AddAction registers actions, preserving registration order, which breaks
// ties between equal cost actions during planning.
func (a *Agent) AddAction(actions ...goap.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, actions...)
}

// RemoveAction unregisters an action instance, reporting whether it was
// registered.
func (a *Agent) RemoveAction(action goap.Action) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, v := range a.actions {
		if v == action {
			a.actions = append(a.actions[:i:i], a.actions[i+1:]...)
			return true
		}
	}
	return false
}

// Actions returns the registered actions, in registration order.
func (a *Agent) Actions() []goap.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]goap.Action, len(a.actions))
	copy(out, a.actions)
	return out
}

// Goal returns the goal of the most recent planning call.
func (a *Agent) Goal() goap.WorldState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.goal
}

// CurrentPlan returns the stored plan, or nil if there is none.
func (a *Agent) CurrentPlan() []goap.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.plan == nil {
		return nil
	}
	out := make([]goap.Action, len(a.plan))
	copy(out, a.plan)
	return out
}

// Plan searches for the cheapest plan from the agent's current facts to
// goal, stores it for Execute, and notifies the listener with PlanFound or
// PlanFailed. The returned bool reports whether a plan was found.
func (a *Agent) Plan(goal goap.WorldState) ([]goap.Action, bool) {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.planLocked(goal)
}

func (a *Agent) planLocked(goal goap.WorldState) ([]goap.Action, bool) {
	actions := a.Actions()
	plan := a.planner.Plan(actions, a.blackboard.State(), goal)

	a.mu.Lock()
	a.goal = goal
	if len(plan) == 0 {
		a.plan = nil
	} else {
		a.plan = plan
	}
	a.mu.Unlock()

	if len(plan) == 0 {
		a.listener.PlanFailed(a, goal)
		return nil, false
	}
	a.listener.PlanFound(a, goal, plan)
	return plan, true
}

// Execute runs the stored plan to completion, one action after another,
// applying each action's effects to the blackboard as it succeeds. See
// Performer for how actions take part in execution.
//
// On completion the listener receives ActionsFinished, and nil is
// returned. If an action fails, the listener receives PlanAborted, and an
// *AbortError is returned. If ctx is cancelled first, ctx.Err() is
// returned without notification. The stored plan is cleared in all cases
// except ErrNoPlan.
func (a *Agent) Execute(ctx context.Context) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	return a.executeLocked(ctx)
}

func (a *Agent) executeLocked(ctx context.Context) error {
	a.mu.Lock()
	plan := a.plan
	a.plan = nil
	a.mu.Unlock()

	if len(plan) == 0 {
		return ErrNoPlan
	}

	a.logger.Debug("agent: executing plan", "agent", a.id, "steps", len(plan))

	err := newExecution(a, plan).run(ctx)

	var abort *AbortError
	switch {
	case err == nil:
		a.logger.Debug("agent: plan complete", "agent", a.id)
		a.listener.ActionsFinished(a)
	case errors.As(err, &abort):
		a.logger.Debug("agent: plan aborted", "agent", a.id, "aborter", goap.Name(abort.Action), "error", abort.Err)
		a.listener.PlanAborted(a, abort.Action)
	}
	return err
}

// Pursue plans towards goal, then executes the plan. It returns an error
// matching ErrPlanFailed if there is no plan, otherwise the result of
// Execute.
func (a *Agent) Pursue(ctx context.Context, goal goap.WorldState) error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := a.planLocked(goal); !ok {
		return fmt.Errorf("%w: %v", ErrPlanFailed, goal)
	}
	return a.executeLocked(ctx)
}
