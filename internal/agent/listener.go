package agent

import (
	"log/slog"

	"github.com/joeycumines/goap/internal/goap"
)

// Listener receives planning and execution notifications from an Agent.
// Calls are made synchronously, from the goroutine planning or executing.
type Listener interface {
	// PlanFound is called when planning produced a non-empty plan. The
	// actions are in execution order.
	PlanFound(a *Agent, goal goap.WorldState, plan []goap.Action)

	// PlanFailed is called when no plan could satisfy the goal.
	PlanFailed(a *Agent, goal goap.WorldState)

	// ActionsFinished is called when every action of the plan completed.
	ActionsFinished(a *Agent)

	// PlanAborted is called when execution stopped mid-plan, with the
	// action that caused the abort.
	PlanAborted(a *Agent, aborter goap.Action)
}

// ListenerFuncs adapts optional callbacks to Listener. Nil fields are
// ignored.
type ListenerFuncs struct {
	OnPlanFound       func(a *Agent, goal goap.WorldState, plan []goap.Action)
	OnPlanFailed      func(a *Agent, goal goap.WorldState)
	OnActionsFinished func(a *Agent)
	OnPlanAborted     func(a *Agent, aborter goap.Action)
}

var _ Listener = ListenerFuncs{}

func (l ListenerFuncs) PlanFound(a *Agent, goal goap.WorldState, plan []goap.Action) {
	if l.OnPlanFound != nil {
		l.OnPlanFound(a, goal, plan)
	}
}

func (l ListenerFuncs) PlanFailed(a *Agent, goal goap.WorldState) {
	if l.OnPlanFailed != nil {
		l.OnPlanFailed(a, goal)
	}
}

func (l ListenerFuncs) ActionsFinished(a *Agent) {
	if l.OnActionsFinished != nil {
		l.OnActionsFinished(a)
	}
}

func (l ListenerFuncs) PlanAborted(a *Agent, aborter goap.Action) {
	if l.OnPlanAborted != nil {
		l.OnPlanAborted(a, aborter)
	}
}

// MultiListener fans each notification out to every listener, in order.
type MultiListener []Listener

var _ Listener = MultiListener(nil)

func (m MultiListener) PlanFound(a *Agent, goal goap.WorldState, plan []goap.Action) {
	for _, l := range m {
		l.PlanFound(a, goal, plan)
	}
}

func (m MultiListener) PlanFailed(a *Agent, goal goap.WorldState) {
	for _, l := range m {
		l.PlanFailed(a, goal)
	}
}

func (m MultiListener) ActionsFinished(a *Agent) {
	for _, l := range m {
		l.ActionsFinished(a)
	}
}

func (m MultiListener) PlanAborted(a *Agent, aborter goap.Action) {
	for _, l := range m {
		l.PlanAborted(a, aborter)
	}
}

// LogListener logs every notification. A nil Logger uses slog.Default().
type LogListener struct {
	Logger *slog.Logger
}

var _ Listener = LogListener{}

func (l LogListener) log() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l LogListener) PlanFound(a *Agent, goal goap.WorldState, plan []goap.Action) {
	steps := make([]string, len(plan))
	for i, action := range plan {
		steps[i] = goap.Name(action)
	}
	l.log().Info("plan found",
		"agent", a.ID(),
		"goal", goal,
		"steps", steps,
		"cost", goap.TotalCost(plan))
}

func (l LogListener) PlanFailed(a *Agent, goal goap.WorldState) {
	l.log().Warn("plan failed", "agent", a.ID(), "goal", goal)
}

func (l LogListener) ActionsFinished(a *Agent) {
	l.log().Info("actions finished", "agent", a.ID())
}

func (l LogListener) PlanAborted(a *Agent, aborter goap.Action) {
	l.log().Warn("plan aborted", "agent", a.ID(), "aborter", goap.Name(aborter))
}
