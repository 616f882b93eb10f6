package agent

import (
	"context"
	"errors"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/joeycumines/goap/internal/goap"
)

// Performer may be implemented by actions that take time or can fail when
// executed. Perform is called once per tick until it returns a status other
// than bt.Running. Returning bt.Failure, or any error, aborts the plan.
//
// Actions that do not implement Performer succeed on their first tick.
type Performer interface {
	Perform(bb *Blackboard) (bt.Status, error)
}

// errPlanComplete stops the ticker once the whole sequence succeeds.
var errPlanComplete = errors.New("agent: plan complete")

// execution drives a single plan as a go-behaviortree sequence, one leaf
// per action.
type execution struct {
	agent *Agent
	plan  []goap.Action
}

func newExecution(a *Agent, plan []goap.Action) *execution {
	return &execution{agent: a, plan: plan}
}

// node builds the sequence root. A completed sequence is reported as
// errPlanComplete, so the ticker stops on both success and abort.
func (x *execution) node() bt.Node {
	children := make([]bt.Node, len(x.plan))
	for i, action := range x.plan {
		children[i] = x.leaf(action)
	}
	return bt.New(
		func(children []bt.Node) (bt.Status, error) {
			status, err := bt.Sequence(children)
			if err == nil && status == bt.Success {
				err = errPlanComplete
			}
			return status, err
		},
		children...,
	)
}

// leaf wraps one action. Completed leaves keep returning success, so that
// earlier actions are neither re-performed nor have their effects
// re-applied on later ticks.
func (x *execution) leaf(action goap.Action) bt.Node {
	var done bool
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if done {
			return bt.Success, nil
		}

		status := bt.Success
		if p, ok := action.(Performer); ok {
			var err error
			status, err = p.Perform(x.agent.blackboard)
			if err != nil {
				return bt.Failure, &AbortError{Action: action, Err: err}
			}
		}

		switch status {
		case bt.Running:
			return bt.Running, nil
		case bt.Success:
			done = true
			x.agent.blackboard.Apply(action.Effects())
			x.agent.logger.Debug("agent: action complete", "agent", x.agent.id, "action", goap.Name(action))
			return bt.Success, nil
		default:
			return bt.Failure, &AbortError{Action: action}
		}
	})
}

// run ticks the plan until it completes, aborts, or ctx is done.
func (x *execution) run(ctx context.Context) error {
	ticker := bt.NewTicker(ctx, x.agent.tickInterval, x.node())
	<-ticker.Done()

	err := ticker.Err()
	if errors.Is(err, errPlanComplete) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("agent: plan execution stopped")
}
