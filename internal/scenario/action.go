package scenario

import (
	"fmt"
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/joeycumines/goap/internal/agent"
	"github.com/joeycumines/goap/internal/goap"
	"github.com/joeycumines/goap/internal/predicate"
)

// Action is a goap.BasicAction built from an ActionSpec, whose execution
// runs for a configured number of ticks, then succeeds or fails.
type Action struct {
	*goap.BasicAction
	ticks  int
	fail   bool
	canRun *predicate.Predicate
}

var (
	_ goap.Action     = (*Action)(nil)
	_ agent.Performer = (*Action)(nil)
)

func newAction(spec ActionSpec, facts func() map[string]any, logger *slog.Logger) (*Action, error) {
	a := &Action{
		BasicAction: goap.NewAction(spec.Name, spec.Cost),
		ticks:       spec.Ticks,
		fail:        spec.Fail,
	}
	for k, v := range spec.Preconditions {
		a.Requires(k, v)
	}
	for k, v := range spec.Effects {
		a.Produces(k, v)
	}
	if spec.CanRun != "" {
		p, err := predicate.Compile(spec.CanRun)
		if err != nil {
			return nil, fmt.Errorf("scenario: action %q: %w", spec.Name, err)
		}
		p = p.WithLogger(logger)
		a.canRun = p
		a.When(func() bool {
			var env map[string]any
			if facts != nil {
				env = facts()
			}
			return p.Match(env)
		})
	}
	return a, nil
}

// Perform implements agent.Performer. The action reports bt.Running for
// its configured ticks, then completes. Progress is reset by Cancel, which
// the planner calls before every search.
func (a *Action) Perform(*agent.Blackboard) (bt.Status, error) {
	if a.Done() {
		return bt.Success, nil
	}
	if a.Attempt() <= a.ticks {
		return bt.Running, nil
	}
	if a.fail {
		return bt.Failure, nil
	}
	a.MarkDone()
	return bt.Success, nil
}
