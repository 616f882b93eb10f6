// Package scenario loads planning problems from YAML files: a start state,
// a goal, and the actions available to reach it. A Scenario builds ready to
// use goap actions, or a whole agent.Agent seeded with the start state.
//
// Example file:
//
//	name: lumberjack
//	start: {hasMoney: true}
//	goal: {hasWood: true}
//	actions:
//	  - name: BuyAxe
//	    cost: 2
//	    preconditions: {hasMoney: true}
//	    effects: {hasAxe: true}
//	  - name: ChopTree
//	    cost: 1
//	    preconditions: {hasAxe: true}
//	    effects: {hasWood: true}
//	    canRun: "weather != 'storm'"
//	    ticks: 3
package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joeycumines/goap/internal/agent"
	"github.com/joeycumines/goap/internal/goap"
	"github.com/joeycumines/goap/internal/predicate"
	"gopkg.in/yaml.v3"
)

// Scenario is one planning problem.
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Start       goap.WorldState `yaml:"start"`
	Goal        goap.WorldState `yaml:"goal"`
	Actions     []ActionSpec    `yaml:"actions"`
}

// ActionSpec describes one action of a scenario.
type ActionSpec struct {
	Name          string          `yaml:"name"`
	Cost          float64         `yaml:"cost"`
	Preconditions goap.WorldState `yaml:"preconditions,omitempty"`
	Effects       goap.WorldState `yaml:"effects,omitempty"`

	// CanRun is an optional predicate expression over the agent's facts.
	CanRun string `yaml:"canRun,omitempty"`

	// Ticks is the number of ticks the action reports running before it
	// completes, when executed.
	Ticks int `yaml:"ticks,omitempty"`

	// Fail makes the action fail once its ticks are spent, aborting the
	// plan.
	Fail bool `yaml:"fail,omitempty"`
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a single YAML scenario document. Unknown
// fields are rejected.
func Parse(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario: empty document")
		}
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports every problem with the scenario, joined into one error.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("scenario: "+format, args...))
	}

	if len(s.Goal) == 0 {
		add("goal is empty")
	}
	errs = append(errs, checkFacts("start", s.Start)...)
	errs = append(errs, checkFacts("goal", s.Goal)...)

	seen := make(map[string]int, len(s.Actions))
	for i, a := range s.Actions {
		where := fmt.Sprintf("action %d", i+1)
		if a.Name == "" {
			add("%s: missing name", where)
		} else {
			where = fmt.Sprintf("action %q", a.Name)
			if prev, ok := seen[a.Name]; ok {
				add("%s: duplicate of action %d", where, prev+1)
			} else {
				seen[a.Name] = i
			}
		}
		if a.Cost < 0 {
			add("%s: negative cost %v", where, a.Cost)
		}
		if a.Ticks < 0 {
			add("%s: negative ticks %d", where, a.Ticks)
		}
		errs = append(errs, checkFacts(where+" preconditions", a.Preconditions)...)
		errs = append(errs, checkFacts(where+" effects", a.Effects)...)
		if a.CanRun != "" {
			if _, err := predicate.Compile(a.CanRun); err != nil {
				add("%s: canRun: %v", where, err)
			}
		}
	}

	return errors.Join(errs...)
}

// checkFacts rejects anything but scalar values. The planner compares fact
// values with ==, which panics on maps and slices.
func checkFacts(where string, ws goap.WorldState) []error {
	var errs []error
	for _, k := range ws.Keys() {
		switch ws[k].(type) {
		case nil, bool, int, int64, uint64, float64, string:
		default:
			errs = append(errs, fmt.Errorf("scenario: %s: fact %q must be a scalar", where, k))
		}
	}
	return errs
}

// Build creates the scenario's actions in file order. When facts is
// non-nil, canRun predicates are evaluated against its result. Otherwise
// they see no facts. Predicate errors are reported to logger, or
// slog.Default() if nil.
func (s *Scenario) Build(facts func() map[string]any, logger *slog.Logger) ([]*Action, error) {
	actions := make([]*Action, 0, len(s.Actions))
	for _, spec := range s.Actions {
		a, err := newAction(spec, facts, logger)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// Plan builds fresh actions and plans from the start state to the goal.
// canRun predicates are evaluated against the start state.
func (s *Scenario) Plan(p *goap.Planner) (goap.Result, error) {
	actions, err := s.Build(func() map[string]any { return s.Start }, p.Logger())
	if err != nil {
		return goap.Result{}, err
	}
	return p.Search(GoapActions(actions), s.Start, s.Goal), nil
}

// NewAgent returns an agent whose blackboard is seeded with the start
// state, with every action registered and canRun predicates evaluated
// against the agent's blackboard. Options are applied after the defaults.
func (s *Scenario) NewAgent(opts ...agent.Option) (*agent.Agent, error) {
	opts = append([]agent.Option{agent.WithBlackboard(agent.NewBlackboard(s.Start))}, opts...)
	a := agent.New(opts...)

	actions, err := s.Build(a.Blackboard().Snapshot, a.Logger())
	if err != nil {
		return nil, err
	}
	a.AddAction(GoapActions(actions)...)
	return a, nil
}

// GoapActions converts actions to the planner's input type.
func GoapActions(actions []*Action) []goap.Action {
	out := make([]goap.Action, len(actions))
	for i, a := range actions {
		out[i] = a
	}
	return out
}
