package goap

import (
	"log/slog"
	"sort"
)

// Planner finds the cheapest sequence of actions that transforms a start
// state into one satisfying a goal, using an exhaustive, cost-ordered,
// depth-first search.
//
// The zero value is ready to use. A Planner holds no per-call state, and
// may be shared, but see Plan regarding the actions passed to it.
type Planner struct {
	logger *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for debug tracing of planning calls.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// NewPlanner creates a Planner with the given options.
func NewPlanner(opts ...Option) *Planner {
	p := new(Planner)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result describes the outcome of a Search.
type Result struct {
	// Actions is the plan, first to last, or empty if none was found.
	Actions []Action
	// Cost is the running cost of the chosen plan (0 if none).
	Cost float64
	// State is the predicted state after the plan, or nil if none.
	State WorldState
	// Explored is the number of search nodes created, excluding the root.
	Explored int
	// Leaves is the number of goal-satisfying nodes discovered.
	Leaves int
}

// Found reports whether a plan was found.
func (r Result) Found() bool {
	return len(r.Actions) != 0
}

// Plan is the package-level convenience for the zero Planner.
func Plan(actions []Action, current, goal WorldState) []Action {
	var p Planner
	return p.Plan(actions, current, goal)
}

// Plan returns the cheapest sequence of actions, in execution order, that
// turns current into a state satisfying goal. It returns an empty sequence
// if no such sequence exists.
//
// Every action has Cancel called, then CanRun evaluated, before the search
// begins. Both may write to the actions, so concurrent Plan calls that
// share action instances must be serialized by the caller.
//
// The root state is never tested against the goal: if current already
// satisfies goal, and no action sequence re-satisfies it, the result is
// empty (failure), not a trivially successful empty plan.
func (p *Planner) Plan(actions []Action, current, goal WorldState) []Action {
	return p.Search(actions, current, goal).Actions
}

// Search performs the same search as Plan, but also reports statistics.
func (p *Planner) Search(actions []Action, current, goal WorldState) Result {
	for _, a := range actions {
		a.Cancel()
	}

	usable := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.CanRun() {
			usable = append(usable, a)
		}
	}

	// one stable sort up front, since filtering a sorted list preserves order
	order := make([]int, len(usable))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return usable[order[i]].Cost() < usable[order[j]].Cost()
	})

	s := &search{
		usable: usable,
		order:  order,
		goal:   goal,
		used:   newBitset(len(usable)),
		nodes:  []node{{parent: -1, action: -1, state: current}},
	}
	s.expand(0)

	result := Result{
		Explored: len(s.nodes) - 1,
		Leaves:   len(s.leaves),
	}

	if len(s.leaves) == 0 {
		p.log().Debug("goap: no plan found",
			"usable", len(usable),
			"candidates", len(actions),
			"explored", result.Explored,
			"goal", goal)
		return result
	}

	// first minimum wins, i.e. discovery order breaks ties
	cheapest := s.leaves[0]
	for _, leaf := range s.leaves[1:] {
		if s.nodes[leaf].cost < s.nodes[cheapest].cost {
			cheapest = leaf
		}
	}

	var depth int
	for n := cheapest; s.nodes[n].parent >= 0; n = s.nodes[n].parent {
		depth++
	}
	result.Actions = make([]Action, depth)
	for n := cheapest; s.nodes[n].parent >= 0; n = s.nodes[n].parent {
		depth--
		result.Actions[depth] = usable[s.nodes[n].action]
	}
	result.Cost = s.nodes[cheapest].cost
	result.State = s.nodes[cheapest].state

	p.log().Debug("goap: plan found",
		"steps", len(result.Actions),
		"cost", result.Cost,
		"explored", result.Explored,
		"leaves", result.Leaves,
		"goal", goal)

	return result
}

// Logger returns the planner's logger, slog.Default() if none was set.
func (p *Planner) Logger() *slog.Logger { return p.log() }

func (p *Planner) log() *slog.Logger {
	if p == nil || p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

// node is one point in the search tree, stored in an arena and linked to
// its parent by index. The root has parent and action set to -1.
type node struct {
	parent int
	action int
	cost   float64
	state  WorldState
}

type search struct {
	usable []Action
	order  []int
	goal   WorldState
	used   bitset
	nodes  []node
	leaves []int
}

// expand explores every applicable, not yet used action from node n,
// recording goal-satisfying children as leaves. Reports whether any leaf
// was found in the subtree.
func (s *search) expand(n int) bool {
	var found bool
	state := s.nodes[n].state
	cost := s.nodes[n].cost

	for _, i := range s.order {
		if s.used.has(i) {
			continue
		}
		action := s.usable[i]
		if !action.Preconditions().IsSubsetOf(state) {
			continue
		}

		child := len(s.nodes)
		s.nodes = append(s.nodes, node{
			parent: n,
			action: i,
			cost:   cost + action.Cost(),
			state:  state.Apply(action.Effects()),
		})

		if s.goal.IsSubsetOf(s.nodes[child].state) {
			s.leaves = append(s.leaves, child)
			found = true
			continue
		}

		s.used.set(i)
		if s.expand(child) {
			found = true
		}
		s.used.clear(i)

		// interior nodes only need their parent link and action for backtracking
		s.nodes[child].state = nil
	}

	return found
}

// bitset marks usable action indexes consumed along the current path.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) set(i int) { b[i/64] |= 1 << (uint(i) % 64) }

func (b bitset) clear(i int) { b[i/64] &^= 1 << (uint(i) % 64) }
