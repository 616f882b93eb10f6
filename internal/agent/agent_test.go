package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/joeycumines/goap/internal/goap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAction returns the given statuses from successive Perform calls,
// then bt.Success.
type scriptedAction struct {
	*goap.BasicAction
	statuses []bt.Status
	err      error
	calls    int
}

func (s *scriptedAction) Perform(*Blackboard) (bt.Status, error) {
	s.calls++
	if s.err != nil {
		return bt.Failure, s.err
	}
	if s.calls <= len(s.statuses) {
		return s.statuses[s.calls-1], nil
	}
	return bt.Success, nil
}

// recorder captures listener notifications as strings.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) PlanFound(_ *Agent, goal goap.WorldState, plan []goap.Action) {
	e := "found " + goal.String() + ":"
	for _, a := range plan {
		e += " " + goap.Name(a)
	}
	r.add(e)
}

func (r *recorder) PlanFailed(_ *Agent, goal goap.WorldState) { r.add("failed " + goal.String()) }

func (r *recorder) ActionsFinished(*Agent) { r.add("finished") }

func (r *recorder) PlanAborted(_ *Agent, aborter goap.Action) { r.add("aborted " + goap.Name(aborter)) }

func lumberjackAgent(t *testing.T, start goap.WorldState, extra ...goap.Action) (*Agent, *recorder) {
	t.Helper()
	rec := new(recorder)
	a := New(
		WithBlackboard(NewBlackboard(start)),
		WithListener(rec),
		WithTickInterval(time.Millisecond),
	)
	a.AddAction(
		goap.NewAction("ChopTree", 1).Requires("hasAxe", true).Produces("hasWood", true),
		goap.NewAction("BuyAxe", 2).Requires("hasMoney", true).Produces("hasAxe", true),
	)
	a.AddAction(extra...)
	return a, rec
}

var wood = goap.WorldState{"hasWood": true}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	a := New()
	_, err := uuid.Parse(a.ID())
	assert.NoError(t, err, "default ID should be a UUID")
	assert.NotNil(t, a.Blackboard())
	assert.Empty(t, a.Actions())
	assert.Nil(t, a.CurrentPlan())
	assert.Equal(t, DefaultTickInterval, a.tickInterval)

	b := New(WithID("npc-1"), WithTickInterval(-1))
	assert.Equal(t, "npc-1", b.ID())
	assert.Equal(t, DefaultTickInterval, b.tickInterval)
}

func TestAgent_Plan_Found(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, goap.WorldState{"hasMoney": true})

	plan, ok := a.Plan(wood)
	require.True(t, ok)
	require.Len(t, plan, 2)
	assert.Equal(t, plan, a.CurrentPlan())
	assert.Equal(t, wood, a.Goal())
	assert.Equal(t, []string{"found {hasWood: true}: BuyAxe ChopTree"}, rec.Events())
}

func TestAgent_Plan_Failed(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, nil)

	plan, ok := a.Plan(wood)
	assert.False(t, ok)
	assert.Nil(t, plan)
	assert.Nil(t, a.CurrentPlan())
	assert.Equal(t, []string{"failed {hasWood: true}"}, rec.Events())

	assert.ErrorIs(t, a.Execute(context.Background()), ErrNoPlan)
}

func TestAgent_Plan_AlreadySatisfiedReportsFailure(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, goap.WorldState{"hasWood": true})

	_, ok := a.Plan(wood)
	assert.False(t, ok)
	assert.Equal(t, []string{"failed {hasWood: true}"}, rec.Events())
}

func TestAgent_Pursue(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, goap.WorldState{"hasMoney": true})

	require.NoError(t, a.Pursue(context.Background(), wood))

	assert.True(t, a.WorldState().Equal(goap.WorldState{"hasMoney": true, "hasAxe": true, "hasWood": true}))
	assert.Equal(t, []string{"found {hasWood: true}: BuyAxe ChopTree", "finished"}, rec.Events())
	assert.Nil(t, a.CurrentPlan(), "plan should be cleared after execution")
}

func TestAgent_Pursue_PlanFailed(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, nil)

	err := a.Pursue(context.Background(), wood)
	assert.ErrorIs(t, err, ErrPlanFailed)
	assert.Equal(t, []string{"failed {hasWood: true}"}, rec.Events())
}

func TestAgent_Pursue_CancelledContext(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, goap.WorldState{"hasMoney": true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, a.Pursue(ctx, wood), context.Canceled)
	assert.Empty(t, rec.Events())
}

func TestAgent_Execute_RunningActions(t *testing.T) {
	t.Parallel()

	slow := &scriptedAction{
		BasicAction: goap.NewAction("Travel", 1).Produces("atForest", true),
		statuses:    []bt.Status{bt.Running, bt.Running, bt.Running},
	}
	a, rec := lumberjackAgent(t, nil)
	a.AddAction(slow)

	_, ok := a.Plan(goap.WorldState{"atForest": true})
	require.True(t, ok)
	require.NoError(t, a.Execute(context.Background()))

	assert.Equal(t, 4, slow.calls)
	assert.Equal(t, true, a.Blackboard().Get("atForest"))
	assert.Equal(t, []string{"found {atForest: true}: Travel", "finished"}, rec.Events())
}

func TestAgent_Execute_Abort(t *testing.T) {
	t.Parallel()

	// ChopTree is replaced by one that fails
	rec := new(recorder)
	a := New(
		WithBlackboard(NewBlackboard(goap.WorldState{"hasMoney": true})),
		WithListener(rec),
		WithTickInterval(time.Millisecond),
	)
	chop := &scriptedAction{
		BasicAction: goap.NewAction("ChopTree", 1).Requires("hasAxe", true).Produces("hasWood", true),
		statuses:    []bt.Status{bt.Running, bt.Failure},
	}
	a.AddAction(chop, goap.NewAction("BuyAxe", 2).Requires("hasMoney", true).Produces("hasAxe", true))

	err := a.Pursue(context.Background(), wood)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanAborted)
	var abort *AbortError
	require.True(t, errors.As(err, &abort))
	assert.Same(t, chop, abort.Action)
	assert.NoError(t, abort.Err)
	assert.Equal(t, "agent: plan aborted by ChopTree", err.Error())

	assert.Equal(t, true, a.Blackboard().Get("hasAxe"), "effects of completed actions are kept")
	assert.False(t, a.Blackboard().Has("hasWood"))
	assert.Equal(t, []string{"found {hasWood: true}: BuyAxe ChopTree", "aborted ChopTree"}, rec.Events())
	assert.Nil(t, a.CurrentPlan())
}

func TestAgent_Execute_PerformerError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("axe broke")
	broken := &scriptedAction{
		BasicAction: goap.NewAction("Swing", 1).Produces("hasWood", true),
		err:         errBroken,
	}
	a, rec := lumberjackAgent(t, nil, broken)

	err := a.Pursue(context.Background(), wood)

	assert.ErrorIs(t, err, ErrPlanAborted)
	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "axe broke")
	assert.Equal(t, []string{"found {hasWood: true}: Swing", "aborted Swing"}, rec.Events())
}

type foreverAction struct{ *goap.BasicAction }

func (foreverAction) Perform(*Blackboard) (bt.Status, error) { return bt.Running, nil }

func TestAgent_Execute_ContextTimeout(t *testing.T) {
	t.Parallel()

	a, rec := lumberjackAgent(t, nil, foreverAction{goap.NewAction("Wait", 1).Produces("hasWood", true)})

	_, ok := a.Plan(wood)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := a.Execute(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"found {hasWood: true}: Wait"}, rec.Events())
}

func TestAgent_RemoveAction(t *testing.T) {
	t.Parallel()

	a, _ := lumberjackAgent(t, goap.WorldState{"hasMoney": true})
	actions := a.Actions()
	require.Len(t, actions, 2)

	assert.True(t, a.RemoveAction(actions[1]))
	assert.False(t, a.RemoveAction(actions[1]))
	assert.Equal(t, []goap.Action{actions[0]}, a.Actions())

	_, ok := a.Plan(wood)
	assert.False(t, ok, "BuyAxe was removed")
}

func TestAgent_ConcurrentPlanning(t *testing.T) {
	t.Parallel()

	// one agent, many callers: planning is serialized internally
	a, rec := lumberjackAgent(t, goap.WorldState{"hasMoney": true})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plan, ok := a.Plan(wood)
			assert.True(t, ok)
			assert.Len(t, plan, 2)
		}()
	}
	wg.Wait()

	assert.Len(t, rec.Events(), 8)
}
