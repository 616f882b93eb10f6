// Package agent is the runtime around the goap planner: an Agent owns
// actions and a Blackboard of facts, plans towards goals, executes plans as
// go-behaviortree sequences, and reports progress to a Listener.
//
// Architecture:
//
//   - Blackboard holds the agent's facts. Planning reads a goap.WorldState
//     snapshot, and execution writes each completed action's effects back.
//   - Plan calls the planner and notifies PlanFound or PlanFailed.
//   - Execute turns the stored plan into a sequence node, one leaf per
//     action, ticked by a bt.Ticker until the sequence succeeds (notifying
//     ActionsFinished) or a leaf fails (notifying PlanAborted).
//   - Actions implementing Performer control their own execution, and may
//     report bt.Running across several ticks.
//
// Usage:
//
//	bb := agent.NewBlackboard(goap.WorldState{"hasMoney": true})
//	a := agent.New(
//		agent.WithBlackboard(bb),
//		agent.WithListener(agent.LogListener{}),
//	)
//	a.AddAction(buyAxe, chopTree)
//	if err := a.Pursue(ctx, goap.WorldState{"hasWood": true}); err != nil {
//		// errors.Is(err, agent.ErrPlanFailed), errors.Is(err, agent.ErrPlanAborted), ...
//	}
package agent
