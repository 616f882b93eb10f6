// Package goap implements Goal-Oriented Action Planning: selecting an
// ordered sequence of atomic actions that transforms the current
// description of the world into one satisfying a goal, at minimum total
// cost.
//
// The search is a backtracking, depth-first tree search. At every node the
// remaining runnable actions are tried in ascending cost order (stable for
// equal costs), each action may appear at most once along any path, and
// every node whose state satisfies the goal becomes a leaf candidate. The
// cheapest leaf wins, with ties going to whichever was discovered first.
//
// Usage:
//
//	buyAxe := goap.NewAction("BuyAxe", 2).
//		Requires("hasMoney", true).
//		Produces("hasAxe", true)
//	chopTree := goap.NewAction("ChopTree", 1).
//		Requires("hasAxe", true).
//		Produces("hasWood", true)
//
//	plan := goap.Plan(
//		[]goap.Action{chopTree, buyAxe},
//		goap.WorldState{"hasMoney": true},
//		goap.WorldState{"hasWood": true},
//	)
//	// plan == [BuyAxe, ChopTree]
//
// Worst-case exploration is factorial in the number of runnable actions;
// there is no heuristic guidance, memoization, or timeout.
package goap
