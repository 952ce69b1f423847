// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// TraversalState represents the orchestrator's state machine.
type TraversalState int

const (
	// TraversalSeeded indicates roots have been claimed and form the
	// initial frontier.
	TraversalSeeded TraversalState = iota

	// TraversalExpanding indicates expansion steps are running.
	TraversalExpanding

	// TraversalConverged indicates a step yielded an empty frontier.
	// Terminal.
	TraversalConverged
)

// String returns the string representation of the TraversalState.
func (s TraversalState) String() string {
	switch s {
	case TraversalSeeded:
		return "seeded"
	case TraversalExpanding:
		return "expanding"
	case TraversalConverged:
		return "converged"
	default:
		return "unknown"
	}
}

// Traversal drives repeated expansion steps to convergence over one
// graph, accumulating the reachable set.
//
// A Traversal may be reused for multiple Run calls; each Run owns a
// fresh visited set and frontier, so concurrent Runs on the same
// Traversal are safe as long as the graph stays frozen.
type Traversal struct {
	graph Graph
	preds PredecessorGraph // nil when the graph has no reverse adjacency
	opts  TraversalOptions
}

// New creates a traversal over the given graph capability.
//
// Inputs:
//
//	g - Graph capability. Must be non-nil and safe for concurrent
//	    reads. If it also implements PredecessorGraph, bottom-up
//	    expansion is available; otherwise every step pushes.
//	opts - Optional configuration (workers, pull ratio, progress).
//
// Outputs:
//
//	*Traversal - Ready-to-use traversal.
//	error - ErrNilGraph if g is nil.
func New(g Graph, opts ...TraversalOption) (*Traversal, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	t := &Traversal{
		graph: g,
		opts:  applyTraversalOptions(opts),
	}
	if pg, ok := g.(PredecessorGraph); ok {
		t.preds = pg
	}
	return t, nil
}

// Run computes the set of nodes reachable from roots.
//
// Description:
//
//	Seeds the frontier from roots (claiming each via the visited
//	tracker, so duplicates collapse), then repeatedly expands until a
//	step yields an empty frontier. Each step runs either top-down or
//	bottom-up expansion based on frontier density; steps are
//	level-synchronous, so step N+1 never observes step N half-done.
//
// Inputs:
//
//	ctx - Context for cancellation. Observed between steps and by the
//	      expansion workers themselves; a cancelled traversal returns
//	      its partial result with Incomplete set rather than an error,
//	      since claims are monotonic and the visited set remains a
//	      valid lower bound on reachability.
//	roots - Entry-point node ids. May be empty: the traversal then
//	        converges immediately with an empty reachable set.
//
// Outputs:
//
//	*Result - The reachable/unreachable partition plus run statistics.
//	error - ErrNilContext, ErrRootOutOfRange, or a fatal expansion
//	        error (corrupt neighbor id, worker panic).
//
// Thread Safety: Safe for concurrent use.
func (t *Traversal) Run(ctx context.Context, roots []int) (*Result, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	n := t.graph.NodeCount()
	start := time.Now()

	ctx, span := startTraversalSpan(ctx, n, len(roots), t.opts.Workers)
	defer span.End()

	result := &Result{
		RunID:     uuid.NewString(),
		NodeCount: n,
		visited:   NewVisited(n),
	}

	// Seed: claim roots so they never re-enter a later frontier.
	frontier := make([]int, 0, len(roots))
	for _, root := range roots {
		if root < 0 || root >= n {
			err := fmt.Errorf("%w: %d (node count %d)", ErrRootOutOfRange, root, n)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if result.visited.TestAndSet(root) {
			frontier = append(frontier, root)
		}
	}

	slog.Debug("traversal seeded",
		slog.String("run_id", result.RunID),
		slog.String("state", TraversalSeeded.String()),
		slog.Int("roots", len(frontier)),
	)

	var progressLimiter *rate.Limiter
	if t.opts.Progress != nil {
		progressLimiter = rate.NewLimiter(rate.Limit(progressEventsPerSecond), 1)
	}

	for len(frontier) > 0 {
		if ctx.Err() != nil {
			break
		}

		frontierWidth.Observe(float64(len(frontier)))

		var (
			next []int
			err  error
		)
		if t.usePull(len(frontier), result.visited.Count()) {
			next, err = t.pullStep(ctx, result.visited)
			result.PullSteps++
			stepTotal.WithLabelValues("pull").Inc()
		} else {
			next, err = ExpandFrontier(ctx, frontier, t.opts.Workers, t.graph, result.visited)
			result.PushSteps++
			stepTotal.WithLabelValues("push").Inc()
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		result.Steps++
		frontier = next

		if progressLimiter != nil && progressLimiter.Allow() {
			t.opts.Progress(result.Steps, len(frontier), result.visited.Count())
		}

		slog.Debug("expansion step completed",
			slog.Int("step", result.Steps),
			slog.Int("frontier_size", len(frontier)),
			slog.Int("visited", result.visited.Count()),
		)
	}

	// A cancellation firing inside a step truncates its workers, and a
	// truncated step can return an empty frontier. An empty frontier
	// therefore only means convergence when the context is still live.
	if ctx.Err() != nil {
		result.Incomplete = true
		span.SetAttributes(attribute.Bool("engine.cancelled", true))
	}

	state := TraversalConverged
	if result.Incomplete {
		state = TraversalExpanding
	}
	result.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("engine.steps", result.Steps),
		attribute.Int("engine.push_steps", result.PushSteps),
		attribute.Int("engine.pull_steps", result.PullSteps),
		attribute.Int("engine.reachable", result.visited.Count()),
		attribute.Bool("engine.incomplete", result.Incomplete),
		attribute.String("engine.state", state.String()),
	)
	span.SetStatus(codes.Ok, "")

	recordTraversalMetrics(ctx, result.Duration, result.visited.Count(), !result.Incomplete)

	slog.Debug("traversal finished",
		slog.String("run_id", result.RunID),
		slog.String("state", state.String()),
		slog.Int("reachable", result.visited.Count()),
		slog.Int("push_steps", result.PushSteps),
		slog.Int("pull_steps", result.PullSteps),
	)

	return result, nil
}

// usePull reports whether the next step should expand bottom-up.
//
// Pull wins when the frontier is large relative to the unvisited
// remainder: scanning all nodes once is then cheaper than pushing a
// huge neighbor list with mostly already-visited targets. The
// threshold is tunable and performance-only.
func (t *Traversal) usePull(frontierSize, visitedCount int) bool {
	if t.preds == nil || t.opts.PullRatio <= 0 {
		return false
	}
	unvisited := t.graph.NodeCount() - visitedCount
	return float64(frontierSize) > t.opts.PullRatio*float64(unvisited)
}

// pullStep runs one bottom-up expansion and claims the admitted nodes.
//
// The admission predicate is "not visited AND has a visited
// predecessor". ExpandRange evaluates each node exactly once per call
// and the step barrier separates it from the claims below, so every
// admitted node wins its claim; the claim is still made through
// TestAndSet to keep the deduplication invariant in one place.
func (t *Traversal) pullStep(ctx context.Context, visited *Visited) ([]int, error) {
	admitted, err := ExpandRange(ctx, t.graph.NodeCount(), t.opts.Workers, func(node int) bool {
		if visited.Get(node) {
			return false
		}
		for _, pred := range t.preds.Predecessors(node) {
			if visited.Get(pred) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	next := admitted[:0]
	for _, node := range admitted {
		if visited.TestAndSet(node) {
			next = append(next, node)
		}
	}
	return next, nil
}

// Result is the outcome of one traversal run.
//
// The reachable set is owned exclusively by the run that produced it
// and is never mutated after convergence.
type Result struct {
	// RunID uniquely identifies this traversal run.
	RunID string

	// NodeCount is the node-id universe size the run was computed over.
	NodeCount int

	// Steps is the total number of expansion steps.
	Steps int

	// PushSteps counts steps expanded top-down.
	PushSteps int

	// PullSteps counts steps expanded bottom-up.
	PullSteps int

	// Incomplete is true when the traversal was cancelled before
	// convergence, whether between steps or inside one. The reachable
	// set is then a valid monotonic lower bound but must not be
	// treated as authoritative for unused-code reporting.
	Incomplete bool

	// Duration is the wall-clock run time.
	Duration time.Duration

	visited *Visited
}

// IsReachable reports whether node was reached from the roots.
func (r *Result) IsReachable(node int) bool {
	return r.visited.Get(node)
}

// ReachableCount returns the number of reachable nodes.
func (r *Result) ReachableCount() int {
	return r.visited.Count()
}

// Reachable returns all reachable node ids in ascending order.
func (r *Result) Reachable() []int {
	return r.visited.Members()
}

// Unreachable returns the complement of the reachable set within
// [0, NodeCount), in ascending order. These are the unused-declaration
// candidates.
func (r *Result) Unreachable() []int {
	return r.visited.Complement()
}
