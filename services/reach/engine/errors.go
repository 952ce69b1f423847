// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements parallel frontier-expansion reachability
// over directed graphs with dense integer node ids.
//
// The engine is the computational core of the unused-declaration
// detector: seeded from root nodes, it repeatedly expands the frontier
// until convergence; the final visited set is the reachable set and
// its complement are dead-code candidates.
//
// Two expansion strategies are provided. Top-down (push) walks the
// neighbor lists of the current frontier; bottom-up (pull) scans the
// whole node-id range and admits nodes with a visited predecessor.
// The orchestrator switches between them based on frontier density
// (direction-optimizing BFS); the choice affects performance only,
// never the resulting reachable set.
//
// # Ownership Model
//
// A Traversal owns one visited set and one frontier at a time; both
// live for a single Run and are surfaced to the caller through the
// returned Result.
//
// # Thread Safety
//
// The graph capability handed to the engine must be safe for
// concurrent reads: many workers call Neighbors and Predecessors at
// once. The visited set is the only shared mutable state within a
// step and is mutated exclusively through its atomic claim primitive.
//
// # Lifecycle
//
// Seeded -> Expanding -> Converged. Steps are level-synchronous: a
// step's workers all finish (and their claims become visible) before
// the next step starts.
package engine

import "errors"

// Sentinel errors for engine operations.
var (
	// ErrNilContext is returned when a nil context is passed to Run.
	ErrNilContext = errors.New("context must not be nil")

	// ErrNilGraph is returned when a traversal is created without a graph.
	ErrNilGraph = errors.New("graph must not be nil")

	// ErrNilPredicate is returned when ExpandRange is called without an
	// admission predicate.
	ErrNilPredicate = errors.New("admission predicate must not be nil")

	// ErrRootOutOfRange is returned when a root id is outside [0, NodeCount).
	// Roots come from the caller, so this is rejected up front.
	ErrRootOutOfRange = errors.New("root node id out of range")

	// ErrNeighborOutOfRange is returned when a neighbor lookup yields a
	// node id outside [0, NodeCount). This indicates a misbehaving graph
	// adapter; the traversal aborts rather than clamping.
	ErrNeighborOutOfRange = errors.New("neighbor node id out of range")

	// ErrWorkerPanic is returned when an expansion worker panicked.
	// The panic is logged with a stack trace before being surfaced.
	ErrWorkerPanic = errors.New("panic in expansion worker")
)
