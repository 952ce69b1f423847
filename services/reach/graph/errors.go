// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the symbol reference graph consumed by the
// reachability engine.
//
// Nodes are code symbols identified by dense non-negative integer ids
// assigned in insertion order; edges are directed "references" (calls,
// type usages, reads). The graph stores both forward and reverse
// adjacency so the engine can expand top-down (neighbors) and
// bottom-up (predecessors).
//
// # Ownership Model
//
// Symbol values are copied into the graph on AddSymbol; callers keep
// no aliases into graph state.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed
// for single-writer access during the build phase, then read-only
// access after Freeze(). After Freeze(), Neighbors, Predecessors and
// all other accessors are safe to call from many goroutines at once.
//
// # Lifecycle
//
//  1. Create with New()
//  2. Build with AddSymbol() and AddReference() calls
//  3. Call Freeze() to finalize
//  4. Hand to the engine for traversal
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeOutOfRange is returned when a node id is outside [0, NodeCount).
	ErrNodeOutOfRange = errors.New("node id out of range")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured maximum node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the graph has reached its
	// configured maximum edge capacity.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")

	// ErrInvalidSymbol is returned when a symbol fails validation,
	// for example an empty name.
	ErrInvalidSymbol = errors.New("invalid symbol")
)
