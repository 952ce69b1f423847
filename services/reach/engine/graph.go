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

// Graph is the capability the engine consumes from the graph-construction
// collaborator.
//
// NodeCount fixes the node-id universe [0, NodeCount) for one traversal.
// Neighbors must be pure and side-effect-free: it is called concurrently
// from many workers during a top-down step. Every returned id must lie
// in [0, NodeCount); ids outside that range abort the traversal with
// ErrNeighborOutOfRange.
type Graph interface {
	// NodeCount returns the size of the node-id universe.
	NodeCount() int

	// Neighbors returns the nodes directly referenced by node.
	// Must be safe for concurrent use.
	Neighbors(node int) []int
}

// PredecessorGraph extends Graph with reverse adjacency.
//
// Graphs implementing it enable bottom-up (pull) expansion: the
// orchestrator admits an unvisited node when any predecessor is
// visited. Predecessors has the same purity and thread-safety
// contract as Neighbors.
type PredecessorGraph interface {
	Graph

	// Predecessors returns the nodes that directly reference node.
	// Must be safe for concurrent use.
	Predecessors(node int) []int
}
