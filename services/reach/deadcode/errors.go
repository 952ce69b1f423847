// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package deadcode reports unused declarations from a frozen symbol
// reference graph.
//
// # Description
//
// The detector seeds the reachability engine with entry-point symbols
// (main, init, test functions, optionally all exported declarations),
// runs a parallel traversal, and turns the unreachable remainder into a
// confidence-scored report. Confidence accounts for reflection,
// exports, interface dispatch, and other uncertainty sources a pure
// reachability pass cannot see.
//
// # Thread Safety
//
// A Detector is safe for concurrent use after construction; every
// Detect call owns its own traversal state.
package deadcode

import "errors"

// Sentinel errors for the deadcode package.
var (
	// ErrNilContext indicates a nil context was provided.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrNilGraph indicates a nil graph was provided.
	ErrNilGraph = errors.New("graph cannot be nil")

	// ErrNotFrozen indicates the graph is still accepting writes.
	// Detection requires a frozen graph for safe concurrent reads.
	ErrNotFrozen = errors.New("graph must be frozen before detection")

	// ErrIncomplete indicates the traversal was cancelled before
	// convergence, so the unreachable set cannot be reported as dead.
	ErrIncomplete = errors.New("traversal incomplete, refusing to report partial results")
)
