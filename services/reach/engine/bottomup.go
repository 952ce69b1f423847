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
	"sync"

	"golang.org/x/sync/errgroup"
)

// AdmitFunc reports whether a node should join the next frontier.
//
// A typical predicate is "not yet visited AND has a visited
// predecessor". Predicates must be pure and safe for concurrent use;
// many workers evaluate them at once.
type AdmitFunc func(node int) bool

// ExpandRange computes the next frontier using pull-based (bottom-up)
// parallel expansion.
//
// Description:
//
//	Partitions [0, nodeCount) into contiguous chunks per chunkSpans and
//	launches one worker per chunk. Each worker evaluates the admission
//	predicate over every node in its chunk; admitted nodes are
//	concatenated in worker completion order. Preferred over
//	ExpandFrontier when the frontier is large relative to the unvisited
//	remainder: one scan over all nodes beats re-expanding a huge
//	neighbor list full of already-visited targets.
//
//	ExpandRange does not claim nodes; the caller must claim each
//	admitted node atomically (or embed the claim in the predicate) to
//	preserve the deduplication invariant.
//
// Inputs:
//
//	ctx - Context for cancellation. Workers stop producing when it is
//	      cancelled; the partial result is still valid membership-wise.
//	nodeCount - Size of the node-id universe. Zero or negative
//	            short-circuits to an empty result without workers.
//	workers - Concurrency budget k. Values < 1 are clamped to 1.
//	admit - Admission predicate. Must be non-nil and safe for
//	        concurrent use.
//
// Outputs:
//
//	[]int - Admitted nodes. Each node in [0, nodeCount) is evaluated
//	        exactly once per call, so entries are pairwise distinct.
//	error - ErrNilPredicate, or ErrWorkerPanic if a worker panicked.
func ExpandRange(ctx context.Context, nodeCount, workers int, admit AdmitFunc) ([]int, error) {
	if admit == nil {
		return nil, ErrNilPredicate
	}
	if nodeCount <= 0 {
		return nil, nil
	}

	spans := chunkSpans(nodeCount, workers)

	var (
		mu   sync.Mutex
		next []int
	)

	eg, gctx := errgroup.WithContext(ctx)
	for i, sp := range spans {
		i, sp := i, sp
		eg.Go(func() (err error) {
			defer recoverWorkerPanic("bottomup", i, &err)

			var local []int
			for node := sp.start; node < sp.end; node++ {
				if gctx.Err() != nil {
					break
				}
				if admit(node) {
					local = append(local, node)
				}
			}

			mu.Lock()
			next = append(next, local...)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return next, nil
}
