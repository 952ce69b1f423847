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
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// span is one contiguous chunk of work, [start, end).
type span struct {
	start int
	end   int
}

// chunkSpans partitions [0, n) into contiguous chunks of size
// max(1, n/k); the last chunk absorbs any remainder. For n=7, k=3 the
// chunk size is 2 and the spans cover 2,2,2,1 elements.
//
// A budget k < 1 is clamped to 1. n <= 0 yields no spans.
func chunkSpans(n, k int) []span {
	if n <= 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}

	size := n / k
	if size < 1 {
		size = 1
	}

	spans := make([]span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, span{start: start, end: end})
	}
	return spans
}

// recoverWorkerPanic converts a worker panic into ErrWorkerPanic after
// logging it with a stack trace. Use via defer with a named error.
func recoverWorkerPanic(kind string, chunk int, errp *error) {
	if r := recover(); r != nil {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		slog.Error("panic in expansion worker",
			slog.String("expander", kind),
			slog.Int("chunk", chunk),
			slog.Any("panic", r),
			slog.String("stack", string(buf[:n])),
		)
		*errp = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
	}
}

// ExpandFrontier computes the next frontier from the current one using
// push-based (top-down) parallel expansion.
//
// Description:
//
//	Partitions the frontier into contiguous chunks per chunkSpans and
//	launches one worker per chunk. Each worker enumerates the neighbors
//	of its nodes and claims each via visited.TestAndSet; claim winners
//	join the worker's local result list. Local lists are concatenated
//	in worker completion order, so the returned ordering is not
//	reproducible across runs, but membership is.
//
// Inputs:
//
//	ctx - Context for cancellation. Workers stop producing when it is
//	      cancelled; claims already made stand (they are monotonic).
//	frontier - Current frontier node ids. Must already be claimed.
//	workers - Concurrency budget k. Values < 1 are clamped to 1.
//	g - Neighbor-lookup capability. Must be safe for concurrent use.
//	visited - Shared visited tracker for the traversal.
//
// Outputs:
//
//	[]int - The next frontier. Pairwise distinct by construction.
//	error - ErrNeighborOutOfRange on a corrupt neighbor id, or
//	        ErrWorkerPanic if a worker panicked.
//
// An empty frontier short-circuits to an empty result without
// launching any worker.
//
// Performance: O(sum of degrees) work; span bounded by the chunk with
// the largest aggregate degree.
func ExpandFrontier(ctx context.Context, frontier []int, workers int, g Graph, visited *Visited) ([]int, error) {
	if len(frontier) == 0 {
		return nil, nil
	}

	n := g.NodeCount()
	spans := chunkSpans(len(frontier), workers)

	var (
		mu   sync.Mutex
		next []int
	)

	eg, gctx := errgroup.WithContext(ctx)
	for i, sp := range spans {
		i, sp := i, sp
		eg.Go(func() (err error) {
			defer recoverWorkerPanic("topdown", i, &err)

			local := make([]int, 0, sp.end-sp.start)
			for _, node := range frontier[sp.start:sp.end] {
				if gctx.Err() != nil {
					break
				}
				for _, nb := range g.Neighbors(node) {
					if nb < 0 || nb >= n {
						return fmt.Errorf("%w: neighbor %d of node %d (node count %d)",
							ErrNeighborOutOfRange, nb, node, n)
					}
					if visited.TestAndSet(nb) {
						local = append(local, nb)
					}
				}
			}

			// Concatenate in completion order.
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
