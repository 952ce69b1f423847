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

import "runtime"

// Traversal configuration limits.
const (
	// DefaultMaxWorkers caps the default concurrency budget regardless
	// of CPU count. Memory-bound graph traversal doesn't benefit from
	// excessive parallelism.
	DefaultMaxWorkers = 8

	// DefaultPullRatio is the frontier/unvisited ratio above which the
	// orchestrator switches to bottom-up expansion. Tunable; affects
	// performance only, never the resulting reachable set.
	DefaultPullRatio = 0.25

	// progressEventsPerSecond bounds how often the progress callback
	// fires, via a rate limiter.
	progressEventsPerSecond = 10
)

// TraversalOptions configures traversal behavior.
type TraversalOptions struct {
	// Workers is the concurrency budget per expansion step.
	// Default: min(NumCPU, 8). Values < 1 are clamped to 1.
	Workers int

	// PullRatio selects bottom-up expansion when
	// frontier > PullRatio * unvisited-remainder. Zero or negative
	// disables bottom-up expansion entirely.
	PullRatio float64

	// Progress, when non-nil, is invoked between steps with the step
	// number, the current frontier size, and the visited count.
	// Invocations are rate-limited; delivery is best-effort.
	Progress ProgressFunc
}

// ProgressFunc receives between-step traversal progress.
type ProgressFunc func(step, frontierSize, visitedCount int)

// DefaultTraversalOptions returns sensible defaults for traversals.
func DefaultTraversalOptions() TraversalOptions {
	workers := runtime.NumCPU()
	if workers > DefaultMaxWorkers {
		workers = DefaultMaxWorkers
	}
	return TraversalOptions{
		Workers:   workers,
		PullRatio: DefaultPullRatio,
	}
}

// TraversalOption is a functional option for configuring traversals.
type TraversalOption func(*TraversalOptions)

// WithWorkers sets the concurrency budget per expansion step.
//
// Values below 1 clamp to 1: a budget computed from a pool size
// degrades to sequential expansion rather than failing.
func WithWorkers(k int) TraversalOption {
	return func(o *TraversalOptions) {
		if k < 1 {
			k = 1
		}
		o.Workers = k
	}
}

// WithPullRatio sets the direction-switch threshold.
//
// Bottom-up expansion engages when frontier > r * unvisited-remainder.
// r <= 0 disables bottom-up expansion (always push).
func WithPullRatio(r float64) TraversalOption {
	return func(o *TraversalOptions) {
		o.PullRatio = r
	}
}

// WithProgress sets the between-step progress callback.
func WithProgress(fn ProgressFunc) TraversalOption {
	return func(o *TraversalOptions) {
		o.Progress = fn
	}
}

// applyTraversalOptions applies functional options over the defaults.
func applyTraversalOptions(opts []TraversalOption) TraversalOptions {
	options := DefaultTraversalOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
