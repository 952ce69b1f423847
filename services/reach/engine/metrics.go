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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for engine operations.
var (
	tracer = otel.Tracer("reachgraph.engine")
	meter  = otel.Meter("reachgraph.engine")
)

// Metrics for traversal operations.
var (
	traversalLatency metric.Float64Histogram
	traversalTotal   metric.Int64Counter
	reachableNodes   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// Prometheus metrics for per-step observability.
var (
	// stepTotal counts expansion steps by direction.
	// Labels: "push", "pull"
	stepTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reachgraph_engine_steps_total",
		Help: "Total expansion steps by direction",
	}, []string{"direction"})

	frontierWidth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reachgraph_engine_frontier_width",
		Help:    "Frontier size per expansion step",
		Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
	})
)

// initMetrics initializes the otel metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		traversalLatency, err = meter.Float64Histogram(
			"engine_traversal_duration_seconds",
			metric.WithDescription("Duration of reachability traversals"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalTotal, err = meter.Int64Counter(
			"engine_traversal_total",
			metric.WithDescription("Total number of reachability traversals"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		reachableNodes, err = meter.Int64Histogram(
			"engine_reachable_nodes",
			metric.WithDescription("Reachable nodes per converged traversal"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordTraversalMetrics records metrics for one traversal run.
func recordTraversalMetrics(ctx context.Context, duration time.Duration, reachable int, complete bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("complete", complete))

	traversalLatency.Record(ctx, duration.Seconds(), attrs)
	traversalTotal.Add(ctx, 1, attrs)

	if complete {
		reachableNodes.Record(ctx, int64(reachable))
	}
}

// startTraversalSpan creates a span for a traversal run.
func startTraversalSpan(ctx context.Context, nodeCount, rootCount, workers int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "engine.Traversal.Run",
		trace.WithAttributes(
			attribute.Int("engine.node_count", nodeCount),
			attribute.Int("engine.root_count", rootCount),
			attribute.Int("engine.workers", workers),
		),
	)
}
