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
	"errors"
	"sync/atomic"
	"testing"
)

func TestExpandRange(t *testing.T) {
	t.Run("admitted nodes collected", func(t *testing.T) {
		next, err := ExpandRange(context.Background(), 10, 3, func(node int) bool {
			return node%2 == 0
		})
		if err != nil {
			t.Fatalf("ExpandRange() error = %v", err)
		}
		if got := sortedCopy(next); !equalInts(got, []int{0, 2, 4, 6, 8}) {
			t.Errorf("admitted = %v, want even nodes", got)
		}
	})

	t.Run("each node evaluated exactly once", func(t *testing.T) {
		const n = 1003
		evals := make([]atomic.Int32, n)

		_, err := ExpandRange(context.Background(), n, 7, func(node int) bool {
			evals[node].Add(1)
			return false
		})
		if err != nil {
			t.Fatalf("ExpandRange() error = %v", err)
		}
		for node := 0; node < n; node++ {
			if got := evals[node].Load(); got != 1 {
				t.Errorf("node %d evaluated %d times, want 1", node, got)
			}
		}
	})

	t.Run("zero node count short-circuits", func(t *testing.T) {
		var calls atomic.Int32
		next, err := ExpandRange(context.Background(), 0, 4, func(node int) bool {
			calls.Add(1)
			return true
		})
		if err != nil {
			t.Fatalf("ExpandRange() error = %v", err)
		}
		if len(next) != 0 {
			t.Errorf("admitted = %v, want empty", next)
		}
		if calls.Load() != 0 {
			t.Errorf("predicate called %d times, want 0", calls.Load())
		}
	})

	t.Run("nil predicate rejected", func(t *testing.T) {
		_, err := ExpandRange(context.Background(), 5, 2, nil)
		if !errors.Is(err, ErrNilPredicate) {
			t.Errorf("ExpandRange() error = %v, want ErrNilPredicate", err)
		}
	})

	t.Run("predicate panic surfaced", func(t *testing.T) {
		_, err := ExpandRange(context.Background(), 5, 2, func(node int) bool {
			panic("predicate exploded")
		})
		if !errors.Is(err, ErrWorkerPanic) {
			t.Errorf("ExpandRange() error = %v, want ErrWorkerPanic", err)
		}
	})

	t.Run("budget clamped to one", func(t *testing.T) {
		next, err := ExpandRange(context.Background(), 4, 0, func(node int) bool {
			return true
		})
		if err != nil {
			t.Fatalf("ExpandRange() error = %v", err)
		}
		if got := sortedCopy(next); !equalInts(got, []int{0, 1, 2, 3}) {
			t.Errorf("admitted = %v, want all nodes", got)
		}
	})
}
