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
	"sort"
	"sync/atomic"
	"testing"
)

// adjacencyStub implements Graph (and Predecessors) over explicit
// adjacency lists, counting Neighbors calls for short-circuit tests.
type adjacencyStub struct {
	out           [][]int
	in            [][]int
	neighborCalls atomic.Int64
}

// newAdjacencyStub builds a stub graph with n nodes and the given edges.
func newAdjacencyStub(t testing.TB, n int, edges [][2]int) *adjacencyStub {
	t.Helper()
	g := &adjacencyStub{
		out: make([][]int, n),
		in:  make([][]int, n),
	}
	for _, e := range edges {
		g.out[e[0]] = append(g.out[e[0]], e[1])
		g.in[e[1]] = append(g.in[e[1]], e[0])
	}
	return g
}

func (g *adjacencyStub) NodeCount() int { return len(g.out) }

func (g *adjacencyStub) Neighbors(node int) []int {
	g.neighborCalls.Add(1)
	return g.out[node]
}

func (g *adjacencyStub) Predecessors(node int) []int { return g.in[node] }

// sortedCopy returns a sorted copy for order-insensitive comparison.
func sortedCopy(s []int) []int {
	out := append([]int(nil), s...)
	sort.Ints(out)
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestChunkSpans verifies the chunking formula: size = max(1, n/k),
// last chunk absorbs the remainder.
func TestChunkSpans(t *testing.T) {
	tests := []struct {
		name      string
		n, k      int
		wantSizes []int
	}{
		{"seven over three", 7, 3, []int{2, 2, 2, 1}},
		{"even split", 8, 4, []int{2, 2, 2, 2}},
		{"fewer items than budget", 3, 8, []int{1, 1, 1}},
		{"budget one", 5, 1, []int{5}},
		{"budget clamped", 5, 0, []int{5}},
		{"negative budget clamped", 4, -2, []int{4}},
		{"empty", 0, 4, nil},
		{"single", 1, 4, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := chunkSpans(tt.n, tt.k)
			if len(spans) != len(tt.wantSizes) {
				t.Fatalf("chunkSpans(%d, %d) yielded %d chunks, want %d",
					tt.n, tt.k, len(spans), len(tt.wantSizes))
			}

			covered := 0
			for i, sp := range spans {
				size := sp.end - sp.start
				if size != tt.wantSizes[i] {
					t.Errorf("chunk %d size = %d, want %d", i, size, tt.wantSizes[i])
				}
				if sp.start != covered {
					t.Errorf("chunk %d starts at %d, want %d (contiguous)", i, sp.start, covered)
				}
				covered = sp.end
			}
			if covered != tt.n {
				t.Errorf("chunks cover [0, %d), want [0, %d)", covered, tt.n)
			}
		})
	}
}

func TestExpandFrontier(t *testing.T) {
	t.Run("discovers unvisited neighbors", func(t *testing.T) {
		g := newAdjacencyStub(t, 6, [][2]int{{0, 1}, {0, 2}, {1, 3}, {4, 5}})
		v := NewVisited(6)
		v.TestAndSet(0)

		next, err := ExpandFrontier(context.Background(), []int{0}, 2, g, v)
		if err != nil {
			t.Fatalf("ExpandFrontier() error = %v", err)
		}
		if got := sortedCopy(next); !equalInts(got, []int{1, 2}) {
			t.Errorf("next frontier = %v, want [1 2]", got)
		}
	})

	t.Run("already visited neighbors excluded", func(t *testing.T) {
		g := newAdjacencyStub(t, 3, [][2]int{{0, 1}, {0, 2}})
		v := NewVisited(3)
		v.TestAndSet(0)
		v.TestAndSet(2)

		next, err := ExpandFrontier(context.Background(), []int{0}, 4, g, v)
		if err != nil {
			t.Fatalf("ExpandFrontier() error = %v", err)
		}
		if got := sortedCopy(next); !equalInts(got, []int{1}) {
			t.Errorf("next frontier = %v, want [1]", got)
		}
	})

	t.Run("shared target claimed once", func(t *testing.T) {
		// Many frontier nodes all reference node 9; it must appear once.
		edges := make([][2]int, 0, 9)
		frontier := make([]int, 0, 9)
		for i := 0; i < 9; i++ {
			edges = append(edges, [2]int{i, 9})
			frontier = append(frontier, i)
		}
		g := newAdjacencyStub(t, 10, edges)
		v := NewVisited(10)
		for _, node := range frontier {
			v.TestAndSet(node)
		}

		next, err := ExpandFrontier(context.Background(), frontier, 4, g, v)
		if err != nil {
			t.Fatalf("ExpandFrontier() error = %v", err)
		}
		if !equalInts(next, []int{9}) {
			t.Errorf("next frontier = %v, want [9]", next)
		}
	})

	t.Run("empty frontier short-circuits", func(t *testing.T) {
		g := newAdjacencyStub(t, 4, [][2]int{{0, 1}})
		v := NewVisited(4)

		next, err := ExpandFrontier(context.Background(), nil, 4, g, v)
		if err != nil {
			t.Fatalf("ExpandFrontier() error = %v", err)
		}
		if len(next) != 0 {
			t.Errorf("next frontier = %v, want empty", next)
		}
		if calls := g.neighborCalls.Load(); calls != 0 {
			t.Errorf("Neighbors called %d times, want 0", calls)
		}
	})

	t.Run("corrupt neighbor id aborts", func(t *testing.T) {
		g := &corruptGraph{n: 3}
		v := NewVisited(3)
		v.TestAndSet(0)

		_, err := ExpandFrontier(context.Background(), []int{0}, 2, g, v)
		if !errors.Is(err, ErrNeighborOutOfRange) {
			t.Errorf("ExpandFrontier() error = %v, want ErrNeighborOutOfRange", err)
		}
	})

	t.Run("worker panic surfaced", func(t *testing.T) {
		g := &panickyGraph{n: 2}
		v := NewVisited(2)
		v.TestAndSet(0)

		_, err := ExpandFrontier(context.Background(), []int{0}, 1, g, v)
		if !errors.Is(err, ErrWorkerPanic) {
			t.Errorf("ExpandFrontier() error = %v, want ErrWorkerPanic", err)
		}
	})
}

// corruptGraph returns a neighbor id outside [0, NodeCount).
type corruptGraph struct{ n int }

func (g *corruptGraph) NodeCount() int { return g.n }

func (g *corruptGraph) Neighbors(node int) []int { return []int{g.n + 7} }

// panickyGraph panics on neighbor lookup.
type panickyGraph struct{ n int }

func (g *panickyGraph) NodeCount() int { return g.n }

func (g *panickyGraph) Neighbors(node int) []int { panic("neighbor lookup exploded") }
