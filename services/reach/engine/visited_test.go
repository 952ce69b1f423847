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
	"sync"
	"sync/atomic"
	"testing"
)

// TestVisited_ClaimExactlyOnce verifies that for any node, across any
// number of concurrent racing callers, exactly one TestAndSet returns true.
func TestVisited_ClaimExactlyOnce(t *testing.T) {
	t.Run("single node many racers", func(t *testing.T) {
		const racers = 64
		v := NewVisited(1)

		var winners atomic.Int32
		var wg sync.WaitGroup
		startGate := make(chan struct{})

		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-startGate
				if v.TestAndSet(0) {
					winners.Add(1)
				}
			}()
		}
		close(startGate)
		wg.Wait()

		if got := winners.Load(); got != 1 {
			t.Errorf("winners = %d, want exactly 1", got)
		}
	})

	t.Run("many nodes many racers", func(t *testing.T) {
		const nodes = 1000
		const racersPerNode = 8
		v := NewVisited(nodes)

		winners := make([]atomic.Int32, nodes)
		var wg sync.WaitGroup

		for node := 0; node < nodes; node++ {
			for i := 0; i < racersPerNode; i++ {
				wg.Add(1)
				go func(node int) {
					defer wg.Done()
					if v.TestAndSet(node) {
						winners[node].Add(1)
					}
				}(node)
			}
		}
		wg.Wait()

		for node := 0; node < nodes; node++ {
			if got := winners[node].Load(); got != 1 {
				t.Errorf("node %d: winners = %d, want 1", node, got)
			}
		}
		if v.Count() != nodes {
			t.Errorf("Count() = %d, want %d", v.Count(), nodes)
		}
	})
}

// TestVisited_Monotonic verifies claims never revert.
func TestVisited_Monotonic(t *testing.T) {
	v := NewVisited(10)

	if !v.TestAndSet(3) {
		t.Fatal("first claim should win")
	}
	for i := 0; i < 100; i++ {
		if v.TestAndSet(3) {
			t.Fatal("repeat claim won; flag reverted")
		}
		if !v.Get(3) {
			t.Fatal("Get(3) = false after claim")
		}
	}
}

func TestVisited_MembersAndComplement(t *testing.T) {
	v := NewVisited(6)
	for _, node := range []int{4, 0, 2} {
		v.TestAndSet(node)
	}

	members := v.Members()
	want := []int{0, 2, 4}
	if len(members) != len(want) {
		t.Fatalf("Members() = %v, want %v", members, want)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Errorf("Members()[%d] = %d, want %d", i, members[i], want[i])
		}
	}

	complement := v.Complement()
	wantC := []int{1, 3, 5}
	if len(complement) != len(wantC) {
		t.Fatalf("Complement() = %v, want %v", complement, wantC)
	}
	for i := range wantC {
		if complement[i] != wantC[i] {
			t.Errorf("Complement()[%d] = %d, want %d", i, complement[i], wantC[i])
		}
	}
}

func TestVisited_Bounds(t *testing.T) {
	t.Run("zero size", func(t *testing.T) {
		v := NewVisited(0)
		if v.Size() != 0 || v.Count() != 0 {
			t.Errorf("zero tracker: Size=%d Count=%d", v.Size(), v.Count())
		}
		if v.Get(0) {
			t.Error("Get(0) on empty tracker = true")
		}
	})

	t.Run("negative size treated as zero", func(t *testing.T) {
		v := NewVisited(-5)
		if v.Size() != 0 {
			t.Errorf("Size() = %d, want 0", v.Size())
		}
	})

	t.Run("out of range claim panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for out-of-range claim")
			}
		}()
		NewVisited(4).TestAndSet(4)
	})
}

func BenchmarkVisited_TestAndSet(b *testing.B) {
	v := NewVisited(b.N + 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.TestAndSet(i)
	}
}
