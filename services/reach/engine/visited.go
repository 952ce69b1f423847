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

import "sync/atomic"

// wordBits is the number of node flags packed into one bitset word.
const wordBits = 32

// Visited is a lock-free visited tracker over a fixed node-id universe.
//
// Each node has one flag, default false. Flags are monotonic: once set
// they never revert for the lifetime of the tracker. TestAndSet is the
// engine's sole deduplication mechanism; it guarantees each node enters
// at most one frontier across a whole traversal.
//
// Thread Safety: Safe for concurrent use. All mutation goes through
// atomic compare-and-swap; no locks are taken.
type Visited struct {
	words []uint32
	n     int
	count atomic.Int64
}

// NewVisited creates a tracker for node ids in [0, n).
// A negative n is treated as zero.
func NewVisited(n int) *Visited {
	if n < 0 {
		n = 0
	}
	return &Visited{
		words: make([]uint32, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// TestAndSet atomically claims a node.
//
// Exactly one caller across all concurrently racing callers for the
// same node receives true (the first claimer); all others receive
// false. Linearizable per node; no ordering guarantee across
// different nodes.
//
// The node must be in [0, Size()); the engine validates ids before
// claiming, so a violation here is an internal bug and panics.
func (v *Visited) TestAndSet(node int) bool {
	if node < 0 || node >= v.n {
		panic("engine: visited node id out of range")
	}
	word := &v.words[node/wordBits]
	mask := uint32(1) << (node % wordBits)
	for {
		old := atomic.LoadUint32(word)
		if old&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(word, old, old|mask) {
			v.count.Add(1)
			return true
		}
	}
}

// Get reports whether the node has been claimed.
// Out-of-range ids report false.
func (v *Visited) Get(node int) bool {
	if node < 0 || node >= v.n {
		return false
	}
	mask := uint32(1) << (node % wordBits)
	return atomic.LoadUint32(&v.words[node/wordBits])&mask != 0
}

// Count returns the number of claimed nodes.
func (v *Visited) Count() int {
	return int(v.count.Load())
}

// Size returns the node-id universe size.
func (v *Visited) Size() int {
	return v.n
}

// Members returns all claimed node ids in ascending order.
//
// Intended for reporting after the last step's barrier; concurrent
// claims during the scan may or may not be included.
func (v *Visited) Members() []int {
	members := make([]int, 0, v.Count())
	for node := 0; node < v.n; node++ {
		if v.Get(node) {
			members = append(members, node)
		}
	}
	return members
}

// Complement returns all unclaimed node ids in ascending order.
func (v *Visited) Complement() []int {
	complement := make([]int, 0, v.n-v.Count())
	for node := 0; node < v.n; node++ {
		if !v.Get(node) {
			complement = append(complement, node)
		}
	}
	return complement
}
