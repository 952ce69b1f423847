// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of symbols a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of references a graph can hold.
	DefaultMaxEdges = 10_000_000
)

// State represents the lifecycle state of the graph.
type State int

const (
	// StateBuilding indicates the graph is accepting AddSymbol/AddReference calls.
	StateBuilding State = iota

	// StateReadOnly indicates the graph is frozen and read-only.
	StateReadOnly
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// SymbolKind classifies a declaration.
type SymbolKind int

const (
	// KindUnknown indicates an unrecognized declaration kind.
	KindUnknown SymbolKind = iota

	// KindFunction is a free function.
	KindFunction

	// KindMethod is a method with a receiver.
	KindMethod

	// KindType is a named type (struct, interface, alias).
	KindType

	// KindConstant is a constant declaration.
	KindConstant

	// KindVariable is a package-level variable.
	KindVariable

	// NumSymbolKinds is the total number of kinds (for array sizing).
	NumSymbolKinds
)

// symbolKindNames maps SymbolKind values to their string representations.
var symbolKindNames = map[SymbolKind]string{
	KindUnknown:  "unknown",
	KindFunction: "function",
	KindMethod:   "method",
	KindType:     "type",
	KindConstant: "constant",
	KindVariable: "variable",
}

// String returns the string representation of the SymbolKind.
func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Symbol describes one declaration in the analyzed codebase.
//
// The id of a symbol is assigned by AddSymbol and is dense: the i-th
// added symbol has id i. Symbols are value types and are copied into
// the graph.
type Symbol struct {
	// Name is the declared identifier.
	Name string `json:"name"`

	// Kind classifies the declaration.
	Kind SymbolKind `json:"kind"`

	// FilePath is the file containing the declaration.
	FilePath string `json:"file_path"`

	// StartLine is the first line of the declaration.
	StartLine int `json:"start_line"`

	// EndLine is the last line of the declaration (0 if unknown).
	EndLine int `json:"end_line,omitempty"`
}

// Options configures Graph behavior and limits.
type Options struct {
	// MaxNodes is the maximum number of symbols the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of references the graph can hold.
	// Default: 10,000,000
	MaxEdges int
}

// DefaultOptions returns sensible defaults for graph configuration.
func DefaultOptions() Options {
	return Options{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// Option is a functional option for configuring Graph.
type Option func(*Options)

// WithMaxNodes sets the maximum number of symbols the graph can hold.
func WithMaxNodes(n int) Option {
	return func(o *Options) {
		o.MaxNodes = n
	}
}

// WithMaxEdges sets the maximum number of references the graph can hold.
func WithMaxEdges(n int) Option {
	return func(o *Options) {
		o.MaxEdges = n
	}
}

// Graph is a directed symbol reference graph over dense integer ids.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. After Freeze()
//	is called, the graph can be safely read from multiple goroutines,
//	which is the contract the reachability engine relies on.
//
// Lifecycle:
//
//  1. Create with New()
//  2. Build with AddSymbol() and AddReference() calls
//  3. Call Freeze() to finalize
//  4. Query with Neighbors(), Predecessors(), SymbolAt()
type Graph struct {
	// symbols holds symbol metadata indexed by node id.
	symbols []Symbol

	// out holds forward adjacency: out[v] are the nodes v references.
	out [][]int

	// in holds reverse adjacency: in[v] are the nodes referencing v.
	in [][]int

	// edgeCount is the total number of references.
	edgeCount int

	// state is the current lifecycle state.
	state State

	// options contains configuration.
	options Options

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze()
	// was called. Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// New creates a new empty graph in the Building state.
//
// Example:
//
//	// Default limits
//	g := graph.New()
//
//	// Custom limits
//	g := graph.New(graph.WithMaxNodes(100_000), graph.WithMaxEdges(1_000_000))
func New(opts ...Option) *Graph {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		symbols: make([]Symbol, 0),
		out:     make([][]int, 0),
		in:      make([][]int, 0),
		state:   StateBuilding,
		options: options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() State {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == StateReadOnly
}

// Freeze transitions the graph to read-only mode.
//
// After Freeze(), AddSymbol and AddReference return ErrGraphFrozen.
// The operation is irreversible. After Freeze() returns, the graph can
// be safely read from multiple goroutines concurrently.
func (g *Graph) Freeze() {
	g.state = StateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// NodeCount returns the number of symbols in the graph.
func (g *Graph) NodeCount() int {
	return len(g.symbols)
}

// EdgeCount returns the number of references in the graph.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// AddSymbol adds a symbol and returns its assigned dense node id.
//
// Inputs:
//
//	sym - The symbol to add. Name must be non-empty.
//
// Outputs:
//
//	int - The assigned node id (NodeCount before the call).
//	error - Non-nil if the graph is frozen, at capacity, or the symbol
//	        is invalid.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrInvalidSymbol - Symbol name is empty
//	ErrMaxNodesExceeded - Graph is at node capacity
func (g *Graph) AddSymbol(sym Symbol) (int, error) {
	if g.state == StateReadOnly {
		return 0, ErrGraphFrozen
	}

	if sym.Name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrInvalidSymbol)
	}

	if len(g.symbols) >= g.options.MaxNodes {
		return 0, ErrMaxNodesExceeded
	}

	id := len(g.symbols)
	g.symbols = append(g.symbols, sym)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id, nil
}

// AddReference records a directed reference from one symbol to another.
//
// Both ids must already have been assigned by AddSymbol. Self-references
// and parallel references are allowed; the engine deduplicates discovery
// through its visited tracker, so duplicate edges only cost scan time.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrNodeOutOfRange - Either id is outside [0, NodeCount)
//	ErrMaxEdgesExceeded - Graph is at edge capacity
func (g *Graph) AddReference(from, to int) error {
	if g.state == StateReadOnly {
		return ErrGraphFrozen
	}

	if from < 0 || from >= len(g.symbols) {
		return fmt.Errorf("%w: source %d", ErrNodeOutOfRange, from)
	}
	if to < 0 || to >= len(g.symbols) {
		return fmt.Errorf("%w: target %d", ErrNodeOutOfRange, to)
	}

	if g.edgeCount >= g.options.MaxEdges {
		return ErrMaxEdgesExceeded
	}

	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	g.edgeCount++
	return nil
}

// Neighbors returns the nodes referenced by the given node.
//
// The returned slice is graph-owned and must not be modified. Safe for
// concurrent use on frozen graphs; this is the neighbor-lookup
// capability the engine's top-down expander calls from many workers.
func (g *Graph) Neighbors(node int) []int {
	if node < 0 || node >= len(g.out) {
		return nil
	}
	return g.out[node]
}

// Predecessors returns the nodes that reference the given node.
//
// The returned slice is graph-owned and must not be modified. Safe for
// concurrent use on frozen graphs; this backs the bottom-up expander's
// "has a visited predecessor" admission predicate.
func (g *Graph) Predecessors(node int) []int {
	if node < 0 || node >= len(g.in) {
		return nil
	}
	return g.in[node]
}

// SymbolAt returns the symbol metadata for a node id.
//
// Outputs:
//
//	Symbol - The symbol if the id is valid, zero value otherwise.
//	bool - True if the id is within range.
func (g *Graph) SymbolAt(node int) (Symbol, bool) {
	if node < 0 || node >= len(g.symbols) {
		return Symbol{}, false
	}
	return g.symbols[node], true
}

// OutDegree returns the number of references leaving the given node.
func (g *Graph) OutDegree(node int) int {
	if node < 0 || node >= len(g.out) {
		return 0
	}
	return len(g.out[node])
}

// InDegree returns the number of references targeting the given node.
func (g *Graph) InDegree(node int) int {
	if node < 0 || node >= len(g.in) {
		return 0
	}
	return len(g.in[node])
}

// Stats contains statistics about the graph.
//
// Thread Safety: Stats is a value type with no internal state. Safe for
// concurrent use as long as the source Graph is frozen.
type Stats struct {
	// NodeCount is the total number of symbols.
	NodeCount int

	// EdgeCount is the total number of references.
	EdgeCount int

	// NodesByKind maps each SymbolKind to the count of symbols of that kind.
	NodesByKind map[SymbolKind]int

	// MaxNodes is the configured maximum node capacity.
	MaxNodes int

	// MaxEdges is the configured maximum edge capacity.
	MaxEdges int

	// State is the current graph state.
	State State

	// BuiltAtMilli is when Freeze() was called (0 if not frozen).
	BuiltAtMilli int64
}

// Stats returns statistics about the graph.
//
// Complexity: O(V) over symbols for the kind breakdown.
//
// Thread Safety: Safe for concurrent use on frozen graphs.
func (g *Graph) Stats() Stats {
	nodesByKind := make(map[SymbolKind]int)
	for _, sym := range g.symbols {
		nodesByKind[sym.Kind]++
	}

	return Stats{
		NodeCount:    len(g.symbols),
		EdgeCount:    g.edgeCount,
		NodesByKind:  nodesByKind,
		MaxNodes:     g.options.MaxNodes,
		MaxEdges:     g.options.MaxEdges,
		State:        g.state,
		BuiltAtMilli: g.BuiltAtMilli,
	}
}
