// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package deadcode

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/reachgraph/services/reach/engine"
	"github.com/AleutianAI/reachgraph/services/reach/graph"
)

// DeadReason constants explain why a symbol is considered dead.
const (
	DeadReasonUnreachable  = "unreachable"
	DeadReasonNoCallers    = "no_callers"
	DeadReasonNoReferences = "no_references"
)

// DefaultMinConfidence is the reporting threshold: candidates scoring
// below it are dropped from the report.
const DefaultMinConfidence = 20

// DeadSymbol represents a potentially dead symbol.
type DeadSymbol struct {
	// ID is the symbol's node id in the analyzed graph.
	ID int `json:"id"`

	// Name is the symbol's name.
	Name string `json:"name"`

	// Kind is the declaration kind ("function", "type", ...).
	Kind string `json:"kind"`

	// FilePath is the file containing the symbol.
	FilePath string `json:"file_path"`

	// Line is the starting line number.
	Line int `json:"line"`

	// EndLine is the ending line number (for line count estimation).
	EndLine int `json:"end_line,omitempty"`

	// Reason explains why this is considered dead.
	Reason string `json:"reason"`

	// Confidence is how confident we are (0-100).
	// Lower for exported symbols, reflection-heavy code, etc.
	Confidence int `json:"confidence"`
}

// Report contains the results of a detection run.
type Report struct {
	// RunID identifies the underlying traversal run.
	RunID string `json:"run_id"`

	// UnusedFunctions are functions and methods never reached from any root.
	UnusedFunctions []DeadSymbol `json:"unused_functions"`

	// UnusedTypes are types never reached from any root.
	UnusedTypes []DeadSymbol `json:"unused_types"`

	// UnusedConstants are constants and variables never reached from any root.
	UnusedConstants []DeadSymbol `json:"unused_constants"`

	// TotalSymbols is the number of symbols analyzed.
	TotalSymbols int `json:"total_symbols"`

	// ReachableSymbols is the number of symbols reached from the roots.
	ReachableSymbols int `json:"reachable_symbols"`

	// TotalDeadLines is the estimated total lines of dead code.
	TotalDeadLines int `json:"total_dead_lines"`
}

// Options configures detection behavior.
type Options struct {
	// MinConfidence is the reporting threshold. Default: 20.
	MinConfidence int

	// ExportedAreRoots treats every exported symbol as an entry point.
	// Appropriate for libraries, where exported API may be used by
	// callers outside the analyzed graph. Default: false.
	ExportedAreRoots bool

	// Workers is the traversal concurrency budget. Zero means the
	// engine default.
	Workers int
}

// DefaultOptions returns sensible defaults for detection.
func DefaultOptions() Options {
	return Options{
		MinConfidence: DefaultMinConfidence,
	}
}

// Option is a functional option for configuring the Detector.
type Option func(*Options)

// WithMinConfidence sets the minimum confidence threshold.
func WithMinConfidence(min int) Option {
	return func(o *Options) {
		o.MinConfidence = min
	}
}

// WithExportedRoots treats exported symbols as entry points.
func WithExportedRoots(enabled bool) Option {
	return func(o *Options) {
		o.ExportedAreRoots = enabled
	}
}

// WithWorkers sets the traversal concurrency budget.
func WithWorkers(k int) Option {
	return func(o *Options) {
		o.Workers = k
	}
}

// Detector finds unused declarations via graph reachability.
type Detector struct {
	graph *graph.Graph
	opts  Options
}

// New creates a detector over a frozen graph.
//
// # Inputs
//
//   - g: The symbol reference graph. Must be non-nil and frozen.
//   - opts: Optional configuration.
//
// # Outputs
//
//   - *Detector: Ready-to-use detector.
//   - error: ErrNilGraph or ErrNotFrozen.
func New(g *graph.Graph, opts ...Option) (*Detector, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if !g.IsFrozen() {
		return nil, ErrNotFrozen
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Detector{
		graph: g,
		opts:  options,
	}, nil
}

// Detect finds dead code in the analyzed graph.
//
// # Description
//
// Collects entry-point roots (main, init, test functions, plus every
// exported symbol when configured for library mode), runs a parallel
// reachability traversal, and reports the unreachable remainder with
// confidence scores. Special handling:
//   - main() and init() functions (never dead)
//   - Test/Benchmark/Example functions (test runner entry points)
//   - Exported symbols (lower confidence since may be used externally)
//   - Reflection-prone files (lower confidence)
//
// # Inputs
//
//   - ctx: Context for cancellation. A cancelled detection returns
//     ErrIncomplete rather than a partial report.
//
// # Outputs
//
//   - *Report: Detected dead code, sorted by file path then line.
//   - error: Non-nil on failure.
func (d *Detector) Detect(ctx context.Context) (*Report, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	roots := d.collectRoots()

	traversal, err := engine.New(d.graph, d.engineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create traversal: %w", err)
	}

	result, err := traversal.Run(ctx, roots)
	if err != nil {
		return nil, fmt.Errorf("reachability traversal: %w", err)
	}
	if result.Incomplete {
		// A partial reachable set would flag live code as dead.
		return nil, ErrIncomplete
	}

	report := &Report{
		RunID:            result.RunID,
		UnusedFunctions:  make([]DeadSymbol, 0),
		UnusedTypes:      make([]DeadSymbol, 0),
		UnusedConstants:  make([]DeadSymbol, 0),
		TotalSymbols:     result.NodeCount,
		ReachableSymbols: result.ReachableCount(),
	}

	for _, node := range result.Unreachable() {
		sym, ok := d.graph.SymbolAt(node)
		if !ok {
			continue
		}

		confidence := d.calculateConfidence(node, sym)
		if confidence < d.opts.MinConfidence {
			continue
		}

		dead := DeadSymbol{
			ID:         node,
			Name:       sym.Name,
			Kind:       sym.Kind.String(),
			FilePath:   sym.FilePath,
			Line:       sym.StartLine,
			EndLine:    sym.EndLine,
			Reason:     determineReason(sym),
			Confidence: confidence,
		}

		lines := 1
		if sym.EndLine > sym.StartLine {
			lines = sym.EndLine - sym.StartLine + 1
		}
		report.TotalDeadLines += lines

		switch sym.Kind {
		case graph.KindFunction, graph.KindMethod:
			report.UnusedFunctions = append(report.UnusedFunctions, dead)
		case graph.KindType:
			report.UnusedTypes = append(report.UnusedTypes, dead)
		case graph.KindConstant, graph.KindVariable:
			report.UnusedConstants = append(report.UnusedConstants, dead)
		default:
			report.UnusedConstants = append(report.UnusedConstants, dead)
		}
	}

	sortDeadSymbols(report.UnusedFunctions)
	sortDeadSymbols(report.UnusedTypes)
	sortDeadSymbols(report.UnusedConstants)

	slog.Debug("dead code detection completed",
		slog.String("run_id", report.RunID),
		slog.Int("total_symbols", report.TotalSymbols),
		slog.Int("reachable", report.ReachableSymbols),
		slog.Int("unused_functions", len(report.UnusedFunctions)),
		slog.Int("unused_types", len(report.UnusedTypes)),
		slog.Int("unused_constants", len(report.UnusedConstants)),
	)

	return report, nil
}

func (d *Detector) engineOptions() []engine.TraversalOption {
	var opts []engine.TraversalOption
	if d.opts.Workers > 0 {
		opts = append(opts, engine.WithWorkers(d.opts.Workers))
	}
	return opts
}

// collectRoots returns the node ids of every entry-point symbol.
func (d *Detector) collectRoots() []int {
	roots := make([]int, 0)
	for node := 0; node < d.graph.NodeCount(); node++ {
		sym, ok := d.graph.SymbolAt(node)
		if !ok {
			continue
		}
		if d.isRoot(sym) {
			roots = append(roots, node)
		}
	}
	return roots
}

// isRoot returns true for symbols that are entry points.
func (d *Detector) isRoot(sym graph.Symbol) bool {
	// main and init functions are entry points
	if sym.Name == "main" || sym.Name == "init" {
		return true
	}

	// Test functions are entry points for the test runner
	if strings.HasPrefix(sym.Name, "Test") ||
		strings.HasPrefix(sym.Name, "Benchmark") ||
		strings.HasPrefix(sym.Name, "Example") {
		return true
	}

	// Library mode: exported API may be used by external callers
	if d.opts.ExportedAreRoots && isExported(sym.Name) {
		return true
	}

	return false
}

// calculateConfidence determines how confident we are this is dead code.
func (d *Detector) calculateConfidence(node int, sym graph.Symbol) int {
	confidence := 100

	// Exported symbols may be used externally - reduce confidence
	if isExported(sym.Name) {
		confidence -= 30
	}

	// Reflection-prone files may reach symbols without graph edges
	if hasReflectionIndicators(sym) {
		confidence -= 25
	}

	// Methods have lower confidence (may be called via interface)
	if sym.Kind == graph.KindMethod {
		confidence -= 15
	}

	// Callback patterns have lower confidence
	if isLikelyCallback(sym) {
		confidence -= 20
	}

	// Types may be instantiated via serialization
	if sym.Kind == graph.KindType {
		confidence -= 10
	}

	// A symbol nothing references at all is a stronger signal than one
	// whose referrers are merely unreachable themselves.
	if d.graph.InDegree(node) > 0 {
		confidence -= 10
	}

	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// isExported checks if a name is exported (starts with uppercase).
func isExported(name string) bool {
	if len(name) == 0 {
		return false
	}
	r := rune(name[0])
	return r >= 'A' && r <= 'Z'
}

// hasReflectionIndicators checks if the symbol might be used via
// reflection. Heuristic over the file path.
func hasReflectionIndicators(sym graph.Symbol) bool {
	fp := strings.ToLower(sym.FilePath)
	return strings.Contains(fp, "reflect") ||
		strings.Contains(fp, "marshal") ||
		strings.Contains(fp, "codec") ||
		strings.Contains(fp, "json") ||
		strings.Contains(fp, "yaml")
}

// isLikelyCallback checks if the symbol looks like a callback function.
func isLikelyCallback(sym graph.Symbol) bool {
	name := strings.ToLower(sym.Name)

	callbackPatterns := []string{
		"handler", "callback", "hook",
		"listener", "observer", "subscriber",
	}
	for _, pattern := range callbackPatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// determineReason picks the reported reason based on symbol kind.
func determineReason(sym graph.Symbol) string {
	switch sym.Kind {
	case graph.KindFunction, graph.KindMethod:
		return DeadReasonNoCallers
	case graph.KindType:
		return DeadReasonUnreachable
	default:
		return DeadReasonNoReferences
	}
}

// sortDeadSymbols orders a report section by file path, then line, then
// name, so output is stable across runs regardless of traversal order.
func sortDeadSymbols(symbols []DeadSymbol) {
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].FilePath != symbols[j].FilePath {
			return symbols[i].FilePath < symbols[j].FilePath
		}
		if symbols[i].Line != symbols[j].Line {
			return symbols[i].Line < symbols[j].Line
		}
		return symbols[i].Name < symbols[j].Name
	})
}
