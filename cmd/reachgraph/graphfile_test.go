// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/reachgraph/services/reach/config"
	"github.com/AleutianAI/reachgraph/services/reach/graph"
)

func writeGraphFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGraphFile(t *testing.T) {
	limits := config.Default().Graph

	t.Run("valid graph", func(t *testing.T) {
		path := writeGraphFile(t, `{
			"symbols": [
				{"name": "main", "kind": "function", "file_path": "main.go", "start_line": 1, "end_line": 20},
				{"name": "Config", "kind": "type", "file_path": "config.go", "start_line": 5}
			],
			"edges": [[0, 1]]
		}`)

		g, err := loadGraphFile(path, limits)
		if err != nil {
			t.Fatalf("loadGraphFile() error = %v", err)
		}

		if !g.IsFrozen() {
			t.Error("loaded graph should be frozen")
		}
		if g.NodeCount() != 2 || g.EdgeCount() != 1 {
			t.Errorf("nodes = %d, edges = %d, want 2 and 1", g.NodeCount(), g.EdgeCount())
		}

		sym, ok := g.SymbolAt(1)
		if !ok || sym.Kind != graph.KindType {
			t.Errorf("SymbolAt(1) = %+v, want Config type", sym)
		}
	})

	t.Run("unknown kind tolerated", func(t *testing.T) {
		path := writeGraphFile(t, `{
			"symbols": [{"name": "x", "kind": "macro", "file_path": "a.go", "start_line": 1}],
			"edges": []
		}`)

		g, err := loadGraphFile(path, limits)
		if err != nil {
			t.Fatalf("loadGraphFile() error = %v", err)
		}
		sym, _ := g.SymbolAt(0)
		if sym.Kind != graph.KindUnknown {
			t.Errorf("Kind = %v, want KindUnknown", sym.Kind)
		}
	})

	t.Run("edge out of range rejected", func(t *testing.T) {
		path := writeGraphFile(t, `{
			"symbols": [{"name": "a", "kind": "function", "file_path": "a.go", "start_line": 1}],
			"edges": [[0, 5]]
		}`)

		if _, err := loadGraphFile(path, limits); err == nil {
			t.Error("expected error for out-of-range edge")
		}
	})

	t.Run("malformed json rejected", func(t *testing.T) {
		path := writeGraphFile(t, `{"symbols": [`)
		if _, err := loadGraphFile(path, limits); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("missing file rejected", func(t *testing.T) {
		if _, err := loadGraphFile("/nonexistent/graph.json", limits); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
