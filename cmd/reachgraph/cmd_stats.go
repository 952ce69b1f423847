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
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/reachgraph/services/reach/graph"
)

var statsJSONOutput bool

// statsCmd prints graph statistics without running a traversal.
var statsCmd = &cobra.Command{
	Use:   "stats GRAPH_FILE",
	Short: "Print symbol graph statistics",
	Long: `Load a JSON symbol graph and print node, edge, and kind counts.

Examples:
  reachgraph stats graph.json
  reachgraph stats graph.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSONOutput, "json", false,
		"Output as JSON for scripting")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	g, err := loadGraphFile(args[0], cfg.Graph)
	if err != nil {
		return err
	}

	stats := g.Stats()

	if statsJSONOutput {
		byKind := make(map[string]int, len(stats.NodesByKind))
		for kind, count := range stats.NodesByKind {
			byKind[kind.String()] = count
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"node_count":    stats.NodeCount,
			"edge_count":    stats.EdgeCount,
			"nodes_by_kind": byKind,
		})
	}

	fmt.Printf("Symbols: %d\nReferences: %d\n", stats.NodeCount, stats.EdgeCount)

	kinds := make([]graph.SymbolKind, 0, len(stats.NodesByKind))
	for kind := range stats.NodesByKind {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, kind := range kinds {
		fmt.Printf("  %-10s %d\n", kind.String(), stats.NodesByKind[kind])
	}
	return nil
}
