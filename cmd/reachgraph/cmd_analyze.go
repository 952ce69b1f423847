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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/reachgraph/services/reach/deadcode"
	"github.com/AleutianAI/reachgraph/services/reach/telemetry"
)

var (
	analyzeJSONOutput    bool
	analyzeExportedRoots bool
	analyzeMinConfidence int
	analyzeWorkers       int
)

// analyzeCmd runs dead code detection over a graph file.
var analyzeCmd = &cobra.Command{
	Use:   "analyze GRAPH_FILE",
	Short: "Report unused declarations in a symbol graph",
	Long: `Load a JSON symbol graph, compute reachability from the program's
entry points (main, init, Test*/Benchmark*/Example*), and report every
declaration the traversal never reaches.

Graph file format:
  {
    "symbols": [
      {"name": "main", "kind": "function", "file_path": "main.go", "start_line": 10}
    ],
    "edges": [[0, 1]]
  }

Examples:
  reachgraph analyze graph.json
  reachgraph analyze graph.json --exported-roots   # library mode
  reachgraph analyze graph.json --min-confidence 50 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false,
		"Output the full report as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeExportedRoots, "exported-roots", false,
		"Treat exported symbols as entry points (library mode)")
	analyzeCmd.Flags().IntVar(&analyzeMinConfidence, "min-confidence", -1,
		"Minimum confidence to report, 0-100 (-1 = config default)")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0,
		"Traversal concurrency budget (0 = config default)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.TracingEnabled || cfg.Observability.MetricsEnabled {
		tcfg := telemetry.DefaultConfig()
		tcfg.ServiceName = cfg.Observability.ServiceName
		tcfg.SampleRate = cfg.Observability.SampleRate
		if !cfg.Observability.TracingEnabled {
			tcfg.TraceExporter = "none"
		}
		if !cfg.Observability.MetricsEnabled {
			tcfg.MetricExporter = "none"
		}

		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			// Observability is best-effort for a CLI run.
			logger.Warn("telemetry init failed", "error", err.Error())
		} else {
			defer shutdown(context.Background())
		}
	}

	g, err := loadGraphFile(args[0], cfg.Graph)
	if err != nil {
		return err
	}

	stats := g.Stats()
	logger.Info("graph loaded",
		"path", args[0],
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
	)

	minConfidence := cfg.Detect.MinConfidence
	if analyzeMinConfidence >= 0 {
		minConfidence = analyzeMinConfidence
	}
	workers := cfg.Engine.Workers
	if analyzeWorkers > 0 {
		workers = analyzeWorkers
	}

	detector, err := deadcode.New(g,
		deadcode.WithMinConfidence(minConfidence),
		deadcode.WithExportedRoots(analyzeExportedRoots || cfg.Detect.ExportedAreRoots),
		deadcode.WithWorkers(workers),
	)
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}

	report, err := detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	if analyzeJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

// printReport writes a human-readable report to stdout.
func printReport(report *deadcode.Report) {
	fmt.Printf("Analyzed %d symbols, %d reachable from entry points.\n\n",
		report.TotalSymbols, report.ReachableSymbols)

	sections := []struct {
		title   string
		symbols []deadcode.DeadSymbol
	}{
		{"Unused functions", report.UnusedFunctions},
		{"Unused types", report.UnusedTypes},
		{"Unused constants and variables", report.UnusedConstants},
	}

	total := 0
	for _, sec := range sections {
		if len(sec.symbols) == 0 {
			continue
		}
		total += len(sec.symbols)
		fmt.Printf("%s (%d):\n", sec.title, len(sec.symbols))
		for _, dead := range sec.symbols {
			fmt.Printf("  %s:%d  %s  (%s, confidence %d%%)\n",
				dead.FilePath, dead.Line, dead.Name, dead.Reason, dead.Confidence)
		}
		fmt.Println()
	}

	if total == 0 {
		fmt.Println("No unused declarations found.")
		return
	}
	fmt.Printf("Estimated dead lines: %d\n", report.TotalDeadLines)
}
