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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/reachgraph/pkg/logging"
	"github.com/AleutianAI/reachgraph/services/reach/config"
)

var (
	configPath string

	cfg    config.Config
	logger *logging.Logger
)

// rootCmd is the top-level reachgraph command.
var rootCmd = &cobra.Command{
	Use:   "reachgraph",
	Short: "Parallel reachability analysis over symbol reference graphs",
	Long: `reachgraph computes the set of declarations reachable from a
program's entry points and reports the unreachable remainder as
unused-code candidates.

Examples:
  reachgraph analyze graph.json
  reachgraph analyze graph.json --exported-roots --json
  reachgraph stats graph.json`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger = logging.New(logging.Config{
			Level:   logging.ParseLevel(cfg.Observability.LogLevel),
			Service: cfg.Observability.ServiceName,
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML/JSON config file (env vars override it)")
}
