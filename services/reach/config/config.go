// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads reachgraph configuration with the priority
// env > file > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validate is the package validator instance.
var validate = validator.New()

// Config contains all reachgraph configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Engine contains traversal settings.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Detect contains dead code detection settings.
	Detect DetectConfig `json:"detect" yaml:"detect"`

	// Graph contains graph capacity settings.
	Graph GraphConfig `json:"graph" yaml:"graph"`

	// Observability contains observability settings.
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// EngineConfig contains traversal settings.
type EngineConfig struct {
	// Workers is the concurrency budget per expansion step.
	Workers int `json:"workers" yaml:"workers" validate:"gte=1,lte=1024"`

	// PullRatio is the frontier/unvisited ratio above which a step
	// expands bottom-up. Zero disables bottom-up expansion.
	PullRatio float64 `json:"pull_ratio" yaml:"pull_ratio" validate:"gte=0,lte=1"`
}

// DetectConfig contains dead code detection settings.
type DetectConfig struct {
	// MinConfidence is the reporting threshold (0-100).
	MinConfidence int `json:"min_confidence" yaml:"min_confidence" validate:"gte=0,lte=100"`

	// ExportedAreRoots treats exported symbols as entry points
	// (library mode).
	ExportedAreRoots bool `json:"exported_are_roots" yaml:"exported_are_roots"`
}

// GraphConfig contains graph capacity settings.
type GraphConfig struct {
	// MaxNodes is the maximum number of symbols.
	MaxNodes int `json:"max_nodes" yaml:"max_nodes" validate:"gte=1"`

	// MaxEdges is the maximum number of references.
	MaxEdges int `json:"max_edges" yaml:"max_edges" validate:"gte=1"`
}

// ObservabilityConfig contains observability settings.
type ObservabilityConfig struct {
	TracingEnabled bool    `json:"tracing_enabled" yaml:"tracing_enabled"`
	MetricsEnabled bool    `json:"metrics_enabled" yaml:"metrics_enabled"`
	LogLevel       string  `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	SampleRate     float64 `json:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
	ServiceName    string  `json:"service_name" yaml:"service_name" validate:"required"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			Workers:   8,
			PullRatio: 0.25,
		},
		Detect: DetectConfig{
			MinConfidence:    20,
			ExportedAreRoots: false,
		},
		Graph: GraphConfig{
			MaxNodes: 1_000_000,
			MaxEdges: 10_000_000,
		},
		Observability: ObservabilityConfig{
			TracingEnabled: true,
			MetricsEnabled: true,
			LogLevel:       "info",
			SampleRate:     1.0,
			ServiceName:    "reachgraph",
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - configPath: Path to a YAML/JSON config file (optional, can be empty).
//     A missing file is not an error; defaults apply.
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, or validation fails.
func Load(configPath string) (Config, error) {
	config := Default()

	if configPath != "" {
		if err := loadFile(configPath, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&config)

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}

	return nil
}

func loadEnv(config *Config) {
	// Engine
	if v := os.Getenv("REACHGRAPH_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Engine.Workers = i
		}
	}
	if v := os.Getenv("REACHGRAPH_PULL_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Engine.PullRatio = f
		}
	}

	// Detect
	if v := os.Getenv("REACHGRAPH_MIN_CONFIDENCE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Detect.MinConfidence = i
		}
	}
	if v := os.Getenv("REACHGRAPH_EXPORTED_ROOTS"); v != "" {
		config.Detect.ExportedAreRoots = v == "true" || v == "1"
	}

	// Graph
	if v := os.Getenv("REACHGRAPH_MAX_NODES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Graph.MaxNodes = i
		}
	}
	if v := os.Getenv("REACHGRAPH_MAX_EDGES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Graph.MaxEdges = i
		}
	}

	// Observability
	if v := os.Getenv("REACHGRAPH_TRACING_ENABLED"); v != "" {
		config.Observability.TracingEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("REACHGRAPH_METRICS_ENABLED"); v != "" {
		config.Observability.MetricsEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("REACHGRAPH_LOG_LEVEL"); v != "" {
		config.Observability.LogLevel = v
	}
	if v := os.Getenv("REACHGRAPH_TRACE_SAMPLE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Observability.SampleRate = f
		}
	}
}

// Validate checks that the configuration is valid.
//
// Uses go-playground/validator tags on the config structs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}
