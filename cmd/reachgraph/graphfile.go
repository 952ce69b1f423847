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

	"github.com/AleutianAI/reachgraph/services/reach/config"
	"github.com/AleutianAI/reachgraph/services/reach/graph"
)

// graphFile is the on-disk graph format: a symbol table plus an edge
// list of [from, to] id pairs. Ids are positions in the symbols array.
type graphFile struct {
	Symbols []graphFileSymbol `json:"symbols"`
	Edges   [][2]int          `json:"edges"`
}

type graphFileSymbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line,omitempty"`
}

// symbolKinds maps file kind strings to SymbolKind values.
var symbolKinds = map[string]graph.SymbolKind{
	"function": graph.KindFunction,
	"method":   graph.KindMethod,
	"type":     graph.KindType,
	"constant": graph.KindConstant,
	"variable": graph.KindVariable,
}

// loadGraphFile reads a JSON graph file and returns a frozen graph.
func loadGraphFile(path string, limits config.GraphConfig) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	var file graphFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse graph file: %w", err)
	}

	g := graph.New(
		graph.WithMaxNodes(limits.MaxNodes),
		graph.WithMaxEdges(limits.MaxEdges),
	)

	for i, sym := range file.Symbols {
		kind, ok := symbolKinds[sym.Kind]
		if !ok {
			kind = graph.KindUnknown
		}
		if _, err := g.AddSymbol(graph.Symbol{
			Name:      sym.Name,
			Kind:      kind,
			FilePath:  sym.FilePath,
			StartLine: sym.StartLine,
			EndLine:   sym.EndLine,
		}); err != nil {
			return nil, fmt.Errorf("symbol %d (%s): %w", i, sym.Name, err)
		}
	}

	for i, e := range file.Edges {
		if err := g.AddReference(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("edge %d (%d -> %d): %w", i, e[0], e[1], err)
		}
	}

	g.Freeze()
	return g, nil
}
