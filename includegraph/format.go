package includegraph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToDOT renders the graph in Graphviz DOT format using display names as node
// identifiers.
func (g *Graph) ToDOT() (string, error) {
	edges, err := g.Edges()
	if err != nil {
		return "", err
	}
	cycles, err := g.Cycles()
	if err != nil {
		return "", err
	}
	inCycle := make(map[string]bool)
	for _, cycle := range cycles {
		for _, p := range cycle {
			inCycle[p] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("digraph includes {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	sb.WriteString("\n")

	for _, p := range g.Nodes() {
		if inCycle[p] {
			sb.WriteString(fmt.Sprintf("  %q [style=filled, fillcolor=lightpink];\n", g.Name(p)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %q;\n", g.Name(p)))
	}

	if len(edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range edges {
		if inCycle[e.From] && inCycle[e.To] {
			sb.WriteString(fmt.Sprintf("  %q -> %q [color=red];\n", g.Name(e.From), g.Name(e.To)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %q -> %q;\n", g.Name(e.From), g.Name(e.To)))
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

type jsonGraphOutput struct {
	Nodes  []jsonGraphNode `json:"nodes"`
	Edges  []jsonGraphEdge `json:"edges"`
	Cycles [][]string      `json:"cycles"`
}

type jsonGraphNode struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type jsonGraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ToJSON renders the graph as indented JSON keyed by absolute paths.
func (g *Graph) ToJSON() ([]byte, error) {
	edges, err := g.Edges()
	if err != nil {
		return nil, err
	}
	cycles, err := g.Cycles()
	if err != nil {
		return nil, err
	}

	out := jsonGraphOutput{
		Nodes:  []jsonGraphNode{},
		Edges:  []jsonGraphEdge{},
		Cycles: [][]string{},
	}
	for _, p := range g.Nodes() {
		out.Nodes = append(out.Nodes, jsonGraphNode{Path: p, Name: g.Name(p)})
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, jsonGraphEdge{From: e.From, To: e.To})
	}
	out.Cycles = append(out.Cycles, cycles...)

	return json.MarshalIndent(out, "", "  ")
}
