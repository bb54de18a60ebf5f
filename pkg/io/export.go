package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/bldr/pkg/dag"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string       `json:"id"`
	Row  int          `json:"row"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Scope string `json:"scope,omitempty"`
}

// WriteJSON encodes a DAG as indented JSON and writes it to w.
func WriteJSON(g *dag.DAG, w io.Writer) error {
	nodes, edges := g.Nodes(), g.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Row: n.Row, Meta: n.Meta}
	}
	for i, e := range edges {
		scope, _ := e.Meta["scope"].(string)
		out.Edges[i] = edge{From: e.From, To: e.To, Scope: scope}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a DAG to a JSON file at path.
func ExportJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
