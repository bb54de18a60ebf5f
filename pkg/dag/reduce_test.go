package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestRemoveEdge(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	if !g.RemoveEdge("a", "b") {
		t.Error("RemoveEdge(a, b) = false, want true")
	}
	if g.RemoveEdge("a", "b") {
		t.Error("second RemoveEdge(a, b) = true, want false")
	}
	if g.HasEdge("a", "b") {
		t.Error("HasEdge(a, b) after removal")
	}
	if len(g.Children("a")) != 0 || len(g.Parents("b")) != 0 {
		t.Errorf("adjacency not cleared: children=%v parents=%v", g.Children("a"), g.Parents("b"))
	}
	if n := g.EdgeCount(); n != 0 {
		t.Errorf("EdgeCount() = %d, want 0", n)
	}
}

func TestTransitiveReduction(t *testing.T) {
	g := build(t, []string{"app", "lib", "util", "log"}, [][2]string{
		{"app", "lib"}, {"lib", "util"}, {"app", "util"},
		{"util", "log"}, {"app", "log"},
	})
	if err := g.AddEdge(Edge{From: "lib", To: "log", Meta: Metadata{"scope": "compile"}}); err != nil {
		t.Fatal(err)
	}

	removed, err := TransitiveReduction(g)
	if err != nil {
		t.Fatalf("TransitiveReduction: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	var got [][2]string
	for _, e := range g.Edges() {
		got = append(got, [2]string{e.From, e.To})
	}
	want := [][2]string{{"app", "lib"}, {"lib", "util"}, {"util", "log"}}
	if !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestTransitiveReductionCycle(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})

	if _, err := TransitiveReduction(g); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("TransitiveReduction() = %v, want ErrGraphHasCycle", err)
	}
	if n := g.EdgeCount(); n != 2 {
		t.Errorf("EdgeCount() = %d, want 2", n)
	}
}
