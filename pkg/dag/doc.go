// Package dag provides the directed graph used for dependency resolution
// results and for the module build order.
//
// # Overview
//
// Nodes are identified by string IDs (an artifact's group:name:version, or
// a module name) and keep insertion order, so exports and schedules are
// deterministic. Edges point from a dependent to its dependency.
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "hat"})
//	g.AddNode(dag.Node{ID: "hat-example-mandel"})
//	g.AddEdge(dag.Edge{From: "hat-example-mandel", To: "hat"})
//
// [DAG.Levels] groups nodes into waves that can be built concurrently, and
// [ToDOT] and [RenderSVG] export the graph for inspection.
package dag
