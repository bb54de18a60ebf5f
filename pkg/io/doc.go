// Package io exports dependency graphs as JSON.
//
// # JSON Format
//
// The format has two top-level arrays, in graph insertion order:
//
//	{
//	  "nodes": [
//	    {"id": "org.testng:testng:7.1.0", "row": 0, "meta": {"scope": "compile"}},
//	    {"id": "com.beust:jcommander:1.72", "row": 1, "meta": {"scope": "compile"}}
//	  ],
//	  "edges": [
//	    {"from": "org.testng:testng:7.1.0", "to": "com.beust:jcommander:1.72", "scope": "compile"}
//	  ]
//	}
//
// # Node Fields
//
//   - id: the artifact coordinate
//   - row: depth from the first root that reached the node
//   - meta: the node metadata; the resolver sets scope, and optional or
//     excluded for dependencies left out of the closure
//
// Use [WriteJSON] for any io.Writer, or [ExportJSON] to write a file.
package io
