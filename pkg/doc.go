// Package pkg provides the core libraries of bldr, a build driver for
// multi-module Java projects with native backends.
//
// # Overview
//
// bldr reads a project descriptor, downloads the project's Maven
// dependencies, compiles and archives the core module and every group
// module, and runs the native steps (cmake builds and header extraction)
// the project needs.
//
// # Architecture
//
// The data flow of one build:
//
//	bldr.toml ([project])
//	         ↓
//	    [artifact] resolve dependencies via [integrations/maven]
//	         ↓
//	    [compile] javac with options layered by [buildcfg]
//	         ↓
//	    [archive] jar assembly
//	         ↓
//	    [toolexec] cmake and jextract
//
// [pipeline] sequences the phases and reports per-module results.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/bldr/pkg/compile"
//	    "github.com/matzehuels/bldr/pkg/integrations/maven"
//	    "github.com/matzehuels/bldr/pkg/pipeline"
//	    "github.com/matzehuels/bldr/pkg/platform"
//	    "github.com/matzehuels/bldr/pkg/project"
//	    "github.com/matzehuels/bldr/pkg/toolexec"
//	)
//
//	desc, _, _ := project.Find(".")
//	env, _ := platform.Detect()
//	client, _ := maven.NewClient()
//	tools := toolexec.NewRunner(nil)
//	javac := compile.Javac{Runner: tools, Path: env.Java("javac")}
//
//	res, err := pipeline.NewRunner(client, client, javac, tools, nil).
//	    Build(ctx, pipeline.Plan{Root: ".", Descriptor: desc, Env: env})
//
// # Main Packages
//
// ## Build
//
// [project] - The descriptor format, defaults for the standard layout and
// path placeholders.
//
// [buildcfg] - Immutable, layered configuration values for compile, archive,
// cmake and extract steps.
//
// [compile] - Source discovery, javac invocation and diagnostic parsing.
//
// [archive] - Deterministic jar assembly.
//
// [toolexec] - Process execution, cmake and jextract wrappers, and
// provisioning of the jextract distribution.
//
// [pipeline] - The whole-project build.
//
// ## Dependencies
//
// [version] - Partial version numbers and their fallback ladder.
//
// [artifact] - Coordinates, the local repository and transitive resolution.
//
// [dag] - The dependency graph with DOT and SVG output; [io] exports it as JSON.
//
// ## Infrastructure
//
// [integrations] - The shared HTTP client with caching and retries;
// [integrations/maven] speaks the Maven repository and search protocols.
//
// [cache] - Response caches: file, Redis and no-op.
//
// [httputil] - Retry policies and atomic file writes.
//
// [platform] - Host facts: OS, architecture, JDK and framework paths.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for build, fetch and HTTP events.
//
// [project]: github.com/matzehuels/bldr/pkg/project
// [artifact]: github.com/matzehuels/bldr/pkg/artifact
// [integrations/maven]: github.com/matzehuels/bldr/pkg/integrations/maven
// [integrations]: github.com/matzehuels/bldr/pkg/integrations
// [compile]: github.com/matzehuels/bldr/pkg/compile
// [buildcfg]: github.com/matzehuels/bldr/pkg/buildcfg
// [archive]: github.com/matzehuels/bldr/pkg/archive
// [toolexec]: github.com/matzehuels/bldr/pkg/toolexec
// [pipeline]: github.com/matzehuels/bldr/pkg/pipeline
// [version]: github.com/matzehuels/bldr/pkg/version
// [dag]: github.com/matzehuels/bldr/pkg/dag
// [io]: github.com/matzehuels/bldr/pkg/io
// [cache]: github.com/matzehuels/bldr/pkg/cache
// [httputil]: github.com/matzehuels/bldr/pkg/httputil
// [platform]: github.com/matzehuels/bldr/pkg/platform
// [errors]: github.com/matzehuels/bldr/pkg/errors
// [observability]: github.com/matzehuels/bldr/pkg/observability
package pkg
