// Package artifact resolves Maven artifacts into a local repository directory.
//
// # Overview
//
// An [Artifact] is a [Coordinate] bound to a local directory together with
// the scope and optional flag under which it was declared. Files live flat
// in that directory as {name}-{version}.{pom|jar}; the presence of the
// descriptor means the artifact was already fetched, across runs.
//
// A [Resolver] downloads artifacts and walks their descriptors:
//
//	r := artifact.NewResolver(client, repoDir, logger)
//	res, err := r.Resolve(ctx, artifact.NewCoordinate("org.testng", "testng", version.MustParse("7.1.0")))
//	for _, a := range res.Artifacts {
//	    fmt.Println(a.JarPath())
//	}
//
// # Fallback
//
// When a fetch fails for a partial version the resolver retries with
// [version.Spec.Fallback]: an unspecified major becomes 1, an unspecified
// minor becomes major.0. A failure at a fully specified version is fatal.
//
// # Transitive dependencies
//
// Every declared dependency is downloaded, whatever its scope. Optional
// dependencies are excluded from the result. Compile-scope dependencies are
// included and expanded recursively, parent before children. Other scopes are
// excluded and not expanded. A coordinate is expanded at most once per
// request, so cyclic descriptors terminate.
package artifact

import (
	"os"
	"path/filepath"
)

// Artifact is a coordinate bound to a local repository directory.
type Artifact struct {
	Coordinate
	Dir      string
	Scope    Scope
	Optional bool
}

// New returns a compile-scope artifact for c stored in dir.
func New(dir string, c Coordinate) Artifact {
	return Artifact{Coordinate: c, Dir: dir, Scope: ScopeCompile}
}

// PomPath is the local descriptor path.
func (a Artifact) PomPath() string { return filepath.Join(a.Dir, a.FileName("pom")) }

// JarPath is the local payload path.
func (a Artifact) JarPath() string { return filepath.Join(a.Dir, a.FileName("jar")) }

// HasPOM reports whether the descriptor is present locally.
func (a Artifact) HasPOM() bool {
	info, err := os.Stat(a.PomPath())
	return err == nil && info.Mode().IsRegular()
}

// HasJar reports whether the payload is present locally.
func (a Artifact) HasJar() bool {
	info, err := os.Stat(a.JarPath())
	return err == nil && info.Mode().IsRegular()
}

// WithCoordinate returns a copy of a at coordinate c.
func (a Artifact) WithCoordinate(c Coordinate) Artifact {
	a.Coordinate = c
	return a
}
