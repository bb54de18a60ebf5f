package artifact

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/bldr/pkg/dag"
	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/integrations/maven"
	"github.com/matzehuels/bldr/pkg/observability"
	"github.com/matzehuels/bldr/pkg/version"
)

// Fetcher downloads one repository file to dst. [maven.Client] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, group, artifact, version, ext, dst string) error
}

// Resolver downloads artifacts into Dir and expands their dependencies.
//
// A Resolver is safe for concurrent use. Concurrent downloads of the same
// coordinate share one fetch.
type Resolver struct {
	Fetcher Fetcher
	Dir     string
	Logger  *log.Logger

	inflight singleflight.Group
}

// NewResolver creates a resolver storing files in dir.
// If logger is nil, log.Default() is used.
func NewResolver(f Fetcher, dir string, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{Fetcher: f, Dir: dir, Logger: logger}
}

// Result is the outcome of [Resolver.Resolve].
type Result struct {
	// Roots are the requested artifacts at the versions that resolved.
	Roots []Artifact

	// Artifacts are the roots followed by their compile-scope closure,
	// pre-order, each coordinate once.
	Artifacts []Artifact

	// Graph has one node per coordinate seen, keyed by [Coordinate.String].
	// Excluded dependencies are present with the "excluded" metadata set.
	Graph *dag.DAG
}

// Jars returns the local payload paths of every resolved artifact that has one.
func (r *Result) Jars() []string {
	var jars []string
	for _, a := range r.Artifacts {
		if a.HasJar() {
			jars = append(jars, a.JarPath())
		}
	}
	return jars
}

// Resolve downloads each root and its compile-scope closure.
func (r *Resolver) Resolve(ctx context.Context, roots ...Coordinate) (*Result, error) {
	w := r.newWalk()
	res := &Result{Graph: w.graph}

	for _, c := range roots {
		a, err := r.Download(ctx, New(r.Dir, c))
		if err != nil {
			return nil, err
		}
		res.Roots = append(res.Roots, a)
		w.node(a, false)
		w.add(a)
		if !w.enter(a) {
			continue
		}
		if _, err := w.expand(ctx, a); err != nil {
			return nil, err
		}
	}
	res.Artifacts = w.order
	return res, nil
}

// Download makes a's descriptor and payload available locally and returns
// the artifact at the version that was fetched. A present descriptor is
// trusted without re-fetching.
//
// On failure the fallback ladder of [version.Spec.Fallback] is applied; once
// it is exhausted the error has code [errors.ErrCodeArtifactFetch].
func (r *Resolver) Download(ctx context.Context, a Artifact) (Artifact, error) {
	if a.HasPOM() {
		r.Logger.Debug("already have", "artifact", a.String())
		return a, nil
	}

	err := r.fetchShared(ctx, a)
	if err == nil {
		return a, nil
	}
	if ctx.Err() != nil {
		return a, ctx.Err()
	}

	next, ok := a.Version.Fallback()
	if !ok {
		return a, errors.Wrap(errors.ErrCodeArtifactFetch, err, "download %s", a)
	}
	r.Logger.Debug("falling back", "artifact", a.ID(), "from", a.Version.String(), "to", next.String())
	observability.Fetch().OnFallback(ctx, a.String(), a.WithVersion(next).String())
	return r.Download(ctx, a.WithCoordinate(a.WithVersion(next)))
}

// fetchShared runs fetch once per coordinate across goroutines. A caller
// that joined a fetch whose owner was canceled fetches again under its own
// context.
func (r *Resolver) fetchShared(ctx context.Context, a Artifact) error {
	key := a.Dir + "|" + a.String()
	for {
		owner := false
		_, err, _ := r.inflight.Do(key, func() (any, error) {
			owner = true
			return nil, r.fetch(ctx, a)
		})
		if owner || ctx.Err() != nil || !isContextErr(err) {
			return err
		}
		r.Logger.Debug("shared fetch canceled, retrying", "artifact", a.String())
	}
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func (r *Resolver) fetch(ctx context.Context, a Artifact) error {
	if a.HasPOM() {
		return nil
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return err
	}

	r.Logger.Info("downloading", "artifact", a.String())
	start := time.Now()
	err := r.fetchFiles(ctx, a)
	observability.Fetch().OnFetch(ctx, a.String(), time.Since(start), err)
	return err
}

// fetchFiles downloads the descriptor and then the payload. The descriptor
// is removed again if the payload fails, so its presence keeps meaning
// "fetched".
func (r *Resolver) fetchFiles(ctx context.Context, a Artifact) error {
	v := a.Version.String()
	if err := r.Fetcher.Fetch(ctx, a.Group, a.Name, v, "pom", a.PomPath()); err != nil {
		return err
	}
	pom, err := maven.ReadPOM(a.PomPath())
	if err != nil {
		os.Remove(a.PomPath())
		return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "descriptor of %s", a)
	}
	if pom.Packaging == "pom" {
		return nil
	}
	if err := r.Fetcher.Fetch(ctx, a.Group, a.Name, v, "jar", a.JarPath()); err != nil {
		os.Remove(a.PomPath())
		return err
	}
	return nil
}

// Dependencies returns a's compile-scope closure in pre-order, each
// coordinate once, downloading every declared dependency along the way.
// a's descriptor is downloaded first when missing.
func (r *Resolver) Dependencies(ctx context.Context, a Artifact) ([]Artifact, error) {
	a, err := r.Download(ctx, a)
	if err != nil {
		return nil, err
	}
	w := r.newWalk()
	w.node(a, false)
	w.enter(a)
	if _, err := w.expand(ctx, a); err != nil {
		return nil, err
	}
	return w.order, nil
}

// walk is the state of one resolution request.
type walk struct {
	r        *Resolver
	graph    *dag.DAG
	expanded map[string]bool
	listed   map[string]bool
	order    []Artifact
}

func (r *Resolver) newWalk() *walk {
	return &walk{
		r:        r,
		graph:    dag.New(nil),
		expanded: make(map[string]bool),
		listed:   make(map[string]bool),
	}
}

// enter marks a as expanded and reports whether it was not already.
func (w *walk) enter(a Artifact) bool {
	key := a.String()
	if w.expanded[key] {
		return false
	}
	w.expanded[key] = true
	return true
}

func (w *walk) add(a Artifact) {
	key := a.String()
	if w.listed[key] {
		return
	}
	w.listed[key] = true
	w.order = append(w.order, a)
}

func (w *walk) node(a Artifact, excluded bool) {
	n, err := w.graph.EnsureNode(dag.Node{ID: a.String()})
	if err != nil {
		return
	}
	if prev, seen := n.Meta["excluded"].(bool); !seen || prev {
		n.Meta["excluded"] = excluded
	}
	if excluded && a.Optional {
		n.Meta["optional"] = true
	} else if !excluded {
		delete(n.Meta, "optional")
	}
	if _, ok := n.Meta["scope"]; !ok || !excluded {
		n.Meta["scope"] = a.Scope.String()
	}
}

func (w *walk) expand(ctx context.Context, parent Artifact) ([]Artifact, error) {
	pom, err := maven.ReadPOM(parent.PomPath())
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeArtifactFetch, err, "descriptor of %s", parent)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "descriptor of %s", parent)
	}

	var out []Artifact
	for _, d := range pom.Dependencies {
		dep, ok, err := w.declared(parent, pom, d)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if dep, err = w.r.Download(ctx, dep); err != nil {
			return nil, err
		}

		include := !dep.Optional && dep.Scope == ScopeCompile
		w.node(dep, !include)
		w.graph.AddEdge(dag.Edge{From: parent.String(), To: dep.String(), Meta: dag.Metadata{"scope": dep.Scope.String()}})

		switch {
		case dep.Optional:
			w.r.Logger.Debug("optional", "artifact", dep.String())
		case dep.Scope == ScopeCompile:
			w.add(dep)
			out = append(out, dep)
			if !w.enter(dep) {
				continue
			}
			children, err := w.expand(ctx, dep)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		default:
			w.r.Logger.Debug("skipping", "artifact", dep.String(), "scope", dep.Scope.String())
		}
	}
	return out, nil
}

// declared builds the artifact for a dependency entry. Entries whose group
// or name are unresolved placeholders are skipped.
func (w *walk) declared(parent Artifact, pom *maven.POM, d maven.Dependency) (Artifact, bool, error) {
	group, gok := pom.Expand(strings.TrimSpace(d.GroupID))
	name, nok := pom.Expand(strings.TrimSpace(d.ArtifactID))
	if !gok || !nok || group == "" || name == "" {
		w.r.Logger.Debug("skipping unresolved dependency", "parent", parent.String(), "group", d.GroupID, "artifact", d.ArtifactID)
		return Artifact{}, false, nil
	}

	v := version.None()
	if raw, ok := pom.Expand(d.RawVersion()); ok {
		parsed, err := version.Parse(raw)
		if err != nil {
			return Artifact{}, false, errors.Wrap(errors.ErrCodeMalformedVersion, err,
				"dependency %s:%s of %s", group, name, parent)
		}
		v = parsed
	} else {
		w.r.Logger.Debug("unresolved version", "parent", parent.String(), "dependency", group+":"+name, "version", d.RawVersion())
	}

	return Artifact{
		Coordinate: NewCoordinate(group, name, v),
		Dir:        parent.Dir,
		Scope:      ParseScope(d.Scope),
		Optional:   d.IsOptional(),
	}, true, nil
}
