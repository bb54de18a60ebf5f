package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/httputil"
	"github.com/matzehuels/bldr/pkg/integrations"
	"github.com/matzehuels/bldr/pkg/integrations/maven"
	"github.com/matzehuels/bldr/pkg/integrations/maven/maventest"
	"github.com/matzehuels/bldr/pkg/version"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func testResolver(t *testing.T, srv *maventest.Server) *Resolver {
	t.Helper()
	client, err := maven.NewClient(maven.WithRepoURL(srv.RepoURL()), maven.WithSearchURL(srv.SearchURL()))
	require.NoError(t, err)
	client.SetHTTPClient(srv.Client())
	client.SetRetryPolicy(httputil.Policy{Attempts: 1, Delay: time.Millisecond})
	return NewResolver(client, t.TempDir(), quietLogger())
}

func coord(s string) Coordinate {
	c, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return c
}

func ids(as []Artifact) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.String()
	}
	return out
}

// fakeFetcher serves descriptors for the versions in ok and fails otherwise.
type fakeFetcher struct {
	mu    sync.Mutex
	ok    map[string]bool
	jarOK bool
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, group, name, v, ext, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s-%s.%s", name, v, ext))
	if !f.ok[v] || (ext == "jar" && !f.jarOK) {
		return integrations.ErrNotFound
	}
	body := []byte("jar")
	if ext == "pom" {
		body = maventest.POM{Group: group, Artifact: name, Version: v}.Bytes()
	}
	return os.WriteFile(dst, body, 0o644)
}

func TestDownloadSkipsPresentDescriptor(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{}
	r := NewResolver(f, dir, quietLogger())

	a := New(dir, coord("org.example:lib:1.0"))
	require.NoError(t, os.WriteFile(a.PomPath(), []byte("<project/>"), 0o644))

	got, err := r.Download(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Empty(t, f.calls)
}

func TestDownloadFallbackLadder(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{ok: map[string]bool{"1.0": true}, jarOK: true}
	r := NewResolver(f, dir, quietLogger())

	got, err := r.Download(context.Background(), New(dir, coord("org.example:lib")))
	require.NoError(t, err)
	assert.Equal(t, version.New2(1, 0), got.Version)
	assert.Equal(t, []string{"lib-1.pom", "lib-1.pom", "lib-1.0.pom", "lib-1.0.jar"}, f.calls)
	assert.True(t, got.HasPOM())
	assert.True(t, got.HasJar())
}

func TestDownloadMinorFallback(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{ok: map[string]bool{"24.0": true}, jarOK: true}
	r := NewResolver(f, dir, quietLogger())

	got, err := r.Download(context.Background(), New(dir, coord("org.example:lib:24")))
	require.NoError(t, err)
	assert.Equal(t, "24.0", got.Version.String())
	assert.Equal(t, []string{"lib-24.pom", "lib-24.0.pom", "lib-24.0.jar"}, f.calls)
}

func TestDownloadFatalWhenSpecified(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{}
	r := NewResolver(f, dir, quietLogger())

	_, err := r.Download(context.Background(), New(dir, coord("org.example:lib:1.2.3")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeArtifactFetch))
	assert.Equal(t, []string{"lib-1.2.3.pom"}, f.calls)
}

func TestDownloadJarFailureRemovesDescriptor(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{ok: map[string]bool{"2.0": true}}
	r := NewResolver(f, dir, quietLogger())

	a := New(dir, coord("org.example:lib:2.0"))
	_, err := r.Download(context.Background(), a)
	require.Error(t, err)
	assert.False(t, a.HasPOM(), "descriptor must not outlive a failed payload")
}

func TestDownloadPomPackaging(t *testing.T) {
	srv := maventest.NewServer(t)
	srv.AddArtifact(maventest.POM{Group: "org.example", Artifact: "bom", Version: "1.0", Packaging: "pom"})
	r := testResolver(t, srv)

	a, err := r.Download(context.Background(), New(r.Dir, coord("org.example:bom:1.0")))
	require.NoError(t, err)
	assert.True(t, a.HasPOM())
	assert.False(t, a.HasJar())
	assert.Zero(t, srv.Hits(maventest.Path("org.example", "bom", "1.0", "jar")))
}

func TestDownloadDottedModifier(t *testing.T) {
	srv := maventest.NewServer(t)
	srv.AddArtifact(maventest.POM{Group: "io.netty", Artifact: "netty-buffer", Version: "4.1.100.Final"})
	r := testResolver(t, srv)

	a, err := r.Download(context.Background(), New(r.Dir, coord("io.netty:netty-buffer:4.1.100.Final")))
	require.NoError(t, err)
	assert.Equal(t, "io.netty:netty-buffer:4.1.100.Final", a.String())
	assert.Equal(t, 1, srv.Hits(maventest.Path("io.netty", "netty-buffer", "4.1.100.Final", "pom")))
	assert.FileExists(t, filepath.Join(r.Dir, "netty-buffer-4.1.100.Final.jar"))
}

func TestDownloadConcurrentSameCoordinate(t *testing.T) {
	srv := maventest.NewServer(t)
	srv.AddArtifact(maventest.POM{Group: "org.example", Artifact: "lib", Version: "1.0"})
	r := testResolver(t, srv)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Download(context.Background(), New(r.Dir, coord("org.example:lib:1.0")))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, srv.Hits(maventest.Path("org.example", "lib", "1.0", "pom")))
}

func TestDownloadCanceled(t *testing.T) {
	srv := maventest.NewServer(t)
	r := testResolver(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Download(ctx, New(r.Dir, coord("org.example:lib")))
	assert.ErrorIs(t, err, context.Canceled)
}

// stallingFetcher blocks its first fetch until that caller's context ends
// and serves every later fetch.
type stallingFetcher struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
}

func (f *stallingFetcher) Fetch(ctx context.Context, group, name, v, ext, dst string) error {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()
	if first {
		close(f.entered)
		<-ctx.Done()
		return ctx.Err()
	}
	body := []byte("jar")
	if ext == "pom" {
		body = maventest.POM{Group: group, Artifact: name, Version: v}.Bytes()
	}
	return os.WriteFile(dst, body, 0o644)
}

func TestDownloadSharedFetchCanceledByOwner(t *testing.T) {
	dir := t.TempDir()
	f := &stallingFetcher{entered: make(chan struct{})}
	r := NewResolver(f, dir, quietLogger())
	a := New(dir, coord("org.example:lib:1.0"))

	ownerCtx, cancel := context.WithCancel(context.Background())
	ownerErr := make(chan error, 1)
	go func() {
		_, err := r.Download(ownerCtx, a)
		ownerErr <- err
	}()
	<-f.entered

	joined := make(chan error, 1)
	go func() {
		got, err := r.Download(context.Background(), a)
		if err == nil && got.Version != a.Version {
			err = fmt.Errorf("resolved %s, want %s", got, a)
		}
		joined <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-ownerErr, context.Canceled)
	require.NoError(t, <-joined, "a live caller must not inherit the owner's cancellation")
	assert.True(t, a.HasPOM())
	assert.True(t, a.HasJar())
}

// scopeFixture serves:
//
//	root -> d1 (compile) -> d3 (compile)
//	                     -> d4 (test)
//	     -> d2 (test)    -> d6 (compile)
//	     -> d5 (compile, optional)
func scopeFixture(srv *maventest.Server) {
	g := "org.example"
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "root", Version: "1.0", Deps: []maventest.Dep{
		{Group: g, Artifact: "d1", Version: "1.0"},
		{Group: g, Artifact: "d2", Version: "1.0", Scope: "test"},
		{Group: g, Artifact: "d5", Version: "1.0", Optional: true},
	}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "d1", Version: "1.0", Deps: []maventest.Dep{
		{Group: g, Artifact: "d3", Version: "1.0", Scope: "compile"},
		{Group: g, Artifact: "d4", Version: "1.0", Scope: "test"},
	}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "d2", Version: "1.0", Deps: []maventest.Dep{
		{Group: g, Artifact: "d6", Version: "1.0"},
	}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "d3", Version: "1.0"})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "d4", Version: "1.0"})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "d5", Version: "1.0"})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "d6", Version: "1.0"})
}

func TestDependenciesScopeFiltering(t *testing.T) {
	srv := maventest.NewServer(t)
	scopeFixture(srv)
	r := testResolver(t, srv)

	deps, err := r.Dependencies(context.Background(), New(r.Dir, coord("org.example:root:1.0")))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:d1:1.0", "org.example:d3:1.0"}, ids(deps))

	// Every declared dependency is fetched, included or not.
	for _, name := range []string{"d2", "d4", "d5"} {
		assert.FileExists(t, filepath.Join(r.Dir, name+"-1.0.pom"))
	}
	// Non-compile scopes are not expanded.
	assert.NoFileExists(t, filepath.Join(r.Dir, "d6-1.0.pom"))
	assert.Zero(t, srv.Hits(maventest.Path("org.example", "d6", "1.0", "pom")))
}

func TestResolveGraph(t *testing.T) {
	srv := maventest.NewServer(t)
	scopeFixture(srv)
	r := testResolver(t, srv)

	res, err := r.Resolve(context.Background(), coord("org.example:root:1.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:root:1.0", "org.example:d1:1.0", "org.example:d3:1.0"}, ids(res.Artifacts))
	assert.Len(t, res.Roots, 1)
	assert.Len(t, res.Jars(), 3)

	n, ok := res.Graph.Node("org.example:d2:1.0")
	require.True(t, ok)
	assert.Equal(t, true, n.Meta["excluded"])
	assert.Equal(t, "test", n.Meta["scope"])

	n, ok = res.Graph.Node("org.example:d5:1.0")
	require.True(t, ok)
	assert.Equal(t, true, n.Meta["optional"])

	n, ok = res.Graph.Node("org.example:d1:1.0")
	require.True(t, ok)
	assert.Equal(t, false, n.Meta["excluded"])
	assert.True(t, res.Graph.HasEdge("org.example:root:1.0", "org.example:d1:1.0"))
}

func TestResolveCycleTerminates(t *testing.T) {
	srv := maventest.NewServer(t)
	g := "org.example"
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "a", Version: "1.0", Deps: []maventest.Dep{{Group: g, Artifact: "b", Version: "1.0"}}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "b", Version: "1.0", Deps: []maventest.Dep{{Group: g, Artifact: "a", Version: "1.0"}}})
	r := testResolver(t, srv)

	res, err := r.Resolve(context.Background(), coord("org.example:a:1.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:a:1.0", "org.example:b:1.0"}, ids(res.Artifacts))
	assert.True(t, res.Graph.HasEdge("org.example:b:1.0", "org.example:a:1.0"))
}

func TestResolveDiamondListedOnce(t *testing.T) {
	srv := maventest.NewServer(t)
	g := "org.example"
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "top", Version: "1", Deps: []maventest.Dep{
		{Group: g, Artifact: "left", Version: "1"},
		{Group: g, Artifact: "right", Version: "1"},
	}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "left", Version: "1", Deps: []maventest.Dep{{Group: g, Artifact: "base", Version: "1"}}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "right", Version: "1", Deps: []maventest.Dep{{Group: g, Artifact: "base", Version: "1"}}})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "base", Version: "1"})
	r := testResolver(t, srv)

	res, err := r.Resolve(context.Background(), coord("org.example:top:1"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"org.example:top:1", "org.example:left:1", "org.example:base:1", "org.example:right:1",
	}, ids(res.Artifacts))
}

func TestDependencyPropertiesAndPlaceholders(t *testing.T) {
	srv := maventest.NewServer(t)
	g := "org.example"
	srv.AddArtifact(maventest.POM{
		Group: g, Artifact: "app", Version: "2.0",
		Properties: map[string]string{"lib.version": "3.1"},
		Deps: []maventest.Dep{
			{Group: g, Artifact: "lib", Version: "${lib.version}"},
			{Group: g, Artifact: "sibling", Version: "${project.version}"},
			{Group: "${unknown.group}", Artifact: "ghost", Version: "1"},
		},
	})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "lib", Version: "3.1"})
	srv.AddArtifact(maventest.POM{Group: g, Artifact: "sibling", Version: "2.0"})
	r := testResolver(t, srv)

	res, err := r.Resolve(context.Background(), coord("org.example:app:2.0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example:app:2.0", "org.example:lib:3.1", "org.example:sibling:2.0"}, ids(res.Artifacts))
}

func TestDependencyMalformedVersion(t *testing.T) {
	srv := maventest.NewServer(t)
	srv.AddArtifact(maventest.POM{Group: "g", Artifact: "app", Version: "1", Deps: []maventest.Dep{
		{Group: "g", Artifact: "lib", Version: "[1.0,2.0)"},
	}})
	r := testResolver(t, srv)

	_, err := r.Resolve(context.Background(), coord("g:app:1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedVersion))
}

func TestResolveMissingRoot(t *testing.T) {
	srv := maventest.NewServer(t)
	r := testResolver(t, srv)

	_, err := r.Resolve(context.Background(), coord("org.example:nothing:1.0.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeArtifactFetch))
}
