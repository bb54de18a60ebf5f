package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/integrations/maven/maventest"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"canceled", fmt.Errorf("build: %w", context.Canceled), ExitInterrupted},
		{"descriptor", errors.New(errors.ErrCodeInvalidDescriptor, "bad"), ExitInvalidInput},
		{"coordinate", errors.New(errors.ErrCodeInvalidCoordinate, "bad"), ExitInvalidInput},
		{"version", errors.New(errors.ErrCodeMalformedVersion, "bad"), ExitInvalidInput},
		{"fetch", errors.New(errors.ErrCodeArtifactFetch, "gone"), ExitFetch},
		{"not found", errors.New(errors.ErrCodeNotFound, "gone"), ExitFetch},
		{"compilation", errors.New(errors.ErrCodeCompilation, "1 error"), ExitCompilation},
		{"tool", errors.New(errors.ErrCodeExternalTool, "cmake"), ExitExternalTool},
		{"missing dir", errors.New(errors.ErrCodeMissingDirectory, "backends"), ExitMissingDir},
		{"joined", errors.Join(fmt.Errorf("plain"), errors.New(errors.ErrCodeCompilation, "x")), ExitCompilation},
		{"uncoded", fmt.Errorf("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// execute runs the CLI against a fake repository with caching disabled.
func execute(t *testing.T, srv *maventest.Server, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("BLDR_NO_CACHE", "true")
	if srv != nil {
		t.Setenv("BLDR_REPO_URL", srv.RepoURL())
		t.Setenv("BLDR_SEARCH_URL", srv.SearchURL())
	}
	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func repository(t *testing.T) *maventest.Server {
	srv := maventest.NewServer(t)
	srv.AddArtifact(maventest.POM{Group: "org.example", Artifact: "lib", Version: "1.0",
		Deps: []maventest.Dep{
			{Group: "org.example", Artifact: "util", Version: "2.1"},
			{Group: "junit", Artifact: "junit", Version: "4.12", Scope: "test"},
		}})
	srv.AddArtifact(maventest.POM{Group: "org.example", Artifact: "util", Version: "2.1"})
	srv.AddArtifact(maventest.POM{Group: "junit", Artifact: "junit", Version: "4.12"})
	srv.AddDoc("org.example", "lib", "0.9")
	return srv
}

func TestResolveCommand(t *testing.T) {
	srv := repository(t)
	root := t.TempDir()
	out := filepath.Join(root, "deps.json")

	err := execute(t, srv, "resolve", "org.example:lib:1.0", "--root", root, "--format", "json", "-o", out)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"org.example:lib:1.0"`, `"org.example:util:2.1"`, `"excluded": true`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %s:\n%s", want, data)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "repoDir", "util-2.1.jar")); err != nil {
		t.Errorf("jar not downloaded into the project repository: %v", err)
	}
}

func TestResolveCommandYAML(t *testing.T) {
	srv := repository(t)
	root := t.TempDir()
	out := filepath.Join(root, "deps.yaml")

	if err := execute(t, srv, "resolve", "org.example:lib:1.0", "--root", root, "--format", "yaml", "-o", out); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.Contains(got, "roots:") || !strings.Contains(got, "- org.example:lib:1.0\n") {
		t.Errorf("unexpected roots:\n%s", got)
	}
	if strings.Contains(got, "coordinate: junit:junit:4.12") {
		t.Errorf("test-scope dependency listed as an artifact:\n%s", got)
	}
}

func TestResolveCommandErrors(t *testing.T) {
	srv := repository(t)
	root := t.TempDir()

	err := execute(t, srv, "resolve", "org.example:lib:1.0", "--root", root, "--format", "png")
	if got := ExitCode(err); got != ExitInvalidInput {
		t.Errorf("unknown format: exit %d (%v), want %d", got, err, ExitInvalidInput)
	}

	err = execute(t, srv, "resolve", "lib", "--root", root)
	if got := ExitCode(err); got != ExitInvalidInput {
		t.Errorf("bad coordinate: exit %d (%v), want %d", got, err, ExitInvalidInput)
	}

	err = execute(t, srv, "resolve", "org.example:missing:3.0.0", "--root", root)
	if got := ExitCode(err); got != ExitFetch {
		t.Errorf("missing artifact: exit %d (%v), want %d", got, err, ExitFetch)
	}
}

func TestExistsCommand(t *testing.T) {
	srv := repository(t)

	if err := execute(t, srv, "exists", "org.example:lib:1.0"); err != nil {
		t.Errorf("exists: %v", err)
	}
	err := execute(t, srv, "exists", "org.example:lib:5.0")
	if got := ExitCode(err); got != ExitFetch {
		t.Errorf("absent version: exit %d (%v), want %d", got, err, ExitFetch)
	}
	err = execute(t, srv, "exists", "org.example:lib")
	if got := ExitCode(err); got != ExitInvalidInput {
		t.Errorf("missing version: exit %d (%v), want %d", got, err, ExitInvalidInput)
	}
}

func TestVersionsCommand(t *testing.T) {
	if err := execute(t, repository(t), "versions", "org.example:lib"); err != nil {
		t.Errorf("versions: %v", err)
	}
}

func TestBuildCommandInvalidDescriptor(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "bldr.toml"), []byte("[core]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := execute(t, nil, "build", "--root", root)
	if got := ExitCode(err); got != ExitInvalidInput {
		t.Errorf("exit %d (%v), want %d", got, err, ExitInvalidInput)
	}
}

func TestBuildCommandMissingCore(t *testing.T) {
	err := execute(t, nil, "build", "--root", t.TempDir(), "--skip-native")
	if got := ExitCode(err); got != ExitMissingDir {
		t.Errorf("exit %d (%v), want %d", got, err, ExitMissingDir)
	}
}

func TestEpoch(t *testing.T) {
	c := New(os.Stderr, LogInfo)

	t.Setenv("SOURCE_DATE_EPOCH", "")
	if e, err := c.epoch(); err != nil || e != nil {
		t.Errorf("epoch() = %v, %v; want nil", e, err)
	}

	c.settings.Set(keyReproducible, true)
	if e, err := c.epoch(); err != nil || e == nil || !e.Equal(reproducibleEpoch) {
		t.Errorf("epoch() = %v, %v; want %v", e, err, reproducibleEpoch)
	}

	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	if e, err := c.epoch(); err != nil || e == nil || e.Unix() != 1700000000 {
		t.Errorf("epoch() = %v, %v; want 1700000000", e, err)
	}

	t.Setenv("SOURCE_DATE_EPOCH", "soon")
	if _, err := c.epoch(); ExitCode(err) != ExitInvalidInput {
		t.Errorf("epoch() error = %v, want invalid input", err)
	}
}
