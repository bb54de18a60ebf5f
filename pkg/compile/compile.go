// Package compile runs the compiler over a source tree.
//
// Every compilation is a clean rebuild: the output directory is removed and
// recreated first. Diagnostics are collected into the returned [Unit];
// error diagnostics do not stop the stage, but [Unit.Err] reports them so
// the caller can fail the module.
package compile

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bldr/pkg/buildcfg"
	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/toolexec"
)

// SourceSuffix selects the files compiled from each source root.
const SourceSuffix = ".java"

// Compiler turns sources into class files. args carry the layered options
// and paths from [buildcfg.Compile.Args].
type Compiler interface {
	Compile(ctx context.Context, args, sources []string) ([]byte, error)
}

// Javac runs an external javac.
type Javac struct {
	Runner *toolexec.Runner
	Path   string
}

// Compile passes sources through an argument file so long source lists do
// not hit command-line limits.
func (j Javac) Compile(ctx context.Context, args, sources []string) ([]byte, error) {
	argfile, err := os.CreateTemp("", "bldr-sources-*.txt")
	if err != nil {
		return nil, err
	}
	defer os.Remove(argfile.Name())
	if _, err := argfile.WriteString(strings.Join(quoteAll(sources), "\n") + "\n"); err != nil {
		argfile.Close()
		return nil, err
	}
	if err := argfile.Close(); err != nil {
		return nil, err
	}

	exe := j.Path
	if exe == "" {
		exe = "javac"
	}
	res, err := j.Runner.Run(ctx, toolexec.Invocation{
		Executable: exe,
		Args:       append(slices.Clone(args), "@"+argfile.Name()),
	})
	return res.Output, err
}

func quoteAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if strings.ContainsAny(p, " \t\"'") {
			p = `"` + strings.ReplaceAll(p, `\`, `\\`) + `"`
		}
		out[i] = p
	}
	return out
}

// Unit is the result of one compilation.
type Unit struct {
	OutputDir   string
	Sources     []string
	Diagnostics []Diagnostic
}

// Errors counts error-severity diagnostics.
func (u *Unit) Errors() int { return u.count(SeverityError) }

// Warnings counts warning-severity diagnostics.
func (u *Unit) Warnings() int { return u.count(SeverityWarning) }

func (u *Unit) count(s Severity) int {
	n := 0
	for _, d := range u.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// Err returns an [errors.ErrCodeCompilation] error if any error
// diagnostic was reported.
func (u *Unit) Err() error {
	n := u.Errors()
	if n == 0 {
		return nil
	}
	for _, d := range u.Diagnostics {
		if d.Severity == SeverityError {
			return errors.New(errors.ErrCodeCompilation, "%d error(s), first: %s", n, d)
		}
	}
	return nil
}

// Stage compiles source trees.
type Stage struct {
	Compiler Compiler
	Logger   *log.Logger
}

// NewStage creates a stage. If logger is nil, log.Default() is used.
func NewStage(c Compiler, logger *log.Logger) *Stage {
	if logger == nil {
		logger = log.Default()
	}
	return &Stage{Compiler: c, Logger: logger}
}

// Compile compiles every source under cfg.SourcePath into cfg.ClassesDir,
// or into a fresh temporary directory when none is set.
//
// A missing source root fails with [errors.ErrCodeMissingDirectory]. A
// compiler that cannot be started fails with [errors.ErrCodeExternalTool].
// Compiler-reported problems are returned in the Unit, not as an error.
func (s *Stage) Compile(ctx context.Context, cfg buildcfg.Compile) (*Unit, error) {
	sources, err := Sources(cfg.SourcePath)
	if err != nil {
		return nil, err
	}

	dir, err := cleanDir(cfg.ClassesDir)
	if err != nil {
		return nil, err
	}
	unit := &Unit{OutputDir: dir, Sources: sources}
	if len(sources) == 0 {
		s.Logger.Warn("no sources", "path", buildcfg.JoinPath(cfg.SourcePath))
		return unit, nil
	}

	s.Logger.Debug("compiling", "sources", len(sources), "out", dir)
	out, runErr := s.Compiler.Compile(ctx, cfg.InDir(dir).Args(), sources)
	unit.Diagnostics = ParseDiagnostics(out)

	if runErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *errors.ExitError
		if !stderrors.As(runErr, &exitErr) {
			return nil, runErr
		}
		if unit.Errors() == 0 {
			unit.Diagnostics = append(unit.Diagnostics, Diagnostic{Severity: SeverityError, Message: exitErr.Error()})
		}
	}

	for _, d := range unit.Diagnostics {
		switch d.Severity {
		case SeverityError:
			s.Logger.Error(d.Message, "file", d.File, "line", d.Line)
		case SeverityWarning:
			s.Logger.Warn(d.Message, "file", d.File, "line", d.Line)
		}
	}
	return unit, nil
}

func cleanDir(dir string) (string, error) {
	if dir == "" {
		return os.MkdirTemp("", "bldr-classes-")
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	return dir, os.MkdirAll(dir, 0o755)
}

// Sources returns every source file under roots, sorted.
func Sources(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return nil, errors.New(errors.ErrCodeMissingDirectory, "source directory %s does not exist", root)
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, SourceSuffix) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
