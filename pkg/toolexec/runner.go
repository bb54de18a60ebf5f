// Package toolexec runs external build tools.
//
// Every invocation blocks until the process exits. A non-zero exit status
// is an error with code [errors.ErrCodeExternalTool]; callers never have to
// inspect the status themselves. There is no timeout; cancel the context to
// stop a process.
package toolexec

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bldr/pkg/buildcfg"
	"github.com/matzehuels/bldr/pkg/errors"
)

// Invocation is one process to run.
type Invocation struct {
	Executable string
	Args       []string
	Dir        string

	// InheritIO connects the process to the runner's streams. When false,
	// stdout and stderr are captured into [Result.Output].
	InheritIO bool

	// Env is appended to the current environment.
	Env []string
}

// String renders the command line for logs.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Executable}, inv.Args...), " ")
}

// Result describes a finished process.
type Result struct {
	ExitCode int
	Output   []byte
	Duration time.Duration
}

// Runner spawns processes.
type Runner struct {
	Logger *log.Logger

	// CMakePath is the build-generator executable.
	CMakePath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner wired to the process's standard streams.
// If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Logger:    logger,
		CMakePath: "cmake",
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Run executes inv and waits for it.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var out bytes.Buffer
	if inv.InheritIO {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = r.Stdin, r.Stdout, r.Stderr
	} else {
		cmd.Stdout, cmd.Stderr = &out, &out
	}

	r.Logger.Debug("exec", "cmd", inv.String(), "dir", inv.Dir)
	start := time.Now()
	err := cmd.Run()
	res := Result{Output: out.Bytes(), Duration: time.Since(start)}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	tool := filepath.Base(inv.Executable)
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, errors.Wrap(errors.ErrCodeExternalTool,
			&errors.ExitError{Tool: tool, ExitCode: res.ExitCode}, "%s", inv)
	}
	return res, errors.Wrap(errors.ErrCodeExternalTool, err, "start %s", tool)
}

// CMake runs one build-generator step. The build directory is created
// before a configure step.
func (r *Runner) CMake(ctx context.Context, cfg buildcfg.CMake) error {
	if cfg.BuildDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cmake: build directory not set")
	}
	if !cfg.Build {
		if err := os.MkdirAll(cfg.BuildDir, 0o755); err != nil {
			return err
		}
	}
	_, err := r.Run(ctx, Invocation{Executable: r.CMakePath, Args: cfg.Args(), InheritIO: true})
	return err
}

// FlagsFile is the side-file of extra compile flags read by the
// header-extraction tool from its working directory.
const FlagsFile = "compiler_flags.txt"

// Extract runs the header-extraction tool in cfg.Dir. The flags side-file
// exists only for the duration of the call.
func (r *Runner) Extract(ctx context.Context, cfg buildcfg.Extract) error {
	if cfg.Dir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "extract: working directory not set")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return err
	}

	flags := filepath.Join(cfg.Dir, FlagsFile)
	if err := os.WriteFile(flags, []byte(strings.Join(cfg.CompileFlags, " ")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FlagsFile, err)
	}
	defer os.Remove(flags)

	if cfg.Output != "" {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return err
		}
	}
	_, err := r.Run(ctx, Invocation{
		Executable: cfg.Executable(),
		Args:       cfg.Args(),
		Dir:        cfg.Dir,
		InheritIO:  true,
	})
	return err
}
