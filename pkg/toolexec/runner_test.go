package toolexec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bldr/pkg/buildcfg"
	"github.com/matzehuels/bldr/pkg/errors"
)

func testRunner() (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	r := NewRunner(log.NewWithOptions(&out, log.Options{Level: log.FatalLevel}))
	r.Stdin = strings.NewReader("")
	r.Stdout = &out
	r.Stderr = &out
	return r, &out
}

// script writes an executable shell script and returns its path.
func script(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestRunCaptured(t *testing.T) {
	r, _ := testRunner()
	res, err := r.Run(context.Background(), Invocation{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo hello; echo oops >&2"},
		Env:        []string{"BLDR_TEST=1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, string(res.Output), "hello")
	assert.Contains(t, string(res.Output), "oops")
}

func TestRunInheritIO(t *testing.T) {
	r, out := testRunner()
	res, err := r.Run(context.Background(), Invocation{
		Executable: "/bin/sh",
		Args:       []string{"-c", "echo $BLDR_TEST"},
		Env:        []string{"BLDR_TEST=inherited"},
		InheritIO:  true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Contains(t, out.String(), "inherited")
}

func TestRunNonZeroExit(t *testing.T) {
	r, _ := testRunner()
	res, err := r.Run(context.Background(), Invocation{Executable: "/bin/sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, errors.Is(err, errors.ErrCodeExternalTool))
	assert.Contains(t, err.Error(), "sh exited with status 3")
}

func TestRunMissingExecutable(t *testing.T) {
	r, _ := testRunner()
	_, err := r.Run(context.Background(), Invocation{Executable: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeExternalTool))
}

func TestRunCanceled(t *testing.T) {
	r, _ := testRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, Invocation{Executable: "/bin/sh", Args: []string{"-c", "sleep 5"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCMake(t *testing.T) {
	dir := t.TempDir()
	calls := filepath.Join(dir, "calls")
	r, _ := testRunner()
	r.CMakePath = script(t, filepath.Join(dir, "bin"), "cmake", `echo "$@" >> `+calls)

	cfg := buildcfg.CMake{}.Source(filepath.Join(dir, "src")).In(filepath.Join(dir, "build")).With("-DX=1")
	require.NoError(t, r.CMake(context.Background(), cfg))
	require.NoError(t, r.CMake(context.Background(), cfg.BuildStep()))

	assert.DirExists(t, filepath.Join(dir, "build"))
	data, err := os.ReadFile(calls)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-S "+dir+"/src -B "+dir+"/build -DX=1", lines[0])
	assert.Equal(t, "--build "+dir+"/build", lines[1])
}

func TestCMakeFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	r, _ := testRunner()
	r.CMakePath = script(t, dir, "cmake", "exit 1")

	err := r.CMake(context.Background(), buildcfg.CMake{}.Source(dir).In(filepath.Join(dir, "build")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeExternalTool))
}

func TestExtractFlagsFile(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "jextract-22")
	script(t, filepath.Join(home, "bin"), "jextract", `cp `+FlagsFile+` seen_flags; echo "$@" > seen_args`)

	work := filepath.Join(dir, "work")
	cfg := buildcfg.Extract{Home: home, Dir: work}.
		Package("opencl", filepath.Join(work, "out")).
		WithLibraries("/usr/lib/libOpenCL.so").
		WithHeaders("opencl.h").
		WithCompileFlags("-I/usr/include")

	r, _ := testRunner()
	require.NoError(t, r.Extract(context.Background(), cfg))

	flags, err := os.ReadFile(filepath.Join(work, "seen_flags"))
	require.NoError(t, err)
	assert.Equal(t, "-I/usr/include\n", string(flags))

	args, err := os.ReadFile(filepath.Join(work, "seen_args"))
	require.NoError(t, err)
	assert.Equal(t, "--target-package opencl --output "+work+"/out --library :/usr/lib/libOpenCL.so opencl.h\n", string(args))

	assert.NoFileExists(t, filepath.Join(work, FlagsFile))
	assert.DirExists(t, filepath.Join(work, "out"))
}

func TestExtractFailureStillRemovesFlags(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "jx")
	script(t, filepath.Join(home, "bin"), "jextract", "exit 2")

	work := filepath.Join(dir, "work")
	r, _ := testRunner()
	err := r.Extract(context.Background(), buildcfg.Extract{Home: home, Dir: work})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeExternalTool))
	assert.NoFileExists(t, filepath.Join(work, FlagsFile))
}
