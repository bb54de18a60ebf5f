package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameArchTuple(t *testing.T) {
	tests := []struct {
		os, arch, want string
	}{
		{Darwin, "arm64", "macos-aarch64"},
		{Linux, "amd64", "linux-x64"},
		{Linux, "arm64", "linux-aarch64"},
		{"windows", "386", "windows-386"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Env{OS: tt.os, Arch: tt.arch}.NameArchTuple())
	}
}

func TestFramework(t *testing.T) {
	env := Env{OS: Darwin}
	assert.True(t, env.IsMac())
	assert.False(t, env.IsLinux())
	assert.Equal(t, "/System/Library/Frameworks/OpenCL.framework/OpenCL", env.FrameworkLibrary("OpenCL"))
	assert.Equal(t, MacSDKFrameworks+"/OpenGL.framework/Headers/gl.h", env.FrameworkHeader("OpenGL", "gl.h"))
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "jextract")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes"), []byte("x"), 0o644))

	env := Env{Path: []string{"", filepath.Join(dir, "missing"), dir}}

	got, ok := env.LookPath("jextract")
	require.True(t, ok)
	assert.Equal(t, exe, got)

	_, ok = env.LookPath("notes")
	assert.False(t, ok, "non-executable files are not found")
}

func TestJava(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0o755))
	javac := filepath.Join(home, "bin", "javac")
	require.NoError(t, os.WriteFile(javac, nil, 0o755))

	assert.Equal(t, javac, Env{JavaHome: home}.Java("javac"))
	assert.Equal(t, "javac", Env{}.Java("javac"))
}

func TestExpand(t *testing.T) {
	env := Env{Home: "/home/dev"}
	assert.Equal(t, "/home/dev/.m2", env.Expand("~/.m2"))
	assert.Equal(t, "/abs", env.Expand("/abs"))
}

func TestDetect(t *testing.T) {
	env, err := Detect()
	require.NoError(t, err)
	assert.NotEmpty(t, env.OS)
	assert.NotEmpty(t, env.Cwd)
}
