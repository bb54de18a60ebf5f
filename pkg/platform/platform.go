// Package platform describes the host a build runs on.
//
// An [Env] is detected once at startup and passed down explicitly; build
// code never consults runtime or environment globals itself, so tests can
// describe any host.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Operating system names as reported by runtime.GOOS.
const (
	Darwin = "darwin"
	Linux  = "linux"
)

// MacFrameworks is where system framework binaries live on macOS.
const MacFrameworks = "/System/Library/Frameworks"

// MacSDKFrameworks is where framework headers live in the Xcode SDK.
const MacSDKFrameworks = "/Applications/Xcode.app/Contents/Developer/Platforms/MacOSX.platform/Developer/SDKs/MacOSX.sdk/System/Library/Frameworks"

// Env holds the host facts build steps depend on.
type Env struct {
	OS       string
	Arch     string
	Home     string
	Cwd      string
	JavaHome string
	Path     []string
}

// Detect reads the current host.
func Detect() (Env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Env{}, err
	}
	home, _ := os.UserHomeDir()
	return Env{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Home:     home,
		Cwd:      cwd,
		JavaHome: os.Getenv("JAVA_HOME"),
		Path:     filepath.SplitList(os.Getenv("PATH")),
	}, nil
}

// IsMac reports whether the host is macOS.
func (e Env) IsMac() bool { return e.OS == Darwin }

// IsLinux reports whether the host is Linux.
func (e Env) IsLinux() bool { return e.OS == Linux }

// NameArchTuple returns the "os-arch" name used by JDK tool distributions,
// such as "macos-aarch64" or "linux-x64".
func (e Env) NameArchTuple() string {
	name := e.OS
	if e.IsMac() {
		name = "macos"
	}
	arch := e.Arch
	switch arch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "aarch64"
	}
	return name + "-" + arch
}

// Framework returns the directory of a macOS system framework.
func (e Env) Framework(name string) string {
	return filepath.Join(MacFrameworks, name+".framework")
}

// FrameworkLibrary returns the library binary inside a macOS framework.
func (e Env) FrameworkLibrary(name string) string {
	return filepath.Join(e.Framework(name), name)
}

// FrameworkHeader returns a header of a macOS framework in the SDK.
func (e Env) FrameworkHeader(name, header string) string {
	return filepath.Join(MacSDKFrameworks, name+".framework", "Headers", header)
}

// LookPath returns the first executable named name on e.Path.
func (e Env) LookPath(name string) (string, bool) {
	for _, dir := range e.Path {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		return filepath.Clean(p), true
	}
	return "", false
}

// Java returns the path of a JDK tool, preferring JavaHome/bin over Path.
func (e Env) Java(tool string) string {
	if e.JavaHome != "" {
		p := filepath.Join(e.JavaHome, "bin", tool)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p, ok := e.LookPath(tool); ok {
		return p
	}
	return tool
}

// Expand replaces a leading "~/" with the home directory.
func (e Env) Expand(path string) string {
	if e.Home != "" && strings.HasPrefix(path, "~/") {
		return filepath.Join(e.Home, path[2:])
	}
	return path
}
