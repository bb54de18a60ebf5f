package project

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/bldr/pkg/platform"
)

// Default describes the standard project layout.
func Default() *Descriptor {
	d := &Descriptor{
		Name: "hat",
		JavacOpts: []string{
			"--source", "24",
			"--enable-preview",
			"--add-exports=java.base/jdk.internal=ALL-UNNAMED",
			"--add-exports=java.base/jdk.internal.vm.annotation=ALL-UNNAMED",
		},
		Core: Module{Name: "hat"},
		Groups: []Group{
			{
				Name:    "backends",
				Prefix:  "hat-backend",
				Modules: []string{"opencl", "ptx"},
				CMake: &CMake{
					BuildDir: "cmake-build-debug",
					Opts:     []string{"-DHAT_TARGET=${build}"},
				},
			},
			{
				Name:    "examples",
				Prefix:  "hat-example",
				Modules: []string{"blackscholes", "mandel", "squares", "heal", "violajones", "life"},
			},
			{
				Name:     "hattricks",
				Optional: true,
				Prefix:   "hat-example",
				Modules:  []string{"chess", "view"},
				Extras: []Module{{
					Name: "nbody",
					Extracts: []Extract{
						{
							Package:      "opencl",
							OS:           platform.Darwin,
							CompileFlags: []string{"-F${sdk_frameworks}"},
							Libraries:    []string{"${frameworks}/OpenCL.framework/OpenCL"},
							Headers:      []string{"${sdk_frameworks}/OpenCL.framework/Headers/opencl.h"},
						},
						{
							Package:      "opengl",
							OS:           platform.Darwin,
							CompileFlags: []string{"-F${sdk_frameworks}"},
							Libraries: []string{
								"${frameworks}/GLUT.framework/GLUT",
								"${frameworks}/OpenGL.framework/OpenGL",
							},
							Headers: []string{"${sdk_frameworks}/GLUT.framework/Headers/glut.h"},
						},
					},
				}},
			},
		},
	}
	d.setDefaults()
	return d
}

// Layout holds the absolute directories of one project checkout.
type Layout struct {
	Root       string
	Build      string
	ThirdParty string
	Repo       string
	Extract    string
}

// Layout resolves the descriptor's directories against root.
func (d *Descriptor) Layout(root string) Layout {
	build := under(root, d.BuildDir)
	return Layout{
		Root:       root,
		Build:      build,
		ThirdParty: under(root, d.ThirdPartyDir),
		Repo:       under(root, d.RepoDir),
		Extract:    under(build, d.ExtractDir),
	}
}

func under(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Ensure creates the build, third-party and repository directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Build, l.ThirdParty, l.Repo} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Target returns the output path of a module's jar, or of anything else
// named after it with a different suffix: {prefix-}{name}-{variant}{suffix}.
func (l Layout) Target(prefix, name, variant, suffix string) string {
	base := name + "-" + variant + suffix
	if prefix != "" {
		base = prefix + "-" + base
	}
	return filepath.Join(l.Build, base)
}

// Expand substitutes ${name} references to layout directories and the
// macOS framework locations in s. Other references are left as written.
func (l Layout) Expand(s string) string {
	return os.Expand(s, func(name string) string {
		switch name {
		case "root":
			return l.Root
		case "build":
			return l.Build
		case "thirdparty":
			return l.ThirdParty
		case "repo":
			return l.Repo
		case "frameworks":
			return platform.MacFrameworks
		case "sdk_frameworks":
			return platform.MacSDKFrameworks
		}
		return "${" + name + "}"
	})
}

// ExpandAll applies [Layout.Expand] to each element.
func (l Layout) ExpandAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = l.Expand(s)
	}
	return out
}

// Supported reports whether every extract step of m can run on goos.
func (m Module) Supported(goos string) bool {
	for _, x := range m.Extracts {
		if x.OS != "" && x.OS != goos {
			return false
		}
	}
	return true
}
