// Package project describes the modules of a multi-module source tree and
// where their build outputs go.
//
// A [Descriptor] is read from a bldr.toml file at the project root. When
// no file exists, [Default] describes the standard layout: a core library,
// two native backends with a cmake build, a set of example programs, and
// optional extras whose sources are partly generated by header extraction.
//
// # File format
//
//	name = "hat"
//	variant = "1.0"
//	javac_opts = ["--source", "24", "--enable-preview"]
//	dependencies = ["org.testng:testng:7.1.0"]
//
//	[core]
//	name = "hat"
//
//	[[group]]
//	name = "backends"
//	prefix = "hat-backend"
//	modules = ["opencl", "ptx"]
//	cmake = { build_dir = "cmake-build-debug", opts = ["-DHAT_TARGET=${build}"] }
//
// Paths, options and flags may reference ${root}, ${build}, ${thirdparty},
// ${repo}, ${frameworks} and ${sdk_frameworks}.
package project

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bldr/pkg/artifact"
	"github.com/matzehuels/bldr/pkg/errors"
)

// DescriptorFile is the descriptor's file name at the project root.
const DescriptorFile = "bldr.toml"

// Default directory names, relative to the project root.
const (
	DefaultBuildDir      = "build"
	DefaultThirdPartyDir = "thirdparty"
	DefaultRepoDir       = "repoDir"
	DefaultExtractDir    = "jextracted-java"
	DefaultVariant       = "1.0"
)

// Descriptor is the parsed content of a bldr.toml file.
type Descriptor struct {
	Name    string `toml:"name"`
	Variant string `toml:"variant"`

	BuildDir      string `toml:"build_dir"`
	ThirdPartyDir string `toml:"thirdparty_dir"`
	RepoDir       string `toml:"repo_dir"`

	// ExtractDir holds generated sources, relative to BuildDir.
	ExtractDir string `toml:"extract_dir"`

	JavacOpts []string `toml:"javac_opts"`

	// Dependencies are "group:artifact[:version]" coordinates resolved
	// before compiling and put on every module's class path.
	Dependencies []string `toml:"dependencies"`

	Core   Module  `toml:"core"`
	Groups []Group `toml:"group"`
}

// Module is one source tree that compiles into one jar.
type Module struct {
	Name string `toml:"name"`

	// Dir is relative to the enclosing group directory (or the project
	// root for the core module). Empty means Name.
	Dir string `toml:"dir"`

	// Extracts generate sources this module compiles against.
	Extracts []Extract `toml:"extract"`
}

// Path returns the module directory inside parent.
func (m Module) Path(parent string) string {
	if m.Dir != "" {
		return filepath.Join(parent, m.Dir)
	}
	return filepath.Join(parent, m.Name)
}

// Group is a directory of sibling modules built concurrently.
type Group struct {
	Name string `toml:"name"`
	Dir  string `toml:"dir"` // empty means Name

	// Optional groups are skipped when their directory is absent.
	Optional bool `toml:"optional"`

	// Prefix is prepended to every jar name in the group.
	Prefix string `toml:"prefix"`

	// Modules are subdirectory names; absent ones are skipped.
	Modules []string `toml:"modules"`

	// Extras are modules with generated sources, built after Modules.
	Extras []Module `toml:"module"`

	CMake *CMake `toml:"cmake"`
}

// Path returns the group directory under root.
func (g Group) Path(root string) string {
	if g.Dir != "" {
		return filepath.Join(root, g.Dir)
	}
	return filepath.Join(root, g.Name)
}

// CMake is a native build run over the group directory after its jars.
type CMake struct {
	BuildDir string   `toml:"build_dir"` // relative to the project build dir
	Opts     []string `toml:"opts"`
}

// Extract is one header-extraction step.
type Extract struct {
	Package string `toml:"package"`

	// OS restricts the step to one GOOS. A module with a step for another
	// OS is skipped.
	OS string `toml:"os"`

	Libraries    []string `toml:"libraries"`
	Headers      []string `toml:"headers"`
	CompileFlags []string `toml:"compile_flags"`
}

// javaPackage matches a dotted Java package name.
var javaPackage = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// Dir returns the directory under root that holds the generated sources of
// the step's package, one path element per package segment.
func (x Extract) Dir(root string) string {
	return filepath.Join(append([]string{root}, strings.Split(x.Package, ".")...)...)
}

// Parse decodes a descriptor and fills in defaults. Unknown keys are an
// error so that typos do not silently drop settings.
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	md, err := toml.Decode(string(data), &d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "parse descriptor")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidDescriptor, "unknown key %q", undecoded[0].String())
	}
	d.setDefaults()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads the descriptor at path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "descriptor %s", path)
		}
		return nil, err
	}
	d, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return d, nil
}

// Find loads root/bldr.toml, or returns [Default] when the file does not exist.
func Find(root string) (*Descriptor, string, error) {
	path := filepath.Join(root, DescriptorFile)
	d, err := Load(path)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return d, path, nil
}

func (d *Descriptor) setDefaults() {
	if d.Variant == "" {
		d.Variant = DefaultVariant
	}
	if d.BuildDir == "" {
		d.BuildDir = DefaultBuildDir
	}
	if d.ThirdPartyDir == "" {
		d.ThirdPartyDir = DefaultThirdPartyDir
	}
	if d.RepoDir == "" {
		d.RepoDir = DefaultRepoDir
	}
	if d.ExtractDir == "" {
		d.ExtractDir = DefaultExtractDir
	}
	if d.Name == "" {
		d.Name = d.Core.Name
	}
}

// Validate checks names, coordinates and steps.
func (d *Descriptor) Validate() error {
	if d.Core.Name == "" {
		return errors.New(errors.ErrCodeInvalidDescriptor, "core module name is required")
	}
	if err := errors.ValidateCoordinatePart("core module", d.Core.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "core")
	}
	for _, dep := range d.Dependencies {
		if _, err := artifact.ParseCoordinate(dep); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "dependency %q", dep)
		}
	}

	groups := make(map[string]bool, len(d.Groups))
	for _, g := range d.Groups {
		if g.Name == "" {
			return errors.New(errors.ErrCodeInvalidDescriptor, "group without name")
		}
		if groups[g.Name] {
			return errors.New(errors.ErrCodeInvalidDescriptor, "duplicate group %q", g.Name)
		}
		groups[g.Name] = true
		if g.Dir != "" {
			if err := errors.ValidatePath(g.Dir); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "group %s", g.Name)
			}
		}

		modules := make(map[string]bool)
		for _, m := range g.Modules {
			if err := checkModule(g.Name, m, modules); err != nil {
				return err
			}
		}
		for _, m := range g.Extras {
			if err := checkModule(g.Name, m.Name, modules); err != nil {
				return err
			}
			if m.Dir != "" {
				if err := errors.ValidatePath(m.Dir); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "%s/%s", g.Name, m.Name)
				}
			}
			for _, x := range m.Extracts {
				if x.Package == "" {
					return errors.New(errors.ErrCodeInvalidDescriptor, "%s/%s: extract without package", g.Name, m.Name)
				}
				if !javaPackage.MatchString(x.Package) {
					return errors.New(errors.ErrCodeInvalidDescriptor, "%s/%s: invalid extract package %q", g.Name, m.Name, x.Package)
				}
			}
		}
		if g.CMake != nil && g.CMake.BuildDir == "" {
			return errors.New(errors.ErrCodeInvalidDescriptor, "%s: cmake build_dir is required", g.Name)
		}
	}
	return nil
}

func checkModule(group, name string, seen map[string]bool) error {
	if err := errors.ValidateCoordinatePart("module", name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "group %s", group)
	}
	if seen[name] {
		return errors.New(errors.ErrCodeInvalidDescriptor, "group %s: duplicate module %q", group, name)
	}
	seen[name] = true
	return nil
}

// Coordinates parses Dependencies. Call after [Descriptor.Validate].
func (d *Descriptor) Coordinates() []artifact.Coordinate {
	out := make([]artifact.Coordinate, 0, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		if c, err := artifact.ParseCoordinate(dep); err == nil {
			out = append(out, c)
		}
	}
	return out
}
