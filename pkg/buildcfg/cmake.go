package buildcfg

// CMake configures one build-generator invocation, either the configure
// step or, when Build is set, the build step.
type CMake struct {
	Opts      Opts
	SourceDir string
	BuildDir  string
	Build     bool
}

// With appends generator options.
func (c CMake) With(opts ...string) CMake {
	c.Opts = c.Opts.With(opts...)
	return c
}

// Source sets the source directory.
func (c CMake) Source(dir string) CMake {
	c.SourceDir = dir
	return c
}

// In sets the build directory.
func (c CMake) In(dir string) CMake {
	c.BuildDir = dir
	return c
}

// BuildStep returns the build step for the same directories. Options are
// not carried over; configure options do not apply to --build.
func (c CMake) BuildStep() CMake {
	return CMake{SourceDir: c.SourceDir, BuildDir: c.BuildDir, Build: true}
}

// BasedOn layers c on top of parent.
func (c CMake) BasedOn(parent CMake) CMake {
	return CMake{
		Opts:      concat(parent.Opts, c.Opts),
		SourceDir: pick(c.SourceDir, parent.SourceDir),
		BuildDir:  pick(c.BuildDir, parent.BuildDir),
		Build:     c.Build || parent.Build,
	}
}

// Args returns "-S src -B build opts..." for configure and
// "--build build opts..." for the build step.
func (c CMake) Args() []string {
	var args []string
	if c.Build {
		args = []string{"--build", c.BuildDir}
	} else {
		args = []string{"-S", c.SourceDir, "-B", c.BuildDir}
	}
	return append(args, c.Opts...)
}
