package buildcfg

import (
	"os"
	"strings"
)

// Compile configures one compiler invocation.
type Compile struct {
	Opts       Opts
	ClassesDir string
	SourcePath []string
	ClassPath  []string
}

// With appends compiler options.
func (c Compile) With(opts ...string) Compile {
	c.Opts = c.Opts.With(opts...)
	return c
}

// InDir sets the output directory for compiled classes.
func (c Compile) InDir(dir string) Compile {
	c.ClassesDir = dir
	return c
}

// WithSourcePath appends source roots.
func (c Compile) WithSourcePath(dirs ...string) Compile {
	c.SourcePath = concat(c.SourcePath, dirs)
	return c
}

// WithClassPath appends class path entries.
func (c Compile) WithClassPath(paths ...string) Compile {
	c.ClassPath = concat(c.ClassPath, paths)
	return c
}

// BasedOn layers c on top of parent.
func (c Compile) BasedOn(parent Compile) Compile {
	return Compile{
		Opts:       concat(parent.Opts, c.Opts),
		ClassesDir: pick(c.ClassesDir, parent.ClassesDir),
		SourcePath: concat(parent.SourcePath, c.SourcePath),
		ClassPath:  concat(parent.ClassPath, c.ClassPath),
	}
}

// Args returns the compiler arguments without source files: the layered
// options followed by the output directory and path settings.
func (c Compile) Args() []string {
	args := c.Opts.Strings()
	if c.ClassesDir != "" {
		args = append(args, "-d", c.ClassesDir)
	}
	if len(c.SourcePath) > 0 {
		args = append(args, "--source-path", JoinPath(c.SourcePath))
	}
	if len(c.ClassPath) > 0 {
		args = append(args, "--class-path", JoinPath(c.ClassPath))
	}
	return args
}

// PathSeparator separates class and source path entries: ":" on Unix and
// ";" on Windows.
const PathSeparator = string(os.PathListSeparator)

// JoinPath joins path entries with [PathSeparator].
func JoinPath(paths []string) string { return strings.Join(paths, PathSeparator) }
