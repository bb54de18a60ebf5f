package buildcfg

import "path/filepath"

// Extract configures one header-extraction invocation.
type Extract struct {
	Opts Opts

	// Home is the tool installation; the executable is Home/bin/jextract.
	Home string
	// Dir is the working directory; the flags side-file is written there.
	Dir string

	Output        string
	TargetPackage string
	Libraries     []string
	Headers       []string
	CompileFlags  []string
}

// With appends tool options.
func (e Extract) With(opts ...string) Extract {
	e.Opts = e.Opts.With(opts...)
	return e
}

// Package sets the target package and output directory.
func (e Extract) Package(pkg, output string) Extract {
	e.TargetPackage = pkg
	e.Output = output
	return e
}

// WithLibraries appends libraries to bind.
func (e Extract) WithLibraries(libs ...string) Extract {
	e.Libraries = concat(e.Libraries, libs)
	return e
}

// WithHeaders appends header files to extract.
func (e Extract) WithHeaders(headers ...string) Extract {
	e.Headers = concat(e.Headers, headers)
	return e
}

// WithCompileFlags appends flags for the side-file.
func (e Extract) WithCompileFlags(flags ...string) Extract {
	e.CompileFlags = concat(e.CompileFlags, flags)
	return e
}

// BasedOn layers e on top of parent.
func (e Extract) BasedOn(parent Extract) Extract {
	return Extract{
		Opts:          concat(parent.Opts, e.Opts),
		Home:          pick(e.Home, parent.Home),
		Dir:           pick(e.Dir, parent.Dir),
		Output:        pick(e.Output, parent.Output),
		TargetPackage: pick(e.TargetPackage, parent.TargetPackage),
		Libraries:     concat(parent.Libraries, e.Libraries),
		Headers:       concat(parent.Headers, e.Headers),
		CompileFlags:  concat(parent.CompileFlags, e.CompileFlags),
	}
}

// Executable returns the tool path, or "jextract" when Home is unset.
func (e Extract) Executable() string {
	if e.Home == "" {
		return "jextract"
	}
	return filepath.Join(e.Home, "bin", "jextract")
}

// Args returns "--target-package P --output O --library :L ... opts... headers...".
func (e Extract) Args() []string {
	var args []string
	if e.TargetPackage != "" {
		args = append(args, "--target-package", e.TargetPackage)
	}
	if e.Output != "" {
		args = append(args, "--output", e.Output)
	}
	for _, lib := range e.Libraries {
		args = append(args, "--library", ":"+lib)
	}
	args = append(args, e.Opts...)
	return append(args, e.Headers...)
}
