package buildcfg

import "time"

// Archive configures one jar assembly.
//
// Roots are directories whose contents are archived relative to each root.
// Compiles are run before assembly and their class directories become
// additional roots, after Roots.
type Archive struct {
	Opts     Opts
	Jar      string
	Roots    []string
	Compiles []Compile

	// Epoch, when set, is the modification time of every entry.
	Epoch *time.Time
}

// With appends archiver options.
func (a Archive) With(opts ...string) Archive {
	a.Opts = a.Opts.With(opts...)
	return a
}

// To sets the output jar path.
func (a Archive) To(jar string) Archive {
	a.Jar = jar
	return a
}

// WithRoots appends root directories.
func (a Archive) WithRoots(dirs ...string) Archive {
	a.Roots = concat(a.Roots, dirs)
	return a
}

// Compile records a compile stage whose output is archived.
func (a Archive) Compile(c Compile) Archive {
	a.Compiles = concat(a.Compiles, []Compile{c})
	return a
}

// At fixes every entry's modification time to t.
func (a Archive) At(t time.Time) Archive {
	t = t.UTC()
	a.Epoch = &t
	return a
}

// BasedOn layers a on top of parent.
func (a Archive) BasedOn(parent Archive) Archive {
	return Archive{
		Opts:     concat(parent.Opts, a.Opts),
		Jar:      pick(a.Jar, parent.Jar),
		Roots:    concat(parent.Roots, a.Roots),
		Compiles: concat(parent.Compiles, a.Compiles),
		Epoch:    pick(a.Epoch, parent.Epoch),
	}
}

// AllRoots returns Roots followed by the class directory of each compile.
func (a Archive) AllRoots() []string {
	roots := concat(a.Roots, nil)
	for _, c := range a.Compiles {
		if c.ClassesDir != "" {
			roots = append(roots, c.ClassesDir)
		}
	}
	return roots
}
