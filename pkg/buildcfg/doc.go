// Package buildcfg describes compiler, archiver and external-tool
// invocations as layered configuration values.
//
// # Layering
//
// Every configuration is an immutable value. Builder methods return a new
// value and never share backing arrays with the receiver, so a base layer
// can be extended in several directions:
//
//	base := buildcfg.Compile{}.With("--enable-preview", "--source=24")
//	core := buildcfg.Compile{}.WithSourcePath("hat/core/src/main/java").BasedOn(base)
//
// [Compile.BasedOn] and its siblings put the parent first: options and list
// fields are the parent's followed by the receiver's, duplicates retained
// verbatim. Scalar fields take the receiver's value when set and the
// parent's otherwise. Tools that let the last occurrence of a flag win
// therefore see child settings shadow base settings.
//
// # Conditional layers
//
// [When] and [Either] apply a builder step only under a condition, which
// keeps platform-specific layers inline:
//
//	cfg = buildcfg.When(cfg, env.IsMac(), func(c buildcfg.CMake) buildcfg.CMake {
//	    return c.With("-DCMAKE_OSX_ARCHITECTURES=arm64")
//	})
package buildcfg

// When returns fn(v) if cond holds and v otherwise.
func When[T any](v T, cond bool, fn func(T) T) T {
	if cond {
		return fn(v)
	}
	return v
}

// Either returns then(v) if cond holds and otherwise(v) if not.
func Either[T any](v T, cond bool, then, otherwise func(T) T) T {
	if cond {
		return then(v)
	}
	return otherwise(v)
}
