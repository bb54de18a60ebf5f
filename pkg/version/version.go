// Package version parses and renders partially specified artifact versions.
//
// A [Spec] holds up to three numeric components and a free-form modifier.
// Components that were not given are [Unspecified]; rendering stops at the
// first unspecified component, so "1.2" stays "1.2" rather than "1.2.0".
//
// Partial versions drive the download fallback ladder: when a fetch for a
// partial version fails, [Spec.Fallback] proposes the next concrete version
// to try.
package version

import (
	"cmp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/bldr/pkg/errors"
)

// Unspecified marks a numeric component that was not given.
const Unspecified = -1

// Spec is an immutable, possibly partial, version.
//
// The zero value is "0.0.0"; use [Parse] or [None] for an unspecified version.
type Spec struct {
	Major    int
	Minor    int
	Patch    int
	Modifier string // text after the patch component, verbatim (e.g. "-beta")
}

// None returns a version with every component unspecified.
func None() Spec { return Spec{Major: Unspecified, Minor: Unspecified, Patch: Unspecified} }

// New returns a major-only version.
func New(major int) Spec { return Spec{Major: major, Minor: Unspecified, Patch: Unspecified} }

// New2 returns a major.minor version.
func New2(major, minor int) Spec { return Spec{Major: major, Minor: minor, Patch: Unspecified} }

// New3 returns a major.minor.patch version.
func New3(major, minor, patch int) Spec { return Spec{Major: major, Minor: minor, Patch: patch} }

// Parse reads a version string.
//
// Each numeric component is an optional "." followed by one or more digits.
// After the patch component the rest of the input is kept as the modifier.
// A remainder that does not continue the numeric sequence ends parsing and
// leaves the following components unspecified. The empty string yields [None].
//
// Parse fails with [errors.ErrCodeMalformedVersion] only when the first
// component is not a digit run.
func Parse(s string) (Spec, error) {
	v := None()
	if s == "" {
		return v, nil
	}

	major, rest, ok := intPrefix(s)
	if !ok {
		return v, errors.New(errors.ErrCodeMalformedVersion, "invalid version spec %q", s)
	}
	v.Major = major

	minor, rest, ok := intPrefix(rest)
	if !ok {
		return v, nil
	}
	v.Minor = minor

	patch, rest, ok := intPrefix(rest)
	if !ok {
		return v, nil
	}
	v.Patch = patch
	v.Modifier = separated(rest)
	return v, nil
}

// MustParse is like [Parse] but panics on error. Intended for constants and tests.
func MustParse(s string) Spec {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// intPrefix consumes an optional "." and a maximal run of digits.
func intPrefix(s string) (int, string, bool) {
	body := strings.TrimPrefix(s, ".")
	end := 0
	for end < len(body) && body[end] >= '0' && body[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(body[:end])
	if err != nil {
		return 0, s, false
	}
	return n, body[end:], true
}

// IsSpecified reports whether at least the major component is set.
func (v Spec) IsSpecified() bool { return v.Major != Unspecified }

// String renders the version, truncating at the first unspecified component.
// A fully unspecified version renders as "1".
func (v Spec) String() string {
	if v.Major == Unspecified {
		return "1"
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.Major))
	if v.Minor == Unspecified {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(v.Minor))
	if v.Patch == Unspecified {
		return b.String()
	}
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(v.Patch))
	b.WriteString(separated(v.Modifier))
	return b.String()
}

// separated returns mod with a leading "-" when it starts with a letter or
// digit. Modifiers that already start with a separator (".Final", "_rc1",
// "-beta") are returned as is.
func separated(mod string) string {
	if mod == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(mod)
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return "-" + mod
	}
	return mod
}

// Fallback returns the next version to try after a failed fetch.
// An unspecified major falls back to 1, an unspecified minor to major.0.
// Fully specified versions have no fallback.
func (v Spec) Fallback() (Spec, bool) {
	switch {
	case v.Major == Unspecified:
		return New(1), true
	case v.Minor == Unspecified:
		return New2(v.Major, 0), true
	default:
		return v, false
	}
}

// Compare orders versions. Unspecified components sort below concrete ones,
// numeric components compare numerically, and a release (no modifier) sorts
// above any modifier. Modifiers compare lexically.
func (v Spec) Compare(o Spec) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Patch, o.Patch); c != 0 {
		return c
	}
	a, b := strings.TrimPrefix(v.Modifier, "-"), strings.TrimPrefix(o.Modifier, "-")
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// Less reports whether v sorts before o.
func (v Spec) Less(o Spec) bool { return v.Compare(o) < 0 }
