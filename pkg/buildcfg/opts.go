package buildcfg

// Opts is an ordered option sequence.
type Opts []string

// With returns a copy of o with opts appended.
func (o Opts) With(opts ...string) Opts { return concat(o, opts) }

// Strings returns the options as a fresh slice.
func (o Opts) Strings() []string { return concat(o, nil) }

// concat returns parent followed by child in a new backing array.
func concat[T any](parent, child []T) []T {
	if len(parent)+len(child) == 0 {
		return nil
	}
	out := make([]T, 0, len(parent)+len(child))
	out = append(out, parent...)
	return append(out, child...)
}

// pick returns child unless it is the zero value.
func pick[T comparable](child, parent T) T {
	var zero T
	if child != zero {
		return child
	}
	return parent
}
