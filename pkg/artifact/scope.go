package artifact

import "strings"

// Scope is the declared usage class of a dependency edge.
type Scope int

const (
	ScopeCompile Scope = iota
	ScopeTest
	ScopeProvided
	ScopeRuntime
	ScopeSystem
)

var scopeNames = [...]string{
	ScopeCompile:  "compile",
	ScopeTest:     "test",
	ScopeProvided: "provided",
	ScopeRuntime:  "runtime",
	ScopeSystem:   "system",
}

// ParseScope reads a scope name case-insensitively. Empty and unknown
// names are compile scope; ParseScope never fails.
func ParseScope(s string) Scope {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range scopeNames {
		if name == s {
			return Scope(i)
		}
	}
	return ScopeCompile
}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return scopeNames[ScopeCompile]
	}
	return scopeNames[s]
}

// MarshalText encodes the scope by name.
func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a scope name with the rules of [ParseScope].
func (s *Scope) UnmarshalText(b []byte) error {
	*s = ParseScope(string(b))
	return nil
}
