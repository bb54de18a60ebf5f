package artifact

import (
	"strings"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/version"
)

// Coordinate identifies a remote package.
type Coordinate struct {
	Group   string
	Name    string
	Version version.Spec
}

// NewCoordinate returns the coordinate group:name:v.
func NewCoordinate(group, name string, v version.Spec) Coordinate {
	return Coordinate{Group: group, Name: name, Version: v}
}

// ParseCoordinate reads "group:name" or "group:name:version". A missing
// version is unspecified and resolves through the fallback ladder.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q (expected group:artifact[:version])", s)
	}
	if err := errors.ValidateCoordinatePart("group", parts[0]); err != nil {
		return Coordinate{}, err
	}
	if err := errors.ValidateCoordinatePart("artifact", parts[1]); err != nil {
		return Coordinate{}, err
	}

	v := version.None()
	if len(parts) == 3 {
		var err error
		if v, err = version.Parse(parts[2]); err != nil {
			return Coordinate{}, err
		}
	}
	return NewCoordinate(parts[0], parts[1], v), nil
}

// String renders "group:name:version".
func (c Coordinate) String() string {
	return c.Group + ":" + c.Name + ":" + c.Version.String()
}

// ID returns "group:name" without the version.
func (c Coordinate) ID() string { return c.Group + ":" + c.Name }

// WithVersion returns a copy of c at version v.
func (c Coordinate) WithVersion(v version.Spec) Coordinate {
	c.Version = v
	return c
}

// FileName returns the local cache file name "{name}-{version}.{ext}".
func (c Coordinate) FileName(ext string) string {
	return c.Name + "-" + c.Version.String() + "." + ext
}
