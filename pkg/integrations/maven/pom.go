package maven

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// POM is the subset of a Maven descriptor needed for resolution.
type POM struct {
	GroupID      string       `xml:"groupId"`
	ArtifactID   string       `xml:"artifactId"`
	Version      string       `xml:"version"`
	Packaging    string       `xml:"packaging"`
	Parent       Parent       `xml:"parent"`
	Properties   Properties   `xml:"properties"`
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Parent is the <parent> reference of a descriptor.
type Parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Dependency is one /project/dependencies/dependency entry.
type Dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	VersionID  string `xml:"versionId"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
}

// IsOptional reports whether the dependency is declared optional.
func (d Dependency) IsOptional() bool {
	return strings.EqualFold(strings.TrimSpace(d.Optional), "true")
}

// RawVersion returns the declared version text. Some hand-written descriptors
// use <versionId>; it is read when <version> is absent.
func (d Dependency) RawVersion() string {
	if v := strings.TrimSpace(d.Version); v != "" {
		return v
	}
	return strings.TrimSpace(d.VersionID)
}

// Properties holds the <properties> block as name/value pairs.
type Properties map[string]string

// UnmarshalXML reads arbitrary child elements into the map.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			return nil
		}
	}
}

// ParsePOM decodes a descriptor.
func ParsePOM(r io.Reader) (*POM, error) {
	var pom POM
	if err := xml.NewDecoder(r).Decode(&pom); err != nil {
		return nil, fmt.Errorf("decode pom: %w", err)
	}
	return &pom, nil
}

// ReadPOM decodes the descriptor at path.
func ReadPOM(path string) (*POM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pom, err := ParsePOM(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pom, nil
}

// Expand substitutes ${name} placeholders from the descriptor's properties,
// project.version and parent.version. The second result is false when a
// placeholder could not be resolved; the text is then returned unchanged.
func (p *POM) Expand(s string) (string, bool) {
	return p.expand(s, 0)
}

const maxExpandDepth = 8

func (p *POM) expand(s string, depth int) (string, bool) {
	start := strings.Index(s, "${")
	if start < 0 {
		return s, true
	}
	if depth >= maxExpandDepth {
		return s, false
	}
	end := strings.Index(s[start:], "}")
	if end < 0 {
		return s, false
	}
	end += start

	val, ok := p.lookup(s[start+2 : end])
	if !ok {
		return s, false
	}
	return p.expand(s[:start]+val+s[end+1:], depth+1)
}

func (p *POM) lookup(name string) (string, bool) {
	if v, ok := p.Properties[name]; ok {
		return v, true
	}
	switch name {
	case "project.version", "version", "pom.version":
		if p.Version != "" {
			return p.Version, true
		}
		return p.Parent.Version, p.Parent.Version != ""
	case "project.groupId", "groupId":
		if p.GroupID != "" {
			return p.GroupID, true
		}
		return p.Parent.GroupID, p.Parent.GroupID != ""
	case "project.parent.version", "parent.version":
		return p.Parent.Version, p.Parent.Version != ""
	}
	return "", false
}
