package maventest

import (
	"bytes"
	"fmt"
)

// POM describes a descriptor to serve.
type POM struct {
	Group      string
	Artifact   string
	Version    string
	Packaging  string
	Properties map[string]string
	Deps       []Dep
}

// Dep is one declared dependency of a [POM].
type Dep struct {
	Group    string
	Artifact string
	Version  string
	Scope    string
	Optional bool
}

// Bytes renders p as a minimal Maven descriptor.
func (p POM) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<project xmlns="http://maven.apache.org/POM/4.0.0">` + "\n")
	fmt.Fprintf(&b, "  <groupId>%s</groupId>\n  <artifactId>%s</artifactId>\n  <version>%s</version>\n",
		p.Group, p.Artifact, p.Version)
	if p.Packaging != "" {
		fmt.Fprintf(&b, "  <packaging>%s</packaging>\n", p.Packaging)
	}
	if len(p.Properties) > 0 {
		b.WriteString("  <properties>\n")
		for k, v := range p.Properties {
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", k, v, k)
		}
		b.WriteString("  </properties>\n")
	}
	if len(p.Deps) > 0 {
		b.WriteString("  <dependencies>\n")
		for _, d := range p.Deps {
			b.WriteString("    <dependency>\n")
			fmt.Fprintf(&b, "      <groupId>%s</groupId>\n      <artifactId>%s</artifactId>\n", d.Group, d.Artifact)
			if d.Version != "" {
				fmt.Fprintf(&b, "      <version>%s</version>\n", d.Version)
			}
			if d.Scope != "" {
				fmt.Fprintf(&b, "      <scope>%s</scope>\n", d.Scope)
			}
			if d.Optional {
				b.WriteString("      <optional>true</optional>\n")
			}
			b.WriteString("    </dependency>\n")
		}
		b.WriteString("  </dependencies>\n")
	}
	b.WriteString("</project>\n")
	return b.Bytes()
}
