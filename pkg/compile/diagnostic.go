package compile

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// Diagnostic is one compiler message.
type Diagnostic struct {
	File     string
	Line     int
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

var (
	locatedRe = regexp.MustCompile(`^(.+?):(\d+): (error|warning|note|Note): (.*)$`)
	bareRe    = regexp.MustCompile(`^(error|warning|note|Note): (.*)$`)
)

func parseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	default:
		return SeverityNote
	}
}

// ParseDiagnostics extracts diagnostics from compiler output in the
// "file:line: kind: message" form. Source excerpts, caret lines and the
// trailing count summary are ignored.
func ParseDiagnostics(out []byte) []Diagnostic {
	var diags []Diagnostic
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if m := locatedRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			diags = append(diags, Diagnostic{File: m[1], Line: n, Severity: parseSeverity(m[3]), Message: m[4]})
			continue
		}
		if m := bareRe.FindStringSubmatch(line); m != nil {
			diags = append(diags, Diagnostic{Severity: parseSeverity(m[1]), Message: m[2]})
		}
	}
	return diags
}
