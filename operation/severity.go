package operation

import (
	"fmt"
	"strings"
)

// Severity classifies a message. The set of severities is closed: use the package level values and
// ParseSeverity rather than constructing one.
type Severity struct {
	name     string
	label    string
	rowClass string
}

var (
	SeverityDebug   = Severity{name: "debug", label: "DEBUG"}
	SeverityInfo    = Severity{name: "info", label: "INFO"}
	SeverityWarning = Severity{name: "warn", label: "WARN", rowClass: "warn"}
	SeverityFailure = Severity{name: "error", label: "ERROR", rowClass: "error"}
	// SeverityOther is returned by ParseSeverity for names it does not recognize.
	SeverityOther = Severity{name: "other", label: "OTHER"}
)

// Severities returns the known severities, lowest first.
func Severities() []Severity {
	return []Severity{SeverityDebug, SeverityInfo, SeverityWarning, SeverityFailure}
}

// Name is the short lower case name, e.g. "warn".
func (s Severity) Name() string {
	if s.name == "" {
		return SeverityOther.name
	}

	return s.name
}

// Label is the display label, e.g. "WARN".
func (s Severity) Label() string {
	if s.label == "" {
		return SeverityOther.label
	}

	return s.label
}

// RowClass is the CSS class applied to report rows of this severity. Empty for debug and info.
func (s Severity) RowClass() string {
	return s.rowClass
}

func (s Severity) String() string {
	return s.Name()
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names are rejected.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed := ParseSeverity(string(text))
	if parsed == SeverityOther {
		return fmt.Errorf("unknown severity %q", string(text))
	}
	*s = parsed

	return nil
}

// ParseSeverity looks up a severity by name or label, ignoring case. "warning" and "failure" are
// accepted as aliases. Unknown names yield SeverityOther.
func ParseSeverity(name string) Severity {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return SeverityDebug
	case "info":
		return SeverityInfo
	case "warn", "warning":
		return SeverityWarning
	case "error", "fail", "failure":
		return SeverityFailure
	default:
		return SeverityOther
	}
}
