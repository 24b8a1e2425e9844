// Package text formats the help text of CLI commands.
package text

import (
	"strings"
)

// Indentation is the indentation of example lines.
const Indentation = `  `

// LongDesc trims surrounding whitespace and the common indentation of a long description.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.dedent().trim().string
}

// Examples trims an examples block and indents each line by Indentation.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}

	return normalizer{s}.trim().indent().string
}

type normalizer struct {
	string
}

func (s normalizer) trim() normalizer {
	s.string = strings.TrimSpace(s.string)

	return s
}

func (s normalizer) dedent() normalizer {
	lines := strings.Split(s.string, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s.string = strings.Join(lines, "\n")

	return s
}

func (s normalizer) indent() normalizer {
	indented := make([]string, 0, strings.Count(s.string, "\n")+1)
	for line := range strings.SplitSeq(s.string, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			indented = append(indented, "")
			continue
		}
		indented = append(indented, Indentation+trimmed)
	}
	s.string = strings.Join(indented, "\n")

	return s
}
