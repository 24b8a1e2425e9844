package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongDesc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "simple string",
			input:    "Rolls back a ledger.",
			expected: "Rolls back a ledger.",
		},
		{
			name: "indented block",
			input: `
				Rolls back a ledger.

				Created resources are destroyed.
			`,
			expected: "Rolls back a ledger.\n\nCreated resources are destroyed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, LongDesc(tt.input))
		})
	}
}

func TestExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name: "multiple lines",
			input: `
				# Roll back
				contentops rollback --ledger ledger.yaml

				contentops inspect --ledger ledger.yaml
			`,
			expected: "  # Roll back\n  contentops rollback --ledger ledger.yaml\n\n  contentops inspect --ledger ledger.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Examples(tt.input))
		})
	}
}
