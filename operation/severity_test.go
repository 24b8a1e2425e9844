package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give string
		want Severity
	}{
		{give: "debug", want: SeverityDebug},
		{give: "INFO", want: SeverityInfo},
		{give: "warn", want: SeverityWarning},
		{give: " Warning ", want: SeverityWarning},
		{give: "error", want: SeverityFailure},
		{give: "failure", want: SeverityFailure},
		{give: "fatal", want: SeverityOther},
		{give: "", want: SeverityOther},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, ParseSeverity(tt.give))
		})
	}
}

func Test_Severity_Attributes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WARN", SeverityWarning.Label())
	assert.Equal(t, "warn", SeverityWarning.RowClass())
	assert.Equal(t, "error", SeverityFailure.RowClass())
	assert.Empty(t, SeverityInfo.RowClass())
	assert.Equal(t, "other", Severity{}.Name())
	assert.Len(t, Severities(), 4)
}

func Test_Severity_Text(t *testing.T) {
	t.Parallel()

	b, err := SeverityFailure.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(b))

	var got Severity
	require.NoError(t, got.UnmarshalText([]byte("warn")))
	assert.Equal(t, SeverityWarning, got)

	require.ErrorContains(t, got.UnmarshalText([]byte("loud")), `unknown severity "loud"`)
}
