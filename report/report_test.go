package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

var fixedStart = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// newSnapshot builds a finished operation with one message of each interesting severity.
func newSnapshot(t *testing.T) operation.Snapshot {
	t.Helper()

	now := fixedStart
	r := operation.New("op-123", "Nightly <import>", nil, operation.WithClock(func() time.Time { return now }))
	r.MarkStart()
	r.AddCreatedAsset("doc-1", "Doc One")
	r.AddInfo("loaded 1 file")
	now = now.Add(90 * time.Second)
	r.AddWarningWithLabel("Validate", errors.New("title & subtitle missing"))
	r.AddFailure(errors.New("store unavailable"))
	r.MarkEnd()

	return r.Snapshot()
}

func Test_ParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give    string
		want    Format
		wantErr string
	}{
		{give: "HTML", want: FormatHTML},
		{give: "", want: FormatText},
		{give: "txt", want: FormatText},
		{give: "yml", want: FormatYAML},
		{give: "toml", want: FormatTOML},
		{give: "json", want: FormatJSON},
		{give: "pdf", wantErr: `unsupported report format: "pdf"`},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.give)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_HTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, newSnapshot(t), Options{}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<html><head>"))
	assert.Contains(t, out, "<tr><td>Operation Description</td><td>Nightly &lt;import&gt;</td></tr>")
	assert.Contains(t, out, "<tr><td>Operation ID</td><td>op-123</td></tr>")
	assert.Contains(t, out, "<tr><td>Start</td><td>2024-05-01 10:00:00+0000</td></tr>")
	assert.Contains(t, out, "<tr><td>End</td><td>2024-05-01 10:01:30+0000</td></tr>")
	assert.Contains(t, out, "<tr><td>Duration in Seconds</td><td>90</td></tr>")
	assert.Contains(t, out, "<tr><td>MosCreated</td><td>1</td></tr>")
	assert.Contains(t, out, "<tr class=''><td>10:00:00</td><td>INFO</td><td>loaded 1 file</td></tr>")
	assert.Contains(t, out, "<tr class='warn'><td>10:01:30</td><td>WARN</td><td>title &amp; subtitle missing</td></tr>")
	assert.Contains(t, out, "<tr class='error'><td>10:01:30</td><td>ERROR</td><td>store unavailable</td></tr>")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</body></html>"))
}

func Test_HTML_UnknownInstantsAndNoCounters(t *testing.T) {
	t.Parallel()

	snap := operation.New("op-1", "Empty", nil).Snapshot()

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, snap, Options{Location: time.UTC}))
	out := buf.String()

	assert.Contains(t, out, "<tr><td>Start</td><td>Unknown</td></tr>")
	assert.Contains(t, out, "<tr><td>End</td><td>Unknown</td></tr>")
	assert.Contains(t, out, "<tr><td>Duration in Seconds</td><td>-1</td></tr>")
	assert.Contains(t, out, "<p><i>None</i></p>")
}

func Test_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	loc := time.FixedZone("UTC+2", 2*60*60)
	require.NoError(t, Text(&buf, newSnapshot(t), Options{Location: loc, DetailsLayout: time.Kitchen}))
	out := buf.String()

	assert.Contains(t, out, "Overview: Error! (1)")
	assert.Contains(t, out, "2024-05-01 12:00:00+0200")
	assert.Contains(t, out, "MosCreated")
	assert.Contains(t, out, "12:01PM")
	assert.Contains(t, out, "store unavailable")
	assert.Contains(t, out, "Validate")
}

func Test_Encode(t *testing.T) {
	t.Parallel()

	snap := newSnapshot(t)

	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, snap, f))
			assert.Contains(t, buf.String(), "op-123")

			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, snap.OperationID, got.OperationID)
			assert.Equal(t, snap.Summary, got.Summary)
			require.Len(t, got.Messages, 3)
			assert.Equal(t, operation.SeverityWarning, got.Messages[1].Severity)
			assert.True(t, snap.Messages[1].Timestamp.Equal(got.Messages[1].Timestamp))
		})
	}

	require.ErrorIs(t, Encode(&bytes.Buffer{}, snap, FormatHTML), ErrUnsupportedFormat)
}

func Test_Render(t *testing.T) {
	t.Parallel()

	snap := newSnapshot(t)
	for _, f := range Formats() {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, snap, f, Options{}), f)
		assert.NotEmpty(t, buf.String(), f)
	}

	require.ErrorIs(t, Render(&bytes.Buffer{}, snap, Format("pdf"), Options{}), ErrUnsupportedFormat)
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "text/html; charset=utf-8", FormatHTML.ContentType())
}
