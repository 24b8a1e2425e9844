package report

import (
	"html/template"
	"io"
	"strconv"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<html><head><style type='text/css'>body         { font-family: sans-serif; }
table        { border-style:none; width:*; margin-left:10%; margin-right:10%; border-width: 0px; }
col.msgCol1  { min-width: 60px; width: 60px; max-width: 60px; }
col.msgCol2  { min-width: 30px; width: 30px; max-width: 30px; }
tr           { vertical-align: top; border-width: 0px; }
tr.error     { vertical-align: top; background-color: red; color: white; }
tr.warn      { vertical-align: top; color: red; }
td           { padding-left: 6px; } </style></head><body>
<h4>Overview</h4><table><tbody>
<tr><td>Operation Description</td><td>{{.Label}}</td></tr>
<tr><td>Operation ID</td><td>{{.ID}}</td></tr>
<tr><td>Start</td><td>{{.Start}}</td></tr>
<tr><td>End</td><td>{{.End}}</td></tr>
<tr><td>Duration in Seconds</td><td>{{.Duration}}</td></tr>
</tbody></table>
<h4>Counters</h4>
{{- if .Counters}}<table><tbody>
{{range .Counters}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{end}}</tbody></table>
{{- else}}<p><i>None</i></p>{{end}}
<h4>Details</h4><table><colgroup><col class='msgCol1'><col class='msgCol2'><col class='msgCol3'></colgroup><tbody>
{{range .Rows}}<tr class='{{.Class}}'><td>{{.Time}}</td><td>{{.Severity}}</td><td>{{.Text}}</td></tr>
{{end}}</tbody></table></body></html>
`))

type htmlView struct {
	Label    string
	ID       string
	Start    string
	End      string
	Duration string
	Counters []htmlCounter
	Rows     []htmlRow
}

type htmlCounter struct {
	Name  string
	Value int
}

type htmlRow struct {
	Class    string
	Time     string
	Severity string
	Text     string
}

// HTML writes snap as an HTML document with an overview, the counters and every message.
// Failure and warning rows carry the "error" and "warn" classes.
func HTML(w io.Writer, snap operation.Snapshot, opts Options) error {
	opts = opts.withDefaults()

	view := htmlView{
		Label:    snap.DefaultLabel,
		ID:       snap.OperationID,
		Start:    opts.overview(snap.Start),
		End:      opts.overview(snap.End),
		Duration: strconv.FormatInt(durationSeconds(snap), 10),
	}
	for _, c := range snap.Counters {
		view.Counters = append(view.Counters, htmlCounter{Name: capitalize(c.Name), Value: c.Value})
	}
	for _, m := range snap.Messages {
		view.Rows = append(view.Rows, htmlRow{
			Class:    m.Severity.RowClass(),
			Time:     opts.details(m.Timestamp),
			Severity: m.Severity.Label(),
			Text:     m.Text,
		})
	}

	return htmlTemplate.Execute(w, view)
}
