package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

// Text writes snap as plain text tables, suitable for a terminal.
func Text(w io.Writer, snap operation.Snapshot, opts Options) error {
	opts = opts.withDefaults()

	b := &strings.Builder{}
	fmt.Fprintf(b, "Overview: %s\n", snap.Summary)
	overview := tablewriter.NewWriter(b)
	overview.SetAutoWrapText(false)
	overview.SetAlignment(tablewriter.ALIGN_LEFT)
	overview.AppendBulk([][]string{
		{"Operation Description", snap.DefaultLabel},
		{"Operation ID", snap.OperationID},
		{"Start", opts.overview(snap.Start)},
		{"End", opts.overview(snap.End)},
		{"Duration in Seconds", strconv.FormatInt(durationSeconds(snap), 10)},
	})
	overview.Render()

	b.WriteString("\nCounters\n")
	if len(snap.Counters) == 0 {
		b.WriteString("None\n")
	} else {
		counters := tablewriter.NewWriter(b)
		counters.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, c := range snap.Counters {
			counters.Append([]string{capitalize(c.Name), strconv.Itoa(c.Value)})
		}
		counters.Render()
	}

	b.WriteString("\nDetails\n")
	if len(snap.Messages) == 0 {
		b.WriteString("None\n")
	} else {
		details := tablewriter.NewWriter(b)
		details.SetAutoWrapText(false)
		details.SetAlignment(tablewriter.ALIGN_LEFT)
		details.SetHeader([]string{"Time", "Severity", "Label", "Message"})
		for _, m := range snap.Messages {
			details.Append([]string{opts.details(m.Timestamp), m.Severity.Label(), m.Label, m.Text})
		}
		details.Render()
	}

	_, err := io.WriteString(w, b.String())

	return err
}
