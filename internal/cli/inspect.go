package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/content-operations-framework/internal/cli/flags"
	"github.com/smartcontractkit/content-operations-framework/internal/cli/text"
	"github.com/smartcontractkit/content-operations-framework/operation"
)

var (
	inspectShort = "Print the entries of a ledger"

	inspectLong = text.LongDesc(`
		Prints the resources and properties recorded in a ledger file without touching the
		content store. Entries are listed in the order a rollback would process them.
	`)

	inspectExample = text.Examples(`
		contentops inspect --ledger import.yaml
	`)
)

// newInspectCmd creates the "inspect" subcommand.
func newInspectCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   inspectShort,
		Long:    inspectLong,
		Example: inspectExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, cfg, flags.MustString(cmd.Flags().GetString("ledger")))
		},
	}

	flags.Ledger(cmd)

	return cmd
}

// runInspect executes the inspect command logic.
func runInspect(cmd *cobra.Command, cfg Config, path string) error {
	deps := cfg.deps()

	file, err := deps.LedgerLoader(path)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	source := operation.New(file.Operation, file.Label, nil)
	tx, err := file.Apply(source)
	if err != nil {
		return fmt.Errorf("failed to apply ledger: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Operation: %s\n", source.ID())
	fmt.Fprintf(out, "Label: %s\n\n", source.DefaultLabel())

	entries := tablewriter.NewWriter(out)
	entries.SetAutoWrapText(false)
	entries.SetAlignment(tablewriter.ALIGN_LEFT)
	entries.SetHeader([]string{"Kind", "ID", "Label"})
	for _, a := range tx.Created() {
		entries.Append([]string{string(operation.AssetCreated), a.ID, a.Label})
	}
	for _, a := range tx.Updated() {
		entries.Append([]string{string(operation.AssetUpdated), a.ID, a.Label})
	}
	entries.Render()

	props := tx.Properties()
	if len(props) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	properties := tablewriter.NewWriter(out)
	properties.SetAutoWrapText(false)
	properties.SetAlignment(tablewriter.ALIGN_LEFT)
	properties.SetHeader([]string{"Property", "Value"})
	for _, name := range slices.Sorted(maps.Keys(props)) {
		properties.Append([]string{name, props[name]})
	}
	properties.Render()

	return nil
}
