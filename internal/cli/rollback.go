package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/content-operations-framework/contentstore"
	"github.com/smartcontractkit/content-operations-framework/internal/cli/flags"
	"github.com/smartcontractkit/content-operations-framework/internal/cli/text"
	"github.com/smartcontractkit/content-operations-framework/ledger"
	"github.com/smartcontractkit/content-operations-framework/metrics"
	"github.com/smartcontractkit/content-operations-framework/operation"
	"github.com/smartcontractkit/content-operations-framework/report"
)

var (
	rollbackShort = "Compensate the changes recorded in a ledger"

	rollbackLong = text.LongDesc(`
		Rolls back the operation recorded in a ledger file against the configured content store.

		Created resources are checked out and destroyed. Updated resources are checked out and
		restored to their previous version. A resource that cannot be compensated is reported as
		a warning and the rollback continues with the next one.

		The report is written to stdout unless --out is given. With --remainder, the entries that
		could not be compensated are written to a new ledger so the rollback can be repeated.
	`)

	rollbackExample = text.Examples(`
		# Roll back an import and print a text report
		contentops rollback --ledger import.yaml --format text

		# Retry locked resources and keep what is left for a second attempt
		contentops rollback --ledger import.yaml --attempts 5 --delay 2s --remainder left.yaml
	`)
)

type rollbackFlags struct {
	ledger      string
	format      string
	out         string
	user        string
	attempts    uint
	delay       time.Duration
	remainder   string
	metricsFile string
	strict      bool
	keepEdited  bool
}

// newRollbackCmd creates the "rollback" subcommand.
func newRollbackCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rollback",
		Short:   rollbackShort,
		Long:    rollbackLong,
		Example: rollbackExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			attempts, _ := cmd.Flags().GetUint("attempts")
			delay, _ := cmd.Flags().GetDuration("delay")

			f := rollbackFlags{
				ledger:      flags.MustString(cmd.Flags().GetString("ledger")),
				format:      flags.MustString(cmd.Flags().GetString("format")),
				out:         flags.MustString(cmd.Flags().GetString("out")),
				user:        flags.MustString(cmd.Flags().GetString("user")),
				attempts:    attempts,
				delay:       delay,
				remainder:   flags.MustString(cmd.Flags().GetString("remainder")),
				metricsFile: flags.MustString(cmd.Flags().GetString("metrics-file")),
				strict:      flags.MustBool(cmd.Flags().GetBool("strict")),
				keepEdited:  flags.MustBool(cmd.Flags().GetBool("keep-edited")),
			}

			return runRollback(cmd, cfg, f)
		},
	}

	// Shared flags
	flags.Ledger(cmd)
	flags.Format(cmd, "")
	flags.Output(cmd, "")

	// Local flags specific to this command
	cmd.Flags().StringP("user", "u", "", "User that checks out resources (default from settings)")
	cmd.Flags().Uint("attempts", 0, "Attempts per resource for transient errors (default from settings)")
	cmd.Flags().Duration("delay", 0, "Delay between attempts (default from settings)")
	cmd.Flags().String("remainder", "", "Write the entries that could not be compensated to this ledger file")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics of the rollback to this file")
	cmd.Flags().Bool("strict", false, "Fail when any resource could not be compensated")
	cmd.Flags().Bool("keep-edited", false, "Do not destroy created resources that were edited afterwards")

	return cmd
}

// runRollback executes the rollback command logic.
func runRollback(cmd *cobra.Command, cfg Config, f rollbackFlags) (err error) {
	ctx := cmd.Context()
	deps := cfg.deps()
	settings := cfg.Settings

	// --- Load

	file, err := deps.LedgerLoader(f.ledger)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	format, err := report.ParseFormat(firstNonEmpty(f.format, settings.Report.Format))
	if err != nil {
		return err
	}
	opts, err := settings.ReportOptions()
	if err != nil {
		return err
	}

	retry := operation.RetryPolicy{MaxAttempts: settings.Rollback.Attempts, Delay: settings.Rollback.Delay}
	if cmd.Flags().Changed("attempts") {
		retry.MaxAttempts = f.attempts
	}
	if cmd.Flags().Changed("delay") {
		retry.Delay = f.delay
	}
	user := contentstore.User{ID: firstNonEmpty(f.user, settings.Rollback.User)}

	store, err := deps.StoreOpener(ctx, settings.Store.Driver, settings.Store.DSN, cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", settings.Store.Driver, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close store: %w", cerr))
		}
	}()

	// --- Execute

	source := operation.New(file.Operation, file.Label, cfg.Logger)
	tx, err := file.Apply(source)
	if err != nil {
		return fmt.Errorf("failed to apply ledger: %w", err)
	}

	result := operation.New("", operation.RollbackLabel, cfg.Logger)
	result.MarkStart()
	result.AddInfo(fmt.Sprintf("rolling back operation %s as %s", source.ID(), user))

	summary, err := source.RollbackCurrentTransaction(ctx, store, user, result,
		operation.WithRollbackRetry(retry),
		operation.WithRevertOptions(contentstore.RollbackOptions{Comment: "rollback of " + source.ID()}),
		operation.WithDestroyOptions(contentstore.DestroyOptions{KeepEdited: f.keepEdited}),
	)
	if err != nil {
		result.AddFailure(err)
	}
	result.MarkEnd()

	// --- Output

	if err := writeReport(cmd, f.out, result.Snapshot(), format, opts); err != nil {
		return err
	}

	if f.metricsFile != "" {
		reg := prometheus.NewRegistry()
		rec := metrics.NewRecorder(settings.Metrics.Namespace, reg)
		rec.ObserveSnapshot(result.Snapshot())
		rec.ObserveRollback(summary)
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	failed := len(tx.Failures())
	if f.remainder != "" && failed > 0 {
		if err := ledger.Save(f.remainder, ledger.FromTransaction(source.ID(), source.DefaultLabel(), tx)); err != nil {
			return fmt.Errorf("failed to write remainder: %w", err)
		}
		cmd.PrintErrf("%d entries could not be compensated; remainder written to %s\n", failed, f.remainder)
	}

	if result.HasFailures() {
		return fmt.Errorf("rollback of %s finished with %d failures", source.ID(), result.FailureCount())
	}
	if f.strict && failed > 0 {
		return fmt.Errorf("rollback of %s left %d entries uncompensated", source.ID(), failed)
	}

	return nil
}

func writeReport(cmd *cobra.Command, path string, snap operation.Snapshot, format report.Format, opts report.Options) (err error) {
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, ferr := os.Create(path)
		if ferr != nil {
			return fmt.Errorf("failed to create report file: %w", ferr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}

	if err := report.Render(w, snap, format, opts); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
