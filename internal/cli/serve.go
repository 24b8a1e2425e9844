package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/content-operations-framework/internal/cli/flags"
	"github.com/smartcontractkit/content-operations-framework/internal/cli/text"
	"github.com/smartcontractkit/content-operations-framework/metrics"
	"github.com/smartcontractkit/content-operations-framework/report"
	"github.com/smartcontractkit/content-operations-framework/report/httpapi"
)

var (
	serveShort = "Serve archived reports over HTTP"

	serveLong = text.LongDesc(`
		Loads the JSON, YAML and TOML reports found in a directory and serves them over HTTP.

		Reports are listed at /v1/reports and rendered at /v1/reports/{id}?format=html.
		Prometheus metrics derived from the loaded reports are served at /metrics.

		Report ids are derived from the file names and stay the same across restarts. Reports
		loaded from files have no sub-operation records.
	`)

	serveExample = text.Examples(`
		# Keep json reports of each rollback and browse them
		contentops rollback --ledger import.yaml --format json --out reports/import.json
		contentops serve --reports reports --listen :8080
	`)
)

// newServeCmd creates the "serve" subcommand.
func newServeCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   serveShort,
		Long:    serveLong,
		Example: serveExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := flags.MustString(cmd.Flags().GetString("reports"))
			addr := firstNonEmpty(flags.MustString(cmd.Flags().GetString("listen")), cfg.Settings.HTTP.ListenAddress)

			return runServe(cmd, cfg, dir, addr)
		},
	}

	cmd.Flags().StringP("reports", "r", "", "Directory of report files (required)")
	cmd.Flags().String("listen", "", "Listen address (default from settings)")
	_ = cmd.MarkFlagRequired("reports")

	return cmd
}

// runServe executes the serve command logic.
func runServe(cmd *cobra.Command, cfg Config, dir, addr string) error {
	deps := cfg.deps()

	opts, err := cfg.Settings.ReportOptions()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(cfg.Settings.Metrics.Namespace, reg)

	records, err := loadRecords(dir)
	if err != nil {
		return err
	}
	for _, r := range records {
		rec.ObserveSnapshot(r.Snapshot)
	}

	handlers := httpapi.NewHandlers(report.NewMemoryReporter(report.WithRecords(records)), opts, cfg.Logger)
	router := httpapi.NewRouter(handlers, metrics.Handler(reg))

	cmd.PrintErrf("Serving %d reports on %s\n", len(records), addr)

	return deps.Serve(cmd.Context(), addr, router)
}

// loadRecords decodes every report file in dir. Files with other extensions are ignored.
func loadRecords(dir string) ([]report.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var records []report.Record
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, ok := reportFormat(e.Name())
		if !ok {
			continue
		}

		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report: %w", err)
		}
		snap, err := report.Decode(f, format)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}

		record := report.NewNamedRecord(e.Name(), snap)
		if info, ierr := e.Info(); ierr == nil {
			record.Timestamp = info.ModTime()
		}
		records = append(records, record)
	}

	return records, nil
}

func reportFormat(name string) (report.Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return report.FormatJSON, true
	case ".yaml", ".yml":
		return report.FormatYAML, true
	case ".toml":
		return report.FormatTOML, true
	default:
		return "", false
	}
}
