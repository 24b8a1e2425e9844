// Package flags provides the flags shared by several contentops commands.
//
// Command-specific flags are defined locally in the command file.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// Ledger adds the required --ledger/-l flag naming a YAML or TOML ledger file.
func Ledger(cmd *cobra.Command) {
	cmd.Flags().StringP("ledger", "l", "", "Ledger file, .yaml or .toml (required)")
	_ = cmd.MarkFlagRequired("ledger")
}

// Format adds the --format/-f flag selecting a report format. An empty default means the configured
// format is used.
func Format(cmd *cobra.Command, defaultValue string) {
	cmd.Flags().StringP("format", "f", defaultValue, "Report format: html, text, json, yaml or toml")
}

// Output adds the --out/-o flag for specifying output file path. An empty path means stdout.
func Output(cmd *cobra.Command, defaultValue string) {
	cmd.Flags().StringP("out", "o", defaultValue, "Output file path")
}

// NormalizeWordSeparators accepts underscores and dots in flag names, so that --metrics_file is
// read as --metrics-file.
//
// Usage:
//
//	cmd.SetGlobalNormalizationFunc(flags.NormalizeWordSeparators)
func NormalizeWordSeparators(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.NewReplacer("_", "-", ".", "-").Replace(name))
}
