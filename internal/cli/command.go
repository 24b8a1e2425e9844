// Package cli implements the contentops command line.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/content-operations-framework/config"
	"github.com/smartcontractkit/content-operations-framework/internal/cli/flags"
	"github.com/smartcontractkit/content-operations-framework/internal/cli/text"
	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

var (
	rootShort = "Roll back and report content operations"

	rootLong = text.LongDesc(`
		Tools for compensating content operations recorded in ledger files.

		A ledger lists the resources an operation created and updated. The rollback command
		destroys the created resources and restores the updated ones to their previous
		version, then prints a report of what happened.
	`)
)

// Config holds the configuration for the contentops commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Settings are the loaded contentops settings. Required.
	Settings *config.Config

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	var missing []string

	if c.Logger == nil {
		missing = append(missing, "Logger")
	}
	if c.Settings == nil {
		missing = append(missing, "Settings")
	}

	if len(missing) > 0 {
		return errors.New("cli.Config: missing required fields: " + strings.Join(missing, ", "))
	}

	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("cli.Config: invalid settings: %w", err)
	}

	return nil
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates the contentops root command with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.deps()

	cmd := &cobra.Command{
		Use:           "contentops",
		Short:         rootShort,
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetGlobalNormalizationFunc(flags.NormalizeWordSeparators)

	cmd.AddCommand(newRollbackCmd(cfg))
	cmd.AddCommand(newInspectCmd(cfg))
	cmd.AddCommand(newServeCmd(cfg))

	return cmd, nil
}
