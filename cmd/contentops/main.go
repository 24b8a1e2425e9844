// Command contentops rolls back content operations recorded in ledger files and serves their reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/smartcontractkit/content-operations-framework/config"
	"github.com/smartcontractkit/content-operations-framework/internal/cli"
	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

const defaultConfigPath = "contentops.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	path := os.Getenv("CONTENTOPS_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	settings, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}

	lvl, err := logger.ParseLevel(settings.Log.Level)
	if err != nil {
		return err
	}
	lcfg := logger.Config{Level: lvl, Development: settings.Log.Development}
	lggr, err := lcfg.New()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = lggr.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	cmd, err := cli.NewCommand(cli.Config{Logger: lggr, Settings: settings})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.ExecuteContext(ctx)
}
