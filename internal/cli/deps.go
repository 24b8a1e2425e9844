package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/smartcontractkit/content-operations-framework/contentstore/sqlstore"
	"github.com/smartcontractkit/content-operations-framework/ledger"
	"github.com/smartcontractkit/content-operations-framework/operation"
	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

// Store is the content store a rollback runs against.
type Store interface {
	operation.Store
	Close() error
}

// StoreOpenerFunc opens the content store configured by driver and dsn.
type StoreOpenerFunc func(ctx context.Context, driver, dsn string, lggr logger.Logger) (Store, error)

// LedgerLoaderFunc loads a ledger file.
type LedgerLoaderFunc func(path string) (ledger.File, error)

// ServeFunc serves handler on addr until ctx is done.
type ServeFunc func(ctx context.Context, addr string, handler http.Handler) error

// defaultStoreOpener is the production implementation that opens a SQL store.
func defaultStoreOpener(ctx context.Context, driver, dsn string, lggr logger.Logger) (Store, error) {
	store, err := sqlstore.Open(ctx, driver, dsn, lggr)
	if err != nil {
		return nil, err
	}

	return store, nil
}

// defaultServe is the production implementation that runs an HTTP server.
func defaultServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

// Deps holds the injectable dependencies of the commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// StoreOpener opens the content store.
	// Default: sqlstore.Open
	StoreOpener StoreOpenerFunc

	// LedgerLoader loads ledger files.
	// Default: ledger.Load
	LedgerLoader LedgerLoaderFunc

	// Serve runs the report server.
	// Default: net/http server with graceful shutdown
	Serve ServeFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.StoreOpener == nil {
		d.StoreOpener = defaultStoreOpener
	}
	if d.LedgerLoader == nil {
		d.LedgerLoader = ledger.Load
	}
	if d.Serve == nil {
		d.Serve = defaultServe
	}
}
