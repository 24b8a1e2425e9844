// Package sqlstore implements the managed-content store on top of database/sql.
//
// Postgres is supported through github.com/lib/pq ("postgres" driver) and an in-process database
// through github.com/proullon/ramsql ("ramsql" driver), which is convenient for tests and local
// dry runs.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
	_ "github.com/lib/pq"
	_ "github.com/proullon/ramsql/driver"

	"github.com/smartcontractkit/content-operations-framework/contentstore"
	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverRamSQL   = "ramsql"
)

var _ contentstore.Store = &Store{}

// Store is a managed-content store backed by a SQL database.
//
// Mutations run inside a database transaction and are serialized within the process.
type Store struct {
	mu   sync.Mutex // serializes mutations
	db   *sql.DB
	lggr logger.Logger
}

// Open opens a database with the given driver and data source, and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, lggr logger.Logger) (*Store, error) {
	switch driver {
	case DriverPostgres, DriverRamSQL:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	s := New(db, lggr)
	if err = s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an already opened database. Call Migrate before first use on a fresh database. A nil
// lggr discards store logs.
func New(db *sql.DB, lggr logger.Logger) *Store {
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &Store{db: db, lggr: lggr}
}

// Migrate creates the tables used by the store.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schemaResources, schemaResourceVersions} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create stores a new resource at the initial version.
func (s *Store) Create(ctx context.Context, user contentstore.User, id, label, content string) (contentstore.Resource, error) {
	var res contentstore.Resource
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, _, err := findResource(ctx, tx, id); err == nil {
			return contentstore.NewStoreError("create", id, contentstore.ErrAlreadyExists)
		} else if !errors.Is(err, contentstore.ErrNotFound) {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resources (id, label, checked_out_by) VALUES ($1, $2, $3)`, id, label, "",
		); err != nil {
			return fmt.Errorf("failed to insert resource %s: %w", id, err)
		}
		if err := insertVersion(ctx, tx, id, 1, contentstore.InitialVersion, content, "created by "+user.ID); err != nil {
			return err
		}

		res = contentstore.Resource{ID: id, Label: label, Content: content, Version: contentstore.InitialVersion}

		return nil
	})

	return res, err
}

// Update stores content as a new version of the resource.
func (s *Store) Update(ctx context.Context, user contentstore.User, id, content string) (contentstore.Resource, error) {
	var res contentstore.Resource
	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		label, holder, err := writable(ctx, tx, user, "update", id)
		if err != nil {
			return err
		}
		seq, cur, err := latestVersion(ctx, tx, id)
		if err != nil {
			return err
		}

		next := contentstore.NextVersion(cur)
		if err = insertVersion(ctx, tx, id, seq+1, next, content, "updated by "+user.ID); err != nil {
			return err
		}
		res = contentstore.Resource{ID: id, Label: label, Content: content, Version: next, CheckedOutBy: holder}

		return nil
	})

	return res, err
}

// Get returns the current state of the resource.
func (s *Store) Get(ctx context.Context, id string) (contentstore.Resource, error) {
	label, holder, err := findResource(ctx, s.db, id)
	if err != nil {
		return contentstore.Resource{}, err
	}

	versions, err := s.Versions(ctx, id)
	if err != nil {
		return contentstore.Resource{}, err
	}
	if len(versions) == 0 {
		return contentstore.Resource{}, contentstore.NewStoreError("get", id, contentstore.ErrNotFound)
	}
	cur := versions[len(versions)-1]

	return contentstore.Resource{
		ID:           id,
		Label:        label,
		Content:      cur.Content,
		Version:      cur.Version,
		CheckedOutBy: holder,
	}, nil
}

// Versions returns the resource history, oldest first.
func (s *Store) Versions(ctx context.Context, id string) ([]contentstore.Version, error) {
	if _, _, err := findResource(ctx, s.db, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT version, content, comment FROM resource_versions WHERE resource_id = $1 ORDER BY seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions of %s: %w", id, err)
	}
	defer rows.Close()

	var versions []contentstore.Version
	for rows.Next() {
		var raw, content, comment string
		if err = rows.Scan(&raw, &content, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan version of %s: %w", id, err)
		}
		v, perr := semver.NewVersion(raw)
		if perr != nil {
			return nil, fmt.Errorf("invalid stored version %q of %s: %w", raw, id, perr)
		}
		versions = append(versions, contentstore.Version{Version: v, Content: content, Comment: comment})
	}

	return versions, rows.Err()
}

// AcquireEditRights checks the resource out to user.
func (s *Store) AcquireEditRights(ctx context.Context, user contentstore.User, id string) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, _, err := writable(ctx, tx, user, "checkout", id); err != nil {
			return err
		}

		return setHolder(ctx, tx, id, user.ID)
	})
}

// CheckIn releases the user's check-out of the resource.
func (s *Store) CheckIn(ctx context.Context, user contentstore.User, id string) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, _, err := writable(ctx, tx, user, "checkin", id); err != nil {
			return err
		}

		return setHolder(ctx, tx, id, "")
	})
}

// Destroy permanently removes the resource and its history.
func (s *Store) Destroy(ctx context.Context, user contentstore.User, id string, opts contentstore.DestroyOptions) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		_, holder, err := writable(ctx, tx, user, "destroy", id)
		if err != nil {
			return err
		}
		if holder != user.ID {
			return contentstore.NewStoreError("destroy", id,
				fmt.Errorf("%w: resource must be checked out before it is destroyed", contentstore.ErrRejected))
		}
		if opts.KeepEdited {
			seq, _, verr := latestVersion(ctx, tx, id)
			if verr != nil {
				return verr
			}
			if seq > 1 {
				return contentstore.NewStoreError("destroy", id,
					fmt.Errorf("%w: resource was edited after it was created", contentstore.ErrRejected))
			}
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM resource_versions WHERE resource_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete versions of %s: %w", id, err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete resource %s: %w", id, err)
		}
		s.lggr.Debugw("Destroyed resource", "id", id, "user", user.ID)

		return nil
	})
}

// PreviousVersionOf returns the version preceding the current one, or nil when the resource has a
// single version.
func (s *Store) PreviousVersionOf(ctx context.Context, _ contentstore.User, id string) (*contentstore.VersionSpecifier, error) {
	versions, err := s.Versions(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(versions) < 2 {
		return nil, nil
	}

	return &contentstore.VersionSpecifier{ResourceID: id, Version: versions[len(versions)-2].Version}, nil
}

// RollbackToVersion creates a new version of the resource carrying the content of the specified
// version.
func (s *Store) RollbackToVersion(
	ctx context.Context, user contentstore.User, spec contentstore.VersionSpecifier, opts contentstore.RollbackOptions,
) error {
	if spec.Version == nil {
		return contentstore.NewStoreError("rollback", spec.ResourceID,
			fmt.Errorf("%w: version is required", contentstore.ErrRejected))
	}

	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		id := spec.ResourceID
		_, holder, err := writable(ctx, tx, user, "rollback", id)
		if err != nil {
			return err
		}
		if holder != user.ID {
			return contentstore.NewStoreError("rollback", id,
				fmt.Errorf("%w: resource must be checked out before it is rolled back", contentstore.ErrRejected))
		}

		var content string
		err = tx.QueryRowContext(ctx,
			`SELECT content FROM resource_versions WHERE resource_id = $1 AND version = $2`,
			id, spec.Version.String(),
		).Scan(&content)
		if errors.Is(err, sql.ErrNoRows) {
			return contentstore.NewStoreError("rollback", spec.String(), contentstore.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", spec, err)
		}

		seq, cur, err := latestVersion(ctx, tx, id)
		if err != nil {
			return err
		}
		comment := opts.Comment
		if comment == "" {
			comment = "rolled back to " + spec.Version.String()
		}

		return insertVersion(ctx, tx, id, seq+1, contentstore.NextVersion(cur), content, comment)
	})
}

// withTransaction runs fn inside a database transaction, committing when fn succeeds.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.lggr.Warnw("Failed to roll back database transaction", "error", rerr)
			}

			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func findResource(ctx context.Context, q queryer, id string) (label, holder string, err error) {
	err = q.QueryRowContext(ctx, `SELECT label, checked_out_by FROM resources WHERE id = $1`, id).Scan(&label, &holder)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", contentstore.NewStoreError("get", id, contentstore.ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read resource %s: %w", id, err)
	}

	return label, holder, nil
}

// writable returns the resource row when user may mutate it.
func writable(ctx context.Context, tx *sql.Tx, user contentstore.User, op, id string) (label, holder string, err error) {
	label, holder, err = findResource(ctx, tx, id)
	if errors.Is(err, contentstore.ErrNotFound) {
		return "", "", contentstore.NewStoreError(op, id, contentstore.ErrNotFound)
	}
	if err != nil {
		return "", "", err
	}
	if holder != "" && holder != user.ID {
		return "", "", contentstore.NewStoreError(op, id, fmt.Errorf("%w (%s)", contentstore.ErrLocked, holder))
	}

	return label, holder, nil
}

func latestVersion(ctx context.Context, q queryer, id string) (int64, *semver.Version, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT seq, version FROM resource_versions WHERE resource_id = $1 ORDER BY seq DESC LIMIT 1`, id)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to query latest version of %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, nil, err
		}

		return 0, nil, contentstore.NewStoreError("latest-version", id, contentstore.ErrNotFound)
	}

	var (
		seq int64
		raw string
	)
	if err = rows.Scan(&seq, &raw); err != nil {
		return 0, nil, fmt.Errorf("failed to scan latest version of %s: %w", id, err)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid stored version %q of %s: %w", raw, id, err)
	}

	return seq, v, nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, id string, seq int64, v *semver.Version, content, comment string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO resource_versions (resource_id, seq, version, content, comment) VALUES ($1, $2, $3, $4, $5)`,
		id, seq, v.String(), content, comment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert version %s of %s: %w", v, id, err)
	}

	return nil
}

func setHolder(ctx context.Context, tx *sql.Tx, id, holder string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE resources SET checked_out_by = $1 WHERE id = $2`, holder, id); err != nil {
		return fmt.Errorf("failed to update check-out of %s: %w", id, err)
	}

	return nil
}
