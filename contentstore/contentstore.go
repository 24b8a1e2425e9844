// Package contentstore defines the types shared by managed-content store implementations and the
// operation package which drives them during compensating rollback.
//
// A store holds versioned resources identified by opaque ids. Every resource starts at version
// 1.0.0 and each update bumps the minor version. Rolling back to a prior version creates a new
// version whose content is the content of the target version.
package contentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNotFound is returned when a resource or version does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrLocked is returned when a resource is checked out by another user.
	ErrLocked = errors.New("resource is checked out by another user")
	// ErrRejected is returned when the store refuses a mutation.
	ErrRejected = errors.New("store rejected the request")
	// ErrAlreadyExists is returned when creating a resource whose id is taken.
	ErrAlreadyExists = errors.New("resource already exists")
)

// InitialVersion is the version assigned to a newly created resource.
var InitialVersion = semver.MustParse("1.0.0")

// User identifies the party acting on the store.
type User struct {
	ID string `json:"id" yaml:"id"`
}

func (u User) String() string {
	return u.ID
}

// VersionSpecifier identifies a single version of a resource.
type VersionSpecifier struct {
	ResourceID string          `json:"resourceId"`
	Version    *semver.Version `json:"version"`
}

func (v VersionSpecifier) String() string {
	if v.Version == nil {
		return v.ResourceID
	}

	return v.ResourceID + "@" + v.Version.String()
}

// DestroyOptions controls Destroy.
type DestroyOptions struct {
	// KeepEdited rejects the destroy when the resource has been updated since it was created.
	KeepEdited bool
}

// RollbackOptions controls RollbackToVersion.
type RollbackOptions struct {
	// Comment is recorded against the version created by the rollback.
	Comment string
}

// Resource is a point-in-time view of a stored resource.
type Resource struct {
	ID           string
	Label        string
	Content      string
	Version      *semver.Version
	CheckedOutBy string
}

// Version is one entry of a resource's history.
type Version struct {
	Version *semver.Version
	Content string
	Comment string
}

// NextVersion returns the version that follows v.
func NextVersion(v *semver.Version) *semver.Version {
	next := v.IncMinor()

	return &next
}

// StoreError describes a failed store call.
type StoreError struct {
	Op         string
	ResourceID string
	Err        error
	// Transient reports whether repeating the call may succeed.
	Transient bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ResourceID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for op on id. Lock conflicts are classified as transient.
func NewStoreError(op, id string, err error) error {
	return &StoreError{
		Op:         op,
		ResourceID: id,
		Err:        err,
		Transient:  errors.Is(err, ErrLocked),
	}
}

// IsTransient reports whether err is a store error that may succeed when retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StoreError
	if errors.As(err, &se) {
		return se.Transient
	}

	return errors.Is(err, ErrLocked)
}

// Store is the full managed-content store contract implemented by the memory and sql stores.
type Store interface {
	Create(ctx context.Context, user User, id, label, content string) (Resource, error)
	Update(ctx context.Context, user User, id, content string) (Resource, error)
	Get(ctx context.Context, id string) (Resource, error)
	Versions(ctx context.Context, id string) ([]Version, error)
	AcquireEditRights(ctx context.Context, user User, id string) error
	CheckIn(ctx context.Context, user User, id string) error
	Destroy(ctx context.Context, user User, id string, opts DestroyOptions) error
	PreviousVersionOf(ctx context.Context, user User, id string) (*VersionSpecifier, error)
	RollbackToVersion(ctx context.Context, user User, spec VersionSpecifier, opts RollbackOptions) error
}
