// Package memory provides an in-memory, versioned managed-content store.
//
// The store is safe for concurrent use. It does not persist anything; a new call to NewStore
// creates an entirely separate store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/smartcontractkit/content-operations-framework/contentstore"
)

type record struct {
	label        string
	checkedOutBy string
	versions     []contentstore.Version
}

func (r *record) current() contentstore.Version {
	return r.versions[len(r.versions)-1]
}

// Store is an in-memory managed-content store.
type Store struct {
	mu        sync.RWMutex // protects resources
	resources map[string]*record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		resources: make(map[string]*record),
	}
}

// Create stores a new resource at the initial version.
func (s *Store) Create(_ context.Context, user contentstore.User, id, label, content string) (contentstore.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[id]; ok {
		return contentstore.Resource{}, contentstore.NewStoreError("create", id, contentstore.ErrAlreadyExists)
	}

	r := &record{
		label: label,
		versions: []contentstore.Version{{
			Version: contentstore.InitialVersion,
			Content: content,
			Comment: "created by " + user.ID,
		}},
	}
	s.resources[id] = r

	return toResource(id, r), nil
}

// Update stores content as a new version of the resource. The resource must not be checked out by
// another user.
func (s *Store) Update(_ context.Context, user contentstore.User, id, content string) (contentstore.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.writable(user, "update", id)
	if err != nil {
		return contentstore.Resource{}, err
	}

	r.versions = append(r.versions, contentstore.Version{
		Version: contentstore.NextVersion(r.current().Version),
		Content: content,
		Comment: "updated by " + user.ID,
	})

	return toResource(id, r), nil
}

// Get returns the current state of the resource.
func (s *Store) Get(_ context.Context, id string) (contentstore.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	if !ok {
		return contentstore.Resource{}, contentstore.NewStoreError("get", id, contentstore.ErrNotFound)
	}

	return toResource(id, r), nil
}

// Versions returns a copy of the resource history, oldest first.
func (s *Store) Versions(_ context.Context, id string) ([]contentstore.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	if !ok {
		return nil, contentstore.NewStoreError("versions", id, contentstore.ErrNotFound)
	}

	versions := make([]contentstore.Version, len(r.versions))
	copy(versions, r.versions)

	return versions, nil
}

// AcquireEditRights checks the resource out to user. Checking out a resource the user already
// holds succeeds.
func (s *Store) AcquireEditRights(_ context.Context, user contentstore.User, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.writable(user, "checkout", id)
	if err != nil {
		return err
	}
	r.checkedOutBy = user.ID

	return nil
}

// CheckIn releases the user's check-out of the resource.
func (s *Store) CheckIn(_ context.Context, user contentstore.User, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.writable(user, "checkin", id)
	if err != nil {
		return err
	}
	r.checkedOutBy = ""

	return nil
}

// Destroy permanently removes the resource and its history.
func (s *Store) Destroy(_ context.Context, user contentstore.User, id string, opts contentstore.DestroyOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.writable(user, "destroy", id)
	if err != nil {
		return err
	}
	if r.checkedOutBy != user.ID {
		return contentstore.NewStoreError("destroy", id,
			fmt.Errorf("%w: resource must be checked out before it is destroyed", contentstore.ErrRejected))
	}
	if opts.KeepEdited && len(r.versions) > 1 {
		return contentstore.NewStoreError("destroy", id,
			fmt.Errorf("%w: resource was edited after it was created", contentstore.ErrRejected))
	}
	delete(s.resources, id)

	return nil
}

// PreviousVersionOf returns the version preceding the current one, or nil when the resource has a
// single version.
func (s *Store) PreviousVersionOf(_ context.Context, _ contentstore.User, id string) (*contentstore.VersionSpecifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[id]
	if !ok {
		return nil, contentstore.NewStoreError("previous-version", id, contentstore.ErrNotFound)
	}
	if len(r.versions) < 2 {
		return nil, nil
	}

	return &contentstore.VersionSpecifier{
		ResourceID: id,
		Version:    r.versions[len(r.versions)-2].Version,
	}, nil
}

// RollbackToVersion creates a new version of the resource carrying the content of the specified
// version. The resource must be checked out by user.
func (s *Store) RollbackToVersion(
	_ context.Context, user contentstore.User, spec contentstore.VersionSpecifier, opts contentstore.RollbackOptions,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.writable(user, "rollback", spec.ResourceID)
	if err != nil {
		return err
	}
	if r.checkedOutBy != user.ID {
		return contentstore.NewStoreError("rollback", spec.ResourceID,
			fmt.Errorf("%w: resource must be checked out before it is rolled back", contentstore.ErrRejected))
	}

	for _, v := range r.versions {
		if spec.Version != nil && v.Version.Equal(spec.Version) {
			comment := opts.Comment
			if comment == "" {
				comment = "rolled back to " + v.Version.String()
			}
			r.versions = append(r.versions, contentstore.Version{
				Version: contentstore.NextVersion(r.current().Version),
				Content: v.Content,
				Comment: comment,
			})

			return nil
		}
	}

	return contentstore.NewStoreError("rollback", spec.String(), contentstore.ErrNotFound)
}

// writable returns the record for id when user may mutate it. Callers must hold the write lock.
func (s *Store) writable(user contentstore.User, op, id string) (*record, error) {
	r, ok := s.resources[id]
	if !ok {
		return nil, contentstore.NewStoreError(op, id, contentstore.ErrNotFound)
	}
	if r.checkedOutBy != "" && r.checkedOutBy != user.ID {
		return nil, contentstore.NewStoreError(op, id, fmt.Errorf("%w (%s)", contentstore.ErrLocked, r.checkedOutBy))
	}

	return r, nil
}

func toResource(id string, r *record) contentstore.Resource {
	cur := r.current()

	return contentstore.Resource{
		ID:           id,
		Label:        r.label,
		Content:      cur.Content,
		Version:      cur.Version,
		CheckedOutBy: r.checkedOutBy,
	}
}
