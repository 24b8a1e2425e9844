// Package storetest provides a behavioural test suite shared by content store implementations.
package storetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/content-operations-framework/contentstore"
)

var (
	// Owner is the user that creates resources in the suite.
	Owner = contentstore.User{ID: "owner"}
	// Other is a second user used to provoke lock conflicts.
	Other = contentstore.User{ID: "other"}
)

// RunContract runs the store contract against stores produced by newStore. Each subtest gets its own
// store.
func RunContract(t *testing.T, newStore func(t *testing.T) contentstore.Store) {
	t.Helper()

	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		res, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", res.Version.String())

		got, err := store.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "Doc One", got.Label)
		assert.Equal(t, "v1", got.Content)

		_, err = store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.ErrorIs(t, err, contentstore.ErrAlreadyExists)

		_, err = store.Get(ctx, "missing")
		require.ErrorIs(t, err, contentstore.ErrNotFound)
	})

	t.Run("update bumps minor version", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		_, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)
		res, err := store.Update(ctx, Owner, "doc-1", "v2")
		require.NoError(t, err)
		assert.Equal(t, "1.1.0", res.Version.String())

		versions, err := store.Versions(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, versions, 2)
		assert.Equal(t, "v1", versions[0].Content)
		assert.Equal(t, "v2", versions[1].Content)
	})

	t.Run("previous version", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		_, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)

		spec, err := store.PreviousVersionOf(ctx, Owner, "doc-1")
		require.NoError(t, err)
		assert.Nil(t, spec)

		_, err = store.Update(ctx, Owner, "doc-1", "v2")
		require.NoError(t, err)

		spec, err = store.PreviousVersionOf(ctx, Owner, "doc-1")
		require.NoError(t, err)
		require.NotNil(t, spec)
		assert.Equal(t, "doc-1@1.0.0", spec.String())

		_, err = store.PreviousVersionOf(ctx, Owner, "missing")
		require.ErrorIs(t, err, contentstore.ErrNotFound)
	})

	t.Run("check out conflicts", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		_, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)

		require.NoError(t, store.AcquireEditRights(ctx, Other, "doc-1"))
		require.NoError(t, store.AcquireEditRights(ctx, Other, "doc-1"))

		err = store.AcquireEditRights(ctx, Owner, "doc-1")
		require.ErrorIs(t, err, contentstore.ErrLocked)
		assert.True(t, contentstore.IsTransient(err))

		require.NoError(t, store.CheckIn(ctx, Other, "doc-1"))
		require.NoError(t, store.AcquireEditRights(ctx, Owner, "doc-1"))

		got, err := store.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, Owner.ID, got.CheckedOutBy)
	})

	t.Run("destroy requires check out", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		_, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)

		err = store.Destroy(ctx, Owner, "doc-1", contentstore.DestroyOptions{})
		require.ErrorIs(t, err, contentstore.ErrRejected)
		assert.False(t, contentstore.IsTransient(err))

		require.NoError(t, store.AcquireEditRights(ctx, Owner, "doc-1"))
		require.NoError(t, store.Destroy(ctx, Owner, "doc-1", contentstore.DestroyOptions{}))

		_, err = store.Get(ctx, "doc-1")
		require.ErrorIs(t, err, contentstore.ErrNotFound)

		err = store.AcquireEditRights(ctx, Owner, "doc-1")
		require.ErrorIs(t, err, contentstore.ErrNotFound)
	})

	t.Run("destroy keeping edited resources", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()
		opts := contentstore.DestroyOptions{KeepEdited: true}

		_, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)
		_, err = store.Create(ctx, Owner, "doc-2", "Doc Two", "v1")
		require.NoError(t, err)
		_, err = store.Update(ctx, Owner, "doc-2", "v2")
		require.NoError(t, err)

		require.NoError(t, store.AcquireEditRights(ctx, Owner, "doc-1"))
		require.NoError(t, store.Destroy(ctx, Owner, "doc-1", opts))
		_, err = store.Get(ctx, "doc-1")
		require.ErrorIs(t, err, contentstore.ErrNotFound)

		require.NoError(t, store.AcquireEditRights(ctx, Owner, "doc-2"))
		err = store.Destroy(ctx, Owner, "doc-2", opts)
		require.ErrorIs(t, err, contentstore.ErrRejected)
		assert.False(t, contentstore.IsTransient(err))

		got, err := store.Get(ctx, "doc-2")
		require.NoError(t, err)
		assert.Equal(t, "v2", got.Content)

		require.NoError(t, store.Destroy(ctx, Owner, "doc-2", contentstore.DestroyOptions{}))
	})

	t.Run("rollback to version", func(t *testing.T) {
		store := newStore(t)
		ctx := t.Context()

		_, err := store.Create(ctx, Owner, "doc-1", "Doc One", "v1")
		require.NoError(t, err)
		_, err = store.Update(ctx, Owner, "doc-1", "v2")
		require.NoError(t, err)

		spec, err := store.PreviousVersionOf(ctx, Owner, "doc-1")
		require.NoError(t, err)
		require.NotNil(t, spec)

		err = store.RollbackToVersion(ctx, Owner, *spec, contentstore.RollbackOptions{})
		require.ErrorIs(t, err, contentstore.ErrRejected)

		require.NoError(t, store.AcquireEditRights(ctx, Owner, "doc-1"))
		require.NoError(t, store.RollbackToVersion(ctx, Owner, *spec, contentstore.RollbackOptions{Comment: "undo"}))

		got, err := store.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "v1", got.Content)
		assert.Equal(t, "1.2.0", got.Version.String())

		versions, err := store.Versions(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, versions, 3)
		assert.Equal(t, "undo", versions[2].Comment)
	})
}
