package contentstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
)

func Test_IsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give error
		want bool
	}{
		{name: "nil", give: nil, want: false},
		{name: "bare lock", give: ErrLocked, want: true},
		{name: "store lock", give: NewStoreError("checkout", "doc-1", ErrLocked), want: true},
		{name: "wrapped store lock", give: fmt.Errorf("outer: %w", NewStoreError("checkout", "doc-1", ErrLocked)), want: true},
		{name: "rejected", give: NewStoreError("destroy", "doc-1", ErrRejected), want: false},
		{name: "other", give: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsTransient(tt.give))
		})
	}
}

func Test_StoreError(t *testing.T) {
	t.Parallel()

	err := NewStoreError("destroy", "doc-1", ErrNotFound)
	assert.Equal(t, "destroy doc-1: resource not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_VersionSpecifier_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "doc-1", VersionSpecifier{ResourceID: "doc-1"}.String())
	assert.Equal(t, "doc-1@1.2.0", VersionSpecifier{ResourceID: "doc-1", Version: semver.MustParse("1.2.0")}.String())
	assert.Equal(t, "1.1.0", NextVersion(InitialVersion).String())
}
