package operation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_UnwrapCause(t *testing.T) {
	t.Parallel()

	root := errors.New("disk full")
	wrapped := fmt.Errorf("saving: %w", root)

	tests := []struct {
		name string
		give error
		want error
	}{
		{name: "nil", give: nil, want: nil},
		{name: "plain", give: root, want: root},
		{name: "single wrapper", give: NewInvocationError("handler", root), want: root},
		{
			name: "nested wrappers",
			give: NewInvocationError("outer", NewInvocationError("inner", root)),
			want: root,
		},
		{name: "stops at other wrapper kinds", give: NewInvocationError("handler", wrapped), want: wrapped},
		{name: "wrapper without cause", give: &InvocationError{Target: "x"}, want: &InvocationError{Target: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, UnwrapCause(tt.give))
		})
	}
}

func Test_InvocationError(t *testing.T) {
	t.Parallel()

	root := errors.New("boom")
	err := NewInvocationError("import", root)

	assert.EqualError(t, err, "invocation of import failed: boom")
	assert.ErrorIs(t, err, root)
}
