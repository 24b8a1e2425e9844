package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/smartcontractkit/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_defaultServe(t *testing.T) {
	t.Parallel()

	port := freeport.GetOne(t)
	t.Cleanup(func() { freeport.Return([]int{port}) })
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- defaultServe(ctx, addr, handler)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/") //nolint:noctx // test helper
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func Test_Deps_applyDefaults(t *testing.T) {
	t.Parallel()

	var d Deps
	d.applyDefaults()

	assert.NotNil(t, d.StoreOpener)
	assert.NotNil(t, d.LedgerLoader)
	assert.NotNil(t, d.Serve)
}
