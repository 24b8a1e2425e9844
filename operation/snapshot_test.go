package operation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Result_Snapshot(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := New("op-1", "Import", nil, WithClock(func() time.Time { return now }))

	snap := r.Snapshot()
	assert.Nil(t, snap.Start)
	assert.Nil(t, snap.End)
	assert.Equal(t, int64(-1), snap.DurationMillis)
	assert.Equal(t, "Successful", snap.Summary)

	r.MarkStart()
	r.AddCreatedAsset("doc-1", "Doc One")
	r.EnsureTransaction().SetProperty("source", "batch-7")
	r.AddWarningWithLabel("Validate", errors.New("missing title"))
	r.AddInfoWithCause("retrying", errors.New("timeout"))
	now = now.Add(2 * time.Second)
	r.MarkEnd()

	snap = r.Snapshot()
	assert.Equal(t, "op-1", snap.OperationID)
	assert.Equal(t, "Import", snap.DefaultLabel)
	require.NotNil(t, snap.Start)
	require.NotNil(t, snap.End)
	assert.Equal(t, int64(2000), snap.DurationMillis)
	assert.Equal(t, "Warning (1)", snap.Summary)
	assert.Equal(t, []CounterValue{{Name: CounterCreated, Value: 1}}, snap.Counters)

	require.Len(t, snap.Messages, 2)
	assert.Equal(t, SeverityWarning, snap.Messages[0].Severity)
	assert.Equal(t, "Validate", snap.Messages[0].Label)
	assert.Equal(t, "missing title", snap.Messages[0].Cause)
	assert.Equal(t, "timeout", snap.Messages[1].Cause)
	assert.Equal(t, 1, snap.Warnings())
	assert.Equal(t, 0, snap.Failures())

	require.Len(t, snap.Transactions, 1)
	assert.Equal(t, []Asset{{ID: "doc-1", Label: "Doc One"}}, snap.Transactions[0].Created)
	assert.Equal(t, map[string]string{"source": "batch-7"}, snap.Transactions[0].Properties)
	assert.False(t, snap.Transactions[0].RollbackRequested)
}
