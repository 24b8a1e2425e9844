package operation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

func newTestResult(t *testing.T) *Result {
	t.Helper()

	return New("op-1", "Import", logger.Test(t))
}

func Test_New_GeneratesID(t *testing.T) {
	t.Parallel()

	r := New("", "Import", nil)
	assert.True(t, IsGeneratedID(r.ID()), r.ID())
	assert.True(t, strings.HasPrefix(r.ID(), "op_"))
	assert.NotEqual(t, r.ID(), New(" ", "Import", nil).ID())

	assert.False(t, IsGeneratedID("op-1"))
}

func Test_Result_ZeroValue(t *testing.T) {
	t.Parallel()

	var r Result
	require.NotPanics(t, func() {
		r.MarkStart()
		r.AddInfo("x")
		r.AddWarning(errors.New("careful"))
		r.IncrementCreatedCount()
		r.StartTimer("phase")
		r.MarkEnd()
	})

	assert.Equal(t, 1, r.InfoCount())
	assert.Equal(t, 1, r.Count(CounterCreated))
	assert.Equal(t, StateEnded, r.State())
	assert.Empty(t, r.ID())

	snap := r.Snapshot()
	assert.Len(t, snap.Messages, 2)
}

func Test_Result_MessageCounts(t *testing.T) {
	t.Parallel()

	r := newTestResult(t)
	r.AddFailure(errors.New("f1"))
	r.AddInfo("i1")
	r.AddWarning(errors.New("w1"))
	r.AddFailureWithLabel("Custom", errors.New("f2"))
	r.AddInfoWithLabel("Custom", "i2")
	r.AddWarningWithLabel("Custom", errors.New("w2"))
	r.AddInfoWithCause("i3", errors.New("c"))

	all := r.Messages()
	assert.Equal(t, len(all), r.FailureCount()+r.WarningCount()+r.InfoCount())
	assert.Equal(t, 2, r.FailureCount())
	assert.Equal(t, 2, r.WarningCount())
	assert.Equal(t, 3, r.InfoCount())

	var texts []string
	for _, m := range all {
		texts = append(texts, m.Text())
	}
	assert.Equal(t, []string{"f1", "i1", "w1", "f2", "i2", "w2", "i3"}, texts)
	assert.Equal(t, "Import", all[0].Label())
	assert.Equal(t, "Custom", all[3].Label())

	r.AddDebug("d1")
	r.AddDebugWithLabel("Custom", "d2")
	r.AddDebugWithCause("d3", nil)
	assert.Len(t, r.DebugMessages(), 3)
	assert.Len(t, r.InfoMessages(), 3)
	assert.Len(t, r.Messages(), 10)
}

func Test_Result_FailureAndWarningFree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failures int
		warnings int
	}{
		{name: "clean"},
		{name: "warnings only", warnings: 2},
		{name: "failures only", failures: 1},
		{name: "both", failures: 1, warnings: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New("op", "l", nil)
			for range tt.failures {
				r.AddFailure(errors.New("f"))
			}
			for range tt.warnings {
				r.AddWarning(errors.New("w"))
			}
			r.AddInfo("noise")

			assert.Equal(t, r.FailureCount() == 0 && r.WarningCount() == 0, r.IsFailureAndWarningFree())
			assert.Equal(t, tt.failures > 0, r.HasFailures())
			assert.Equal(t, tt.warnings > 0, r.HasWarnings())
		})
	}
}

func Test_Result_AddFailureUnwrapsInvocationErrors(t *testing.T) {
	t.Parallel()

	lggr, logs := logger.TestObserved(t, zapcore.WarnLevel)
	r := New("op-7", "Import", lggr)

	root := errors.New("checksum mismatch")
	r.AddFailure(NewInvocationError("outer", NewInvocationError("inner", root)))
	r.AddWarning(NewInvocationError("handler", errors.New("slow store")))

	failures := r.FailureMessages()
	require.Len(t, failures, 1)
	assert.Equal(t, "checksum mismatch", failures[0].Text())
	assert.Equal(t, root, failures[0].Cause())
	assert.Equal(t, "slow store", r.WarningMessages()[0].Text())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "[op-7] - checksum mismatch", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "[op-7] - slow store", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func Test_Result_HasMoreFailuresThan(t *testing.T) {
	t.Parallel()

	r := New("op", "l", nil)
	assert.False(t, r.HasMoreFailuresThan(0))
	r.AddFailure(errors.New("a"))
	r.AddFailure(errors.New("b"))
	assert.True(t, r.HasMoreFailuresThan(1))
	assert.False(t, r.HasMoreFailuresThan(2))
}

func Test_Result_ExecutiveSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failures int
		warnings int
		want     string
	}{
		{name: "successful", want: "Successful"},
		{name: "warnings", warnings: 2, want: "Warning (2)"},
		{name: "failures dominate", failures: 3, warnings: 1, want: "Error! (3)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := New("op", "l", nil)
			for range tt.failures {
				r.AddFailure(errors.New("f"))
			}
			for range tt.warnings {
				r.AddWarning(errors.New("w"))
			}

			assert.Equal(t, tt.want, r.ExecutiveSummary())
		})
	}
}

func Test_Result_Duration(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := New("op", "l", nil, WithClock(func() time.Time { return now }))

	assert.Equal(t, StateNotStarted, r.State())
	_, err := r.DurationMillis()
	require.ErrorIs(t, err, ErrUndeterminedDuration)
	assert.Equal(t, int64(-1), r.DurationMillisQuietly())
	assert.Equal(t, int64(-1), r.DurationSecondsQuietly())

	r.MarkStart()
	assert.Equal(t, StateRunning, r.State())
	_, err = r.DurationSeconds()
	require.ErrorIs(t, err, ErrUndeterminedDuration)

	now = now.Add(3750 * time.Millisecond)
	r.MarkEnd()
	assert.Equal(t, StateEnded, r.State())

	millis, err := r.DurationMillis()
	require.NoError(t, err)
	assert.Equal(t, int64(3750), millis)
	secs, err := r.DurationSeconds()
	require.NoError(t, err)
	assert.Equal(t, int64(3), secs)

	r.SetStart(now.Add(-time.Minute))
	assert.Equal(t, int64(60), r.DurationSecondsQuietly())
	start, ok := r.Start()
	assert.True(t, ok)
	assert.Equal(t, now.Add(-time.Minute), start)
}

func Test_Result_Timers(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := New("op", "l", nil, WithClock(func() time.Time { return now }))

	assert.Equal(t, int64(-1), r.ElapsedMillis("phase"))
	r.StartTimer("phase")
	now = now.Add(1500 * time.Millisecond)
	assert.Equal(t, int64(1500), r.ElapsedMillis("phase"))
	assert.Equal(t, int64(1), r.ElapsedSeconds("phase"))
}

func Test_Result_Counters(t *testing.T) {
	t.Parallel()

	r := New("op", "l", nil)
	assert.Equal(t, 0, r.Count("never"))

	r.IncrementCountBy("batches", 2)
	r.IncrementCountBy("batches", 5)
	assert.Equal(t, 7, r.Count("batches"))

	r.IncrementCount("")
	r.IncrementSkippedCount()
	r.IncrementStatus(StatusFailed, 3)
	assert.Equal(t, 3, r.StatusCount(StatusFailed))
	assert.Equal(t, 0, r.StatusCount(StatusQueued))

	assert.Equal(t, 1, r.SkippedCount())
	assert.Equal(t, []string{"never", "batches", CounterSkipped, "failed", "queued"}, r.CounterNames())
}

func Test_Result_Transactions(t *testing.T) {
	t.Parallel()

	r := New("op", "l", nil)

	_, err := r.CurrentTransaction()
	require.ErrorIs(t, err, ErrNoTransaction)
	assert.Empty(t, r.Transactions())

	r.AddCreatedAsset("doc-1", "Doc One")
	r.AddUpdatedAsset("doc-2", "Doc Two")
	r.AddUpdatedAsset("doc-2", "Doc Two (renamed)")

	require.Len(t, r.Transactions(), 1)
	tx, err := r.CurrentTransaction()
	require.NoError(t, err)
	assert.Equal(t, []Asset{{ID: "doc-1", Label: "Doc One"}}, tx.Created())
	assert.Equal(t, []Asset{{ID: "doc-2", Label: "Doc Two (renamed)"}}, tx.Updated())
	assert.Equal(t, 1, r.CreatedCount())
	assert.Equal(t, 2, r.UpdatedCount())

	assert.Equal(t, 1, r.StartTransaction())
	r.AddCreatedAsset("doc-3", "Doc Three")

	current, err := r.CurrentTransaction()
	require.NoError(t, err)
	assert.NotSame(t, tx, current)
	assert.Same(t, current, r.EnsureTransaction())
	assert.Equal(t, []Asset{{ID: "doc-3", Label: "Doc Three"}}, current.Created())
	assert.Len(t, tx.Created(), 1)
}

func Test_Result_AddSubResult(t *testing.T) {
	t.Parallel()

	parent := New("parent", "Parent", nil)
	parent.AddInfo("parent started")
	parent.AddCreatedAsset("p-1", "P One")

	sub := New("sub", "Sub", nil)
	sub.AddFailure(errors.New("sub f1"))
	sub.AddFailure(errors.New("sub f2"))
	sub.IncrementCountBy(CounterCreated, 3)
	sub.AddCreatedAsset("s-1", "S One")
	sub.StartTimer("t")

	parent.AddSubResult(sub)
	parent.AddSubResult(nil)

	assert.Equal(t, 2, parent.FailureCount())
	assert.Equal(t, 1, parent.CreatedCount())
	assert.Len(t, parent.Transactions(), 1)
	assert.Equal(t, int64(-1), parent.ElapsedMillis("t"))
	assert.Equal(t, "Sub", parent.FailureMessages()[0].Label())
}

func Test_Result_Payloads(t *testing.T) {
	t.Parallel()

	r := New("op", "l", nil)
	assert.False(t, r.HasPayload())

	r.SetPayload("  ", "text/plain")
	assert.False(t, r.HasPayload())
	r.SetPayload("<report/>", "application/xml")
	assert.True(t, r.HasPayload())
	assert.Equal(t, "application/xml", r.PayloadContentType())

	_, ok := r.File()
	assert.False(t, ok)
	f, err := ReadFilePayload(strings.NewReader("a,b\n"), "text/csv", "export.csv")
	require.NoError(t, err)
	r.SetFile(f)
	got, ok := r.File()
	require.True(t, ok)
	assert.Equal(t, "export.csv", got.SuggestedFileName)
	assert.Equal(t, []byte("a,b\n"), got.Content)

	r.AddToArchiveManifest("a.xml")
	r.AddToArchiveManifest("b.xml")
	archive, ok := r.Archive()
	require.True(t, ok)
	assert.Equal(t, []string{"a.xml", "b.xml"}, archive.Manifest)

	r.SetContainer(ContainerPayload{ID: "ca-1", Label: "Book"})
	c, ok := r.Container()
	require.True(t, ok)
	assert.Equal(t, "Book", c.Label)

	r.SetDestroyedObjects([]Asset{{ID: "doc-9"}})
	r.SetDestroyedContainers([]Asset{{ID: "ca-9"}})
	assert.Equal(t, "doc-9", r.DestroyedObjects()[0].ID)
	assert.Equal(t, "ca-9", r.DestroyedContainers()[0].ID)
}

func Test_Result_Jobs(t *testing.T) {
	t.Parallel()

	r := New("op", "l", nil)
	r.AddJob(JobSummary{})
	r.AddJob(JobSummary{ID: "job-1", Name: "publish", ScheduledAt: time.Now()})

	require.Len(t, r.Jobs(), 1)
	assert.Equal(t, "job-1", r.Jobs()[0].ID)
	assert.Equal(t, 1, r.WorkflowJobsCount())
}

func Test_Result_SetID(t *testing.T) {
	t.Parallel()

	lggr, logs := logger.TestObserved(t, zapcore.InfoLevel)
	r := New("first", "l", lggr)
	r.SetID("second")
	r.AddInfo("hello")

	assert.Equal(t, "second", r.ID())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "[second] - hello", logs.All()[0].Message)
}
