package operation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Messages_Views(t *testing.T) {
	t.Parallel()

	var msgs Messages
	msgs.Add(NewMessage(SeverityInfo, "l", "one", nil))
	msgs.Add(NewMessage(SeverityFailure, "l", "two", errors.New("boom")))
	msgs.Add(NewMessage(SeverityWarning, "l", "three", nil))
	msgs.Add(NewMessage(SeverityDebug, "l", "four", nil))
	msgs.Add(NewMessage(SeverityFailure, "l", "five", nil))

	require.Equal(t, 5, msgs.Len())
	assert.True(t, msgs.HasFailures())
	assert.True(t, msgs.HasWarnings())
	assert.Len(t, msgs.Failures(), 2)
	assert.Len(t, msgs.Warnings(), 1)
	assert.Len(t, msgs.Infos(), 1)
	assert.Len(t, msgs.Debugs(), 1)

	// Filtering is not destructive and keeps insertion order.
	var texts []string
	for _, m := range msgs.All() {
		texts = append(texts, m.Text())
	}
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, texts)
	assert.Equal(t, "five", msgs.Failures()[1].Text())
}

func Test_Messages_Merge(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var parent, child Messages
	parent.Add(newMessageAt(at, SeverityInfo, "parent", "first", nil))
	child.Add(newMessageAt(at.Add(time.Minute), SeverityWarning, "child", "second", nil))

	parent.Merge(&child)
	parent.Merge(nil)

	all := parent.All()
	require.Len(t, all, 2)
	assert.Equal(t, SeverityWarning, all[1].Severity())
	assert.Equal(t, at.Add(time.Minute), all[1].Timestamp())
	assert.Equal(t, 1, child.Len())
}

func Test_Message_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[WARN] Rollback: careful", NewMessage(SeverityWarning, "Rollback", "careful", nil).String())
	assert.Equal(t, "[INFO] hello", NewMessage(SeverityInfo, "", "hello", nil).String())
}
