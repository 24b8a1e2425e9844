package operation

import (
	"time"
)

// Message is an immutable, timestamped record emitted while an operation runs.
type Message struct {
	severity  Severity
	label     string
	text      string
	timestamp time.Time
	cause     error
}

// NewMessage creates a message stamped with the current time.
func NewMessage(severity Severity, label, text string, cause error) Message {
	return newMessageAt(time.Now(), severity, label, text, cause)
}

func newMessageAt(at time.Time, severity Severity, label, text string, cause error) Message {
	return Message{
		severity:  severity,
		label:     label,
		text:      text,
		timestamp: at,
		cause:     cause,
	}
}

func (m Message) Severity() Severity   { return m.severity }
func (m Message) Label() string        { return m.label }
func (m Message) Text() string         { return m.text }
func (m Message) Timestamp() time.Time { return m.timestamp }
func (m Message) Cause() error         { return m.cause }

func (m Message) String() string {
	if m.label == "" {
		return "[" + m.severity.Label() + "] " + m.text
	}

	return "[" + m.severity.Label() + "] " + m.label + ": " + m.text
}

// Messages is an ordered, append-only message container. The zero value is ready to use.
type Messages struct {
	items []Message
}

// Add appends msg.
func (m *Messages) Add(msg Message) {
	m.items = append(m.items, msg)
}

// Merge appends every message of other, keeping their original timestamps and severities.
func (m *Messages) Merge(other *Messages) {
	if other == nil {
		return
	}
	m.items = append(m.items, other.All()...)
}

// All returns every message in insertion order.
func (m *Messages) All() []Message {
	out := make([]Message, len(m.items))
	copy(out, m.items)

	return out
}

func (m *Messages) Failures() []Message { return m.filter(SeverityFailure) }
func (m *Messages) Warnings() []Message { return m.filter(SeverityWarning) }
func (m *Messages) Infos() []Message    { return m.filter(SeverityInfo) }
func (m *Messages) Debugs() []Message   { return m.filter(SeverityDebug) }

func (m *Messages) HasFailures() bool { return m.Count(SeverityFailure) > 0 }
func (m *Messages) HasWarnings() bool { return m.Count(SeverityWarning) > 0 }

// Count returns the number of messages of the given severity.
func (m *Messages) Count(severity Severity) int {
	n := 0
	for _, msg := range m.items {
		if msg.severity == severity {
			n++
		}
	}

	return n
}

// Len returns the number of messages of any severity.
func (m *Messages) Len() int {
	return len(m.items)
}

func (m *Messages) filter(severity Severity) []Message {
	var out []Message
	for _, msg := range m.items {
		if msg.severity == severity {
			out = append(out, msg)
		}
	}

	return out
}
