package operation

import (
	"time"
)

// Snapshot is a read-only copy of a Result, sufficient to render a report.
type Snapshot struct {
	OperationID        string               `json:"operationId" yaml:"operationId" toml:"operationId"`
	DefaultLabel       string               `json:"defaultLabel" yaml:"defaultLabel" toml:"defaultLabel"`
	Start              *time.Time           `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End                *time.Time           `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	DurationMillis     int64                `json:"durationMillis" yaml:"durationMillis" toml:"durationMillis"`
	Summary            string               `json:"summary" yaml:"summary" toml:"summary"`
	Counters           []CounterValue       `json:"counters" yaml:"counters" toml:"counters"`
	Messages           []MessageRecord      `json:"messages" yaml:"messages" toml:"messages"`
	Transactions       []TransactionSummary `json:"transactions,omitempty" yaml:"transactions,omitempty" toml:"transactions,omitempty"`
	Jobs               []JobSummary         `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty"`
	PayloadContentType string               `json:"payloadContentType,omitempty" yaml:"payloadContentType,omitempty" toml:"payloadContentType,omitempty"`
}

// CounterValue is one named counter.
type CounterValue struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value int    `json:"value" yaml:"value" toml:"value"`
}

// MessageRecord is the serializable form of a Message.
type MessageRecord struct {
	Severity  Severity  `json:"severity" yaml:"severity" toml:"severity"`
	Label     string    `json:"label" yaml:"label" toml:"label"`
	Text      string    `json:"text" yaml:"text" toml:"text"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	Cause     string    `json:"cause,omitempty" yaml:"cause,omitempty" toml:"cause,omitempty"`
}

// TransactionSummary is the serializable form of a Transaction.
type TransactionSummary struct {
	Created           []Asset           `json:"created,omitempty" yaml:"created,omitempty" toml:"created,omitempty"`
	Updated           []Asset           `json:"updated,omitempty" yaml:"updated,omitempty" toml:"updated,omitempty"`
	RolledBackCreated []Asset           `json:"rolledBackCreated,omitempty" yaml:"rolledBackCreated,omitempty" toml:"rolledBackCreated,omitempty"`
	RolledBackUpdated []Asset           `json:"rolledBackUpdated,omitempty" yaml:"rolledBackUpdated,omitempty" toml:"rolledBackUpdated,omitempty"`
	RollbackRequested bool              `json:"rollbackRequested" yaml:"rollbackRequested" toml:"rollbackRequested"`
	Properties        map[string]string `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
}

// Snapshot copies the current state of the result.
func (r *Result) Snapshot() Snapshot {
	snap := Snapshot{
		OperationID:        r.id,
		DefaultLabel:       r.defaultLabel,
		DurationMillis:     r.DurationMillisQuietly(),
		Summary:            r.ExecutiveSummary(),
		Jobs:               r.Jobs(),
		PayloadContentType: r.payloadContentType,
	}
	if start, ok := r.Start(); ok {
		snap.Start = &start
	}
	if end, ok := r.End(); ok {
		snap.End = &end
	}

	for _, name := range r.counters.Names() {
		snap.Counters = append(snap.Counters, CounterValue{Name: name, Value: r.counters.Get(name)})
	}

	for _, m := range r.messages.All() {
		rec := MessageRecord{
			Severity:  m.Severity(),
			Label:     m.Label(),
			Text:      m.Text(),
			Timestamp: m.Timestamp(),
		}
		if m.Cause() != nil {
			rec.Cause = m.Cause().Error()
		}
		snap.Messages = append(snap.Messages, rec)
	}

	for _, tx := range r.transactions {
		snap.Transactions = append(snap.Transactions, TransactionSummary{
			Created:           tx.Created(),
			Updated:           tx.Updated(),
			RolledBackCreated: tx.RolledBackCreated(),
			RolledBackUpdated: tx.RolledBackUpdated(),
			RollbackRequested: tx.WasRollbackRequested(),
			Properties:        tx.Properties(),
		})
	}

	return snap
}

// Failures returns the number of failure messages in the snapshot.
func (s Snapshot) Failures() int {
	return s.count(SeverityFailure)
}

// Warnings returns the number of warning messages in the snapshot.
func (s Snapshot) Warnings() int {
	return s.count(SeverityWarning)
}

func (s Snapshot) count(sev Severity) int {
	n := 0
	for _, m := range s.Messages {
		if m.Severity == sev {
			n++
		}
	}

	return n
}
