package report

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcontractkit/content-operations-framework/operation"
)

var ErrReportNotFound = errors.New("report not found")

// Record is an archived snapshot of a finished operation.
type Record struct {
	ID        string             `json:"id" yaml:"id"`
	Timestamp time.Time          `json:"timestamp" yaml:"timestamp"`
	Snapshot  operation.Snapshot `json:"snapshot" yaml:"snapshot"`
	// ChildRecords lists the ids of records archived for sub-operations of this one.
	ChildRecords []string `json:"childRecords,omitempty" yaml:"childRecords,omitempty"`
}

// NewRecord creates a record for snap with a fresh id.
func NewRecord(snap operation.Snapshot, childRecordIDs ...string) Record {
	return Record{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		Snapshot:     snap,
		ChildRecords: childRecordIDs,
	}
}

// NewNamedRecord creates a record for snap whose id is derived from name. The same name always
// yields the same id.
func NewNamedRecord(name string, snap operation.Snapshot, childRecordIDs ...string) Record {
	record := NewRecord(snap, childRecordIDs...)
	record.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("contentops:report:"+name)).String()

	return record
}

// Reporter archives records. It can store them in memory, in a database, etc.
type Reporter interface {
	GetRecord(id string) (Record, error)
	GetRecords() ([]Record, error)
	AddRecord(record Record) error
	GetRecordTree(id string) ([]Record, error)
}

// MemoryReporter stores records in memory. It is safe for concurrent use.
type MemoryReporter struct {
	records []Record
	mu      sync.RWMutex
}

type MemoryReporterOption func(*MemoryReporter)

// WithRecords initializes the MemoryReporter with records.
func WithRecords(records []Record) MemoryReporterOption {
	return func(mr *MemoryReporter) {
		mr.records = records
	}
}

// NewMemoryReporter creates a new MemoryReporter.
func NewMemoryReporter(options ...MemoryReporterOption) *MemoryReporter {
	reporter := &MemoryReporter{}
	for _, opt := range options {
		opt(reporter)
	}

	return reporter
}

// AddRecord archives record.
func (e *MemoryReporter) AddRecord(record Record) error {
	if record.ID == "" {
		return errors.New("record id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = append(e.records, record)

	return nil
}

// GetRecords returns all records in the order they were added.
func (e *MemoryReporter) GetRecords() ([]Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records := make([]Record, len(e.records))
	copy(records, e.records)

	return records, nil
}

// GetRecord returns a record by ID, or ErrReportNotFound.
func (e *MemoryReporter) GetRecord(id string) (Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.find(id)
}

// GetRecordTree returns the record and, recursively, the records of its sub-operations. Children come
// before their parent.
func (e *MemoryReporter) GetRecordTree(id string) ([]Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var all []Record
	seen := make(map[string]bool)

	var collect func(id string) error
	collect = func(id string) error {
		if seen[id] {
			return nil
		}
		seen[id] = true

		record, err := e.find(id)
		if err != nil {
			return err
		}
		for _, childID := range record.ChildRecords {
			if err = collect(childID); err != nil {
				return err
			}
		}
		all = append(all, record)

		return nil
	}

	if err := collect(id); err != nil {
		return nil, err
	}

	return all, nil
}

func (e *MemoryReporter) find(id string) (Record, error) {
	for _, record := range e.records {
		if record.ID == id {
			return record, nil
		}
	}

	return Record{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
}

// Archive snapshots result and adds it to reporter, returning the new record.
func Archive(reporter Reporter, result *operation.Result, childRecordIDs ...string) (Record, error) {
	record := NewRecord(result.Snapshot(), childRecordIDs...)
	if err := reporter.AddRecord(record); err != nil {
		return Record{}, err
	}

	return record, nil
}
