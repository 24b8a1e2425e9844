package operation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned when a status name cannot be resolved.
var ErrUnknownStatus = errors.New("unknown operation status")

// Status is the processing state of an item handled by an operation, e.g. one entry of a batch.
// Each status has a counter on the Result, see Result.IncrementStatus.
type Status struct {
	name        string
	allowSet    bool
	outstanding bool
	counterName string
	displayName string
}

var (
	StatusNone       = Status{name: "NONE", counterName: "none", displayName: "None"}
	StatusQueued     = Status{name: "QUEUED", allowSet: true, outstanding: true, counterName: "queued", displayName: "Queued"}
	StatusInProgress = Status{name: "IN_PROGRESS", allowSet: true, outstanding: true, counterName: "in-progress", displayName: "In-Progress"}
	StatusSuccessful = Status{name: "SUCCESSFUL", allowSet: true, counterName: "successful", displayName: "Successful"}
	StatusFailed     = Status{name: "FAILED", allowSet: true, counterName: "failed", displayName: "Failed"}
	StatusAborted    = Status{name: "ABORTED", allowSet: true, counterName: "aborted", displayName: "Aborted"}
	StatusSkipped    = Status{name: "SKIPPED", counterName: "skipped", displayName: "Skipped"}
	StatusExcluded   = Status{name: "EXCLUDED", allowSet: true, counterName: "excluded", displayName: "Excluded"}
)

// Statuses returns every status in declaration order.
func Statuses() []Status {
	return []Status{
		StatusNone, StatusQueued, StatusInProgress, StatusSuccessful,
		StatusFailed, StatusAborted, StatusSkipped, StatusExcluded,
	}
}

// PersistableStatuses returns the statuses an item may be explicitly set to.
func PersistableStatuses() []Status {
	var out []Status
	for _, s := range Statuses() {
		if s.allowSet {
			out = append(out, s)
		}
	}

	return out
}

func (s Status) Name() string        { return s.name }
func (s Status) AllowSet() bool      { return s.allowSet }
func (s Status) Outstanding() bool   { return s.outstanding }
func (s Status) CounterName() string { return s.counterName }
func (s Status) DisplayName() string { return s.displayName }
func (s Status) String() string      { return s.name }

// ParseStatus resolves a status by name ("IN_PROGRESS") or counter name ("in-progress"), ignoring
// case.
func ParseStatus(name string) (Status, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed != "" {
		for _, s := range Statuses() {
			if strings.EqualFold(s.name, trimmed) || strings.EqualFold(s.counterName, trimmed) {
				return s, nil
			}
		}
	}

	return Status{}, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// ParseStatuses resolves every name, dropping duplicates. When lenient is true unknown names are
// skipped, otherwise the first unknown name is returned as an error.
func ParseStatuses(names []string, lenient bool) ([]Status, error) {
	var out []Status
	for _, name := range names {
		s, err := ParseStatus(name)
		if err != nil {
			if lenient {
				continue
			}

			return nil, err
		}
		if !containsStatus(out, s) {
			out = append(out, s)
		}
	}

	return out, nil
}

// StatusNames returns the names of statuses.
func StatusNames(statuses []Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.name)
	}

	return names
}

func containsStatus(statuses []Status, s Status) bool {
	for _, x := range statuses {
		if x == s {
			return true
		}
	}

	return false
}
