package operation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/smartcontractkit/content-operations-framework/contentstore"
	"github.com/smartcontractkit/content-operations-framework/pkg/logger"
)

// Names of the counters maintained by Result.
const (
	CounterCreated           = "mosCreated"
	CounterUpdated           = "mosUpdated"
	CounterSkipped           = "mosSkipped"
	CounterNewRolledBack     = "newMosRolledBack"
	CounterUpdatedRolledBack = "updatedMosRolledBack"
	CounterWorkflowJobs      = "workflowJobs"
)

// State is the lifecycle state of an operation.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Result aggregates everything that happens during one operation: messages, counters, timers, the
// transactions recording changed resources, and an optional deliverable.
//
// A Result is not safe for concurrent use. The zero value is usable but has no id, no default
// label and no logger; New sets them.
type Result struct {
	id           string
	defaultLabel string
	start        time.Time
	end          time.Time

	messages     Messages
	counters     Counters
	timers       Timers
	transactions []*Transaction

	payload            string
	payloadContentType string
	file               *FilePayload
	archive            *ArchivePayload
	container          *ContainerPayload

	destroyedContainers []Asset
	destroyedObjects    []Asset
	jobs                []JobSummary

	oplog OperationLogger
	now   func() time.Time
}

type Option func(*Result)

// WithClock replaces the clock used for message timestamps, timers and MarkStart/MarkEnd.
func WithClock(now func() time.Time) Option {
	return func(r *Result) {
		r.now = now
	}
}

// New creates a Result for the operation id. A blank id is replaced by a generated one. Messages
// logged without a label get defaultLabel. lggr may be nil.
func New(id, defaultLabel string, lggr logger.Logger, opts ...Option) *Result {
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}

	r := &Result{
		id:           id,
		defaultLabel: defaultLabel,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.timers = newTimers(r.now)
	r.oplog = OperationLogger{lggr: lggr, opID: id}

	return r
}

func (r *Result) ID() string           { return r.id }
func (r *Result) DefaultLabel() string { return r.defaultLabel }

// SetID changes the operation id, including the prefix of subsequent log lines.
func (r *Result) SetID(id string) {
	r.id = id
	r.oplog.SetOpID(id)
}

func (r *Result) Logger() logger.Logger        { return r.oplog.Logger() }
func (r *Result) SetLogger(lggr logger.Logger) { r.oplog.SetLogger(lggr) }

func (r *Result) MarkStart()           { r.start = r.clock() }
func (r *Result) MarkEnd()             { r.end = r.clock() }
func (r *Result) SetStart(t time.Time) { r.start = t }
func (r *Result) SetEnd(t time.Time)   { r.end = t }

func (r *Result) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}

	return r.now()
}

// Start returns the start of the operation and whether it was recorded.
func (r *Result) Start() (time.Time, bool) { return r.start, !r.start.IsZero() }

// End returns the end of the operation and whether it was recorded.
func (r *Result) End() (time.Time, bool) { return r.end, !r.end.IsZero() }

// State derives the lifecycle state from the recorded instants.
func (r *Result) State() State {
	switch {
	case !r.end.IsZero():
		return StateEnded
	case !r.start.IsZero():
		return StateRunning
	default:
		return StateNotStarted
	}
}

// DurationMillis returns the operation duration in milliseconds. It fails with
// ErrUndeterminedDuration until both the start and the end are recorded.
func (r *Result) DurationMillis() (int64, error) {
	if r.start.IsZero() || r.end.IsZero() {
		return 0, ErrUndeterminedDuration
	}

	return r.end.Sub(r.start).Milliseconds(), nil
}

// DurationSeconds is DurationMillis in whole seconds.
func (r *Result) DurationSeconds() (int64, error) {
	millis, err := r.DurationMillis()
	if err != nil {
		return 0, err
	}

	return millis / 1000, nil
}

// DurationMillisQuietly is DurationMillis returning -1 instead of an error.
func (r *Result) DurationMillisQuietly() int64 {
	millis, err := r.DurationMillis()
	if err != nil {
		return -1
	}

	return millis
}

// DurationSecondsQuietly is DurationSeconds returning -1 instead of an error.
func (r *Result) DurationSecondsQuietly() int64 {
	secs, err := r.DurationSeconds()
	if err != nil {
		return -1
	}

	return secs
}

func (r *Result) StartTimer(name string)           { r.timers.Start(name) }
func (r *Result) ElapsedMillis(name string) int64  { return r.timers.ElapsedMillis(name) }
func (r *Result) ElapsedSeconds(name string) int64 { return r.timers.ElapsedSeconds(name) }

// AddFailure records err as a failure under the default label.
func (r *Result) AddFailure(err error) {
	r.AddFailureWithLabel(r.defaultLabel, err)
}

// AddFailureWithLabel records err as a failure. Invocation wrappers are stripped from err first.
func (r *Result) AddFailureWithLabel(label string, err error) {
	err = UnwrapCause(err)
	text := errorText(err)
	r.oplog.Error(text, err)
	r.messages.Add(newMessageAt(r.clock(), SeverityFailure, label, text, err))
}

// AddWarning records err as a warning under the default label.
func (r *Result) AddWarning(err error) {
	r.AddWarningWithLabel(r.defaultLabel, err)
}

// AddWarningWithLabel records err as a warning. Invocation wrappers are stripped from err first.
func (r *Result) AddWarningWithLabel(label string, err error) {
	err = UnwrapCause(err)
	text := errorText(err)
	r.oplog.Warn(text, err)
	r.messages.Add(newMessageAt(r.clock(), SeverityWarning, label, text, err))
}

func (r *Result) AddInfo(text string)                       { r.addInfo(r.defaultLabel, text, nil) }
func (r *Result) AddInfoWithLabel(label, text string)       { r.addInfo(label, text, nil) }
func (r *Result) AddInfoWithCause(text string, cause error) { r.addInfo(r.defaultLabel, text, cause) }

func (r *Result) AddDebug(text string)                       { r.addDebug(r.defaultLabel, text, nil) }
func (r *Result) AddDebugWithLabel(label, text string)       { r.addDebug(label, text, nil) }
func (r *Result) AddDebugWithCause(text string, cause error) { r.addDebug(r.defaultLabel, text, cause) }

func (r *Result) addInfo(label, text string, cause error) {
	cause = UnwrapCause(cause)
	r.oplog.Info(text, cause)
	r.messages.Add(newMessageAt(r.clock(), SeverityInfo, label, text, cause))
}

func (r *Result) addDebug(label, text string, cause error) {
	cause = UnwrapCause(cause)
	r.oplog.Debug(text, cause)
	r.messages.Add(newMessageAt(r.clock(), SeverityDebug, label, text, cause))
}

func (r *Result) Messages() []Message        { return r.messages.All() }
func (r *Result) FailureMessages() []Message { return r.messages.Failures() }
func (r *Result) WarningMessages() []Message { return r.messages.Warnings() }
func (r *Result) InfoMessages() []Message    { return r.messages.Infos() }
func (r *Result) DebugMessages() []Message   { return r.messages.Debugs() }

func (r *Result) FailureCount() int { return r.messages.Count(SeverityFailure) }
func (r *Result) WarningCount() int { return r.messages.Count(SeverityWarning) }
func (r *Result) InfoCount() int    { return r.messages.Count(SeverityInfo) }

func (r *Result) HasFailures() bool { return r.messages.HasFailures() }
func (r *Result) HasWarnings() bool { return r.messages.HasWarnings() }

// HasMoreFailuresThan reports whether more than n failures were recorded.
func (r *Result) HasMoreFailuresThan(n int) bool {
	return r.FailureCount() > n
}

// IsFailureAndWarningFree reports whether no failure and no warning were recorded.
func (r *Result) IsFailureAndWarningFree() bool {
	return !r.HasFailures() && !r.HasWarnings()
}

// ExecutiveSummary classifies the outcome in one line. Failures take precedence over warnings.
func (r *Result) ExecutiveSummary() string {
	switch {
	case r.HasFailures():
		return "Error! (" + strconv.Itoa(r.FailureCount()) + ")"
	case r.HasWarnings():
		return "Warning (" + strconv.Itoa(r.WarningCount()) + ")"
	default:
		return "Successful"
	}
}

// AddSubResult appends the messages of a nested operation's result. Counters, timers and
// transactions of sub are not merged.
func (r *Result) AddSubResult(sub *Result) {
	if sub == nil {
		return
	}
	r.messages.Merge(&sub.messages)
}

func (r *Result) Count(name string) int               { return r.counters.Get(name) }
func (r *Result) IncrementCount(name string)          { r.counters.Increment(name, 1) }
func (r *Result) IncrementCountBy(name string, n int) { r.counters.Increment(name, n) }
func (r *Result) CounterNames() []string              { return r.counters.Names() }

func (r *Result) CreatedCount() int           { return r.Count(CounterCreated) }
func (r *Result) UpdatedCount() int           { return r.Count(CounterUpdated) }
func (r *Result) SkippedCount() int           { return r.Count(CounterSkipped) }
func (r *Result) NewRolledBackCount() int     { return r.Count(CounterNewRolledBack) }
func (r *Result) UpdatedRolledBackCount() int { return r.Count(CounterUpdatedRolledBack) }
func (r *Result) WorkflowJobsCount() int      { return r.Count(CounterWorkflowJobs) }

func (r *Result) IncrementCreatedCount() { r.IncrementCount(CounterCreated) }
func (r *Result) IncrementUpdatedCount() { r.IncrementCount(CounterUpdated) }
func (r *Result) IncrementSkippedCount() { r.IncrementCount(CounterSkipped) }

// IncrementStatus adds n to the counter of status.
func (r *Result) IncrementStatus(status Status, n int) {
	r.counters.Increment(status.CounterName(), n)
}

// StatusCount returns the counter of status.
func (r *Result) StatusCount(status Status) int {
	return r.counters.Get(status.CounterName())
}

// StartTransaction appends a new transaction, which becomes the current one, and returns its index.
func (r *Result) StartTransaction() int {
	r.transactions = append(r.transactions, NewTransaction())

	return len(r.transactions) - 1
}

// EnsureTransaction returns the current transaction, starting one if none exists.
func (r *Result) EnsureTransaction() *Transaction {
	if len(r.transactions) == 0 {
		r.StartTransaction()
	}

	return r.transactions[len(r.transactions)-1]
}

// CurrentTransaction returns the most recently started transaction, or ErrNoTransaction.
func (r *Result) CurrentTransaction() (*Transaction, error) {
	if len(r.transactions) == 0 {
		return nil, ErrNoTransaction
	}

	return r.transactions[len(r.transactions)-1], nil
}

// Transactions returns all transactions in the order they were started.
func (r *Result) Transactions() []*Transaction {
	out := make([]*Transaction, len(r.transactions))
	copy(out, r.transactions)

	return out
}

// AddCreatedAsset records a created resource in the current transaction, starting one if needed.
func (r *Result) AddCreatedAsset(id, label string) {
	r.EnsureTransaction().AddCreated(id, label)
	r.IncrementCreatedCount()
}

// AddUpdatedAsset records an updated resource in the current transaction, starting one if needed.
func (r *Result) AddUpdatedAsset(id, label string) {
	r.EnsureTransaction().AddUpdated(id, label)
	r.IncrementUpdatedCount()
}

// RollbackCurrentTransaction rolls back the current transaction. Messages and counters go to sink, or
// to r when sink is nil. It fails with ErrNoTransaction when no transaction was started.
func (r *Result) RollbackCurrentTransaction(
	ctx context.Context, store Store, user contentstore.User, sink *Result, opts ...RollbackOption,
) (RollbackSummary, error) {
	tx, err := r.CurrentTransaction()
	if err != nil {
		return RollbackSummary{}, err
	}
	if sink == nil {
		sink = r
	}

	return tx.Rollback(ctx, store, user, sink, opts...), nil
}

// SetPayload attaches a textual deliverable.
func (r *Result) SetPayload(payload, contentType string) {
	r.payload = payload
	r.payloadContentType = contentType
}

func (r *Result) Payload() string            { return r.payload }
func (r *Result) PayloadContentType() string { return r.payloadContentType }

// HasPayload reports whether a non-blank payload is attached.
func (r *Result) HasPayload() bool {
	return strings.TrimSpace(r.payload) != ""
}

func (r *Result) SetFile(f FilePayload) { r.file = &f }

// File returns the downloadable file, if any.
func (r *Result) File() (FilePayload, bool) {
	if r.file == nil {
		return FilePayload{}, false
	}

	return *r.file, true
}

func (r *Result) SetArchive(a ArchivePayload) { r.archive = &a }

// AddToArchiveManifest records an archive entry name, creating the archive payload if needed.
func (r *Result) AddToArchiveManifest(name string) {
	if r.archive == nil {
		r.archive = &ArchivePayload{}
	}
	r.archive.Manifest = append(r.archive.Manifest, name)
}

// Archive returns the archive payload, if any.
func (r *Result) Archive() (ArchivePayload, bool) {
	if r.archive == nil {
		return ArchivePayload{}, false
	}
	a := *r.archive
	a.Manifest = append([]string(nil), r.archive.Manifest...)

	return a, true
}

func (r *Result) SetContainer(c ContainerPayload) { r.container = &c }

// Container returns the container payload, if any.
func (r *Result) Container() (ContainerPayload, bool) {
	if r.container == nil {
		return ContainerPayload{}, false
	}

	return *r.container, true
}

func (r *Result) SetDestroyedContainers(assets []Asset) { r.destroyedContainers = assets }
func (r *Result) DestroyedContainers() []Asset          { return r.destroyedContainers }
func (r *Result) SetDestroyedObjects(assets []Asset)    { r.destroyedObjects = assets }
func (r *Result) DestroyedObjects() []Asset             { return r.destroyedObjects }

// AddJob records a scheduled job. Zero value summaries are ignored.
func (r *Result) AddJob(job JobSummary) {
	if job.IsZero() {
		return
	}
	r.jobs = append(r.jobs, job)
	r.IncrementCount(CounterWorkflowJobs)
}

func (r *Result) Jobs() []JobSummary {
	return append([]JobSummary(nil), r.jobs...)
}

func errorText(err error) string {
	if err == nil {
		return "unspecified error"
	}

	return err.Error()
}
