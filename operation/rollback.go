package operation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/smartcontractkit/content-operations-framework/contentstore"
)

// RollbackLabel is the label of every message emitted by a rollback.
const RollbackLabel = "Rollback"

// ErrSingleVersion is the compensation failure recorded for an updated resource that has no prior
// version to restore.
var ErrSingleVersion = errors.New("resource has only one version")

var tracer = otel.Tracer("github.com/smartcontractkit/content-operations-framework/operation")

// Store is the part of the managed-content store that rollback needs.
type Store interface {
	// AcquireEditRights checks the resource out to user, failing when another party holds it.
	AcquireEditRights(ctx context.Context, user contentstore.User, id string) error
	// Destroy permanently removes the resource.
	Destroy(ctx context.Context, user contentstore.User, id string, opts contentstore.DestroyOptions) error
	// PreviousVersionOf returns the version before the current one, or nil if there is none.
	PreviousVersionOf(ctx context.Context, user contentstore.User, id string) (*contentstore.VersionSpecifier, error)
	// RollbackToVersion restores the resource to the specified version.
	RollbackToVersion(
		ctx context.Context, user contentstore.User, spec contentstore.VersionSpecifier, opts contentstore.RollbackOptions,
	) error
}

// AssetKind distinguishes created from updated resources.
type AssetKind string

const (
	AssetCreated AssetKind = "created"
	AssetUpdated AssetKind = "updated"
)

// CompensationFailure is a resource that rollback could not compensate.
type CompensationFailure struct {
	Asset
	Kind AssetKind
	Err  error
}

// RollbackOutcome is the result of one rollback pass.
type RollbackOutcome struct {
	Compensated []Asset
	Failed      []CompensationFailure
}

// RollbackSummary holds the outcome of both rollback passes.
type RollbackSummary struct {
	Created RollbackOutcome
	Updated RollbackOutcome
}

// RetryPolicy controls how often a single compensating action is attempted. Only transient store
// errors are retried.
type RetryPolicy struct {
	MaxAttempts uint
	Delay       time.Duration
}

// RollbackConfig configures Transaction.Rollback.
type RollbackConfig struct {
	Retry   RetryPolicy
	Destroy contentstore.DestroyOptions
	Revert  contentstore.RollbackOptions
	Tracer  trace.Tracer
}

type RollbackOption func(*RollbackConfig)

// WithRollbackRetry retries compensating actions that fail with a transient store error.
func WithRollbackRetry(policy RetryPolicy) RollbackOption {
	return func(c *RollbackConfig) {
		c.Retry = policy
	}
}

// WithDestroyOptions sets the options passed to the store when destroying created resources.
func WithDestroyOptions(opts contentstore.DestroyOptions) RollbackOption {
	return func(c *RollbackConfig) {
		c.Destroy = opts
	}
}

// WithRevertOptions sets the options passed to the store when restoring updated resources.
func WithRevertOptions(opts contentstore.RollbackOptions) RollbackOption {
	return func(c *RollbackConfig) {
		c.Revert = opts
	}
}

// WithTracer overrides the tracer used for rollback spans.
func WithTracer(t trace.Tracer) RollbackOption {
	return func(c *RollbackConfig) {
		c.Tracer = t
	}
}

func newRollbackConfig(opts []RollbackOption) RollbackConfig {
	cfg := RollbackConfig{
		Retry:  RetryPolicy{MaxAttempts: 1},
		Tracer: tracer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Rollback compensates the changes recorded in the transaction.
//
// Created resources are checked out and destroyed. Updated resources are checked out and restored to
// their previous version. Every resource is attempted: a failure is reported to sink as a warning and
// the pass continues with the next resource. Successes are recorded in the rolled back ledgers and
// counted on sink.
//
// Calling Rollback again only attempts the resources that were not compensated by an earlier call.
// Messages, logging and counters go to sink, which must not be nil.
func (t *Transaction) Rollback(
	ctx context.Context, store Store, user contentstore.User, sink *Result, opts ...RollbackOption,
) RollbackSummary {
	cfg := newRollbackConfig(opts)
	t.rollbackRequested = true

	ctx, span := cfg.Tracer.Start(ctx, "operation.Rollback",
		trace.WithAttributes(
			attribute.String("operation.id", sink.ID()),
			attribute.String("user", user.ID),
		),
	)
	defer span.End()

	r := &rollbacker{cfg: cfg, store: store, user: user, sink: sink}

	summary := RollbackSummary{
		Created: r.pass(ctx, AssetCreated, t.pendingCreated(), r.destroy),
	}
	for _, a := range summary.Created.Compensated {
		t.rolledBackCreated.put(a.ID, a.Label)
		sink.IncrementCount(CounterNewRolledBack)
	}

	summary.Updated = r.pass(ctx, AssetUpdated, t.pendingUpdated(), r.revert)
	for _, a := range summary.Updated.Compensated {
		t.rolledBackUpdated.put(a.ID, a.Label)
		sink.IncrementCount(CounterUpdatedRolledBack)
	}

	t.failures = slices.Concat(summary.Created.Failed, summary.Updated.Failed)
	span.SetAttributes(
		attribute.Int("rollback.compensated", len(summary.Created.Compensated)+len(summary.Updated.Compensated)),
		attribute.Int("rollback.failed", len(t.failures)),
	)
	if len(t.failures) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d resources not compensated", len(t.failures)))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return summary
}

type rollbacker struct {
	cfg   RollbackConfig
	store Store
	user  contentstore.User
	sink  *Result
}

// pass folds action over items, classifying each as compensated or failed. It never stops early.
func (r *rollbacker) pass(
	ctx context.Context, kind AssetKind, items []Asset, action func(context.Context, Asset) error,
) RollbackOutcome {
	var outcome RollbackOutcome

	if len(items) == 0 {
		r.sink.AddInfoWithLabel(RollbackLabel, fmt.Sprintf("no %s assets to process", passNoun(kind)))
		return outcome
	}

	ctx, span := r.cfg.Tracer.Start(ctx, "operation.Rollback."+string(kind),
		trace.WithAttributes(attribute.Int("rollback.items", len(items))),
	)
	defer span.End()

	r.sink.AddInfoWithLabel(RollbackLabel, fmt.Sprintf("processing %d %s assets", len(items), passNoun(kind)))

	for _, a := range items {
		r.sink.AddInfoWithLabel(RollbackLabel, "processing "+a.String())

		if err := r.attempt(ctx, kind, a, action); err != nil {
			outcome.Failed = append(outcome.Failed, CompensationFailure{Asset: a, Kind: kind, Err: err})
			r.sink.AddWarningWithLabel(RollbackLabel, compensationWarning(a, err))

			continue
		}
		outcome.Compensated = append(outcome.Compensated, a)
	}

	span.SetAttributes(attribute.Int("rollback.failed", len(outcome.Failed)))

	return outcome
}

// attempt runs action for a single resource inside its own span, retrying transient failures
// according to the retry policy.
func (r *rollbacker) attempt(
	ctx context.Context, kind AssetKind, a Asset, action func(context.Context, Asset) error,
) (err error) {
	ctx, span := r.cfg.Tracer.Start(ctx, "operation.Compensate",
		trace.WithAttributes(
			attribute.String("resource.id", a.ID),
			attribute.String("resource.kind", string(kind)),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if r.cfg.Retry.MaxAttempts <= 1 {
		return action(ctx, a)
	}

	return retry.Do(
		func() error {
			return action(ctx, a)
		},
		retry.Attempts(r.cfg.Retry.MaxAttempts),
		retry.Delay(r.cfg.Retry.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(contentstore.IsTransient),
		retry.OnRetry(func(attempt uint, err error) {
			r.sink.oplog.Debug(fmt.Sprintf("retrying compensation of %s (attempt %d)", a.ID, attempt+1), err)
		}),
	)
}

func (r *rollbacker) destroy(ctx context.Context, a Asset) error {
	if err := r.store.AcquireEditRights(ctx, r.user, a.ID); err != nil {
		return err
	}

	return r.store.Destroy(ctx, r.user, a.ID, r.cfg.Destroy)
}

func (r *rollbacker) revert(ctx context.Context, a Asset) error {
	prev, err := r.store.PreviousVersionOf(ctx, r.user, a.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return ErrSingleVersion
	}
	if err = r.store.AcquireEditRights(ctx, r.user, a.ID); err != nil {
		return err
	}

	return r.store.RollbackToVersion(ctx, r.user, *prev, r.cfg.Revert)
}

func compensationWarning(a Asset, err error) error {
	if errors.Is(err, ErrSingleVersion) {
		return fmt.Errorf("%s has only one version; nothing to roll back to", a)
	}

	return fmt.Errorf("unable to process %s: %w", a, err)
}

func passNoun(kind AssetKind) string {
	if kind == AssetCreated {
		return "new"
	}

	return "updated"
}
