package operation

import (
	"maps"
)

// Asset identifies a resource touched by an operation.
type Asset struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

func (a Asset) String() string {
	if a.Label == "" || a.Label == a.ID {
		return a.ID
	}

	return a.ID + " (" + a.Label + ")"
}

// assets is an insertion ordered id to label mapping. Re-adding an id replaces its label and keeps
// its position.
type assets struct {
	order  []string
	labels map[string]string
}

func (a *assets) put(id, label string) {
	if a.labels == nil {
		a.labels = make(map[string]string)
	}
	if _, ok := a.labels[id]; !ok {
		a.order = append(a.order, id)
	}
	a.labels[id] = label
}

func (a *assets) has(id string) bool {
	_, ok := a.labels[id]

	return ok
}

func (a *assets) len() int {
	return len(a.order)
}

func (a *assets) list() []Asset {
	out := make([]Asset, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, Asset{ID: id, Label: a.labels[id]})
	}

	return out
}

// Transaction is the ledger of one change-set of an operation: the resources it created, the
// resources it updated, and which of them a rollback has since compensated. A transaction is kept
// after rollback as part of the audit trail.
type Transaction struct {
	created           assets
	updated           assets
	rolledBackCreated assets
	rolledBackUpdated assets

	rollbackRequested bool
	failures          []CompensationFailure
	props             map[string]string
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{props: make(map[string]string)}
}

// AddCreated records a resource created by the operation.
func (t *Transaction) AddCreated(id, label string) {
	t.created.put(id, label)
}

// AddUpdated records a resource updated in place by the operation.
func (t *Transaction) AddUpdated(id, label string) {
	t.updated.put(id, label)
}

func (t *Transaction) Created() []Asset           { return t.created.list() }
func (t *Transaction) Updated() []Asset           { return t.updated.list() }
func (t *Transaction) RolledBackCreated() []Asset { return t.rolledBackCreated.list() }
func (t *Transaction) RolledBackUpdated() []Asset { return t.rolledBackUpdated.list() }

// WasRollbackRequested reports whether Rollback was ever called.
func (t *Transaction) WasRollbackRequested() bool {
	return t.rollbackRequested
}

// Failures returns the compensation failures of the most recent rollback.
func (t *Transaction) Failures() []CompensationFailure {
	out := make([]CompensationFailure, len(t.failures))
	copy(out, t.failures)

	return out
}

// SetProperty stores caller defined metadata on the transaction.
func (t *Transaction) SetProperty(name, value string) {
	if t.props == nil {
		t.props = make(map[string]string)
	}
	t.props[name] = value
}

// Property returns the named property.
func (t *Transaction) Property(name string) (string, bool) {
	v, ok := t.props[name]

	return v, ok
}

// Properties returns a copy of all properties.
func (t *Transaction) Properties() map[string]string {
	return maps.Clone(t.props)
}

// pendingCreated returns the created resources that have not been compensated yet.
func (t *Transaction) pendingCreated() []Asset {
	return pending(&t.created, &t.rolledBackCreated)
}

// pendingUpdated returns the updated resources that have not been compensated yet.
func (t *Transaction) pendingUpdated() []Asset {
	return pending(&t.updated, &t.rolledBackUpdated)
}

func pending(all, done *assets) []Asset {
	var out []Asset
	for _, a := range all.list() {
		if !done.has(a.ID) {
			out = append(out, a)
		}
	}

	return out
}
