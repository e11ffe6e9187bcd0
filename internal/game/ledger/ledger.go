// Package ledger stages the record operations produced by one logical action
// and hands them to a persistence collaborator as a single ordered batch.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// OpKind discriminates staged operations.
type OpKind int

const (
	// OpCreate materialises a new record.
	OpCreate OpKind = iota
	// OpUpdate replaces an existing record with the staged value.
	OpUpdate
	// OpDelete removes a record.
	OpDelete
	// OpNotify shows floating text to the user.
	OpNotify
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpNotify:
		return "notify"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Record is anything the host can persist by identity.
type Record interface {
	RecordID() string
}

// Notice is a floating-text message.
type Notice struct {
	Text    string
	IsError bool
}

// Operation is one staged change. Record is set for create, update and
// delete; Notice is set for notify.
type Operation struct {
	Kind   OpKind
	Record Record
	Notice Notice
}

// Applier persists a batch of operations for one actor.
type Applier interface {
	Apply(ctx context.Context, actorID string, ops []Operation) error
}

// ErrAlreadyApplied is returned when a ledger is applied twice.
var ErrAlreadyApplied = errors.New("ledger: already applied")

// Ledger accumulates the operations of one action for one actor.
// It is not safe for concurrent use.
type Ledger struct {
	actorID string
	ops     []Operation
	applied bool
}

// New returns an empty Ledger for actorID.
func New(actorID string) *Ledger {
	return &Ledger{actorID: actorID}
}

// ActorID returns the actor the ledger belongs to.
func (l *Ledger) ActorID() string { return l.actorID }

// Create stages the creation of r.
//
// Precondition: r is non-nil (panics otherwise).
func (l *Ledger) Create(r Record) {
	l.stage(Operation{Kind: OpCreate, Record: mustRecord("Create", r)})
}

// Update stages r as the new value of the record with r's ID.
//
// Precondition: r is non-nil (panics otherwise).
func (l *Ledger) Update(r Record) {
	l.stage(Operation{Kind: OpUpdate, Record: mustRecord("Update", r)})
}

// Delete stages the removal of r.
//
// Precondition: r is non-nil (panics otherwise).
func (l *Ledger) Delete(r Record) {
	l.stage(Operation{Kind: OpDelete, Record: mustRecord("Delete", r)})
}

// Notify stages floating text.
func (l *Ledger) Notify(text string, isError bool) {
	l.stage(Operation{Kind: OpNotify, Notice: Notice{Text: text, IsError: isError}})
}

func (l *Ledger) stage(op Operation) {
	if l.applied {
		panic("ledger: staging on an applied ledger")
	}
	l.ops = append(l.ops, op)
}

func mustRecord(fn string, r Record) Record {
	if r == nil {
		panic(fmt.Sprintf("ledger: Ledger.%s: record must not be nil", fn))
	}
	return r
}

// HasChanges reports whether any operation, notifications included, is staged.
func (l *Ledger) HasChanges() bool {
	return len(l.ops) > 0
}

// Operations returns a copy of the staged operations in staging order.
func (l *Ledger) Operations() []Operation {
	return append([]Operation(nil), l.ops...)
}

// Len returns the number of staged operations.
func (l *Ledger) Len() int { return len(l.ops) }

// Apply hands every staged operation to a in staging order.
//
// Precondition: the ledger has not been applied.
// Postcondition: the ledger is spent whether or not a succeeded; an empty
// ledger applies without calling a. The applier may have persisted a prefix
// of the batch when it fails.
func (l *Ledger) Apply(ctx context.Context, a Applier) error {
	if l.applied {
		return ErrAlreadyApplied
	}
	l.applied = true
	if len(l.ops) == 0 {
		return nil
	}
	if err := a.Apply(ctx, l.actorID, l.Operations()); err != nil {
		return fmt.Errorf("ledger: applying %d operations for actor %q: %w", len(l.ops), l.actorID, err)
	}
	return nil
}
