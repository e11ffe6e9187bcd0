package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
)

type rec string

func (r rec) RecordID() string { return string(r) }

type recordingApplier struct {
	calls   int
	actorID string
	ops     []ledger.Operation
	err     error
}

func (a *recordingApplier) Apply(_ context.Context, actorID string, ops []ledger.Operation) error {
	a.calls++
	a.actorID = actorID
	a.ops = ops
	return a.err
}

// TestLedger_Apply_PreservesOrder verifies operations reach the applier in
// staging order as one batch.
func TestLedger_Apply_PreservesOrder(t *testing.T) {
	l := ledger.New("actor-1")
	l.Update(rec("a"))
	l.Notify("Pepperbox (2/3)", false)
	l.Create(rec("b"))
	l.Delete(rec("c"))
	require.True(t, l.HasChanges())
	require.Equal(t, 4, l.Len())

	a := &recordingApplier{}
	require.NoError(t, l.Apply(context.Background(), a))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, "actor-1", a.actorID)
	kinds := make([]ledger.OpKind, len(a.ops))
	for i, op := range a.ops {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []ledger.OpKind{ledger.OpUpdate, ledger.OpNotify, ledger.OpCreate, ledger.OpDelete}, kinds)
	assert.Equal(t, "Pepperbox (2/3)", a.ops[1].Notice.Text)
}

// TestLedger_Apply_NotifyOnly verifies a batch holding only notifications is
// still delivered.
func TestLedger_Apply_NotifyOnly(t *testing.T) {
	l := ledger.New("actor-1")
	l.Notify("nothing to consolidate", false)
	require.True(t, l.HasChanges())
	a := &recordingApplier{}
	require.NoError(t, l.Apply(context.Background(), a))
	assert.Equal(t, 1, a.calls)
}

// TestLedger_Apply_EmptySkipsApplier verifies an empty ledger never calls the
// applier.
func TestLedger_Apply_EmptySkipsApplier(t *testing.T) {
	l := ledger.New("actor-1")
	assert.False(t, l.HasChanges())
	a := &recordingApplier{}
	require.NoError(t, l.Apply(context.Background(), a))
	assert.Equal(t, 0, a.calls)
}

func TestLedger_Apply_Twice(t *testing.T) {
	l := ledger.New("actor-1")
	l.Create(rec("a"))
	a := &recordingApplier{}
	require.NoError(t, l.Apply(context.Background(), a))
	assert.ErrorIs(t, l.Apply(context.Background(), a), ledger.ErrAlreadyApplied)
	assert.Equal(t, 1, a.calls)
}

func TestLedger_Apply_WrapsApplierError(t *testing.T) {
	boom := errors.New("disk full")
	l := ledger.New("actor-1")
	l.Delete(rec("a"))
	err := l.Apply(context.Background(), &recordingApplier{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLedger_StageAfterApply_Panics(t *testing.T) {
	l := ledger.New("actor-1")
	require.NoError(t, l.Apply(context.Background(), &recordingApplier{}))
	assert.Panics(t, func() { l.Create(rec("late")) })
}

func TestLedger_NilRecord_Panics(t *testing.T) {
	l := ledger.New("actor-1")
	assert.Panics(t, func() { l.Update(nil) })
}

// TestLedger_Operations_ReturnsCopy verifies callers cannot rewrite staged ops.
func TestLedger_Operations_ReturnsCopy(t *testing.T) {
	l := ledger.New("actor-1")
	l.Create(rec("a"))
	ops := l.Operations()
	ops[0].Kind = ledger.OpDelete
	assert.Equal(t, ledger.OpCreate, l.Operations()[0].Kind)
}

func TestOpKind_String(t *testing.T) {
	assert.Equal(t, "create", ledger.OpCreate.String())
	assert.Equal(t, "notify", ledger.OpNotify.String())
	assert.Equal(t, "OpKind(9)", ledger.OpKind(9).String())
}

// TestProperty_Ledger_StagedCountMatchesDelivered asserts every staged
// operation is delivered exactly once.
func TestProperty_Ledger_StagedCountMatchesDelivered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		kinds := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(rt, "kinds")
		l := ledger.New("actor")
		for i, k := range kinds {
			id := rec(string(rune('a' + i%26)))
			switch ledger.OpKind(k) {
			case ledger.OpCreate:
				l.Create(id)
			case ledger.OpUpdate:
				l.Update(id)
			case ledger.OpDelete:
				l.Delete(id)
			case ledger.OpNotify:
				l.Notify("n", false)
			}
		}
		a := &recordingApplier{}
		require.NoError(rt, l.Apply(context.Background(), a))
		require.Len(rt, a.ops, len(kinds))
		if len(kinds) == 0 && a.calls != 0 {
			rt.Fatalf("empty ledger called applier %d times", a.calls)
		}
	})
}
