// Package memory provides an in-process host store for actor state.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/rangedcombat/internal/game/actorstate"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
)

// ErrActorNotFound is returned when no state is held for an actor.
var ErrActorNotFound = errors.New("memory: actor not found")

// Store holds actor states in memory and applies ledger batches to them.
//
// Store is safe for concurrent use. Callers always receive clones, so a
// snapshot never observes a later apply.
type Store struct {
	mu      sync.Mutex
	states  map[string]*actorstate.State
	notices map[string][]ledger.Notice
}

// NewStore creates a Store seeded with states.
//
// Postcondition: each state is stored as a clone keyed by its actor ID.
func NewStore(states ...*actorstate.State) *Store {
	s := &Store{
		states:  make(map[string]*actorstate.State),
		notices: make(map[string][]ledger.Notice),
	}
	for _, st := range states {
		s.Put(st)
	}
	return s
}

// Put stores a clone of st, replacing any state held for the same actor.
//
// Precondition: st must be non-nil.
func (s *Store) Put(st *actorstate.State) {
	if st == nil {
		panic("memory: Store.Put: state must not be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.Actor.ID] = st.Clone()
}

// LoadState returns a snapshot of actorID's state.
//
// Postcondition: the result is independent of the store.
func (s *Store) LoadState(_ context.Context, actorID string) (*actorstate.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[actorID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrActorNotFound, actorID)
	}
	return st.Clone(), nil
}

// Apply applies ops to actorID's state as one batch.
//
// Postcondition: on error the stored state is unchanged; on success the
// batch's notices are appended to the actor's notice log.
func (s *Store) Apply(ctx context.Context, actorID string, ops []ledger.Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[actorID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrActorNotFound, actorID)
	}
	next := st.Clone()
	notices, err := next.Apply(ops)
	if err != nil {
		return fmt.Errorf("memory: applying %d operations for %q: %w", len(ops), actorID, err)
	}
	s.states[actorID] = next
	s.notices[actorID] = append(s.notices[actorID], notices...)
	return nil
}

// Notices returns the floating-text notices applied for actorID, oldest first.
func (s *Store) Notices(actorID string) []ledger.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Notice(nil), s.notices[actorID]...)
}
