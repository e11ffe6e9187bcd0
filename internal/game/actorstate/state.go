// Package actorstate holds the snapshot of one actor that an action reads:
// the actor, its weapons, its weapon markers and its ammunition inventory.
package actorstate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// Actor is a combatant that owns weapons and ammunition.
type Actor struct {
	ID       string
	Name     string
	Features []string
	Weapons  []inventory.Weapon
}

// HasFeature reports whether the actor has the feature with the given ID.
func (a Actor) HasFeature(id string) bool {
	return slices.Contains(a.Features, id)
}

// Weapon returns the actor's weapon with the given ID.
func (a Actor) Weapon(id string) (inventory.Weapon, bool) {
	for _, w := range a.Weapons {
		if w.ID == id {
			return w, true
		}
	}
	return inventory.Weapon{}, false
}

// State is one actor's loaded-weapon and inventory state.
// It is not safe for concurrent use.
type State struct {
	Actor     Actor
	Markers   *loading.Set
	Inventory *inventory.Inventory
}

// New assembles a State.
//
// Precondition: markers and inv are non-nil.
// Postcondition: returns an error if markers or inv belong to another actor,
// or a weapon is owned by another actor.
func New(actor Actor, markers *loading.Set, inv *inventory.Inventory) (*State, error) {
	if markers.ActorID() != actor.ID {
		return nil, fmt.Errorf("actorstate: markers belong to %q, not %q", markers.ActorID(), actor.ID)
	}
	if inv.ActorID != actor.ID {
		return nil, fmt.Errorf("actorstate: inventory belongs to %q, not %q", inv.ActorID, actor.ID)
	}
	for _, w := range actor.Weapons {
		if w.ActorID != actor.ID {
			return nil, fmt.Errorf("actorstate: weapon %q belongs to %q, not %q", w.ID, w.ActorID, actor.ID)
		}
	}
	return &State{Actor: actor, Markers: markers, Inventory: inv}, nil
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	a := s.Actor
	a.Features = slices.Clone(s.Actor.Features)
	a.Weapons = make([]inventory.Weapon, len(s.Actor.Weapons))
	for i, w := range s.Actor.Weapons {
		w.Ammunition = slices.Clone(w.Ammunition)
		a.Weapons[i] = w
	}
	return &State{Actor: a, Markers: s.Markers.Clone(), Inventory: s.Inventory.Clone()}
}

// ErrUnsupportedRecord is returned for records that are neither stacks nor markers.
var ErrUnsupportedRecord = errors.New("actorstate: unsupported record")

// Apply performs ops against s in order and returns the notices they carry.
// It stops at the first failing operation, leaving earlier ones applied.
//
// Postcondition: on success every create, update and delete is reflected in
// Markers or Inventory.
func (s *State) Apply(ops []ledger.Operation) ([]ledger.Notice, error) {
	var notices []ledger.Notice
	for i, op := range ops {
		if op.Kind == ledger.OpNotify {
			notices = append(notices, op.Notice)
			continue
		}
		if err := s.applyRecord(op); err != nil {
			return notices, fmt.Errorf("actorstate: operation %d (%s %q): %w", i, op.Kind, op.Record.RecordID(), err)
		}
	}
	return notices, nil
}

func (s *State) applyRecord(op ledger.Operation) error {
	switch r := op.Record.(type) {
	case inventory.Stack:
		return s.applyStack(op.Kind, r)
	case loading.Marker:
		return s.applyMarker(op.Kind, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedRecord, op.Record)
	}
}

func (s *State) applyStack(kind ledger.OpKind, st inventory.Stack) error {
	_, exists := s.Inventory.Stack(st.ID)
	switch kind {
	case ledger.OpCreate:
		if exists {
			return errors.New("stack already exists")
		}
		s.Inventory.Put(st)
	case ledger.OpUpdate:
		if !exists {
			return errors.New("stack not found")
		}
		s.Inventory.Put(st)
	case ledger.OpDelete:
		return s.Inventory.Remove(st.ID)
	}
	return nil
}

func (s *State) applyMarker(kind ledger.OpKind, m loading.Marker) error {
	_, exists := s.Markers.ByID(m.RecordID())
	switch kind {
	case ledger.OpCreate:
		if exists {
			return errors.New("marker already exists")
		}
		if _, ok := s.Actor.Weapon(m.Weapon()); !ok {
			return fmt.Errorf("weapon %q is not owned by actor %q", m.Weapon(), s.Actor.ID)
		}
		return s.Markers.Put(loading.Clone(m))
	case ledger.OpUpdate:
		if !exists {
			return loading.ErrMarkerNotFound
		}
		return s.Markers.Put(loading.Clone(m))
	case ledger.OpDelete:
		return s.Markers.Remove(m.RecordID())
	}
	return nil
}
