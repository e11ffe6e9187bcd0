package loading

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Lookup finds the marker of one kind attached to a weapon.
type Lookup interface {
	// Find returns the marker of kind attached to weaponID for actorID.
	// The returned marker is shared; callers must Clone it before changing it.
	Find(actorID string, kind Kind, weaponID string) (Marker, bool)
}

type slot struct {
	weaponID string
	kind     Kind
}

// Set holds every marker owned by one actor, at most one per weapon and kind.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	actorID string
	markers map[slot]Marker
}

// NewSet creates a Set for actorID holding markers.
//
// Precondition: none.
// Postcondition: returns the populated Set, or the first Put error.
func NewSet(actorID string, markers ...Marker) (*Set, error) {
	s := &Set{actorID: actorID, markers: make(map[slot]Marker, len(markers))}
	for _, m := range markers {
		if err := s.Put(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ActorID returns the owner of the set.
func (s *Set) ActorID() string { return s.actorID }

// Len returns the number of markers held.
func (s *Set) Len() int { return len(s.markers) }

// Put stores m, replacing a marker with the same ID in the same slot.
//
// Precondition: m is non-nil.
// Postcondition: on success Find(ActorID(), m.Kind(), m.Weapon()) returns m.
// Returns an error when m is invalid, when its slot is held by a different
// marker, when m.RecordID() is already used by another slot, or when the
// weapon's load slot already holds the other load shape.
func (s *Set) Put(m Marker) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("loading: Set.Put: invalid %s marker %q: %w", m.Kind(), m.RecordID(), err)
	}
	key := slot{weaponID: m.Weapon(), kind: m.Kind()}
	if cur, ok := s.markers[key]; ok && cur.RecordID() != m.RecordID() {
		return fmt.Errorf("loading: Set.Put: weapon %q already holds %s marker %q", m.Weapon(), m.Kind(), cur.RecordID())
	}
	if other, ok := s.ByID(m.RecordID()); ok && (other.Kind() != m.Kind() || other.Weapon() != m.Weapon()) {
		return fmt.Errorf("loading: Set.Put: marker ID %q already used by a %s marker", m.RecordID(), other.Kind())
	}
	if rival, ok := loadRival(m.Kind()); ok {
		if cur, exists := s.markers[slot{weaponID: m.Weapon(), kind: rival}]; exists {
			return fmt.Errorf("loading: Set.Put: weapon %q already holds %s marker %q", m.Weapon(), rival, cur.RecordID())
		}
	}
	s.markers[key] = m
	return nil
}

// loadRival returns the other shape of the load slot for kind.
func loadRival(kind Kind) (Kind, bool) {
	switch kind {
	case KindSimple:
		return KindCapacity, true
	case KindCapacity:
		return KindSimple, true
	}
	return "", false
}

// Remove deletes the marker with the given id.
//
// Postcondition: ByID(id) reports false; returns an error if id was absent.
func (s *Set) Remove(id string) error {
	for key, m := range s.markers {
		if m.RecordID() == id {
			delete(s.markers, key)
			return nil
		}
	}
	return fmt.Errorf("loading: Set.Remove: %w: %q", ErrMarkerNotFound, id)
}

// ErrMarkerNotFound is returned when a marker ID is unknown.
var ErrMarkerNotFound = errors.New("marker not found")

// ByID returns the marker with the given record ID.
func (s *Set) ByID(id string) (Marker, bool) {
	for _, m := range s.markers {
		if m.RecordID() == id {
			return m, true
		}
	}
	return nil, false
}

// Find implements Lookup. Markers of other actors are never found.
func (s *Set) Find(actorID string, kind Kind, weaponID string) (Marker, bool) {
	if actorID != s.actorID {
		return nil, false
	}
	m, ok := s.markers[slot{weaponID: weaponID, kind: kind}]
	return m, ok
}

// ForWeapon returns the markers attached to weaponID in Kinds order.
func (s *Set) ForWeapon(weaponID string) []Marker {
	var out []Marker
	for _, k := range Kinds {
		if m, ok := s.markers[slot{weaponID: weaponID, kind: k}]; ok {
			out = append(out, m)
		}
	}
	return out
}

// All returns every marker ordered by weapon ID, then by Kinds order.
func (s *Set) All() []Marker {
	out := make([]Marker, 0, len(s.markers))
	for _, m := range s.markers {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Marker) int {
		if c := strings.Compare(a.Weapon(), b.Weapon()); c != 0 {
			return c
		}
		return slices.Index(Kinds, a.Kind()) - slices.Index(Kinds, b.Kind())
	})
	return out
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	cp := &Set{actorID: s.actorID, markers: make(map[slot]Marker, len(s.markers))}
	for key, m := range s.markers {
		cp.markers[key] = Clone(m)
	}
	return cp
}
