package inventory

import (
	"errors"
	"fmt"
)

// Magazine tracks the rounds left in a repeating weapon's loaded magazine.
// Invariant: 0 <= Remaining <= Capacity.
type Magazine struct {
	// Capacity is the number of rounds a full magazine holds.
	Capacity int `json:"capacity"`
	// Remaining is the number of rounds not yet fired.
	Remaining int `json:"remaining"`
}

// NewMagazine returns a Magazine holding remaining of capacity rounds.
//
// Precondition:  capacity > 0 and 0 <= remaining <= capacity (panics otherwise).
// Postcondition: Capacity == capacity, Remaining == remaining.
func NewMagazine(capacity, remaining int) Magazine {
	if capacity <= 0 {
		panic(fmt.Sprintf("inventory: NewMagazine: capacity must be > 0, got %d", capacity))
	}
	if remaining < 0 || remaining > capacity {
		panic(fmt.Sprintf("inventory: NewMagazine: remaining must be in [0, %d], got %d", capacity, remaining))
	}
	return Magazine{Capacity: capacity, Remaining: remaining}
}

// IsEmpty returns true when Remaining <= 0.
//
// Postcondition: result == (Remaining <= 0).
func (m Magazine) IsEmpty() bool {
	return m.Remaining <= 0
}

// IsFresh reports whether no round has been fired from the magazine.
func (m Magazine) IsFresh() bool {
	return m.Remaining == m.Capacity
}

// Consume removes n rounds from the magazine.
//
// Precondition:  n > 0 (panics if n <= 0).
// Postcondition: on success Remaining decreases by n; returns error if Remaining < n.
func (m *Magazine) Consume(n int) error {
	if n <= 0 {
		panic(fmt.Sprintf("inventory: Magazine.Consume: n must be > 0, got %d", n))
	}
	if m.Remaining < n {
		return errors.New("inventory: Magazine.Consume: insufficient rounds remaining")
	}
	m.Remaining -= n
	return nil
}
