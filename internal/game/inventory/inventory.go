package inventory

import "fmt"

// Inventory holds one actor's ammunition stacks in storage order.
// It is not safe for concurrent use; the caller must serialise access.
type Inventory struct {
	ActorID string
	stacks  []Stack
}

// NewInventory creates an Inventory for actorID holding stacks in order.
//
// Precondition: stack IDs are unique.
// Postcondition: Stacks() returns a copy of stacks.
func NewInventory(actorID string, stacks ...Stack) *Inventory {
	return &Inventory{
		ActorID: actorID,
		stacks:  append([]Stack(nil), stacks...),
	}
}

// Stacks returns a snapshot copy of all stacks in storage order.
//
// Postcondition: returned slice is a copy; mutations do not affect the inventory.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, len(inv.stacks))
	copy(out, inv.stacks)
	return out
}

// Stack returns the stack with the given id, stowed or not.
func (inv *Inventory) Stack(id string) (Stack, bool) {
	for _, s := range inv.stacks {
		if s.ID == id {
			return s, true
		}
	}
	return Stack{}, false
}

// FindUnstowed returns the unstowed stack with the given id.
func (inv *Inventory) FindUnstowed(id string) (Stack, bool) {
	for _, s := range inv.stacks {
		if s.ID == id && !s.Stowed {
			return s, true
		}
	}
	return Stack{}, false
}

// FindUnstowedByTemplate returns the first unstowed stack made from templateID.
func (inv *Inventory) FindUnstowedByTemplate(templateID string) (Stack, bool) {
	for _, s := range inv.stacks {
		if s.TemplateID == templateID && !s.Stowed {
			return s, true
		}
	}
	return Stack{}, false
}

// MultiChargeAmmunition returns every stack whose items hold more than one
// charge, in storage order.
func (inv *Inventory) MultiChargeAmmunition() []Stack {
	var out []Stack
	for _, s := range inv.stacks {
		if s.IsMultiCharge() {
			out = append(out, s)
		}
	}
	return out
}

// TotalCharges returns the charges held across all stacks of templateID.
func (inv *Inventory) TotalCharges(templateID string) int {
	total := 0
	for _, s := range inv.stacks {
		if s.TemplateID == templateID {
			total += s.TotalCharges()
		}
	}
	return total
}

// Put inserts s, or replaces the stack with the same ID in place.
//
// Precondition: s.ID is non-empty.
// Postcondition: Stack(s.ID) returns s; storage order of other stacks is unchanged.
func (inv *Inventory) Put(s Stack) {
	for i := range inv.stacks {
		if inv.stacks[i].ID == s.ID {
			inv.stacks[i] = s
			return
		}
	}
	inv.stacks = append(inv.stacks, s)
}

// Remove deletes the stack with the given id.
//
// Postcondition: Stack(id) reports false; returns an error if id was absent.
func (inv *Inventory) Remove(id string) error {
	for i := range inv.stacks {
		if inv.stacks[i].ID == id {
			inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("inventory: stack %q not found", id)
}

// Clone returns a deep copy of the inventory.
func (inv *Inventory) Clone() *Inventory {
	return NewInventory(inv.ActorID, inv.stacks...)
}
