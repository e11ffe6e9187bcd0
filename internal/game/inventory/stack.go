package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// Uses tracks the charges left in the currently open item of a stack.
// Invariant: 0 <= Value <= Max.
type Uses struct {
	Value int
	Max   int
}

// Stack is an inventory record of one or more identical consumable rounds
// sharing a charge counter.
type Stack struct {
	ID         string
	TemplateID string
	Name       string
	Quantity   int
	Uses       Uses
	// AutoDestroy makes multi-charge stacks spend one charge at a time.
	AutoDestroy bool
	// Stowed stacks are packed away and never draw or receive rounds.
	Stowed bool
}

// NewStack materialises a single-item stack from an ammunition template with
// every charge available.
//
// Precondition: def is non-nil with Kind == KindAmmunition (panics otherwise).
// Postcondition: Quantity == 1, Uses.Value == Uses.Max == def.MaxUses(), ID is fresh.
func NewStack(def *ItemDef) Stack {
	if def.Kind != KindAmmunition {
		panic(fmt.Sprintf("inventory: NewStack: template %q is %q, not ammunition", def.ID, def.Kind))
	}
	charges := def.MaxUses()
	return Stack{
		ID:          uuid.New().String(),
		TemplateID:  def.ID,
		Name:        def.Name,
		Quantity:    1,
		Uses:        Uses{Value: charges, Max: charges},
		AutoDestroy: def.AutoDestroy,
	}
}

// RecordID returns the stack's identity.
func (s Stack) RecordID() string { return s.ID }

// IsMultiCharge reports whether one item of the stack holds several charges.
func (s Stack) IsMultiCharge() bool {
	return s.Uses.Max > 1
}

// TotalCharges returns the charges remaining across the whole stack.
//
// Postcondition: result == Value + (Quantity-1)*Max when Quantity > 0, else 0.
func (s Stack) TotalCharges() int {
	if s.Quantity <= 0 {
		return 0
	}
	return s.Uses.Value + (s.Quantity-1)*s.Uses.Max
}

// IsFull reports whether the open item is fully charged and the stack non-empty.
func (s Stack) IsFull() bool {
	return s.Quantity > 0 && s.Uses.Value == s.Uses.Max
}

// IsPartial reports whether the stack is a single, partly spent item.
func (s Stack) IsPartial() bool {
	return s.Quantity == 1 && s.Uses.Value < s.Uses.Max
}

// AdjustQuantity returns the stack after delta rounds are added (positive) or
// taken (negative).
//
// Multi-charge auto-destroy stacks move charges: a delta that would take the
// open item to zero or below resets it to Max and drops one item; a delta past
// Max opens a new item holding the overflow. All other stacks change Quantity
// by delta.
//
// Precondition: delta != 0 and the result would not leave Quantity negative.
// Postcondition: s is unchanged; the result has the same ID.
func (s Stack) AdjustQuantity(delta int) Stack {
	out := s
	if !s.AutoDestroy || s.Uses.Max <= 1 {
		out.Quantity += delta
		return out
	}
	value := s.Uses.Value + delta
	switch {
	case value <= 0:
		out.Uses.Value = s.Uses.Max
		out.Quantity--
	case value > s.Uses.Max:
		out.Uses.Value = value - s.Uses.Max
		out.Quantity++
	default:
		out.Uses.Value = value
	}
	return out
}

// TakeItem returns the stack after its open item is removed whole, and the
// charges that item held. The next item, if any, opens fully charged.
//
// Precondition: s.Quantity > 0 (panics otherwise).
func (s Stack) TakeItem() (Stack, int) {
	if s.Quantity <= 0 {
		panic(fmt.Sprintf("inventory: Stack.TakeItem: stack %q is empty", s.ID))
	}
	out := s
	out.Quantity--
	out.Uses.Value = s.Uses.Max
	return out, s.Uses.Value
}
