package ammunition

import (
	"fmt"

	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
)

// Group is the multi-charge stacks made from one ammunition template, in
// inventory order.
type Group struct {
	TemplateID string
	Stacks     []inventory.Stack
}

// GroupByTemplate groups the multi-charge stacks by template in order of
// first appearance. Single-charge stacks are ignored.
func GroupByTemplate(stacks []inventory.Stack) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, s := range stacks {
		if !s.IsMultiCharge() {
			continue
		}
		i, ok := index[s.TemplateID]
		if !ok {
			i = len(groups)
			index[s.TemplateID] = i
			groups = append(groups, Group{TemplateID: s.TemplateID})
		}
		groups[i].Stacks = append(groups[i].Stacks, s)
	}
	return groups
}

// TotalCharges returns the charges held across the group.
func (g Group) TotalCharges() int {
	total := 0
	for _, s := range g.Stacks {
		total += s.TotalCharges()
	}
	return total
}

// IsCanonical reports whether the group needs no consolidation: a single
// empty stack, or at most one full stack plus at most one partial stack and
// nothing else.
func (g Group) IsCanonical() bool {
	if len(g.Stacks) == 1 && g.Stacks[0].Quantity == 0 {
		return true
	}
	full, partial := 0, 0
	for _, s := range g.Stacks {
		switch {
		case s.IsFull():
			full++
		case s.IsPartial():
			partial++
		}
	}
	return full <= 1 && partial <= 1 && full+partial == len(g.Stacks)
}

type consolidation struct {
	updates []inventory.Stack
	creates []inventory.Stack
	deletes []inventory.Stack
}

// plan computes the edits bringing g to canonical form: the first stack
// becomes the full stack, the next (or a new stack from the template) the
// partial stack, and the rest are deleted.
func (g Group) plan(templates inventory.TemplateSource) (consolidation, error) {
	var c consolidation
	perItem := g.Stacks[0].Uses.Max
	total := g.TotalCharges()
	fullItems, remainder := total/perItem, total%perItem

	next := 0
	if fullItems > 0 {
		s := g.Stacks[next]
		s.Quantity = fullItems
		s.Uses = inventory.Uses{Value: perItem, Max: perItem}
		c.updates = append(c.updates, s)
		next++
	}
	if remainder > 0 {
		if next < len(g.Stacks) {
			s := g.Stacks[next]
			s.Quantity = 1
			s.Uses = inventory.Uses{Value: remainder, Max: perItem}
			c.updates = append(c.updates, s)
			next++
		} else {
			tmpl, err := templates.Template(g.TemplateID)
			if err != nil {
				return consolidation{}, fmt.Errorf("ammunition: consolidating %q: %w", g.TemplateID, err)
			}
			s := inventory.NewStack(tmpl)
			s.Uses = inventory.Uses{Value: remainder, Max: perItem}
			c.creates = append(c.creates, s)
		}
	}
	c.deletes = append(c.deletes, g.Stacks[next:]...)
	return c, nil
}

// Consolidate stages the edits that bring every multi-charge ammunition group
// in stacks to canonical form, preserving each group's total charges.
//
// Postcondition: returns false and stages nothing when every group is already
// canonical; on a template error nothing is staged.
func Consolidate(l *ledger.Ledger, stacks []inventory.Stack, templates inventory.TemplateSource) (bool, error) {
	var plans []consolidation
	for _, g := range GroupByTemplate(stacks) {
		if g.IsCanonical() {
			continue
		}
		c, err := g.plan(templates)
		if err != nil {
			return false, err
		}
		plans = append(plans, c)
	}
	for _, c := range plans {
		for _, s := range c.updates {
			l.Update(s)
		}
		for _, s := range c.creates {
			l.Create(s)
		}
		for _, s := range c.deletes {
			l.Delete(s)
		}
	}
	return len(plans) > 0, nil
}
