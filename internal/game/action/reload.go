package action

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// Reload loads one round into one of the actor's weapons, or under the
// advanced system inserts a magazine into a repeating weapon.
//
// Under the advanced system the round is drawn from a compatible unstowed
// stack; under the simple system rounds are not tracked.
func (s *Service) Reload(ctx context.Context, req Request) error {
	r, err := s.begin(ctx, event.Reload, req)
	if err != nil {
		return err
	}
	markers := r.state.Markers
	w, err := r.selectWeapon(ctx,
		func(w inventory.Weapon) bool { return w.RequiresLoading },
		func(w inventory.Weapon) bool { return !loading.IsFullyLoaded(markers, w) },
		msgNoReloadable,
	)
	if err != nil {
		return err
	}
	if s.cfg.Advanced && w.Repeating {
		return r.insertMagazine(ctx, w)
	}
	if loading.IsFullyLoaded(markers, w) {
		if w.IsCapacity() {
			return r.warn(ctx, msgFullyLoaded, w.Name)
		}
		return r.warn(ctx, msgLoaded, w.Name)
	}

	round := loading.AmmunitionEntry{Name: w.Name}
	if s.cfg.Advanced {
		st, err := r.selectStack(ctx, w, func(st inventory.Stack) bool { return st.TotalCharges() > 0 })
		if err != nil {
			return err
		}
		round = loading.AmmunitionEntry{ID: st.ID, TemplateID: st.TemplateID, Name: st.Name}
		r.ledger.Update(st.AdjustQuantity(-1))
	}
	if err := r.engine.LoadRound(r.ledger, w, round); err != nil {
		return fmt.Errorf("action: reload: %w", err)
	}
	return r.commit(ctx, w.ID, fmt.Sprintf(chatReload, r.state.Actor.Name, w.Name, round.Name), "manipulate")
}

func (r *run) insertMagazine(ctx context.Context, w inventory.Weapon) error {
	if _, ok := loading.MagazineFor(r.state.Markers, w); ok {
		return r.warn(ctx, msgMagazineLoaded, w.Name)
	}
	st, err := r.selectStack(ctx, w, func(st inventory.Stack) bool {
		return st.IsMultiCharge() && st.Quantity > 0
	})
	if err != nil {
		return err
	}
	rest, charges := st.TakeItem()
	r.ledger.Update(rest)
	r.ledger.Create(&loading.MagazineLoad{
		ID:                   uuid.New().String(),
		WeaponID:             w.ID,
		Name:                 w.Name,
		AmmunitionName:       st.Name,
		AmmunitionItemID:     st.ID,
		AmmunitionTemplateID: st.TemplateID,
		Magazine:             inventory.NewMagazine(st.Uses.Max, charges),
	})
	return r.commit(ctx, w.ID, fmt.Sprintf(chatReload, r.state.Actor.Name, w.Name, st.Name), "manipulate")
}

// selectStack picks the unstowed stack w draws from among those passing
// usable, asking the actor when more than one fits.
func (r *run) selectStack(ctx context.Context, w inventory.Weapon, usable func(inventory.Stack) bool) (inventory.Stack, error) {
	var fits []inventory.Stack
	for _, st := range r.state.Inventory.Stacks() {
		if !st.Stowed && w.Accepts(st.TemplateID) && usable(st) {
			fits = append(fits, st)
		}
	}
	switch len(fits) {
	case 0:
		return inventory.Stack{}, r.warn(ctx, msgNoAmmunition, w.Name)
	case 1:
		return fits[0], nil
	}
	entries := make([]loading.AmmunitionEntry, len(fits))
	for i, st := range fits {
		entries[i] = loading.AmmunitionEntry{ID: st.ID, TemplateID: st.TemplateID, Name: st.Name, Quantity: st.Quantity}
	}
	chosen, ok := r.selector.SelectAmmunition(ctx, r.req.ActorID, w, entries)
	if !ok {
		return inventory.Stack{}, ErrCancelled
	}
	for _, st := range fits {
		if st.ID == chosen.ID {
			return st, nil
		}
	}
	return inventory.Stack{}, fmt.Errorf("action: selected ammunition %q is not available", chosen.ID)
}
