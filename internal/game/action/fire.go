package action

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// Fire spends one round from one of the actor's loaded weapons: a conjured
// round first, then the chambered or first tracked round of a capacity
// weapon, the loaded round, or a round from the magazine.
func (s *Service) Fire(ctx context.Context, req Request) error {
	r, err := s.begin(ctx, event.Fire, req)
	if err != nil {
		return err
	}
	markers := r.state.Markers
	advanced := s.cfg.Advanced
	w, err := r.selectWeapon(ctx,
		func(w inventory.Weapon) bool { return loading.IsWeaponLoaded(markers, w, advanced) },
		nil,
		msgNoFireable,
	)
	if err != nil {
		return err
	}

	if err := r.spendRound(w); err != nil {
		return fmt.Errorf("action: fire: %w", err)
	}
	return r.commit(ctx, w.ID, fmt.Sprintf(chatFire, r.state.Actor.Name, w.Name), "attack")
}

func (r *run) spendRound(w inventory.Weapon) error {
	markers := r.state.Markers
	if c, ok := loading.ConjuredFor(markers, w); ok {
		return r.engine.RemoveRounds(r.ledger, c, 1)
	}
	if r.cfg.Advanced && w.Repeating {
		if m, ok := loading.MagazineFor(markers, w); ok {
			return r.engine.RemoveRounds(r.ledger, m, 1)
		}
	}
	if c, ok := loading.CapacityFor(markers, w); ok && len(c.Entries) > 0 {
		entry := c.Entries[0]
		if ch, ok := loading.ChamberFor(markers, w); ok {
			if i := c.EntryIndex(ch.Ammunition.TemplateID); i >= 0 {
				entry = c.Entries[i]
			}
		}
		return r.engine.RemoveEntry(r.ledger, w, entry)
	}
	load, ok := loading.LoadMarker(markers, w)
	if !ok {
		return fmt.Errorf("weapon %q holds no rounds", w.ID)
	}
	return r.engine.RemoveRounds(r.ledger, load, 1)
}
