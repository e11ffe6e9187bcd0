package action

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// Unload takes ammunition out of one of the actor's loaded weapons.
//
// Under the advanced system a repeating weapon gives up its magazine, a
// capacity weapon gives up one round of the chosen ammunition, and any other
// weapon gives up its conjured round or its loaded round. Unloaded rounds go
// back to inventory; conjured rounds vanish. Under the simple system one
// round is removed with no inventory effect.
func (s *Service) Unload(ctx context.Context, req Request) error {
	r, err := s.begin(ctx, event.Unload, req)
	if err != nil {
		return err
	}
	markers := r.state.Markers
	advanced := s.cfg.Advanced
	w, err := r.selectWeapon(ctx,
		func(w inventory.Weapon) bool { return loading.IsWeaponLoaded(markers, w, advanced) },
		nil,
		msgNoLoaded,
	)
	if err != nil {
		return err
	}
	load, hasLoad := loading.LoadMarker(markers, w)
	conjured, hasConjured := loading.ConjuredFor(markers, w)
	magazine, hasMagazine := loading.MagazineFor(markers, w)
	if !hasLoad && !hasConjured && !hasMagazine {
		return r.warn(ctx, msgNotLoaded, w.Name)
	}

	actor := r.state.Actor.Name
	var text string
	switch {
	case !advanced:
		if !hasLoad {
			if !hasConjured {
				return r.warn(ctx, msgNotLoaded, w.Name)
			}
			load = conjured
		}
		if err := r.engine.RemoveRounds(r.ledger, load, 1); err != nil {
			return fmt.Errorf("action: unload: %w", err)
		}
		text = fmt.Sprintf(chatUnload, actor, w.Name)

	case w.Repeating:
		if !hasMagazine {
			if hasLoad {
				r.ledger.Delete(load)
			}
			if hasConjured {
				r.ledger.Delete(conjured)
			}
			text = fmt.Sprintf(chatUnload, actor, w.Name)
			break
		}
		if err := r.engine.UnloadMagazine(r.ledger, magazine); err != nil {
			return fmt.Errorf("action: unload: %w", err)
		}
		text = fmt.Sprintf(chatUnloadAmmo, actor, magazine.AmmunitionName, w.Name)

	case w.IsCapacity():
		entries := loading.LoadedAmmunition(markers, w)
		if len(entries) == 0 {
			if err := r.engine.RemoveRounds(r.ledger, load, 1); err != nil {
				return fmt.Errorf("action: unload: %w", err)
			}
			text = fmt.Sprintf(chatUnload, actor, w.Name)
			break
		}
		entry := entries[0]
		if len(entries) > 1 {
			var ok bool
			entry, ok = s.selector.SelectAmmunition(ctx, req.ActorID, w, entries)
			if !ok {
				return ErrCancelled
			}
		}
		if entry.IsConjured() {
			r.ledger.Delete(conjured)
			r.engine.ClearChamber(r.ledger, w.ID, &entry)
		} else {
			if err := r.engine.ReturnToInventory(r.ledger, entry); err != nil {
				return fmt.Errorf("action: unload: %w", err)
			}
			if err := r.engine.RemoveEntry(r.ledger, w, entry); err != nil {
				return fmt.Errorf("action: unload: %w", err)
			}
		}
		text = fmt.Sprintf(chatUnloadAmmo, actor, entry.Name, w.Name)

	case hasConjured:
		r.ledger.Delete(conjured)
		text = fmt.Sprintf(chatUnloadAmmo, actor, loading.ConjuredEntry(conjured).Name, w.Name)

	default:
		name := w.Name
		if simple, ok := load.(*loading.SimpleLoad); ok && simple.Ammunition != nil {
			if err := r.engine.ReturnToInventory(r.ledger, *simple.Ammunition); err != nil {
				return fmt.Errorf("action: unload: %w", err)
			}
			name = simple.Ammunition.Name
		}
		if err := r.engine.RemoveRounds(r.ledger, load, 1); err != nil {
			return fmt.Errorf("action: unload: %w", err)
		}
		text = fmt.Sprintf(chatUnloadAmmo, actor, name, w.Name)
	}
	return r.commit(ctx, w.ID, text, "manipulate")
}
