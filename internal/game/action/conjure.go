package action

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// Conjure creates a conjured round in one of the actor's weapons that must be
// loaded and is not repeating. Out of combat the round lasts one round.
//
// Postcondition: on a *WarningError, ErrCancelled or template error nothing
// is applied; on success the conjure event is published once.
func (s *Service) Conjure(ctx context.Context, req Request) error {
	r, err := s.begin(ctx, event.Conjure, req)
	if err != nil {
		return err
	}
	if !r.state.Actor.HasFeature(s.cfg.ConjureFeature) {
		return r.warn(ctx, msgNoConjureFeature, r.state.Actor.Name)
	}
	markers := r.state.Markers
	w, err := r.selectWeapon(ctx,
		func(w inventory.Weapon) bool { return w.RequiresLoading && !w.Repeating },
		func(w inventory.Weapon) bool { return !loading.IsFullyLoaded(markers, w) },
		msgNoReloadable,
	)
	if err != nil {
		return err
	}
	if _, ok := loading.ConjuredFor(markers, w); ok {
		return r.warn(ctx, msgSingleConjured, w.Name)
	}
	if loading.IsFullyLoaded(markers, w) {
		if w.IsCapacity() {
			return r.warn(ctx, msgFullyLoaded, w.Name)
		}
		return r.warn(ctx, msgLoaded, w.Name)
	}

	tmpl, err := s.templates.Template(s.cfg.ConjuredRoundTemplate)
	if err != nil {
		return fmt.Errorf("action: conjure: %w", err)
	}
	round := &loading.ConjuredRound{
		ID:             uuid.New().String(),
		WeaponID:       w.ID,
		Name:           tmpl.Name,
		Description:    tmpl.Description,
		Image:          tmpl.Image,
		DurationRounds: tmpl.DurationRounds,
	}
	if !req.InCombat {
		round.DurationRounds = 1
	}
	r.ledger.Create(round)
	if w.IsCapacity() {
		r.engine.SetChamber(r.ledger, w, loading.ConjuredEntry(round))
	}
	return r.commit(ctx, w.ID, fmt.Sprintf(chatConjure, r.state.Actor.Name, w.Name), "magical", "manipulate")
}
