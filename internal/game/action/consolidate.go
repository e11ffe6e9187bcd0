package action

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/rangedcombat/internal/game/ammunition"
	"github.com/cory-johannsen/rangedcombat/internal/game/event"
)

// Consolidate merges the actor's partly spent multi-charge ammunition into at
// most one full and one partial stack per ammunition kind. When nothing needs
// merging the actor is told so and nothing is applied.
func (s *Service) Consolidate(ctx context.Context, req Request) error {
	r, err := s.begin(ctx, event.Consolidate, req)
	if err != nil {
		return err
	}
	changed, err := ammunition.Consolidate(r.ledger, r.state.Inventory.MultiChargeAmmunition(), s.templates)
	if err != nil {
		return fmt.Errorf("action: consolidate: %w", err)
	}
	if !changed {
		s.notifier.Info(ctx, req.ActorID, msgAlreadyConsolidate)
		return nil
	}
	return r.commit(ctx, "", fmt.Sprintf(chatConsolidate, r.state.Actor.Name), "manipulate")
}
