// Package action orchestrates the ammunition actions an actor takes: it
// snapshots the actor, checks preconditions, stages the engine's operations
// in a ledger, applies them and announces the result.
package action

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rangedcombat/internal/config"
	"github.com/cory-johannsen/rangedcombat/internal/game/actorstate"
	"github.com/cory-johannsen/rangedcombat/internal/game/ammunition"
	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
	"github.com/cory-johannsen/rangedcombat/internal/observability"
)

var (
	// ErrPrecondition matches every *WarningError.
	ErrPrecondition = errors.New("action: precondition not met")
	// ErrCancelled is returned when the actor dismisses a selection.
	ErrCancelled = errors.New("action: selection cancelled")
	// ErrUnknownWeapon is returned when a request names a weapon the actor
	// does not own.
	ErrUnknownWeapon = errors.New("action: unknown weapon")
)

// WarningError is a precondition failure that has been shown to the actor.
// Nothing was staged.
type WarningError struct {
	Message string
}

func (e *WarningError) Error() string { return "action: " + e.Message }

// Is reports whether target is ErrPrecondition.
func (e *WarningError) Is(target error) bool { return target == ErrPrecondition }

// Message is a chat card announcing an action.
type Message struct {
	Actor   string
	Text    string
	Actions int
	Traits  []string
}

// Notifier shows warnings, notices and chat messages to the actor's user.
type Notifier interface {
	Warn(ctx context.Context, actorID, text string)
	Info(ctx context.Context, actorID, text string)
	Post(ctx context.Context, actorID string, msg Message)
}

// Selector asks the user to choose. ok is false when the choice was cancelled.
type Selector interface {
	SelectWeapon(ctx context.Context, actorID string, candidates []inventory.Weapon) (inventory.Weapon, bool)
	SelectAmmunition(ctx context.Context, actorID string, w inventory.Weapon, entries []loading.AmmunitionEntry) (loading.AmmunitionEntry, bool)
}

// StateLoader loads a snapshot of one actor.
type StateLoader interface {
	LoadState(ctx context.Context, actorID string) (*actorstate.State, error)
}

// Broadcaster announces applied actions.
type Broadcaster interface {
	Publish(ctx context.Context, a event.Action)
}

// Request names the actor taking an action and, optionally, the weapon. An
// empty WeaponID lets the actor choose among the eligible weapons.
type Request struct {
	ActorID  string
	WeaponID string
	InCombat bool
}

// Service runs ammunition actions.
type Service struct {
	states    StateLoader
	templates inventory.TemplateSource
	applier   ledger.Applier
	notifier  Notifier
	selector  Selector
	events    Broadcaster
	cfg       config.AmmunitionConfig
	logger    *zap.Logger
	now       func() time.Time
}

// Deps bundles the collaborators of a Service.
type Deps struct {
	States    StateLoader
	Templates inventory.TemplateSource
	Applier   ledger.Applier
	Notifier  Notifier
	Selector  Selector
	Events    Broadcaster
}

// NewService creates a Service.
//
// Precondition: every field of deps and logger must be non-nil.
// Postcondition: Returns a non-nil *Service.
func NewService(deps Deps, cfg config.AmmunitionConfig, logger *zap.Logger) *Service {
	if deps.States == nil || deps.Templates == nil || deps.Applier == nil ||
		deps.Notifier == nil || deps.Selector == nil || deps.Events == nil {
		panic("action: NewService: all dependencies must be non-nil")
	}
	if logger == nil {
		panic("action: NewService: logger must not be nil")
	}
	return &Service{
		states:    deps.States,
		templates: deps.Templates,
		applier:   deps.Applier,
		notifier:  deps.Notifier,
		selector:  deps.Selector,
		events:    deps.Events,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// run carries the state of one action invocation.
type run struct {
	*Service
	name   string
	req    Request
	state  *actorstate.State
	engine *ammunition.Engine
	ledger *ledger.Ledger
	log    *zap.Logger
}

func (s *Service) begin(ctx context.Context, name string, req Request) (*run, error) {
	st, err := s.states.LoadState(ctx, req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("action: %s: loading %q: %w", name, req.ActorID, err)
	}
	return &run{
		Service: s,
		name:    name,
		req:     req,
		state:   st,
		engine:  ammunition.NewEngine(req.ActorID, st.Markers, st.Inventory, s.templates),
		ledger:  ledger.New(req.ActorID),
		log:     observability.ActionLogger(s.logger, name, req.ActorID),
	}, nil
}

// warn shows text to the actor and returns it as a *WarningError.
func (r *run) warn(ctx context.Context, format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	r.notifier.Warn(ctx, r.req.ActorID, text)
	r.log.Debug("action rejected", zap.String("reason", text))
	return &WarningError{Message: text}
}

// selectWeapon picks the weapon the action acts on from the actor's weapons
// passing eligible. Weapons passing preferred are offered first.
func (r *run) selectWeapon(ctx context.Context, eligible, preferred func(inventory.Weapon) bool, none string) (inventory.Weapon, error) {
	var candidates []inventory.Weapon
	for _, w := range r.state.Actor.Weapons {
		if eligible(w) {
			candidates = append(candidates, w)
		}
	}
	if r.req.WeaponID != "" {
		w, ok := r.state.Actor.Weapon(r.req.WeaponID)
		if !ok {
			return inventory.Weapon{}, fmt.Errorf("%w: %q", ErrUnknownWeapon, r.req.WeaponID)
		}
		if !eligible(w) {
			return inventory.Weapon{}, r.warn(ctx, msgNotEligible, w.Name)
		}
		return w, nil
	}
	switch len(candidates) {
	case 0:
		return inventory.Weapon{}, r.warn(ctx, "%s", none)
	case 1:
		return candidates[0], nil
	}
	if preferred != nil {
		sort.SliceStable(candidates, func(i, j int) bool {
			return preferred(candidates[i]) && !preferred(candidates[j])
		})
	}
	w, ok := r.selector.SelectWeapon(ctx, r.req.ActorID, candidates)
	if !ok {
		return inventory.Weapon{}, ErrCancelled
	}
	return w, nil
}

// commit posts msg, applies the staged operations and publishes the action.
//
// Postcondition: the event is published only after a successful apply.
func (r *run) commit(ctx context.Context, weaponID, text string, traits ...string) error {
	r.notifier.Post(ctx, r.req.ActorID, Message{
		Actor:   r.state.Actor.Name,
		Text:    text,
		Actions: 1,
		Traits:  traits,
	})
	ops := r.ledger.Len()
	if err := r.ledger.Apply(ctx, r.applier); err != nil {
		r.log.Error("applying action", zap.String("weapon", weaponID), zap.Int("operations", ops), zap.Error(err))
		return fmt.Errorf("action: %s: %w", r.name, err)
	}
	r.log.Info("action applied", zap.String("weapon", weaponID), zap.Int("operations", ops))
	r.events.Publish(ctx, event.Action{
		Name:     r.name,
		ActorID:  r.req.ActorID,
		WeaponID: weaponID,
		At:       r.now(),
	})
	return nil
}
