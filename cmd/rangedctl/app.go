package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rangedcombat/internal/config"
	"github.com/cory-johannsen/rangedcombat/internal/game/action"
	"github.com/cory-johannsen/rangedcombat/internal/game/actorstate"
	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
	"github.com/cory-johannsen/rangedcombat/internal/scripting"
	"github.com/cory-johannsen/rangedcombat/internal/storage/memory"
	"github.com/cory-johannsen/rangedcombat/internal/storage/postgres"
)

// options are the command-line choices that shape the object graph.
type options struct {
	store      string
	seed       string
	ammunition string
}

// hostStore loads actor state and applies ledger batches to it.
type hostStore interface {
	action.StateLoader
	ledger.Applier
}

// app runs one action against the wired service.
type app struct {
	svc    *action.Service
	logger *zap.Logger
}

func newApp(svc *action.Service, logger *zap.Logger) *app {
	return &app{svc: svc, logger: logger}
}

// Run dispatches name to the matching action.
func (a *app) Run(ctx context.Context, name string, req action.Request) error {
	var run func(context.Context, action.Request) error
	switch name {
	case event.Conjure:
		run = a.svc.Conjure
	case event.Unload:
		run = a.svc.Unload
	case event.Consolidate:
		run = a.svc.Consolidate
	case event.Reload:
		run = a.svc.Reload
	case event.Fire:
		run = a.svc.Fire
	default:
		return fmt.Errorf("unknown action %q", name)
	}
	start := time.Now()
	err := run(ctx, req)
	a.logger.Debug("action finished",
		zap.String("action", name),
		zap.String("actor", req.ActorID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return err
}

func provideRegistry(cfg config.Config) (*inventory.Registry, error) {
	return inventory.LoadRegistry(cfg.Ammunition.TemplatesDir, cfg.Ammunition.WeaponsDir)
}

// provideStore opens the configured store. A seed file populates the memory
// store and, for postgres, overwrites the seeded actors' rows.
func provideStore(ctx context.Context, cfg config.Config, opts options, reg *inventory.Registry, logger *zap.Logger) (hostStore, func(), error) {
	var states []*actorstate.State
	if opts.seed != "" {
		var err error
		if states, err = memory.LoadSeed(opts.seed, reg); err != nil {
			return nil, nil, err
		}
	}

	switch opts.store {
	case "memory":
		logger.Info("using memory store", zap.Int("actors", len(states)))
		return memory.NewStore(states...), func() {}, nil
	case "postgres":
		start := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(start)),
		)
		store := pool.Store()
		if err := saveAll(ctx, store, states); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q: must be memory or postgres", opts.store)
}

func saveAll(ctx context.Context, store *postgres.Store, states []*actorstate.State) error {
	for _, st := range states {
		if err := store.Save(ctx, st); err != nil {
			return fmt.Errorf("seeding actor %q: %w", st.Actor.ID, err)
		}
	}
	return nil
}

func provideScripts(cfg config.Config, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(logger)
	if cfg.Scripting.Dir != "" {
		if err := mgr.Load(cfg.Scripting.Dir, cfg.Scripting.InstructionLimit); err != nil {
			return nil, nil, err
		}
	}
	return mgr, mgr.Close, nil
}

func provideBus(logger *zap.Logger, scripts *scripting.Manager) *event.Bus {
	bus := event.NewBus(logger)
	bus.Subscribe("scripting", scripts.Observe)
	return bus
}

func provideNotifier(logger *zap.Logger) action.Notifier {
	return newConsoleNotifier(os.Stdout, logger)
}

func provideSelector(opts options) action.Selector {
	return firstChoiceSelector{ammunition: opts.ammunition}
}

func provideService(
	store hostStore,
	reg *inventory.Registry,
	notifier action.Notifier,
	selector action.Selector,
	bus *event.Bus,
	cfg config.Config,
	logger *zap.Logger,
) *action.Service {
	return action.NewService(action.Deps{
		States:    store,
		Templates: reg,
		Applier:   store,
		Notifier:  notifier,
		Selector:  selector,
		Events:    bus,
	}, cfg.Ammunition, logger)
}
