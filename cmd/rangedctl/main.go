// Package main provides rangedctl, which runs one ammunition action for one
// actor against the memory or PostgreSQL store.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rangedcombat/internal/config"
	"github.com/cory-johannsen/rangedcombat/internal/game/action"
	"github.com/cory-johannsen/rangedcombat/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	actorID := flag.String("actor", "", "ID of the acting actor")
	actionName := flag.String("action", "", "action to take: conjure, unload, consolidate, reload or fire")
	weaponID := flag.String("weapon", "", "weapon to act on; empty picks the first eligible weapon")
	ammunition := flag.String("ammunition", "", "ammunition template to prefer when a choice is needed")
	inCombat := flag.Bool("in-combat", false, "whether the actor is in an encounter")
	store := flag.String("store", "memory", "actor store: memory or postgres")
	seed := flag.String("seed", "content/actors.yaml", "actor seed YAML; empty skips seeding")
	flag.Parse()

	if *actorID == "" || *actionName == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	a, cleanup, err := initializeApp(ctx, cfg, logger, options{
		store:      *store,
		seed:       *seed,
		ammunition: *ammunition,
	})
	if err != nil {
		logger.Fatal("initializing", zap.Error(err))
	}
	defer cleanup()
	logger.Info("ready",
		zap.String("store", *store),
		zap.Bool("advanced", cfg.Ammunition.Advanced),
		zap.Duration("elapsed", time.Since(start)),
	)

	err = a.Run(ctx, *actionName, action.Request{
		ActorID:  *actorID,
		WeaponID: *weaponID,
		InCombat: *inCombat,
	})
	if err != nil {
		reportFailure(logger, *actionName, err)
		cleanup()
		os.Exit(1)
	}
}

// reportFailure logs err unless it is a warning or cancellation, which the
// actor has already seen.
func reportFailure(logger *zap.Logger, actionName string, err error) {
	if errors.Is(err, action.ErrPrecondition) || errors.Is(err, action.ErrCancelled) {
		return
	}
	logger.Error("action failed", zap.String("action", actionName), zap.Error(err))
}
