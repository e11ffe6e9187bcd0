//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rangedcombat/internal/config"
)

func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts options) (*app, func(), error) {
	wire.Build(
		provideRegistry,
		provideStore,
		provideScripts,
		provideBus,
		provideNotifier,
		provideSelector,
		provideService,
		newApp,
	)
	return nil, nil, nil
}
