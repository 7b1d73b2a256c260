// Package cli implements the one-shot catalog commands. Every invocation
// builds a fresh App (store, gateway, engine), reloads the on-disk state,
// performs exactly one query or mutation, persists mutations, and prints
// a single JSON envelope on stdout. Diagnostics go to stderr via the
// logging package.
package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reco-catalog/internal/config"
	"reco-catalog/internal/logging"
	"reco-catalog/internal/persist"
	"reco-catalog/internal/recommend"
	"reco-catalog/internal/store"
)

// App wires the per-invocation collaborators together. It is constructed
// fresh for every command; nothing survives between invocations except
// the files on disk.
type App struct {
	cfg     *config.Config
	store   *store.Store
	gateway *persist.Gateway
	engine  *recommend.Engine
	logger  zerolog.Logger
}

// NewApp builds the invocation context from resolved configuration. Each
// invocation gets a correlation id so interleaved invocations can be told
// apart in shared log sinks.
func NewApp(cfg *config.Config) *App {
	logger := logging.Logger().With().
		Str("invocation_id", uuid.NewString()).
		Logger()

	return &App{
		cfg:     cfg,
		store:   store.New(),
		gateway: persist.NewGateway(cfg.Data, logger),
		engine:  recommend.NewEngine(logger),
		logger:  logger,
	}
}

// reload pulls the current on-disk state into the store. Mutating
// operations call this immediately before applying their change so they
// observe what any other invocation last wrote, not what this process
// saw at startup. This reconciliation shrinks the lost-update window
// between concurrent invocations but does not close it.
func (a *App) reload(ctx context.Context) error {
	res, err := a.gateway.LoadAll(a.store)
	if err != nil {
		return fmt.Errorf("failed to load catalog state: %w", err)
	}
	a.logger.Debug().
		Int("products", res.Products).
		Int("users", res.Users).
		Int("reviews", res.Reviews).
		Int("skipped", len(res.Skipped)).
		Bool("seeded", res.Seeded).
		Msg("catalog loaded")
	return nil
}

// persistAll writes the store back to disk after a successful mutation.
func (a *App) persistAll() error {
	if err := a.gateway.SaveAll(a.store); err != nil {
		return fmt.Errorf("failed to persist catalog state: %w", err)
	}
	return nil
}
