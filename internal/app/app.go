// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/learning"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/recommend"
	"github.com/tomtom215/lectern/internal/statestore"
)

// App holds the opened stores and the engine built on top of them.
type App struct {
	Config      *config.Config
	DB          *database.DB
	State       *statestore.Store
	Coordinator *learning.Coordinator
	Engine      *recommend.Engine

	logger zerolog.Logger
}

// New opens DuckDB and Badger and builds the coordinator and recommendation
// engine. The caller owns the returned App and must Close it.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	logger := logging.WithComponent("app")

	lc, err := LearningConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	state, err := statestore.Open(&cfg.State)
	if err != nil {
		closeLogged(logger, "database", db.Close)
		return nil, fmt.Errorf("open state store: %w", err)
	}

	a, err := assemble(cfg, db, state, lc, logger)
	if err != nil {
		closeLogged(logger, "state store", state.Close)
		closeLogged(logger, "database", db.Close)
		return nil, err
	}
	return a, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func assemble(cfg *config.Config, db *database.DB, state *statestore.Store, lc learning.Config, logger zerolog.Logger) (*App, error) {
	coordinator, err := learning.New(db, state, lc)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}

	engine, err := recommend.NewEngine(RecommendConfig(&cfg.Recommend), logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(coordinator)
	coordinator.SetCache(engine)

	return &App{
		Config:      cfg,
		DB:          db,
		State:       state,
		Coordinator: coordinator,
		Engine:      engine,
		logger:      logger,
	}, nil
}

// Close closes the state store and the database.
func (a *App) Close() error {
	var errs []error
	if err := a.State.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close state store: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func closeLogged(logger zerolog.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error().Err(err).Str("resource", what).Msg("close failed")
	}
}
