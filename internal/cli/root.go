// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package cli implements the lecternctl operator commands.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/recommend"
)

// Engine is what the commands run against. The production implementation
// is backed by internal/app; tests use a fake.
type Engine interface {
	RunLearningCycle(ctx context.Context, userID int64) (*models.BehavioralInsights, error)
	Insights(ctx context.Context, userID int64) (*models.BehavioralInsights, error)
	AnalyzePatterns(ctx context.Context, userID int64) (*models.PatternReport, error)
	Dashboard(ctx context.Context, userID int64) (*models.DashboardStats, error)
	ActiveUsers(ctx context.Context) ([]int64, error)
	RunBatch(ctx context.Context, userIDs []int64) models.BatchResult
	UpsertDocument(ctx context.Context, doc *models.Document) error
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// Emitter sends one progress update and returns an event id. Synchronous
// emitters return an empty id.
type Emitter interface {
	EmitProgress(ctx context.Context, u models.SessionUpdate) (string, error)
}

// Opener opens the engine for one command invocation. The returned close
// function releases the stores.
type Opener interface {
	OpenEngine(ctx context.Context) (Engine, func() error, error)
	OpenEmitter(ctx context.Context) (Emitter, func() error, error)
}

// NewRootCmd creates the root command for lecternctl.
func NewRootCmd(opener Opener) *cobra.Command {
	var out outputOptions

	root := &cobra.Command{
		Use:   "lecternctl",
		Short: "Operate the Lectern reading analytics engine",
		Long: `Run learning cycles, inspect reading behavior and recommendations,
seed the document catalogue and emit progress events against the
stores configured for the Lectern server.

Configuration is read the same way the server reads it: defaults,
then CONFIG_PATH or config.yaml, then environment variables.`,
		SilenceUsage: true,
	}
	out.addFlags(root)

	root.AddCommand(newLearnCmd(opener, &out))
	root.AddCommand(newPatternsCmd(opener, &out))
	root.AddCommand(newInsightsCmd(opener, &out))
	root.AddCommand(newDashboardCmd(opener, &out))
	root.AddCommand(newRecommendCmd(opener, &out))
	root.AddCommand(newSeedCmd(opener, &out))
	root.AddCommand(newEmitCmd(opener, &out))

	return root
}

// withEngine opens the engine, runs fn and closes it.
func withEngine(cmd *cobra.Command, opener Opener, fn func(ctx context.Context, e Engine) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, closeFn, err := opener.OpenEngine(ctx)
	if err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close engine: %w", cerr)
		}
	}()
	return fn(ctx, e)
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("user id must be a positive integer, got %q", arg)
	}
	return id, nil
}
