// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/models"
)

// readCommand builds a single-reader, read-only command.
func readCommand[T any](opener Opener, out *outputOptions, use, short string,
	fetch func(ctx context.Context, e Engine, userID int64) (*T, error),
	text func(w io.Writer, v *T),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd, opener, func(ctx context.Context, e Engine) error {
				v, err := fetch(ctx, e, userID)
				if err != nil {
					return fmt.Errorf("%s for user %d: %w", use, userID, err)
				}
				if out.text() {
					text(cmd.OutOrStdout(), v)
					return nil
				}
				return writeJSON(cmd.OutOrStdout(), v)
			})
		},
	}
}

func newPatternsCmd(opener Opener, out *outputOptions) *cobra.Command {
	return readCommand(opener, out, "patterns", "Analyze reading patterns",
		func(ctx context.Context, e Engine, id int64) (*models.PatternReport, error) {
			return e.AnalyzePatterns(ctx, id)
		},
		func(w io.Writer, r *models.PatternReport) {
			fmt.Fprintf(w, "user:       %d\n", r.UserID)
			fmt.Fprintf(w, "window:     %d days, %d sessions\n", r.WindowDays, r.SessionCount)
			fmt.Fprintf(w, "frequency:  %s (%.2f/day over %d active days)\n",
				r.Frequency.Frequency, r.Frequency.AvgDailySessions, r.Frequency.ActiveDays)
		},
	)
}

func newInsightsCmd(opener Opener, out *outputOptions) *cobra.Command {
	return readCommand(opener, out, "insights", "Show behavioral insights without committing",
		func(ctx context.Context, e Engine, id int64) (*models.BehavioralInsights, error) {
			return e.Insights(ctx, id)
		},
		writeInsightsText,
	)
}

func newDashboardCmd(opener Opener, out *outputOptions) *cobra.Command {
	return readCommand(opener, out, "dashboard", "Show the reader dashboard",
		func(ctx context.Context, e Engine, id int64) (*models.DashboardStats, error) {
			return e.Dashboard(ctx, id)
		},
		func(w io.Writer, s *models.DashboardStats) {
			fmt.Fprintf(w, "user:        %d\n", s.UserID)
			fmt.Fprintf(w, "documents:   %d (%d completed, %.0f%%)\n",
				s.TotalDocuments, s.CompletedDocuments, s.CompletionRate)
			fmt.Fprintf(w, "sessions:    %d recent\n", s.RecentSessions)
			fmt.Fprintf(w, "streak:      %d days\n", s.ReadingStreak)
			fmt.Fprintf(w, "this week:   %d minutes\n", s.WeeklyMinutes)
		},
	)
}

func writeInsightsText(w io.Writer, in *models.BehavioralInsights) {
	fmt.Fprintf(w, "user:        %d\n", in.UserID)
	fmt.Fprintf(w, "level:       %s\n", in.ReadingLevel)
	fmt.Fprintf(w, "streak:      %d days\n", in.ReadingStreak)
	fmt.Fprintf(w, "consistency: %.2f\n", in.ReadingConsistency)
	fmt.Fprintf(w, "trend:       %s\n", in.EngagementTrend)
	fmt.Fprintf(w, "interests:   %s\n", joinOrDash(in.Interests))
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
