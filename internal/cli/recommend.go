// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/recommend"
)

func newRecommendCmd(opener Opener, out *outputOptions) *cobra.Command {
	var (
		mode    string
		limit   int
		minutes float64
	)

	cmd := &cobra.Command{
		Use:   "recommend <user-id>",
		Short: "List recommendations for a reader",
		Long: `List ranked recommendations for a reader.

Modes:
  personalized   composite score over interests, patterns, similarity, trending and level
  discovery      recent documents outside the reader's interests
  time_budgeted  personalized picks that fit --minutes of reading`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			m, err := recommend.ParseMode(mode)
			if err != nil {
				return err
			}
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			if m == recommend.ModeTimeBudgeted && minutes <= 0 {
				return errors.New("--minutes must be positive for time_budgeted")
			}

			return withEngine(cmd, opener, func(ctx context.Context, e Engine) error {
				resp, err := e.Recommend(ctx, recommend.Request{
					UserID:           userID,
					Mode:             m,
					K:                limit,
					AvailableMinutes: minutes,
				})
				if err != nil {
					return fmt.Errorf("recommend for user %d: %w", userID, err)
				}
				if !out.text() {
					return writeJSON(cmd.OutOrStdout(), resp)
				}

				w := cmd.OutOrStdout()
				if len(resp.Items) == 0 {
					fmt.Fprintln(w, "no recommendations")
					return nil
				}
				for i, item := range resp.Items {
					fmt.Fprintf(w, "%2d. [%d] %-40s %.3f  %s\n",
						i+1, item.Document.ID, item.Document.Title, item.Score,
						joinOrDash(item.Document.Metadata.Themes))
				}
				fmt.Fprintf(w, "\n%d of %d candidates\n", len(resp.Items), resp.TotalCandidates)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "personalized", "personalized, discovery or time_budgeted")
	cmd.Flags().IntVarP(&limit, "limit", "k", 0, "number of results (0 uses the mode default)")
	cmd.Flags().Float64Var(&minutes, "minutes", 0, "available reading time for time_budgeted")
	return cmd
}
