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
)

func newLearnCmd(opener Opener, out *outputOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "learn [user-id]",
		Short: "Run a learning cycle",
		Long: `Run a full learning cycle for one reader, or for every reader with
recent sessions when --all is given. The cycle re-analyzes patterns,
evolves interests and adapts the reading level, then commits the
updated profile.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("--all takes no user id")
			}
			if !all && len(args) != 1 {
				return errors.New("expected exactly one user id (or --all)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := out.validate(); err != nil {
				return err
			}
			if all {
				return withEngine(cmd, opener, func(ctx context.Context, e Engine) error {
					users, err := e.ActiveUsers(ctx)
					if err != nil {
						return fmt.Errorf("list active users: %w", err)
					}
					result := e.RunBatch(ctx, users)
					if out.text() {
						fmt.Fprintf(cmd.OutOrStdout(), "users: %d  succeeded: %d  failed: %d  (%dms)\n",
							result.Users, result.Succeeded, result.Failed, result.DurationMS)
						return nil
					}
					return writeJSON(cmd.OutOrStdout(), result)
				})
			}

			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd, opener, func(ctx context.Context, e Engine) error {
				insights, err := e.RunLearningCycle(ctx, userID)
				if err != nil {
					return fmt.Errorf("learning cycle for user %d: %w", userID, err)
				}
				if out.text() {
					writeInsightsText(cmd.OutOrStdout(), insights)
					return nil
				}
				return writeJSON(cmd.OutOrStdout(), insights)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "run for every active reader")
	return cmd
}
