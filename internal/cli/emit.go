// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/models"
)

type emitResult struct {
	EventID string `json:"event_id,omitempty"`
	Applied bool   `json:"applied"`
}

func newEmitCmd(opener Opener, out *outputOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit reading events",
	}
	cmd.AddCommand(newEmitProgressCmd(opener, out))
	return cmd
}

func newEmitProgressCmd(opener Opener, out *outputOptions) *cobra.Command {
	var (
		u      models.SessionUpdate
		readAt string
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Report one session progress update",
		Long: `Report one session progress update. With the NATS event backend the
update is published to the progress topic and consumed by a running
server; otherwise it is applied directly to the stores.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if err := out.validate(); err != nil {
				return err
			}
			if readAt != "" {
				t, err := time.Parse(time.RFC3339, readAt)
				if err != nil {
					return fmt.Errorf("--read-at must be RFC 3339: %w", err)
				}
				u.ReadAt = t
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			emitter, closeFn, err := opener.OpenEmitter(ctx)
			if err != nil {
				return fmt.Errorf("open emitter: %w", err)
			}
			defer func() {
				if cerr := closeFn(); cerr != nil && err == nil {
					err = fmt.Errorf("close emitter: %w", cerr)
				}
			}()

			id, err := emitter.EmitProgress(ctx, u)
			if err != nil {
				return fmt.Errorf("emit progress: %w", err)
			}
			res := emitResult{EventID: id, Applied: id == ""}
			if out.text() {
				if res.Applied {
					fmt.Fprintln(cmd.OutOrStdout(), "progress applied")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "published event %s\n", id)
				}
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&u.UserID, "user", 0, "reader id")
	f.Int64Var(&u.DocumentID, "document", 0, "document id")
	f.IntVar(&u.Position, "position", 0, "reading position")
	f.Float64Var(&u.Progress, "progress", 0, "progress percentage (0-100)")
	f.Int64Var(&u.TimeDelta, "delta", 0, "seconds read since the last update")
	f.Float64Var(&u.SpeedWPM, "wpm", 0, "reading speed in words per minute")
	f.StringVar(&u.Device.Type, "device", "", "device type")
	f.StringVar(&readAt, "read-at", "", "event time (RFC 3339, default now)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("document")
	_ = cmd.MarkFlagRequired("wpm")
	return cmd
}
