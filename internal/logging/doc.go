// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package logging provides the zerolog-based structured logger used across Lectern.
//
// There is one global logger. It writes JSON by default and human-readable
// console output when Format is "console". Long-lived components derive a
// scoped logger once with WithComponent and keep it:
//
//	logger := logging.WithComponent("learning")
//	logger.Info().Int64("user_id", uid).Msg("learning cycle committed")
//
// Request-scoped code logs through Ctx, which attaches request_id,
// correlation_id and user_id when the context carries them:
//
//	ctx = logging.ContextWithNewRequestID(ctx)
//	ctx = logging.ContextWithUserID(ctx, uid)
//	logging.Ctx(ctx).Warn().Err(err).Msg("snapshot failed")
//
// Libraries that expect log/slog (sutureslog, the Watermill slog adapter)
// get a zerolog-backed *slog.Logger from NewSlogLogger.
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
