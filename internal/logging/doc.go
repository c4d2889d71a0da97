// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package logging provides zerolog-based structured logging for Locbeacon.
//
// All components log through the package-level logger so that level and
// format are controlled from one place. JSON output is the default; the
// console format is meant for local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("user_id", id).Msg("Location accepted")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Registry write failed")
//
// # Configuration
//
// Environment Variables (mapped by internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Adapters
//
// Two adapters let third-party libraries write through the same logger:
//
//   - NewSlogLogger returns a *slog.Logger used by the suture supervisor tree
//   - NewWatermillAdapter returns a watermill.LoggerAdapter used by the event bus
//
// # Untrusted Values
//
// User id and user name arrive from clients. Pass them through SanitizeValue
// before logging so control characters cannot forge log lines.
package logging
