// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package main is the entry point for the locbeacon server.
//
// Devices and browsers POST their position; viewers poll or subscribe over
// WebSocket to render the latest position of every active user. Entries
// expire after a staleness threshold (five minutes by default).
//
// # Components
//
// The serve command starts, under a suture supervisor tree:
//
//  1. Location registry: in-memory map or BadgerDB directory
//  2. Sweeper: evicts stale locations every sweep interval
//  3. Event pipeline: Watermill router from the in-process bus to the
//     WebSocket hub and, optionally, NATS
//  4. Embedded NATS server (optional)
//  5. HTTP server: chi router with the report, read, health, ws and metrics
//     routes
//
// # Configuration
//
// Defaults, then an optional YAML file (CONFIG_PATH or --config), then
// environment variables:
//
//	PORT=8000 LOCATION_TTL=5m SWEEP_INTERVAL=60s ./locbeacon
//	REGISTRY_BACKEND=badger REGISTRY_PATH=/data/locbeacon ./locbeacon
//	NATS_ENABLED=true NATS_EMBEDDED=true ./locbeacon
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains
// in-flight requests, the sweeper and pipeline stop, and the registry is
// closed.
package main

import (
	"os"

	"github.com/tomtom215/locbeacon/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
