// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package supervisor runs locbeacon's long-lived services under suture v4.

	RootSupervisor ("locbeacon")
	├── DataSupervisor ("data-layer")
	│   └── SweeperService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── NATSServerService (if NATS_EMBEDDED)
	│   ├── WebSocketHubService (if WEBSOCKET_ENABLED)
	│   └── EventPipelineService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with backoff. Supervisor events are logged through
sutureslog into the zerolog-backed slog handler from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewSweeperService(sw))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
