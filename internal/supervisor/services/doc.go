// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package services adapts locbeacon components to suture.Service.

Each wrapper translates a component lifecycle into Serve(ctx) error:

  - HTTPServerService: ListenAndServe/Shutdown with a drain timeout
  - WebSocketHubService: Hub.RunWithContext
  - SweeperService: Sweeper Start/Stop
  - EventPipelineService: Pipeline.Run
  - NATSServerService: start an embedded NATS server, shut it down on cancel

Every wrapper implements fmt.Stringer so supervisor logs name the service.
*/
package services
