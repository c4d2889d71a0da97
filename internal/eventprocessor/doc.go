// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package eventprocessor carries registry changes to live viewers and, when
enabled, to NATS.

Flow:

	registry write/sweep
	        │ Bus.Publish (watermill gochannel)
	        ▼
	  Pipeline (watermill Router: Recoverer, Retry)
	     ├── WebSocketHandler ──► websocket.Hub ──► viewers
	     └── ForwardHandler ──► Publisher (gobreaker) ──► NATS <prefix>.updated|evicted

Topics on the bus are location.updated and location.evicted. Payloads are
JSON encoded models.LocationEvent values. Viewers receive the stored report
for updates and {"userId","evictedAt"} for evictions.

EmbeddedServer starts an in-process NATS server for single-node setups.
*/
package eventprocessor
