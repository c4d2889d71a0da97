// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package websocket pushes location events to connected viewers.

It uses gorilla/websocket with a hub-client layout:

	┌──────────┐
	│   Hub    │ ← broadcasts to all clients
	└────┬─────┘
	     │
	┌────┴─────┬─────────┬─────────┐
	│ Client1  │ Client2 │ Client3 │
	└──────────┴─────────┴─────────┘

Each client runs a readPump (pings only) and a writePump (events plus
keepalive pings). Frames are JSON envelopes:

	{"type": "location_updated", "data": {...LocationReport...}}
	{"type": "location_evicted", "data": {"userId": "u1", ...}}

Clients that fall behind are dropped rather than blocking the hub. Viewers
that never connect keep polling the bulk read endpoint instead.
*/
package websocket
