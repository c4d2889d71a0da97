// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package api exposes the location registry over HTTP.

Routes:

	POST /report                        write a location report
	POST /api/share-location            alias of /report
	POST /api/v1/locations              alias of /report
	GET  /api/latest-location           every fresh location
	GET  /api/v1/locations              alias of /api/latest-location
	GET  /api/v1/locations/{userId}     one user's fresh location
	GET  /health                        {"ok":true}
	GET  /health/live                   liveness with uptime
	GET  /health/ready                  registry reachability and entry count
	GET  /ws                            WebSocket push of location events
	GET  /metrics                       Prometheus exposition

Every response body carries an "ok" flag. Failures add a "reason" string
and a structured "error" with a machine-readable code and the request ID.

Accepted writes are published to the event bus as location_updated events;
publishing is best effort and never fails the write.
*/
package api
