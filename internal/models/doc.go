// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

/*
Package models defines the data shared between the registry, the HTTP layer
and the event bus.

  - LocationReport: the single current location held per user
  - LocationEvent: registry change notifications (updated, evicted)
  - ReportAck, LocationList, LocationDetail, HealthStatus, ErrorResponse:
    HTTP response bodies

JSON field names follow the camelCase names that location clients already
send (userId, userName, altitudeAccuracy), while error details use the
snake_case request_id used in logs.
*/
package models
