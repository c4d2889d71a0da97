// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package sweeper evicts locations that have not been refreshed within the
// staleness window. By default it runs every 60 seconds with a 5 minute TTL,
// publishes a location_evicted event per removed user and, on the Badger
// backend, reclaims value log space after evicting.
package sweeper
