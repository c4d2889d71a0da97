// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package cli builds the locbeacon command tree.
//
//	locbeacon [serve]   run the server (default)
//	locbeacon version   print the build version
//	locbeacon config    print the effective configuration as YAML
//	locbeacon report    send one location report to a running server
package cli
