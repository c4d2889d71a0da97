// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package config loads Locbeacon configuration with koanf.
//
// Sources are layered with later sources winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML file from CONFIG_PATH, ./config.yaml, ./config.yml or /etc/locbeacon/
//  3. Environment variables mapped through envTransformFunc
//
// Example config.yaml:
//
//	server:
//	  port: 8000
//	registry:
//	  backend: badger
//	  path: /data/locbeacon
//	  ttl: 5m
//	  sweep_interval: 60s
//	nats:
//	  enabled: true
//	  embedded: true
//
// Only mapped environment variables are read, so unrelated variables in the
// process environment never leak into the configuration.
package config
