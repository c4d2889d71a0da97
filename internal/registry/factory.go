// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package registry

import (
	"fmt"
)

// Backend types.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Open creates a registry for the named backend. path is only used by the
// badger backend.
func Open(backend, path string, opts Options) (Registry, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryRegistry(opts), nil
	case BackendBadger:
		r, err := OpenBadgerRegistry(path, opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", backend)
	}
}
