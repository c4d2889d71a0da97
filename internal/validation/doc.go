// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

// Package validation decodes and validates incoming location reports using
// go-playground/validator v10.
//
// A single validator instance is shared across requests. Errors name fields
// by their JSON names and convert to the API error payload:
//
//	report, err := validation.DecodeLocationReport(body)
//	switch {
//	case errors.Is(err, validation.ErrMalformedJSON):
//	    // 400 INVALID_JSON
//	case err != nil:
//	    var verr *validation.RequestValidationError
//	    if errors.As(err, &verr) {
//	        apiErr := verr.ToAPIError() // 400 VALIDATION_ERROR
//	    }
//	}
//
// Custom validators:
//   - notblank: string must contain a non-whitespace character
package validation
