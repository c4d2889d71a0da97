// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package validation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/locbeacon/internal/models"
)

// ErrMalformedJSON is returned when the body is not a JSON object.
var ErrMalformedJSON = errors.New("malformed JSON")

// reportPayload holds the fields a report cannot be stored without.
// Pointers keep a missing field distinguishable from zero.
type reportPayload struct {
	UserID    *string  `json:"userId" validate:"required,notblank"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

var jsonNull = []byte("null")

// DecodeLocationReport turns a raw request body into a LocationReport.
//
// Only userId, latitude and longitude are checked. It returns an error
// wrapping ErrMalformedJSON when the body is not a JSON object, or a
// *RequestValidationError when one of those fields is missing or has the
// wrong type. Display and sensor fields of the wrong type are dropped rather
// than rejected. The returned report has a zero ReceivedAt.
func DecodeLocationReport(data []byte) (models.LocationReport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.LocationReport{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if fields == nil {
		return models.LocationReport{}, fmt.Errorf("%w: body is not an object", ErrMalformedJSON)
	}

	var p reportPayload
	if verr := decodeRequired(fields, "userId", "string", &p.UserID); verr != nil {
		return models.LocationReport{}, verr
	}
	if verr := decodeRequired(fields, "latitude", "number", &p.Latitude); verr != nil {
		return models.LocationReport{}, verr
	}
	if verr := decodeRequired(fields, "longitude", "number", &p.Longitude); verr != nil {
		return models.LocationReport{}, verr
	}

	if verr := ValidateStruct(&p); verr != nil {
		return models.LocationReport{}, verr
	}

	return models.LocationReport{
		UserID:           strings.TrimSpace(*p.UserID),
		UserName:         optionalString(fields["userName"]),
		Latitude:         *p.Latitude,
		Longitude:        *p.Longitude,
		Accuracy:         optionalFloat(fields["accuracy"]),
		Altitude:         optionalFloat(fields["altitude"]),
		AltitudeAccuracy: optionalFloat(fields["altitudeAccuracy"]),
		Heading:          optionalFloat(fields["heading"]),
		Speed:            optionalFloat(fields["speed"]),
		Timestamp:        optionalString(fields["timestamp"]),
	}, nil
}

// decodeRequired decodes fields[name] into dst. An absent or null field
// leaves dst nil for the validator to report.
func decodeRequired[T any](fields map[string]json.RawMessage, name, kind string, dst **T) *RequestValidationError {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return newFieldError(name, "type", fmt.Sprintf("%s must be a %s", name, kind))
	}
	*dst = &v
	return nil
}

// optionalFloat returns nil unless raw is a JSON number.
func optionalFloat(raw json.RawMessage) *float64 {
	if raw == nil || isNull(raw) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// optionalString returns "" unless raw is a JSON string.
func optionalString(raw json.RawMessage) string {
	if raw == nil || isNull(raw) {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}
