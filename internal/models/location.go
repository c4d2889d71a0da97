// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package models

import (
	"math"
	"time"
)

// LocationReport is one user's most recently submitted location sample.
//
// Optional sensor readings are pointers so that "absent" and "zero" stay
// distinct; absent values serialize as null. Timestamp is the client's
// capture time and is never used for ordering. ReceivedAt is stamped by the
// registry on every accepted write and drives eviction.
type LocationReport struct {
	UserID           string    `json:"userId"`
	UserName         string    `json:"userName"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Accuracy         *float64  `json:"accuracy"`
	Altitude         *float64  `json:"altitude"`
	AltitudeAccuracy *float64  `json:"altitudeAccuracy"`
	Heading          *float64  `json:"heading"`
	Speed            *float64  `json:"speed"`
	Timestamp        string    `json:"timestamp,omitempty"`
	ReceivedAt       time.Time `json:"receivedAt"`
}

// HasValidCoordinates reports whether latitude and longitude are finite.
func (r *LocationReport) HasValidCoordinates() bool {
	return isFinite(r.Latitude) && isFinite(r.Longitude)
}

// IsStale reports whether the report fell outside the ttl window at now.
// An entry received exactly ttl ago is still fresh.
func (r *LocationReport) IsStale(now time.Time, ttl time.Duration) bool {
	return r.ReceivedAt.Before(now.Add(-ttl))
}

// Clone returns a deep copy that shares no pointers with r.
func (r *LocationReport) Clone() LocationReport {
	c := *r
	c.Accuracy = cloneFloat(r.Accuracy)
	c.Altitude = cloneFloat(r.Altitude)
	c.AltitudeAccuracy = cloneFloat(r.AltitudeAccuracy)
	c.Heading = cloneFloat(r.Heading)
	c.Speed = cloneFloat(r.Speed)
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float64 returns a pointer to v, for building reports in code and tests.
func Float64(v float64) *float64 {
	return &v
}
