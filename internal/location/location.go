// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package location

import (
	"errors"
	"math"
)

// EarthRadius is the mean Earth radius in metres.
const EarthRadius = 6371e3

// ErrNoPorts is returned when a port lookup runs against an empty list.
var ErrNoPorts = errors.New("location: no known ports")

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Port is a named harbour.
type Port struct {
	Name     string `yaml:"name" json:"name"`
	Location LatLng `yaml:"location" json:"location"`
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle distance between a and b in metres
// (haversine formula).
func Distance(a, b LatLng) float64 {
	φ1, φ2 := radians(a.Lat), radians(b.Lat)
	Δφ := radians(b.Lat - a.Lat)
	Δλ := radians(b.Lng - a.Lng)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadius * c
}

// InitialBearing returns the forward azimuth from a to b in degrees, in [0, 360).
func InitialBearing(a, b LatLng) float64 {
	φ1, φ2 := radians(a.Lat), radians(b.Lat)
	Δλ := radians(b.Lng - a.Lng)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	θ := degrees(math.Atan2(y, x))
	return math.Mod(θ+360, 360)
}
