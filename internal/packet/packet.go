// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package packet

import (
	"sort"
	"time"
)

// Parameter group numbers of the vessel network messages boat_voice understands.
const (
	PGNVesselHeading       uint32 = 127250
	PGNSpeed               uint32 = 128259
	PGNWaterDepth          uint32 = 128267
	PGNPositionRapidUpdate uint32 = 129025
	PGNWindData            uint32 = 130306
)

// Field names carried in Packet.Fields.
const (
	FieldLatitude             = "Latitude"
	FieldLongitude            = "Longitude"
	FieldHeading              = "Heading"
	FieldDeviation            = "Deviation"
	FieldVariation            = "Variation"
	FieldWindAngle            = "Wind Angle"
	FieldWindSpeed            = "Wind Speed"
	FieldDepth                = "Depth"
	FieldOffset               = "Offset"
	FieldSpeedWaterReferenced = "Speed Water Referenced"
)

// Packet is one decoded unit of vessel telemetry. Treat it as immutable once
// it leaves the decoder.
type Packet struct {
	PGN         uint32             `json:"pgn"`
	Timestamp   time.Time          `json:"timestamp"`
	Priority    int                `json:"prio"`
	Source      int                `json:"src"`
	Destination int                `json:"dst"`
	Description string             `json:"description"`
	Fields      map[string]float64 `json:"fields"`
}

// Field returns the named value and whether it was present.
func (p Packet) Field(name string) (float64, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// FieldNames returns the field names in sorted order so encoding is stable.
func (p Packet) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
