// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package state

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/relabs-tech/boat_voice/internal/packet"
)

// Field identifies one Boat State attribute.
type Field int

const (
	Latitude Field = iota
	Longitude
	Heading
	WindAngle
	WindSpeed
	WaterDepth
	SpeedThroughWater

	numFields
)

var fieldNames = [numFields]string{
	Latitude:          "latitude",
	Longitude:         "longitude",
	Heading:           "heading",
	WindAngle:         "windAngle",
	WindSpeed:         "windSpeed",
	WaterDepth:        "waterDepth",
	SpeedThroughWater: "speedThroughWater",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// packetFields maps vessel network field names onto Boat State fields.
var packetFields = map[string]Field{
	packet.FieldLatitude:             Latitude,
	packet.FieldLongitude:            Longitude,
	packet.FieldHeading:              Heading,
	packet.FieldWindAngle:            WindAngle,
	packet.FieldWindSpeed:            WindSpeed,
	packet.FieldDepth:                WaterDepth,
	packet.FieldSpeedWaterReferenced: SpeedThroughWater,
}

// FieldForName returns the Boat State field fed by a packet field name.
func FieldForName(name string) (Field, bool) {
	f, ok := packetFields[name]
	return f, ok
}

// BoatState is the live snapshot of the vessel's sensor readings. Every
// field is read and written atomically on its own; nothing ties two fields
// together, so a reader may see a new heading next to an old depth.
type BoatState struct {
	values [numFields]atomic.Uint64
}

// NewBoatState returns a state with every field at zero.
func NewBoatState() *BoatState {
	return &BoatState{}
}

// Get returns the current value of f.
func (s *BoatState) Get(f Field) float64 {
	return math.Float64frombits(s.values[f].Load())
}

// Set stores v in f.
func (s *BoatState) Set(f Field, v float64) {
	s.values[f].Store(math.Float64bits(v))
}

func (s *BoatState) Latitude() float64          { return s.Get(Latitude) }
func (s *BoatState) Longitude() float64         { return s.Get(Longitude) }
func (s *BoatState) Heading() float64           { return s.Get(Heading) }
func (s *BoatState) WindAngle() float64         { return s.Get(WindAngle) }
func (s *BoatState) WindSpeed() float64         { return s.Get(WindSpeed) }
func (s *BoatState) WaterDepth() float64        { return s.Get(WaterDepth) }
func (s *BoatState) SpeedThroughWater() float64 { return s.Get(SpeedThroughWater) }

// Snapshot is a JSON-friendly copy of the Boat State. Fields are copied one
// at a time, so it is not a consistent cut across fields.
type Snapshot struct {
	Latitude          float64 `json:"latitude"`           // degrees
	Longitude         float64 `json:"longitude"`          // degrees
	Heading           float64 `json:"heading"`            // degrees from north
	WindAngle         float64 `json:"wind_angle"`         // degrees from head
	WindSpeed         float64 `json:"wind_speed"`         // m/s
	WaterDepth        float64 `json:"water_depth"`        // metres
	SpeedThroughWater float64 `json:"speed_through_water"` // m/s
}

// Snapshot copies the current values.
func (s *BoatState) Snapshot() Snapshot {
	return Snapshot{
		Latitude:          s.Latitude(),
		Longitude:         s.Longitude(),
		Heading:           s.Heading(),
		WindAngle:         s.WindAngle(),
		WindSpeed:         s.WindSpeed(),
		WaterDepth:        s.WaterDepth(),
		SpeedThroughWater: s.SpeedThroughWater(),
	}
}
