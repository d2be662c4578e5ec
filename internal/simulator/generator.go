// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package simulator

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/boat_voice/internal/packet"
)

const (
	DefaultPriority    = 2
	DefaultSource      = 1
	DefaultDestination = 255
)

// ErrOutOfRange reports a generator argument outside its physical range.
var ErrOutOfRange = errors.New("simulator: value out of range")

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %g not in [%g, %g]", ErrOutOfRange, name, v, lo, hi)
	}
	return nil
}

func newPacket(pgn uint32, at time.Time, description string, fields map[string]float64) packet.Packet {
	return packet.Packet{
		PGN:         pgn,
		Timestamp:   at,
		Priority:    DefaultPriority,
		Source:      DefaultSource,
		Destination: DefaultDestination,
		Description: description,
		Fields:      fields,
	}
}

// VesselHeading builds a heading packet. Heading is in [0, 360]; deviation
// and variation are in [-180, 180].
func VesselHeading(at time.Time, heading, deviation, variation float64) (packet.Packet, error) {
	if err := errors.Join(
		checkRange(packet.FieldHeading, heading, 0, 360),
		checkRange(packet.FieldDeviation, deviation, -180, 180),
		checkRange(packet.FieldVariation, variation, -180, 180),
	); err != nil {
		return packet.Packet{}, err
	}
	return newPacket(packet.PGNVesselHeading, at, "Vessel Heading", map[string]float64{
		packet.FieldHeading:   heading,
		packet.FieldDeviation: deviation,
		packet.FieldVariation: variation,
	}), nil
}

// WaterDepth builds a depth packet. Depth must not be negative.
func WaterDepth(at time.Time, depth, offset float64) (packet.Packet, error) {
	if depth < 0 {
		return packet.Packet{}, fmt.Errorf("%w: %s %g is negative", ErrOutOfRange, packet.FieldDepth, depth)
	}
	return newPacket(packet.PGNWaterDepth, at, "Water Depth", map[string]float64{
		packet.FieldDepth:  depth,
		packet.FieldOffset: offset,
	}), nil
}

// WindData builds an apparent wind packet. Speed is in m/s and must not be
// negative; angle is in [0, 360].
func WindData(at time.Time, speed, angle float64) (packet.Packet, error) {
	if speed < 0 {
		return packet.Packet{}, fmt.Errorf("%w: %s %g is negative", ErrOutOfRange, packet.FieldWindSpeed, speed)
	}
	if err := checkRange(packet.FieldWindAngle, angle, 0, 360); err != nil {
		return packet.Packet{}, err
	}
	return newPacket(packet.PGNWindData, at, "Wind Data", map[string]float64{
		packet.FieldWindSpeed: speed,
		packet.FieldWindAngle: angle,
	}), nil
}

// Speed builds a speed-through-water packet in m/s.
func Speed(at time.Time, speed float64) (packet.Packet, error) {
	if speed < 0 {
		return packet.Packet{}, fmt.Errorf("%w: %s %g is negative", ErrOutOfRange, packet.FieldSpeedWaterReferenced, speed)
	}
	return newPacket(packet.PGNSpeed, at, "Speed", map[string]float64{
		packet.FieldSpeedWaterReferenced: speed,
	}), nil
}

// Position builds a position rapid update packet.
func Position(at time.Time, lat, lng float64) (packet.Packet, error) {
	if err := errors.Join(
		checkRange(packet.FieldLatitude, lat, -90, 90),
		checkRange(packet.FieldLongitude, lng, -180, 180),
	); err != nil {
		return packet.Packet{}, err
	}
	return newPacket(packet.PGNPositionRapidUpdate, at, "Position, Rapid Update", map[string]float64{
		packet.FieldLatitude:  lat,
		packet.FieldLongitude: lng,
	}), nil
}
