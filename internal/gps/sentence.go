// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/boat_voice/internal/packet"
)

// Unit conversion factors to metres per second.
const (
	knotsToMPS = 1852.0 / 3600.0
	kphToMPS   = 1000.0 / 3600.0
	mphToMPS   = 1609.344 / 3600.0
)

// nmeaSource is the Packet.Source used for sentences read from the serial port.
const nmeaSource = 0

// ToPacket translates one NMEA 0183 sentence into a Packet carrying the same
// field names the vessel network uses. ok is false for sentences that carry
// nothing boat_voice models, or that the instrument flagged as invalid.
func ToPacket(s nmea.Sentence, at time.Time) (p packet.Packet, ok bool) {
	fields := map[string]float64{}
	var pgn uint32
	var desc string

	switch s.DataType() {
	case nmea.TypeRMC:
		m := s.(nmea.RMC)
		if m.Validity != nmea.ValidRMC {
			return packet.Packet{}, false
		}
		pgn, desc = packet.PGNPositionRapidUpdate, "Position, Rapid Update"
		fields[packet.FieldLatitude] = m.Latitude
		fields[packet.FieldLongitude] = m.Longitude

	case nmea.TypeHDT:
		m := s.(nmea.HDT)
		pgn, desc = packet.PGNVesselHeading, "Vessel Heading"
		fields[packet.FieldHeading] = m.Heading

	case nmea.TypeHDG:
		m := s.(nmea.HDG)
		pgn, desc = packet.PGNVesselHeading, "Vessel Heading"
		fields[packet.FieldHeading] = m.Heading
		fields[packet.FieldDeviation] = m.Deviation
		fields[packet.FieldVariation] = m.Variation

	case nmea.TypeDPT:
		m := s.(nmea.DPT)
		pgn, desc = packet.PGNWaterDepth, "Water Depth"
		fields[packet.FieldDepth] = m.Depth
		fields[packet.FieldOffset] = m.Offset

	case nmea.TypeMWV:
		m := s.(nmea.MWV)
		if !m.StatusValid {
			return packet.Packet{}, false
		}
		speed, known := windSpeedMPS(m.WindSpeed, m.WindSpeedUnit)
		pgn, desc = packet.PGNWindData, "Wind Data"
		fields[packet.FieldWindAngle] = m.WindAngle
		if known {
			fields[packet.FieldWindSpeed] = speed
		}

	case nmea.TypeVHW:
		m := s.(nmea.VHW)
		pgn, desc = packet.PGNSpeed, "Speed"
		switch {
		case m.SpeedThroughWaterKnots > 0:
			fields[packet.FieldSpeedWaterReferenced] = m.SpeedThroughWaterKnots * knotsToMPS
		default:
			fields[packet.FieldSpeedWaterReferenced] = m.SpeedThroughWaterKPH * kphToMPS
		}

	default:
		return packet.Packet{}, false
	}

	return packet.Packet{
		PGN:         pgn,
		Timestamp:   at,
		Source:      nmeaSource,
		Destination: 255,
		Description: desc,
		Fields:      fields,
	}, true
}

func windSpeedMPS(v float64, unit string) (float64, bool) {
	switch unit {
	case "M":
		return v, true
	case "N":
		return v * knotsToMPS, true
	case "K":
		return v * kphToMPS, true
	case "S":
		return v * mphToMPS, true
	default:
		return 0, false
	}
}
