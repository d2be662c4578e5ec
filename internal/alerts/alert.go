// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package alerts

import (
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/boat_voice/internal/state"
)

// Sensor identifies a monitored sensor.
type Sensor int

const (
	WaterDepth Sensor = iota
	WindSpeed
	WindAngle
	Heading
	Speed
)

// Sensors lists every monitored sensor in a stable order.
var Sensors = []Sensor{WaterDepth, WindSpeed, WindAngle, Heading, Speed}

func (s Sensor) String() string {
	switch s {
	case WaterDepth:
		return "WaterDepth"
	case WindSpeed:
		return "WindSpeed"
	case WindAngle:
		return "WindAngle"
	case Heading:
		return "Heading"
	case Speed:
		return "Speed"
	default:
		return fmt.Sprintf("Sensor(%d)", int(s))
	}
}

// Field returns the Boat State field the sensor reports into.
func (s Sensor) Field() (state.Field, bool) {
	switch s {
	case WaterDepth:
		return state.WaterDepth, true
	case WindSpeed:
		return state.WindSpeed, true
	case WindAngle:
		return state.WindAngle, true
	case Heading:
		return state.Heading, true
	case Speed:
		return state.SpeedThroughWater, true
	default:
		return 0, false
	}
}

// SensorForField is the inverse of Sensor.Field. Position fields have no sensor.
func SensorForField(f state.Field) (Sensor, bool) {
	for _, s := range Sensors {
		if sf, _ := s.Field(); sf == f {
			return s, true
		}
	}
	return 0, false
}

// Kind classifies an abnormal condition.
type Kind int

const (
	CriticalChange Kind = iota
	AboveMax
	BelowMin
	Timeout
)

func (k Kind) String() string {
	switch k {
	case CriticalChange:
		return "CriticalChange"
	case AboveMax:
		return "AboveMax"
	case BelowMin:
		return "BelowMin"
	case Timeout:
		return "Timeout"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Alert is one detected abnormal condition on one sensor.
type Alert struct {
	Sensor    Sensor    `json:"sensor"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler consumes alerts. An error means the alert violated the handler's
// contract and is treated as fatal by the engine.
type Handler interface {
	HandleAlert(a Alert) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(a Alert) error

func (f HandlerFunc) HandleAlert(a Alert) error { return f(a) }

// Policy bounds one sensor.
type Policy struct {
	Min float64
	Max float64
	// MaxChange is the largest allowed change between two consecutive
	// samples. Zero disables the check.
	MaxChange float64
	// Timeout is the longest allowed gap between updates. Zero disables it.
	Timeout time.Duration
	// Circular sensors measure change along the shorter arc of a 360° dial.
	Circular bool
}

// Unbounded returns a policy with no bounds, no rate limit and no timeout.
func Unbounded() Policy {
	return Policy{Min: math.Inf(-1), Max: math.Inf(1)}
}

func (p Policy) change(prev, next float64) float64 {
	d := math.Abs(next - prev)
	if p.Circular {
		d = math.Mod(d, 360)
		if d > 180 {
			d = 360 - d
		}
	}
	return d
}

// DefaultPolicies are the thresholds used when the configuration sets none.
func DefaultPolicies() map[Sensor]Policy {
	return map[Sensor]Policy{
		WaterDepth: {Min: 2, Max: 200, MaxChange: 10, Timeout: 10 * time.Second},
		WindSpeed:  {Min: 0, Max: 17, MaxChange: 8, Timeout: 10 * time.Second},
		WindAngle:  {Min: 0, Max: 360, MaxChange: 90, Timeout: 10 * time.Second, Circular: true},
		Heading:    {Min: 0, Max: 360, MaxChange: 45, Timeout: 10 * time.Second, Circular: true},
		Speed:      {Min: 0, Max: 10, MaxChange: 3, Timeout: 10 * time.Second},
	}
}
