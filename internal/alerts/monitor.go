// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package alerts

import (
	"context"
	"time"

	"github.com/looplab/fsm"
)

// Bound-crossing states. Both abnormal states report as Alerting.
const (
	stateNormal   = "normal"
	stateAboveMax = "above_max"
	stateBelowMin = "below_min"
)

const (
	eventExceedMax = "exceed_max"
	eventExceedMin = "exceed_min"
	eventRecover   = "recover"
)

// Condition is the externally visible state of a sensor.
type Condition string

const (
	Normal   Condition = "Normal"
	Alerting Condition = "Alerting"
)

// monitor tracks one sensor. It is guarded by the engine mutex.
type monitor struct {
	sensor Sensor
	policy Policy
	fsm    *fsm.FSM

	lastValue  float64
	hasValue   bool
	lastUpdate time.Time
	timedOut   bool

	// pending collects alerts raised by FSM callbacks during one observation.
	pending []Alert
}

func newMonitor(sensor Sensor, policy Policy, start time.Time) *monitor {
	m := &monitor{
		sensor:     sensor,
		policy:     policy,
		lastUpdate: start,
	}

	events := fsm.Events{
		{Name: eventExceedMax, Src: []string{stateNormal, stateBelowMin}, Dst: stateAboveMax},
		{Name: eventExceedMin, Src: []string{stateNormal, stateAboveMax}, Dst: stateBelowMin},
		{Name: eventRecover, Src: []string{stateAboveMax, stateBelowMin}, Dst: stateNormal},
	}

	callbacks := fsm.Callbacks{
		"enter_" + stateAboveMax: func(_ context.Context, e *fsm.Event) { m.raise(AboveMax, e) },
		"enter_" + stateBelowMin: func(_ context.Context, e *fsm.Event) { m.raise(BelowMin, e) },
	}

	m.fsm = fsm.NewFSM(stateNormal, events, callbacks)
	return m
}

func (m *monitor) raise(kind Kind, e *fsm.Event) {
	at, _ := e.Args[0].(time.Time)
	m.pending = append(m.pending, Alert{Sensor: m.sensor, Kind: kind, Timestamp: at})
}

func (m *monitor) condition() Condition {
	if m.fsm.Current() == stateNormal {
		return Normal
	}
	return Alerting
}

// observe folds one sample in and returns the alerts it raised.
func (m *monitor) observe(ctx context.Context, v float64, at time.Time) []Alert {
	m.pending = m.pending[:0]

	event := eventRecover
	switch {
	case v > m.policy.Max:
		event = eventExceedMax
	case v < m.policy.Min:
		event = eventExceedMin
	}
	if m.fsm.Can(event) {
		// Can() already rules out invalid transitions; the callbacks cannot fail.
		_ = m.fsm.Event(ctx, event, at)
	}

	if m.hasValue && m.policy.MaxChange > 0 && m.policy.change(m.lastValue, v) > m.policy.MaxChange {
		m.pending = append(m.pending, Alert{Sensor: m.sensor, Kind: CriticalChange, Timestamp: at})
	}

	m.lastValue = v
	m.hasValue = true
	m.lastUpdate = at
	m.timedOut = false

	out := make([]Alert, len(m.pending))
	copy(out, m.pending)
	return out
}

// checkTimeout reports whether the sensor has just gone silent for longer than
// its timeout. It fires once per outage.
func (m *monitor) checkTimeout(now time.Time) (Alert, bool) {
	if m.policy.Timeout <= 0 || m.timedOut {
		return Alert{}, false
	}
	if now.Sub(m.lastUpdate) <= m.policy.Timeout {
		return Alert{}, false
	}
	m.timedOut = true
	return Alert{Sensor: m.sensor, Kind: Timeout, Timestamp: now}, true
}
