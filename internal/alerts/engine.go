// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/metrics"
	"github.com/relabs-tech/boat_voice/internal/state"
)

// DefaultScanInterval is how often the engine looks for silent sensors.
const DefaultScanInterval = time.Second

// Option configures an Engine.
type Option func(e *Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithScanInterval sets the timeout scan cadence.
func WithScanInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.scanInterval = d
		}
	}
}

// Engine watches Boat State updates per sensor and raises alerts when a
// sensor's policy is violated.
type Engine struct {
	mu       sync.Mutex
	monitors map[Sensor]*monitor

	handler      Handler
	now          func() time.Time
	scanInterval time.Duration
	logger       log.Logger

	// fatal carries the first handler error to Run.
	fatal chan error
}

var _ state.Observer = (*Engine)(nil)

// NewEngine returns an engine enforcing policies and handing alerts to h.
// Sensors missing from policies are not monitored.
func NewEngine(policies map[Sensor]Policy, h Handler, opts ...Option) *Engine {
	e := &Engine{
		monitors:     make(map[Sensor]*monitor, len(policies)),
		handler:      h,
		now:          time.Now,
		scanInterval: DefaultScanInterval,
		logger:       log.WithName("alerts"),
		fatal:        make(chan error, 1),
	}
	for _, opt := range opts {
		opt(e)
	}

	start := e.now()
	for s, p := range policies {
		e.monitors[s] = newMonitor(s, p, start)
	}
	return e
}

// Observe implements state.Observer.
func (e *Engine) Observe(f state.Field, v float64, at time.Time) {
	s, ok := SensorForField(f)
	if !ok {
		return
	}

	e.mu.Lock()
	m, ok := e.monitors[s]
	var raised []Alert
	if ok {
		raised = m.observe(context.Background(), v, at)
	}
	e.mu.Unlock()

	e.emit(raised)
}

// Scan raises Timeout for every sensor silent for longer than its timeout.
func (e *Engine) Scan(now time.Time) {
	var raised []Alert

	e.mu.Lock()
	for _, s := range Sensors {
		m, ok := e.monitors[s]
		if !ok {
			continue
		}
		if a, fired := m.checkTimeout(now); fired {
			raised = append(raised, a)
		}
	}
	e.mu.Unlock()

	e.emit(raised)
}

// Run scans for timeouts until ctx is cancelled. It returns early with the
// first error the handler reported.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.scanInterval)
	defer ticker.Stop()

	e.logger.Info("Alert engine started", "scanInterval", e.scanInterval, "sensors", len(e.monitors))
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-e.fatal:
			return err
		case <-ticker.C:
			e.Scan(e.now())
		}
	}
}

func (e *Engine) emit(raised []Alert) {
	for _, a := range raised {
		metrics.AlertsEmitted.WithLabelValues(a.Sensor.String(), a.Kind.String()).Inc()
		e.logger.Info("Alert raised", "sensor", a.Sensor, "kind", a.Kind)

		if err := e.handler.HandleAlert(a); err != nil {
			e.logger.Error(err, "Alert handler rejected alert", "sensor", a.Sensor, "kind", a.Kind)
			select {
			case e.fatal <- fmt.Errorf("handle %s alert for %s: %w", a.Kind, a.Sensor, err):
			default:
			}
		}
	}
}

// Status describes one sensor for diagnostics.
type Status struct {
	Sensor     string    `json:"sensor"`
	Condition  Condition `json:"condition"`
	Bound      string    `json:"bound"`
	LastValue  float64   `json:"last_value"`
	HasValue   bool      `json:"has_value"`
	LastUpdate time.Time `json:"last_update"`
	TimedOut   bool      `json:"timed_out"`
}

// Snapshot returns the status of every monitored sensor.
func (e *Engine) Snapshot() []Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Status, 0, len(e.monitors))
	for _, s := range Sensors {
		m, ok := e.monitors[s]
		if !ok {
			continue
		}
		out = append(out, Status{
			Sensor:     s.String(),
			Condition:  m.condition(),
			Bound:      m.fsm.Current(),
			LastValue:  m.lastValue,
			HasValue:   m.hasValue,
			LastUpdate: m.lastUpdate,
			TimedOut:   m.timedOut,
		})
	}
	return out
}

// Condition returns the bound-crossing state of s.
func (e *Engine) Condition(s Sensor) Condition {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.monitors[s]; ok {
		return m.condition()
	}
	return Normal
}
