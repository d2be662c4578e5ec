// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package buttons turns rising edges on GPIO inputs into button presses.
package buttons

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/boat_voice/internal/log"
)

const (
	// DefaultDebounce ignores contact bounce after a press.
	DefaultDebounce = 250 * time.Millisecond

	// edgePoll bounds how long a pin waits for an edge before checking for
	// cancellation.
	edgePoll = 200 * time.Millisecond
)

// Handler is called with the button name on every debounced press. An error
// stops the listener.
type Handler func(name string) error

// Listener watches one input pin per button.
type Listener struct {
	pins     map[string]gpio.PinIn
	handler  Handler
	debounce time.Duration
	logger   log.Logger
}

// Open initialises the host drivers and resolves the named pins, keyed by
// button name.
func Open(pinNames map[string]string, h Handler) (*Listener, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	pins := make(map[string]gpio.PinIn, len(pinNames))
	for button, pinName := range pinNames {
		p := gpioreg.ByName(pinName)
		if p == nil {
			return nil, fmt.Errorf("button %s: pin %q not found", button, pinName)
		}
		pins[button] = p
	}
	return NewListener(pins, h), nil
}

// NewListener returns a listener over already resolved pins.
func NewListener(pins map[string]gpio.PinIn, h Handler) *Listener {
	return &Listener{
		pins:     pins,
		handler:  h,
		debounce: DefaultDebounce,
		logger:   log.WithName("buttons"),
	}
}

// SetDebounce changes the minimum interval between two presses of a button.
func (l *Listener) SetDebounce(d time.Duration) { l.debounce = d }

// Run watches every pin until ctx is cancelled or the handler fails.
func (l *Listener) Run(ctx context.Context) error {
	names := make([]string, 0, len(l.pins))
	for name := range l.pins {
		names = append(names, name)
	}
	sort.Strings(names)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		pin := l.pins[name]
		if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
			return fmt.Errorf("button %s: configure %s: %w", name, pin.Name(), err)
		}
		l.logger.Info("watching button", "button", name, "pin", pin.Name())
		g.Go(func() error {
			defer pin.In(gpio.PullNoChange, gpio.NoEdge)
			return l.watch(ctx, name, pin)
		})
	}
	return g.Wait()
}

func (l *Listener) watch(ctx context.Context, name string, pin gpio.PinIn) error {
	var last time.Time
	for ctx.Err() == nil {
		if !pin.WaitForEdge(edgePoll) {
			continue
		}
		if pin.Read() != gpio.High {
			continue
		}
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < l.debounce {
			continue
		}
		last = now

		l.logger.Debug("button pressed", "button", name)
		if err := l.handler(name); err != nil {
			return fmt.Errorf("button %s: %w", name, err)
		}
	}
	return nil
}
