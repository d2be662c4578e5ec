// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package state

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/packet"
)

// Source is where the decoder takes packets from. *queue.Ring satisfies it.
type Source interface {
	Wait(ctx context.Context) (packet.Packet, error)
}

// Observer is told about every field the decoder writes.
type Observer interface {
	Observe(f Field, value float64, at time.Time)
}

// Decoder folds queued packets into the single live BoatState.
type Decoder struct {
	source    Source
	state     *BoatState
	observers []Observer
	now       func() time.Time
	logger    log.Logger
}

// NewDecoder returns a decoder draining source into st.
func NewDecoder(source Source, st *BoatState, observers ...Observer) *Decoder {
	return &Decoder{
		source:    source,
		state:     st,
		observers: observers,
		now:       time.Now,
		logger:    log.WithName("decoder"),
	}
}

// State returns the live Boat State. Reads are not isolated from updates.
func (d *Decoder) State() *BoatState {
	return d.state
}

// Apply writes every recognised field of p into the Boat State and notifies
// observers. Unknown fields and NaN ("not available") values are skipped.
// It returns the number of fields written.
func (d *Decoder) Apply(p packet.Packet) int {
	at := d.now()
	applied := 0
	for _, name := range p.FieldNames() {
		f, ok := FieldForName(name)
		if !ok {
			continue
		}
		v := p.Fields[name]
		if math.IsNaN(v) {
			continue
		}
		d.state.Set(f, v)
		applied++
		for _, o := range d.observers {
			o.Observe(f, v, at)
		}
	}
	return applied
}

// Run drains the source until ctx is cancelled.
func (d *Decoder) Run(ctx context.Context) error {
	d.logger.Info("State decoder started")
	for {
		p, err := d.source.Wait(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				d.logger.Info("State decoder stopped")
				return nil
			}
			return err
		}
		if n := d.Apply(p); n > 0 {
			d.logger.Debug("Applied packet", "pgn", p.PGN, "description", p.Description, "fields", n)
		}
	}
}
