// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package queue

import (
	"context"
	"sync"

	"github.com/relabs-tech/boat_voice/internal/metrics"
	"github.com/relabs-tech/boat_voice/internal/packet"
)

// DefaultCapacity is the number of packets held before the oldest is evicted.
const DefaultCapacity = 300

// Ring is a fixed-capacity circular buffer of packets. Push never blocks and
// evicts the oldest packet when full. It is safe for many producers; Wait
// assumes a single consumer.
type Ring struct {
	mu   sync.Mutex
	buf  []packet.Packet
	head int // index of the oldest element
	size int

	// ready holds at most one wake-up token for a consumer blocked in Wait.
	ready chan struct{}
}

// New returns an empty Ring. A capacity below one uses DefaultCapacity.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Ring{
		buf:   make([]packet.Packet, capacity),
		ready: make(chan struct{}, 1),
	}
}

// Push appends p, first discarding the oldest packet if the ring is full.
func (r *Ring) Push(p packet.Packet) {
	r.mu.Lock()
	if r.size == len(r.buf) {
		r.buf[r.head] = packet.Packet{}
		r.head = (r.head + 1) % len(r.buf)
		r.size--
		metrics.QueueEvictions.Inc()
	}
	r.buf[(r.head+r.size)%len(r.buf)] = p
	r.size++
	metrics.QueueDepth.Set(float64(r.size))
	r.mu.Unlock()

	select {
	case r.ready <- struct{}{}:
	default:
	}
}

// Drain removes and returns the oldest packet. ok is false when the ring is empty.
func (r *Ring) Drain() (p packet.Packet, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return packet.Packet{}, false
	}
	p = r.buf[r.head]
	r.buf[r.head] = packet.Packet{}
	r.head = (r.head + 1) % len(r.buf)
	r.size--
	metrics.QueueDepth.Set(float64(r.size))
	return p, true
}

// Wait blocks until a packet is available and drains it, or until ctx is done.
func (r *Ring) Wait(ctx context.Context) (packet.Packet, error) {
	for {
		if p, ok := r.Drain(); ok {
			return p, nil
		}
		select {
		case <-r.ready:
		case <-ctx.Done():
			return packet.Packet{}, ctx.Err()
		}
	}
}

// Len returns the number of queued packets.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}
