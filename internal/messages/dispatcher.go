// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package messages

import (
	"container/heap"
	"context"
	"sync"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/metrics"
)

// Speaker plays a message. Speak returns once playback has finished.
type Speaker interface {
	Speak(ctx context.Context, m Message) error
}

// SpeakerFunc adapts a function to Speaker.
type SpeakerFunc func(ctx context.Context, m Message) error

func (f SpeakerFunc) Speak(ctx context.Context, m Message) error { return f(ctx, m) }

type pending struct {
	msg Message
	seq uint64
}

// pendingHeap orders by priority, then by arrival.
type pendingHeap []pending

func (h pendingHeap) Len() int { return len(h) }
func (h pendingHeap) Less(i, j int) bool {
	if h[i].msg.Priority != h[j].msg.Priority {
		return h[i].msg.Priority > h[j].msg.Priority
	}
	return h[i].seq < h[j].seq
}
func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pendingHeap) Push(x any)   { *h = append(*h, x.(pending)) }
func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Dispatcher hands pending messages to a Speaker one at a time, highest
// priority first and FIFO within a priority.
type Dispatcher struct {
	speaker Speaker
	logger  log.Logger

	mu       sync.Mutex
	queue    pendingHeap
	seq      uint64
	speaking bool
	idle     []chan struct{}
	ready    chan struct{}
}

// NewDispatcher returns a dispatcher delivering to speaker.
func NewDispatcher(speaker Speaker) *Dispatcher {
	return &Dispatcher{
		speaker: speaker,
		logger:  log.WithName("dispatcher"),
		ready:   make(chan struct{}, 1),
	}
}

// Receive enqueues m. It never blocks and is safe for concurrent use.
func (d *Dispatcher) Receive(m Message) {
	d.mu.Lock()
	heap.Push(&d.queue, pending{msg: m, seq: d.seq})
	d.seq++
	d.mu.Unlock()

	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// Pending returns the number of messages not yet handed to the speaker.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queue.Len()
}

func (d *Dispatcher) next() (Message, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue.Len() == 0 {
		d.speaking = false
		d.wakeIdle()
		return Message{}, false
	}
	d.speaking = true
	return heap.Pop(&d.queue).(pending).msg, true
}

// wakeIdle must be called with mu held.
func (d *Dispatcher) wakeIdle() {
	for _, ch := range d.idle {
		close(ch)
	}
	d.idle = nil
}

// Run delivers messages until ctx is cancelled. Speaker errors are logged and
// do not stop delivery.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.stopped()
	for {
		// Stop before popping so a cancelled run leaves messages pending.
		if ctx.Err() != nil {
			return nil
		}
		m, ok := d.next()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-d.ready:
				continue
			}
		}

		metrics.MessagesDispatched.WithLabelValues(m.Priority.String()).Inc()
		if err := d.speaker.Speak(ctx, m); err != nil {
			metrics.SpeechFailures.Inc()
			d.logger.Error(err, "speak failed", "text", m.Text, "priority", m.Priority.String())
		}
	}
}

func (d *Dispatcher) stopped() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speaking = false
	if d.queue.Len() == 0 {
		d.wakeIdle()
	}
}

// Flush blocks until every message received so far has been spoken, or ctx
// is done.
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.mu.Lock()
	if d.queue.Len() == 0 && !d.speaking {
		d.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	d.idle = append(d.idle, ch)
	d.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
