// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/boat_voice/internal/log"
)

// ShutdownFlushTimeout bounds how long the shutdown message may take to be
// spoken.
const ShutdownFlushTimeout = 10 * time.Second

// Flusher drains pending speech.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Shutdowner waits for pending speech, runs the power-off command and then
// stops the process. It runs at most once.
type Shutdowner struct {
	flusher Flusher
	command []string
	cancel  context.CancelFunc
	timeout time.Duration
	logger  log.Logger

	once sync.Once
	done chan struct{}
}

// NewShutdowner returns a Shutdowner. command may be empty.
func NewShutdowner(f Flusher, command []string, cancel context.CancelFunc) *Shutdowner {
	return &Shutdowner{
		flusher: f,
		command: command,
		cancel:  cancel,
		timeout: ShutdownFlushTimeout,
		logger:  log.WithName("shutdown"),
		done:    make(chan struct{}),
	}
}

// Shutdown starts the sequence in the background and returns immediately.
func (s *Shutdowner) Shutdown() {
	s.once.Do(func() { go s.run() })
}

// Done is closed when the sequence has finished.
func (s *Shutdowner) Done() <-chan struct{} { return s.done }

func (s *Shutdowner) run() {
	defer close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.flusher.Flush(ctx); err != nil {
		s.logger.Warn("pending speech not finished before shutdown", "error", err.Error())
	}

	if len(s.command) > 0 {
		s.logger.Info("running shutdown command", "command", strings.Join(s.command, " "))
		out, err := exec.Command(s.command[0], s.command[1:]...).CombinedOutput()
		if err != nil {
			s.logger.Error(err, "shutdown command failed", "output", strings.TrimSpace(string(out)))
		}
	}

	s.cancel()
}

func splitCommand(cmdline string) []string {
	return strings.Fields(cmdline)
}
