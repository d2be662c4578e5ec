// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package speech provides the message sinks behind the dispatcher: a
// text-to-speech command, a log sink and a fan-out.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/messages"
)

// Command speaks by running an external synthesiser with the text as its
// last argument, e.g. "espeak -s 140".
type Command struct {
	name string
	args []string
}

// NewCommand parses a whitespace-separated command line.
func NewCommand(cmdline string) (*Command, error) {
	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return nil, errors.New("speech: empty command")
	}
	return &Command{name: parts[0], args: parts[1:]}, nil
}

// Speak runs the command and waits for it to exit.
func (c *Command) Speak(ctx context.Context, m messages.Message) error {
	args := append(append([]string(nil), c.args...), m.Text)
	cmd := exec.CommandContext(ctx, c.name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.name, err, msg)
		}
		return fmt.Errorf("%s: %w", c.name, err)
	}
	return nil
}

// Logger writes every message to a log. It is the speaker used when no
// synthesiser is configured.
type Logger struct {
	logger log.Logger
}

// NewLogger returns a speaker that logs through l.
func NewLogger(l log.Logger) *Logger {
	return &Logger{logger: l}
}

func (s *Logger) Speak(_ context.Context, m messages.Message) error {
	s.logger.Info("speak", "text", m.Text, "priority", m.Priority.String())
	return nil
}

// Multi speaks through each speaker in order. Every speaker is tried; the
// errors are joined.
type Multi []messages.Speaker

func (m Multi) Speak(ctx context.Context, msg messages.Message) error {
	var errs []error
	for _, s := range m {
		if err := s.Speak(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
