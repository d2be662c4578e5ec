// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package log

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options contains configuration settings for the logger.
type Options struct {
	// Name is added as the logger name of every entry.
	Name string

	// Level is the minimum log level: debug, info, warn or error.
	Level string

	// Format is "console" or "json".
	Format string

	EnableColor   bool
	DisableCaller bool

	// CallerSkip increases the number of callers skipped by caller annotation.
	CallerSkip int

	// OutputPaths defaults to ["stdout"].
	OutputPaths []string
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	return &Options{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
		CallerSkip:  2,
		OutputPaths: []string{"stdout"},
	}
}

// Validate checks the format value.
func (o *Options) Validate() []error {
	var errs []error
	if o.Format != "console" && o.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", o.Format))
	}
	return errs
}

// AddFlags binds command-line flags to the Options fields.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "log.name", o.Name, "An optional name for the logger.")
	fs.StringVar(&o.Format, "log.format", o.Format, "The log output format ('json' or 'console').")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Enable colorized output for the console format.")
	fs.IntVar(&o.CallerSkip, "log.caller-skip", o.CallerSkip, "The number of caller frames to skip.")
	fs.StringVar(&o.Level, "log.level", o.Level, "The minimum log level to output (e.g., 'debug', 'info', 'warn', 'error').")
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, "Disable the caller field in logs (file and line number).")
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, "A list of log output paths (e.g., 'stdout', '/var/log/boat_voice.log').")
}
