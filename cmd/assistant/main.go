// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/relabs-tech/boat_voice/internal/app"
	"github.com/relabs-tech/boat_voice/internal/config"
	"github.com/relabs-tech/boat_voice/internal/log"
)

func newAssistantCommand(ctx context.Context) *cobra.Command {
	logOpts := log.NewOptions()
	var configPath string

	cmd := &cobra.Command{
		Use:          "assistant",
		Short:        "Speak boat instrument readings and alerts",
		Long:         "The assistant listens for instrument packets, tracks the boat state, watches for abnormal readings and speaks button requests and warnings.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := logOpts.Validate(); len(errs) > 0 {
				return errors.Join(errs...)
			}
			log.Init(logOpts)
			defer log.Sync()

			undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
				log.Debug(fmt.Sprintf(format, args...))
			}))
			if err != nil {
				log.Error(err, "failed to set GOMAXPROCS")
			}
			defer undo()

			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				log.Error(err, "failed to load config")
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			assistant, err := app.NewAssistant(cfg, cancel)
			if err != nil {
				log.Error(err, "failed to start assistant")
				return err
			}
			if err := assistant.Run(ctx); err != nil {
				log.Error(err, "assistant failed")
				return err
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&configPath, "config", "c", "", "Path to the KEY=VALUE configuration file (defaults are used when empty).")
	logOpts.AddFlags(fs)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newAssistantCommand(ctx).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
