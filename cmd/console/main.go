// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/boat_voice/internal/app"
	"github.com/relabs-tech/boat_voice/internal/config"
	"github.com/relabs-tech/boat_voice/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOpts := log.NewOptions()
	var configPath string

	cmd := &cobra.Command{
		Use:          "console",
		Short:        "Print the assistant's state and spoken messages from MQTT",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := logOpts.Validate(); len(errs) > 0 {
				return errors.Join(errs...)
			}
			log.Init(logOpts)
			defer log.Sync()

			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			return app.RunConsole(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the KEY=VALUE configuration file.")
	logOpts.AddFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
