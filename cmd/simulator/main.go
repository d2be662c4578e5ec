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
	"github.com/spf13/pflag"

	"github.com/relabs-tech/boat_voice/internal/app"
	"github.com/relabs-tech/boat_voice/internal/log"
)

func addSimulatorFlags(fs *pflag.FlagSet, o *app.SimulatorOptions) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "Address of the assistant's packet listener.")
	fs.DurationVar(&o.Interval, "interval", o.Interval, "Time between two rounds of instrument packets.")
	fs.StringVar(&o.DepthMap, "depth-map", o.DepthMap, "Grayscale PNG or JPEG depth map; darker is deeper. A round lake is generated when empty.")
	fs.Float64Var(&o.MapWidth, "map-width", o.MapWidth, "Width in metres covered by the depth map.")
	fs.Float64Var(&o.Origin.Lat, "lat", o.Origin.Lat, "Latitude of the map centre.")
	fs.Float64Var(&o.Origin.Lng, "lng", o.Origin.Lng, "Longitude of the map centre.")
	fs.Float64Var(&o.Heading, "heading", o.Heading, "Initial heading in degrees.")
	fs.Float64Var(&o.Speed, "speed", o.Speed, "Speed through water in m/s.")
	fs.Float64Var(&o.WindDirection, "wind-direction", o.WindDirection, "True wind direction in degrees.")
	fs.Float64Var(&o.WindSpeed, "wind-speed", o.WindSpeed, "True wind speed in m/s.")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "Random seed for a reproducible track (0 picks one).")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOpts := log.NewOptions()
	simOpts := app.DefaultSimulatorOptions()

	cmd := &cobra.Command{
		Use:          "simulator",
		Short:        "Stream a simulated boat's instruments to the assistant",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := logOpts.Validate(); len(errs) > 0 {
				return errors.Join(errs...)
			}
			log.Init(logOpts)
			defer log.Sync()
			return app.RunSimulator(ctx, simOpts)
		},
	}
	addSimulatorFlags(cmd.Flags(), &simOpts)
	logOpts.AddFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
