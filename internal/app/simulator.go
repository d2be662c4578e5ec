// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"time"

	"github.com/relabs-tech/boat_voice/internal/location"
	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/simulator"
)

// SimulatorOptions configures RunSimulator.
type SimulatorOptions struct {
	Addr          string
	Interval      time.Duration
	DepthMap      string
	MapWidth      float64
	Origin        location.LatLng
	Heading       float64
	Speed         float64
	WindDirection float64
	WindSpeed     float64
	Seed          uint64
}

// DefaultSimulatorOptions returns options for a boat on a generated lake.
func DefaultSimulatorOptions() SimulatorOptions {
	return SimulatorOptions{
		Addr:          "localhost:8989",
		Interval:      time.Second,
		MapWidth:      2000,
		Origin:        simulator.DefaultOrigin,
		Speed:         2.5,
		WindDirection: 225,
		WindSpeed:     6,
	}
}

// RunSimulator sails a simulated boat and streams its instruments to the
// assistant until ctx is cancelled.
func RunSimulator(ctx context.Context, o SimulatorOptions) error {
	var (
		depth *simulator.DepthMap
		err   error
	)
	if o.DepthMap != "" {
		depth, err = simulator.LoadDepthMap(o.DepthMap, o.MapWidth)
	} else {
		depth, err = simulator.NewDepthMap(simulator.BowlImage(256), o.MapWidth)
	}
	if err != nil {
		return err
	}

	opts := []simulator.Option{
		simulator.WithOrigin(o.Origin),
		simulator.WithHeading(o.Heading),
		simulator.WithSpeed(o.Speed),
		simulator.WithWind(o.WindDirection, o.WindSpeed),
	}
	if o.Seed != 0 {
		opts = append(opts, simulator.WithSeed(o.Seed))
	}
	boat := simulator.NewBoat(depth, opts...)

	log.Info("simulator starting", "target", o.Addr, "interval", o.Interval, "depth_map", o.DepthMap)
	return simulator.NewClient(o.Addr, o.Interval, boat).Run(ctx)
}
