// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/boat_voice/internal/alerts"
	"github.com/relabs-tech/boat_voice/internal/buttons"
	"github.com/relabs-tech/boat_voice/internal/config"
	"github.com/relabs-tech/boat_voice/internal/gps"
	"github.com/relabs-tech/boat_voice/internal/location"
	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/messages"
	"github.com/relabs-tech/boat_voice/internal/queue"
	"github.com/relabs-tech/boat_voice/internal/source"
	"github.com/relabs-tech/boat_voice/internal/speech"
	"github.com/relabs-tech/boat_voice/internal/state"
	"github.com/relabs-tech/boat_voice/internal/telemetry"
	"github.com/relabs-tech/boat_voice/internal/web"
)

// Assistant is the wired onboard pipeline.
type Assistant struct {
	cfg *config.Config

	Queue      *queue.Ring
	State      *state.BoatState
	Decoder    *state.Decoder
	Engine     *alerts.Engine
	Formatter  *messages.Formatter
	Dispatcher *messages.Dispatcher
	Source     *source.Server

	hub       *web.Hub
	mqtt      mqtt.Client
	publisher *telemetry.StatePublisher
	shutdown  *Shutdowner
}

// NewAssistant builds the pipeline from cfg. It binds the listening socket so
// a port clash fails here rather than after start-up. cancel is called once
// the shut-down button has been handled.
func NewAssistant(cfg *config.Config, cancel context.CancelFunc) (*Assistant, error) {
	a := &Assistant{
		cfg:   cfg,
		Queue: queue.New(cfg.QueueCapacity),
		State: state.NewBoatState(),
	}

	ports := location.NewDirectory(location.DefaultPorts)
	if cfg.PortsFile != "" {
		d, err := location.LoadDirectory(cfg.PortsFile)
		if err != nil {
			return nil, err
		}
		ports = d
	}

	speakers, err := a.speakers()
	if err != nil {
		return nil, err
	}
	a.Dispatcher = messages.NewDispatcher(speakers)

	var shutdownCmd []string
	if cfg.ShutdownCommand != "" {
		shutdownCmd = splitCommand(cfg.ShutdownCommand)
	}
	a.shutdown = NewShutdowner(a.Dispatcher, shutdownCmd, cancel)

	a.Formatter = messages.NewFormatter(a.State, ports, a.Dispatcher, a.shutdown)
	a.Engine = alerts.NewEngine(cfg.Policies, a.Formatter, alerts.WithScanInterval(cfg.AlertScanInterval))
	a.Decoder = state.NewDecoder(a.Queue, a.State, a.Engine)

	a.Source = source.NewServer(cfg.ListenAddr, a.Queue)
	if err := a.Source.Listen(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *Assistant) speakers() (messages.Speaker, error) {
	var primary messages.Speaker = speech.NewLogger(log.WithName("speech"))
	if a.cfg.SpeechCommand != "" {
		cmd, err := speech.NewCommand(a.cfg.SpeechCommand)
		if err != nil {
			return nil, err
		}
		primary = cmd
	}
	out := speech.Multi{primary}

	if a.cfg.HTTPAddr != "" {
		a.hub = web.NewHub()
		out = append(out, a.hub)
	}

	if a.cfg.MQTTBroker != "" {
		client, err := telemetry.Connect(a.cfg.MQTTBroker, a.cfg.MQTTClientID)
		if err != nil {
			return nil, err
		}
		a.mqtt = client
		a.publisher = telemetry.NewStatePublisher(client, telemetry.Topics{
			State:    a.cfg.TopicState,
			Messages: a.cfg.TopicMessages,
		}, a.State, a.cfg.StatePublishInterval)
		out = append(out, a.publisher)
	}
	return out, nil
}

// pressButton is the GPIO handler. Only contract violations stop the
// listener; a failed reading is logged.
func (a *Assistant) pressButton(name string) error {
	err := a.Formatter.HandleButtonPress(name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, messages.ErrUnknownButton):
		return err
	default:
		log.Error(err, "button press failed", "button", name)
		return nil
	}
}

// Run starts every loop and blocks until ctx is cancelled or one of them
// fails.
func (a *Assistant) Run(ctx context.Context) error {
	defer a.close()

	var listener *buttons.Listener
	if len(a.cfg.ButtonPins) > 0 {
		l, err := buttons.Open(a.cfg.ButtonPins, a.pressButton)
		if err != nil {
			return fmt.Errorf("buttons: %w", err)
		}
		listener = l
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Source.Run(ctx) })
	g.Go(func() error { return a.Decoder.Run(ctx) })
	g.Go(func() error { return a.Engine.Run(ctx) })
	g.Go(func() error { return a.Dispatcher.Run(ctx) })

	if a.cfg.GPSSerialPort != "" {
		reader := gps.NewReader(a.Queue)
		opts := gps.SerialOptions{PortName: a.cfg.GPSSerialPort, BaudRate: a.cfg.GPSBaudRate}
		g.Go(func() error {
			if err := reader.RunSerial(ctx, opts); err != nil && ctx.Err() == nil {
				// the network source keeps working without the serial instruments
				log.Error(err, "serial NMEA source stopped", "port", opts.PortName)
			}
			return nil
		})
	}

	if listener != nil {
		g.Go(func() error { return listener.Run(ctx) })
	}

	if a.cfg.HTTPAddr != "" {
		srv := web.NewServer(a.cfg.HTTPAddr, a.State, a.Engine, a.Formatter, a.hub)
		g.Go(func() error { return srv.Run(ctx) })
	}

	if a.publisher != nil {
		g.Go(func() error { return a.publisher.Run(ctx) })
	}

	log.Info("assistant started", "listen", a.Source.Addr().String(), "http", a.cfg.HTTPAddr, "mqtt", a.cfg.MQTTBroker)
	err := g.Wait()
	log.Info("assistant stopped")
	return err
}

func (a *Assistant) close() {
	if a.mqtt != nil {
		a.mqtt.Disconnect(250)
	}
}
