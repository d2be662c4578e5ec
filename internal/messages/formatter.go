// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package messages

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/boat_voice/internal/alerts"
	"github.com/relabs-tech/boat_voice/internal/location"
	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/state"
)

// Button names as wired to the operator panel.
const (
	ButtonBoatSpeed      = "boat-speed"
	ButtonCompassHeading = "compass-heading"
	ButtonNearestPort    = "nearest-port"
	ButtonWaterDepth     = "water-depth"
	ButtonWindDirection  = "wind-direction"
	ButtonWindSpeed      = "wind-speed"
	ButtonShutDown       = "shut-down"
)

// Buttons lists every recognised button name.
var Buttons = []string{
	ButtonBoatSpeed,
	ButtonCompassHeading,
	ButtonNearestPort,
	ButtonWaterDepth,
	ButtonWindDirection,
	ButtonWindSpeed,
	ButtonShutDown,
}

// ShutdownText is spoken before the system powers off.
const ShutdownText = "Turning the system completely off"

var (
	ErrUnknownButton    = errors.New("messages: unknown button")
	ErrUnknownSensor    = errors.New("messages: unknown sensor")
	ErrUnknownAlertKind = errors.New("messages: unknown alert kind")
)

// StateReader reads the live boat state.
type StateReader interface {
	Get(f state.Field) float64
}

// PortFinder locates the nearest known port.
type PortFinder interface {
	Nearest(from location.LatLng) (location.Port, error)
}

// Receiver accepts formatted messages.
type Receiver interface {
	Receive(m Message)
}

// Shutdowner powers the system off. It is called after the shutdown message
// has been handed to the Receiver and must not block the caller for long.
type Shutdowner interface {
	Shutdown()
}

// ShutdownFunc adapts a function to Shutdowner.
type ShutdownFunc func()

func (f ShutdownFunc) Shutdown() { f() }

// Formatter renders button presses and alerts into messages.
type Formatter struct {
	state    StateReader
	ports    PortFinder
	out      Receiver
	shutdown Shutdowner
	logger   log.Logger
}

// NewFormatter wires a formatter. shutdown may be nil, in which case the
// shut-down button only speaks.
func NewFormatter(st StateReader, ports PortFinder, out Receiver, shutdown Shutdowner) *Formatter {
	return &Formatter{
		state:    st,
		ports:    ports,
		out:      out,
		shutdown: shutdown,
		logger:   log.WithName("formatter"),
	}
}

// HandleButtonPress formats the reading requested by the named button and
// forwards it. The shut-down button also triggers the Shutdowner.
func (f *Formatter) HandleButtonPress(name string) error {
	if name == ButtonShutDown {
		f.out.Receive(Message{Text: ShutdownText, Priority: Shutdown})
		f.logger.Info("shutdown requested")
		if f.shutdown != nil {
			f.shutdown.Shutdown()
		}
		return nil
	}

	text, err := f.reading(name)
	if err != nil {
		return err
	}
	f.logger.Debug("button", "name", name, "text", text)
	f.out.Receive(Message{Text: text, Priority: Info})
	return nil
}

func (f *Formatter) reading(name string) (string, error) {
	switch name {
	case ButtonBoatSpeed:
		return TruncateFloat(f.state.Get(state.SpeedThroughWater)) + " meters per second", nil
	case ButtonWindSpeed:
		return TruncateFloat(f.state.Get(state.WindSpeed)) + " meters per second", nil
	case ButtonCompassHeading:
		return fixed(f.state.Get(state.Heading), 0) + " degrees from north", nil
	case ButtonWindDirection:
		return fixed(f.state.Get(state.WindAngle), 0) + " degrees from head", nil
	case ButtonWaterDepth:
		return TruncateFloat(f.state.Get(state.WaterDepth)) + " meters deep", nil
	case ButtonNearestPort:
		return f.nearestPort()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownButton, name)
	}
}

func (f *Formatter) nearestPort() (string, error) {
	here := location.LatLng{
		Lat: f.state.Get(state.Latitude),
		Lng: f.state.Get(state.Longitude),
	}
	port, err := f.ports.Nearest(here)
	if err != nil {
		return "", fmt.Errorf("nearest port: %w", err)
	}
	dist := location.Distance(here, port.Location)
	bearing := location.InitialBearing(here, port.Location)
	return fmt.Sprintf("%s at %s degrees to %s", FormatDistance(dist), TruncateFloat(bearing), port.Name), nil
}

// HandleAlert formats a and forwards it at Alert priority.
func (f *Formatter) HandleAlert(a alerts.Alert) error {
	text, err := AlertText(a)
	if err != nil {
		return err
	}
	f.out.Receive(Message{Text: text, Priority: Alert})
	return nil
}

// AlertText renders the spoken warning for a.
func AlertText(a alerts.Alert) (string, error) {
	label, err := sensorLabel(a.Sensor)
	if err != nil {
		return "", err
	}

	var phrase string
	switch a.Kind {
	case alerts.CriticalChange:
		phrase = "rapid change in " + label
	case alerts.AboveMax:
		phrase = label + " is high"
	case alerts.BelowMin:
		phrase = label + " is low"
	case alerts.Timeout:
		phrase = label + " is unresponsive"
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownAlertKind, int(a.Kind))
	}
	return "Warning: " + phrase, nil
}

func sensorLabel(s alerts.Sensor) (string, error) {
	switch s {
	case alerts.WaterDepth:
		return "Water Depth", nil
	case alerts.WindSpeed:
		return "Wind Speed", nil
	case alerts.WindAngle:
		return "Wind Angle", nil
	case alerts.Heading:
		return "Boat Heading", nil
	case alerts.Speed:
		return "Boat Speed", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownSensor, int(s))
	}
}
