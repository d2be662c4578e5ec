// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"os"

	"github.com/relabs-tech/boat_voice/internal/config"
	"github.com/relabs-tech/boat_voice/internal/telemetry"
)

// RunConsole prints the assistant's MQTT state and messages to stdout.
func RunConsole(ctx context.Context, cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is not configured")
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientID+"-console")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	return telemetry.RunConsole(ctx, client, telemetry.Topics{
		State:    cfg.TopicState,
		Messages: cfg.TopicMessages,
	}, os.Stdout)
}
