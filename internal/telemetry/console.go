// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/messages"
	"github.com/relabs-tech/boat_voice/internal/state"
)

// Subscriber is the part of an MQTT client used by the console.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// FormatState renders a snapshot as one console line.
func FormatState(s state.Snapshot) string {
	return fmt.Sprintf(
		"[STATE] lat=%.6f lon=%.6f hdg=%6.1f° wind=%6.1f°/%5.1fm/s depth=%6.1fm stw=%5.1fm/s",
		s.Latitude, s.Longitude, s.Heading, s.WindAngle, s.WindSpeed, s.WaterDepth, s.SpeedThroughWater,
	)
}

// FormatMessage renders a spoken message as one console line.
func FormatMessage(m messages.Message) string {
	return fmt.Sprintf("[SAY %-8s] %s", m.Priority.String(), m.Text)
}

// RunConsole prints every state update and spoken message to w until ctx is
// cancelled.
func RunConsole(ctx context.Context, client Subscriber, topics Topics, w io.Writer) error {
	var mu sync.Mutex
	emit := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, line)
	}

	stateToken := client.Subscribe(topics.State, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s state.Snapshot
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Error(err, "console: state unmarshal error")
			return
		}
		emit(FormatState(s))
	})
	stateToken.Wait()
	if err := stateToken.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topics.State, err)
	}
	log.Info("console: subscribed", "topic", topics.State)

	msgToken := client.Subscribe(topics.Messages, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var m messages.Message
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			log.Error(err, "console: message unmarshal error")
			return
		}
		emit(FormatMessage(m))
	})
	msgToken.Wait()
	if err := msgToken.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topics.Messages, err)
	}
	log.Info("console: subscribed", "topic", topics.Messages)

	<-ctx.Done()
	log.Info("console: shutting down")
	client.Unsubscribe(topics.State, topics.Messages).Wait()
	return nil
}
