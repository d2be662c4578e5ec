// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry mirrors the boat state and every spoken message to an
// MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/messages"
	"github.com/relabs-tech/boat_voice/internal/state"
)

const publishTimeout = 5 * time.Second

// Publisher is the part of an MQTT client used for publishing.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// StateSource provides the boat state to publish.
type StateSource interface {
	Snapshot() state.Snapshot
}

// Topics names the MQTT topics.
type Topics struct {
	State    string
	Messages string
}

// Connect opens an MQTT connection to broker.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(3 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", broker, err)
	}
	log.Info("connected to MQTT broker", "broker", broker, "client_id", clientID)
	return client, nil
}

// StatePublisher publishes the boat state on a fixed interval and each
// delivered message as it is spoken.
type StatePublisher struct {
	client   Publisher
	topics   Topics
	state    StateSource
	interval time.Duration
	logger   log.Logger
}

// NewStatePublisher returns a publisher. interval must be positive.
func NewStatePublisher(client Publisher, topics Topics, st StateSource, interval time.Duration) *StatePublisher {
	return &StatePublisher{
		client:   client,
		topics:   topics,
		state:    st,
		interval: interval,
		logger:   log.WithName("telemetry"),
	}
}

// Run publishes the state until ctx is cancelled. Publish failures are
// logged and retried on the next tick.
func (p *StatePublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.PublishState(); err != nil {
				p.logger.Error(err, "state publish failed", "topic", p.topics.State)
			}
		}
	}
}

// PublishState publishes one snapshot as a retained message.
func (p *StatePublisher) PublishState() error {
	return p.publish(p.topics.State, true, p.state.Snapshot())
}

// Speak publishes m on the messages topic, so the publisher can sit behind
// the dispatcher next to the real speaker.
func (p *StatePublisher) Speak(_ context.Context, m messages.Message) error {
	return p.publish(p.topics.Messages, false, m)
}

func (p *StatePublisher) publish(topic string, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}
