// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "boat_voice_"

var (
	// PacketsDecoded counts packets pushed into the ingestion queue, by source
	// ("network" or "nmea").
	PacketsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "packets_decoded_total",
			Help: "Total telemetry packets decoded by source.",
		},
		[]string{"source"},
	)

	// DecodeErrors counts frames or sentences that could not be decoded.
	DecodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "decode_errors_total",
			Help: "Total telemetry decode errors by source.",
		},
		[]string{"source"},
	)

	QueueEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "queue_evictions_total",
			Help: "Packets discarded because the ingestion queue was full.",
		},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: metricPrefix + "queue_depth",
			Help: "Packets currently waiting in the ingestion queue.",
		},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: metricPrefix + "active_connections",
			Help: "Vessel network peers currently connected.",
		},
	)

	AlertsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "alerts_total",
			Help: "Alerts emitted by sensor and kind.",
		},
		[]string{"sensor", "kind"},
	)

	MessagesDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "messages_dispatched_total",
			Help: "Messages handed to the speech collaborator by priority.",
		},
		[]string{"priority"},
	)

	SpeechFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metricPrefix + "speech_failures_total",
			Help: "Messages the speech collaborator failed to play.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PacketsDecoded,
		DecodeErrors,
		QueueEvictions,
		QueueDepth,
		ActiveConnections,
		AlertsEmitted,
		MessagesDispatched,
		SpeechFailures,
	)
}
