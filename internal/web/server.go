// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package web serves the assistant's HTTP surface: live state, alert status,
// virtual buttons, the spoken message stream and metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/boat_voice/internal/alerts"
	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/messages"
	"github.com/relabs-tech/boat_voice/internal/state"
)

// StateSource provides the live boat state.
type StateSource interface {
	Snapshot() state.Snapshot
}

// AlertSource reports per-sensor alert status.
type AlertSource interface {
	Snapshot() []alerts.Status
}

// ButtonHandler presses a button by name.
type ButtonHandler interface {
	HandleButtonPress(name string) error
}

// Server wires the HTTP routes.
type Server struct {
	addr    string
	state   StateSource
	alerts  AlertSource
	buttons ButtonHandler
	hub     *Hub
	logger  log.Logger
}

// NewServer returns a server for addr.
func NewServer(addr string, st StateSource, al AlertSource, buttons ButtonHandler, hub *Hub) *Server {
	return &Server{
		addr:    addr,
		state:   st,
		alerts:  al,
		buttons: buttons,
		hub:     hub,
		logger:  log.WithName("web"),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts", s.handleAlerts).Methods(http.MethodGet)
	r.HandleFunc("/api/buttons/{name}", s.handleButton).Methods(http.MethodPost)
	r.Handle("/ws/messages", s.hub).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("HTTP listening", "address", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state.Snapshot())
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.alerts.Snapshot())
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	// Powering off is reserved for the physical button.
	if name == messages.ButtonShutDown {
		http.Error(w, "shut-down is not available over HTTP", http.StatusForbidden)
		return
	}
	err := s.buttons.HandleButtonPress(name)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusAccepted, map[string]string{"button": name})
	case errors.Is(err, messages.ErrUnknownButton):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error(err, "button press failed", "button", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(err, "json encode error")
	}
}
