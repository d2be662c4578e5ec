// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package source accepts instrument-network connections and feeds decoded
// packets into the ingestion queue.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/metrics"
	"github.com/relabs-tech/boat_voice/internal/packet"
)

const metricsSource = "tcp"

// Sink receives decoded packets. Push must not block.
type Sink interface {
	Push(p packet.Packet)
}

// Server listens for packet streams. Every connection gets its own reader;
// closing one connection does not affect the others.
type Server struct {
	addr   string
	sink   Sink
	logger log.Logger

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewServer returns a server that will listen on addr.
func NewServer(addr string, sink Sink) *Server {
	return &Server{
		addr:   addr,
		sink:   sink,
		logger: log.WithName("source"),
		conns:  make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket. Run calls it when it has not been called.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run accepts connections until ctx is cancelled. A bind failure is returned
// immediately.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	s.logger.Info("listening for packet streams", "address", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		s.closeConns()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.logger.Error(err, "accept failed")
			continue
		}

		if ctx.Err() != nil {
			conn.Close()
			continue
		}
		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.serve(conn)
		}()
	}
}

func (s *Server) track(c net.Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	metrics.ActiveConnections.Inc()
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.Close()
	metrics.ActiveConnections.Dec()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}

func (s *Server) serve(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	logger := s.logger.WithValues("remote", remote)
	logger.Info("connection opened")

	n, err := ReadStream(bufio.NewReader(conn), s.sink, logger)
	switch {
	case err == nil:
		logger.Info("connection closed", "packets", n)
	case errors.Is(err, net.ErrClosed):
		logger.Debug("connection closed locally", "packets", n)
	default:
		logger.Error(err, "connection dropped", "packets", n)
	}
}

// ReadStream decodes packets from r into sink until the stream ends. Malformed
// frames are logged and skipped. It returns the number of packets pushed and
// nil on a clean end of stream.
func ReadStream(r io.Reader, sink Sink, logger log.Logger) (int, error) {
	var n int
	for {
		p, err := packet.Decode(r)
		switch {
		case err == nil:
			sink.Push(p)
			metrics.PacketsDecoded.WithLabelValues(metricsSource).Inc()
			n++
		case errors.Is(err, packet.ErrEndOfStream):
			return n, nil
		case errors.Is(err, packet.ErrMalformed):
			metrics.DecodeErrors.WithLabelValues(metricsSource).Inc()
			logger.Warn("skipping malformed packet", "error", err.Error())
		default:
			metrics.DecodeErrors.WithLabelValues(metricsSource).Inc()
			return n, err
		}
	}
}
