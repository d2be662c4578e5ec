// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package simulator

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/packet"
)

const (
	redialInterval = 2 * time.Second
	writeTimeout   = 5 * time.Second
)

// Client streams a simulated boat's packets to the assistant.
type Client struct {
	addr     string
	interval time.Duration
	boat     *Boat
	logger   log.Logger
}

// NewClient returns a client sending one round of packets per interval.
func NewClient(addr string, interval time.Duration, boat *Boat) *Client {
	return &Client{
		addr:     addr,
		interval: interval,
		boat:     boat,
		logger:   log.WithName("simulator"),
	}
}

// Run dials addr and streams until ctx is cancelled, redialling when the
// connection drops.
func (c *Client) Run(ctx context.Context) error {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", c.addr)
		if err == nil {
			c.logger.Info("connected", "address", c.addr)
			err = c.stream(ctx, conn)
			conn.Close()
		}
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("connection lost, redialling", "address", c.addr, "error", err.Error())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(redialInterval):
		}
	}
}

func (c *Client) stream(ctx context.Context, conn net.Conn) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	w := bufio.NewWriter(conn)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.boat.Step(c.interval)
			pkts, err := c.boat.Packets(now)
			if err != nil {
				return fmt.Errorf("build packets: %w", err)
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return err
			}
			for _, p := range pkts {
				if err := packet.Encode(w, p); err != nil {
					return fmt.Errorf("encode %s: %w", p.Description, err)
				}
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			c.logger.Debug("sent packets", "count", len(pkts), "depth", c.boat.Depth())
		}
	}
}
