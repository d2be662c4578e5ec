// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/boat_voice/internal/log"
	"github.com/relabs-tech/boat_voice/internal/metrics"
	"github.com/relabs-tech/boat_voice/internal/packet"
)

// Sink receives translated packets. The ingestion queue satisfies it.
type Sink interface {
	Push(p packet.Packet)
}

// SerialOptions selects the instrument serial port.
type SerialOptions struct {
	PortName string
	BaudRate int
}

// Reader turns a stream of NMEA 0183 lines into packets.
type Reader struct {
	sink   Sink
	now    func() time.Time
	logger log.Logger
}

// NewReader returns a Reader pushing into sink.
func NewReader(sink Sink) *Reader {
	return &Reader{
		sink:   sink,
		now:    time.Now,
		logger: log.WithName("gps"),
	}
}

// Read consumes r line by line until it ends. Lines that are not NMEA
// sentences, fail their checksum or carry nothing useful are skipped.
func (rd *Reader) Read(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			rd.handleLine(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("nmea read: %w", err)
		}
	}
}

func (rd *Reader) handleLine(line string) {
	line = strings.TrimSpace(line)
	// NMEA sentences start with '$' (or '!' for encapsulated AIS, which we ignore)
	if !strings.HasPrefix(line, "$") {
		return
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy instruments produce partial sentences; keep quiet unless debugging
		rd.logger.Debug("NMEA parse error", "line", line, "error", err.Error())
		metrics.DecodeErrors.WithLabelValues("nmea").Inc()
		return
	}

	p, ok := ToPacket(sentence, rd.now())
	if !ok {
		return
	}
	metrics.PacketsDecoded.WithLabelValues("nmea").Inc()
	rd.sink.Push(p)
}

// RunSerial opens the instrument serial port and reads it until ctx is
// cancelled or the port fails.
func (rd *Reader) RunSerial(ctx context.Context, opts SerialOptions) error {
	serialOpts := serial.OpenOptions{
		PortName:              opts.PortName,
		BaudRate:              uint(opts.BaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", opts.PortName, err)
	}
	rd.logger.Info("NMEA serial port opened", "port", opts.PortName, "baud", opts.BaudRate)

	// Closing the port is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer func() {
		if stop() {
			port.Close()
		}
	}()

	err = rd.Read(port)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
