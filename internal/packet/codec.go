// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"
)

var (
	// ErrEndOfStream reports that the peer closed the stream on a frame boundary.
	ErrEndOfStream = errors.New("packet: end of stream")

	// ErrMalformed reports a frame that was read completely but whose content is
	// invalid. The stream is still aligned and the next frame can be read.
	ErrMalformed = errors.New("packet: malformed frame")
)

// maxText bounds descriptions and field names; both are length-prefixed by one byte.
const maxText = math.MaxUint8

// header is the fixed-size part of a frame.
type header struct {
	PGN         uint32
	TimestampMS int64
	Priority    uint8
	Source      uint8
	Destination uint8
}

// Decode reads one frame from r.
//
// It returns ErrEndOfStream when r is exhausted before the first byte of a
// frame, an error wrapping ErrMalformed when the frame was consumed but is
// invalid, and any other error when the stream can no longer be trusted.
func Decode(r io.Reader) (Packet, error) {
	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		if errors.Is(err, io.EOF) {
			return Packet{}, ErrEndOfStream
		}
		return Packet{}, fmt.Errorf("read header: %w", err)
	}

	desc, err := readText(r)
	if err != nil {
		return Packet{}, fmt.Errorf("read description: %w", err)
	}

	var count uint8
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return Packet{}, fmt.Errorf("read field count: %w", unexpected(err))
	}

	p := Packet{
		PGN:         h.PGN,
		Timestamp:   time.UnixMilli(h.TimestampMS).UTC(),
		Priority:    int(h.Priority),
		Source:      int(h.Source),
		Destination: int(h.Destination),
		Description: desc,
		Fields:      make(map[string]float64, count),
	}

	// Read every field before validating so a bad frame leaves the stream aligned.
	var invalid error
	for i := 0; i < int(count); i++ {
		name, err := readText(r)
		if err != nil {
			return Packet{}, fmt.Errorf("read field %d name: %w", i, err)
		}
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return Packet{}, fmt.Errorf("read field %q value: %w", name, unexpected(err))
		}

		switch {
		case invalid != nil:
		case name == "":
			invalid = fmt.Errorf("%w: field %d has an empty name", ErrMalformed, i)
		case !utf8.ValidString(name):
			invalid = fmt.Errorf("%w: field %d name is not UTF-8", ErrMalformed, i)
		default:
			if _, dup := p.Fields[name]; dup {
				invalid = fmt.Errorf("%w: duplicate field %q", ErrMalformed, name)
			}
		}
		p.Fields[name] = math.Float64frombits(bits)
	}

	if invalid == nil && !utf8.ValidString(desc) {
		invalid = fmt.Errorf("%w: description is not UTF-8", ErrMalformed)
	}
	if invalid != nil {
		return Packet{}, invalid
	}
	return p, nil
}

// Encode writes p as one frame.
func Encode(w io.Writer, p Packet) error {
	if len(p.Fields) > math.MaxUint8 {
		return fmt.Errorf("packet has %d fields, at most %d fit in a frame", len(p.Fields), math.MaxUint8)
	}
	if p.Priority < 0 || p.Priority > math.MaxUint8 ||
		p.Source < 0 || p.Source > math.MaxUint8 ||
		p.Destination < 0 || p.Destination > math.MaxUint8 {
		return fmt.Errorf("packet priority/source/destination out of byte range: %d/%d/%d",
			p.Priority, p.Source, p.Destination)
	}

	h := header{
		PGN:         p.PGN,
		TimestampMS: p.Timestamp.UnixMilli(),
		Priority:    uint8(p.Priority),
		Source:      uint8(p.Source),
		Destination: uint8(p.Destination),
	}
	if err := binary.Write(w, binary.BigEndian, h); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writeText(w, p.Description); err != nil {
		return fmt.Errorf("write description: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint8(len(p.Fields))); err != nil {
		return fmt.Errorf("write field count: %w", err)
	}
	for _, name := range p.FieldNames() {
		if err := writeText(w, name); err != nil {
			return fmt.Errorf("write field name %q: %w", name, err)
		}
		if err := binary.Write(w, binary.BigEndian, math.Float64bits(p.Fields[name])); err != nil {
			return fmt.Errorf("write field %q value: %w", name, err)
		}
	}
	return nil
}

func readText(r io.Reader) (string, error) {
	var n uint8
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", unexpected(err)
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", unexpected(err)
	}
	return string(buf), nil
}

func writeText(w io.Writer, s string) error {
	if len(s) > maxText {
		return fmt.Errorf("text of %d bytes exceeds %d", len(s), maxText)
	}
	if err := binary.Write(w, binary.BigEndian, uint8(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// unexpected turns a bare EOF in the middle of a frame into io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
