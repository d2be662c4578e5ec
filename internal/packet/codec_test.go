package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depthPacket(depth float64) Packet {
	return Packet{
		PGN:         PGNWaterDepth,
		Timestamp:   time.UnixMilli(1700000000123).UTC(),
		Priority:    3,
		Source:      35,
		Destination: 255,
		Description: "Water Depth",
		Fields:      map[string]float64{FieldDepth: depth, FieldOffset: 0.5},
	}
}

func TestDecodeReadsWhatEncodeWrites(t *testing.T) {
	var buf bytes.Buffer
	want := depthPacket(12.75)
	require.NoError(t, Encode(&buf, want))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestDecodeEmptyStreamIsEndOfStream(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestDecodeTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, depthPacket(3)))
	frame := buf.Bytes()

	for _, cut := range []int{1, 10, 17, 20, len(frame) - 1} {
		_, err := Decode(bytes.NewReader(frame[:cut]))
		require.Error(t, err, "cut at %d", cut)
		assert.NotErrorIs(t, err, ErrEndOfStream, "cut at %d", cut)
		assert.NotErrorIs(t, err, ErrMalformed, "cut at %d", cut)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", cut)
	}
}

// rawFrame writes a frame by hand so invalid content can be produced.
func rawFrame(t *testing.T, desc string, names []string, values []float64) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, header{PGN: PGNVesselHeading, TimestampMS: 1}))
	require.NoError(t, writeText(&buf, desc))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint8(len(names))))
	for i, name := range names {
		require.NoError(t, writeText(&buf, name))
		require.NoError(t, binary.Write(&buf, binary.BigEndian, values[i]))
	}
	return buf.Bytes()
}

func TestDecodeMalformedFrameKeepsStreamAligned(t *testing.T) {
	tests := []struct {
		name   string
		desc   string
		fields []string
	}{
		{"empty field name", "Vessel Heading", []string{""}},
		{"duplicate field", "Vessel Heading", []string{FieldHeading, FieldHeading}},
		{"invalid utf8 name", "Vessel Heading", []string{"\xff\xfe"}},
		{"invalid utf8 description", "\xff", []string{FieldHeading}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := make([]float64, len(tt.fields))
			stream := rawFrame(t, tt.desc, tt.fields, values)

			var next bytes.Buffer
			require.NoError(t, Encode(&next, depthPacket(7)))
			r := bytes.NewReader(append(stream, next.Bytes()...))

			_, err := Decode(r)
			require.True(t, errors.Is(err, ErrMalformed), "got %v", err)

			p, err := Decode(r)
			require.NoError(t, err)
			assert.Equal(t, 7.0, p.Fields[FieldDepth])
		})
	}
}

func TestEncodeRejectsOversizedText(t *testing.T) {
	p := depthPacket(1)
	p.Description = string(bytes.Repeat([]byte("x"), 300))
	assert.Error(t, Encode(io.Discard, p))
}

func TestEncodeRejectsOutOfRangeHeader(t *testing.T) {
	p := depthPacket(1)
	p.Source = 300
	assert.Error(t, Encode(io.Discard, p))
}
