package state

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/boat_voice/internal/packet"
	"github.com/relabs-tech/boat_voice/internal/queue"
)

type observation struct {
	field Field
	value float64
}

type recordingObserver struct {
	mu  sync.Mutex
	got []observation
}

func (o *recordingObserver) Observe(f Field, v float64, _ time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, observation{f, v})
}

func (o *recordingObserver) observations() []observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]observation(nil), o.got...)
}

func TestApplyHeadingLeavesOtherFieldsAlone(t *testing.T) {
	st := NewBoatState()
	st.Set(WaterDepth, 12.5)
	st.Set(WindSpeed, 4)
	st.Set(Latitude, 52.2)

	d := NewDecoder(nil, st)
	n := d.Apply(packet.Packet{
		PGN:    packet.PGNVesselHeading,
		Fields: map[string]float64{packet.FieldHeading: 271.5, packet.FieldDeviation: 1},
	})

	assert.Equal(t, 1, n)
	assert.Equal(t, Snapshot{
		Latitude:   52.2,
		Heading:    271.5,
		WindSpeed:  4,
		WaterDepth: 12.5,
	}, st.Snapshot())
}

func TestApplyMapsEveryRecognisedField(t *testing.T) {
	st := NewBoatState()
	obs := &recordingObserver{}
	d := NewDecoder(nil, st, obs)

	d.Apply(packet.Packet{Fields: map[string]float64{
		packet.FieldLatitude:             52.1,
		packet.FieldLongitude:            0.12,
		packet.FieldHeading:              90,
		packet.FieldWindAngle:            45,
		packet.FieldWindSpeed:            7.5,
		packet.FieldDepth:                3.2,
		packet.FieldSpeedWaterReferenced: 2.4,
		"Rudder Angle":                   5,
	}})

	assert.Equal(t, Snapshot{
		Latitude:          52.1,
		Longitude:         0.12,
		Heading:           90,
		WindAngle:         45,
		WindSpeed:         7.5,
		WaterDepth:        3.2,
		SpeedThroughWater: 2.4,
	}, st.Snapshot())
	assert.Len(t, obs.observations(), 7)
}

func TestApplySkipsUnavailableValues(t *testing.T) {
	st := NewBoatState()
	st.Set(WaterDepth, 8)
	d := NewDecoder(nil, st)

	n := d.Apply(packet.Packet{Fields: map[string]float64{packet.FieldDepth: math.NaN()}})

	assert.Equal(t, 0, n)
	assert.Equal(t, 8.0, st.WaterDepth())
}

func TestRunDrainsQueue(t *testing.T) {
	q := queue.New(10)
	st := NewBoatState()
	obs := &recordingObserver{}
	d := NewDecoder(q, st, obs)

	q.Push(packet.Packet{Fields: map[string]float64{packet.FieldDepth: 4}})
	q.Push(packet.Packet{Fields: map[string]float64{packet.FieldDepth: 5}})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return len(obs.observations()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5.0, st.WaterDepth())
	assert.Equal(t, []observation{{WaterDepth, 4}, {WaterDepth, 5}}, obs.observations())

	cancel()
	assert.NoError(t, <-errCh)
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "waterDepth", WaterDepth.String())
	assert.Equal(t, "Field(42)", Field(42).String())
}
