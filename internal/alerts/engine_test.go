package alerts

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/boat_voice/internal/state"
)

type recorder struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (r *recorder) HandleAlert(a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return r.err
}

func (r *recorder) kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Kind
	for _, a := range r.alerts {
		out = append(out, a.Kind)
	}
	return out
}

var t0 = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestEngine(policies map[Sensor]Policy) (*Engine, *recorder) {
	rec := &recorder{}
	return NewEngine(policies, rec, WithClock(func() time.Time { return t0 })), rec
}

func TestAboveMaxFiresOnceUntilRecovery(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		WindSpeed: {Min: 0, Max: 15},
	})

	for i, v := range []float64{5, 10, 16, 18, 20, 17} {
		e.Observe(state.WindSpeed, v, t0.Add(time.Duration(i)*time.Second))
	}
	assert.Equal(t, []Kind{AboveMax}, rec.kinds())
	assert.Equal(t, Alerting, e.Condition(WindSpeed))

	// back within bounds: silent recovery
	e.Observe(state.WindSpeed, 12, t0.Add(10*time.Second))
	assert.Equal(t, []Kind{AboveMax}, rec.kinds())
	assert.Equal(t, Normal, e.Condition(WindSpeed))

	e.Observe(state.WindSpeed, 16, t0.Add(11*time.Second))
	assert.Equal(t, []Kind{AboveMax, AboveMax}, rec.kinds())
	assert.Equal(t, WindSpeed, rec.alerts[1].Sensor)
	assert.Equal(t, t0.Add(11*time.Second), rec.alerts[1].Timestamp)
}

func TestBelowMin(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		WaterDepth: {Min: 2, Max: 100},
	})

	e.Observe(state.WaterDepth, 5, t0)
	e.Observe(state.WaterDepth, 1.5, t0)
	e.Observe(state.WaterDepth, 1.0, t0)

	assert.Equal(t, []Kind{BelowMin}, rec.kinds())
}

func TestJumpFromHighToLowIsANewCondition(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		Speed: {Min: 1, Max: 10},
	})

	e.Observe(state.SpeedThroughWater, 12, t0)
	e.Observe(state.SpeedThroughWater, 0.5, t0)

	assert.Equal(t, []Kind{AboveMax, BelowMin}, rec.kinds())
	assert.Equal(t, Alerting, e.Condition(Speed))
}

func TestCriticalChange(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		WaterDepth: {Min: math.Inf(-1), Max: math.Inf(1), MaxChange: 5},
	})

	e.Observe(state.WaterDepth, 50, t0) // first sample, nothing to compare with
	e.Observe(state.WaterDepth, 53, t0)
	e.Observe(state.WaterDepth, 40, t0)
	e.Observe(state.WaterDepth, 41, t0)

	assert.Equal(t, []Kind{CriticalChange}, rec.kinds())
	assert.Equal(t, Normal, e.Condition(WaterDepth))
}

func TestCircularChangeUsesShorterArc(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		Heading: {Min: 0, Max: 360, MaxChange: 30, Circular: true},
	})

	e.Observe(state.Heading, 350, t0)
	e.Observe(state.Heading, 10, t0) // 20° across north
	assert.Empty(t, rec.kinds())

	e.Observe(state.Heading, 90, t0)
	assert.Equal(t, []Kind{CriticalChange}, rec.kinds())
}

func TestTimeoutFiresOncePerOutage(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		WaterDepth: {Min: 0, Max: 100, Timeout: 5 * time.Second},
		WindSpeed:  {Min: 0, Max: 100},
	})

	e.Scan(t0.Add(5 * time.Second))
	assert.Empty(t, rec.kinds())

	// never reported: measured from engine start
	e.Scan(t0.Add(6 * time.Second))
	e.Scan(t0.Add(7 * time.Second))
	assert.Equal(t, []Kind{Timeout}, rec.kinds())
	assert.Equal(t, WaterDepth, rec.alerts[0].Sensor)

	e.Observe(state.WaterDepth, 10, t0.Add(8*time.Second))
	e.Scan(t0.Add(12 * time.Second))
	assert.Equal(t, []Kind{Timeout}, rec.kinds())

	e.Scan(t0.Add(14 * time.Second))
	assert.Equal(t, []Kind{Timeout, Timeout}, rec.kinds())
}

func TestTimeoutDoesNotChangeBoundState(t *testing.T) {
	e, rec := newTestEngine(map[Sensor]Policy{
		WindSpeed: {Min: 0, Max: 15, Timeout: time.Second},
	})

	e.Observe(state.WindSpeed, 20, t0)
	e.Scan(t0.Add(2 * time.Second))

	assert.Equal(t, []Kind{AboveMax, Timeout}, rec.kinds())
	assert.Equal(t, Alerting, e.Condition(WindSpeed))

	snap := e.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].TimedOut)
	assert.Equal(t, "above_max", snap[0].Bound)
}

func TestPositionFieldsAreNotMonitored(t *testing.T) {
	e, rec := newTestEngine(DefaultPolicies())
	e.Observe(state.Latitude, 1000, t0)
	assert.Empty(t, rec.kinds())
}

func TestRunReturnsHandlerError(t *testing.T) {
	rec := &recorder{err: errors.New("unknown sensor")}
	e := NewEngine(map[Sensor]Policy{WindSpeed: {Min: 0, Max: 1}}, rec, WithScanInterval(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	e.Observe(state.WindSpeed, 5, time.Now())

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown sensor")
	case <-ctx.Done():
		t.Fatal("Run did not return the handler error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _ := newTestEngine(DefaultPolicies())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, e.Run(ctx))
}

func TestSensorFieldRoundTrip(t *testing.T) {
	for _, s := range Sensors {
		f, ok := s.Field()
		require.True(t, ok)
		back, ok := SensorForField(f)
		require.True(t, ok)
		assert.Equal(t, s, back)
	}
	_, ok := Sensor(9).Field()
	assert.False(t, ok)
}
