package buttons

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func testPin(name string) *gpiotest.Pin {
	return &gpiotest.Pin{N: name, EdgesChan: make(chan gpio.Level, 8)}
}

// waitArmed blocks until the listener has configured the pin for edges.
// Configuring a pin discards edges queued before it.
func waitArmed(t *testing.T, pins ...*gpiotest.Pin) {
	t.Helper()
	for _, p := range pins {
		require.Eventually(t, func() bool {
			p.Lock()
			defer p.Unlock()
			return p.P == gpio.PullDown
		}, 2*time.Second, time.Millisecond)
	}
}

type pressLog struct {
	mu    sync.Mutex
	names []string
}

func (p *pressLog) handle(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append(p.names, name)
	return nil
}

func (p *pressLog) get() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.names...)
}

func TestListenerReportsPresses(t *testing.T) {
	depth := testPin("GPIO17")
	wind := testPin("GPIO22")
	presses := &pressLog{}

	l := NewListener(map[string]gpio.PinIn{"water-depth": depth, "wind-speed": wind}, presses.handle)
	l.SetDebounce(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	waitArmed(t, depth, wind)

	depth.EdgesChan <- gpio.High
	require.Eventually(t, func() bool { return len(presses.get()) == 1 }, 2*time.Second, 5*time.Millisecond)
	wind.EdgesChan <- gpio.High
	require.Eventually(t, func() bool { return len(presses.get()) == 2 }, 2*time.Second, 5*time.Millisecond)

	// a falling level is not a press
	depth.EdgesChan <- gpio.Low
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"water-depth", "wind-speed"}, presses.get())
}

func TestListenerDebounces(t *testing.T) {
	pin := testPin("GPIO17")
	presses := &pressLog{}

	l := NewListener(map[string]gpio.PinIn{"boat-speed": pin}, presses.handle)
	l.SetDebounce(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	waitArmed(t, pin)

	pin.EdgesChan <- gpio.High
	pin.EdgesChan <- gpio.High
	pin.EdgesChan <- gpio.High
	require.Eventually(t, func() bool { return len(pin.EdgesChan) == 0 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"boat-speed"}, presses.get())
}

func TestListenerStopsOnHandlerError(t *testing.T) {
	pin := testPin("GPIO5")
	boom := errors.New("unknown button")

	l := NewListener(map[string]gpio.PinIn{"horn": pin}, func(string) error { return boom })
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	waitArmed(t, pin)
	pin.EdgesChan <- gpio.High

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "button horn")
}
