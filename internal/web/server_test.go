package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/boat_voice/internal/alerts"
	"github.com/relabs-tech/boat_voice/internal/location"
	"github.com/relabs-tech/boat_voice/internal/messages"
	"github.com/relabs-tech/boat_voice/internal/state"
)

type collected struct{ msgs []messages.Message }

func (c *collected) Receive(m messages.Message) { c.msgs = append(c.msgs, m) }

type fixture struct {
	srv    *httptest.Server
	hub    *Hub
	state  *state.BoatState
	engine *alerts.Engine
	out    *collected
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := state.NewBoatState()
	engine := alerts.NewEngine(alerts.DefaultPolicies(), alerts.HandlerFunc(func(alerts.Alert) error { return nil }))
	out := &collected{}
	formatter := messages.NewFormatter(st, location.NewDirectory(location.DefaultPorts), out, nil)
	hub := NewHub()

	srv := httptest.NewServer(NewServer("", st, engine, formatter, hub).Handler())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, hub: hub, state: st, engine: engine, out: out}
}

func TestStateEndpoint(t *testing.T) {
	f := newFixture(t)
	f.state.Set(state.WaterDepth, 7.5)

	resp, err := http.Get(f.srv.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var got state.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 7.5, got.WaterDepth)
}

func TestAlertsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.engine.Observe(state.WindSpeed, 30, time.Now())

	resp, err := http.Get(f.srv.URL + "/api/alerts")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []alerts.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, len(alerts.Sensors))

	byName := make(map[string]alerts.Status)
	for _, s := range got {
		byName[s.Sensor] = s
	}
	assert.Equal(t, alerts.Alerting, byName[alerts.WindSpeed.String()].Condition)
	assert.Equal(t, alerts.Normal, byName[alerts.WaterDepth.String()].Condition)
}

func TestButtonEndpoint(t *testing.T) {
	f := newFixture(t)
	f.state.Set(state.WaterDepth, 4.3)

	resp, err := http.Post(f.srv.URL+"/api/buttons/water-depth", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []messages.Message{{Text: "4.3 meters deep", Priority: messages.Info}}, f.out.msgs)

	resp, err = http.Post(f.srv.URL+"/api/buttons/foghorn", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(f.srv.URL + "/api/buttons/water-depth")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestShutDownButtonIsNotExposed(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.srv.URL+"/api/buttons/shut-down", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, f.out.msgs)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMessageStream(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/messages"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, 2*time.Second, time.Millisecond)

	msg := messages.Message{Text: "Warning: Water Depth is low", Priority: messages.Alert}
	require.NoError(t, f.hub.Speak(context.Background(), msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got messages.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, msg, got)

	conn.Close()
	assert.Eventually(t, func() bool { return f.hub.Clients() == 0 }, 2*time.Second, time.Millisecond)
}
