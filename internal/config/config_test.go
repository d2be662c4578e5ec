package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/boat_voice/internal/alerts"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boat_voice.config")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8989", cfg.ListenAddr)
	assert.Equal(t, 300, cfg.QueueCapacity)
	assert.Equal(t, alerts.DefaultPolicies(), cfg.Policies)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# instruments
LISTEN_ADDR = 0.0.0.0:9000
GPS_SERIAL_PORT=/dev/ttyUSB0
GPS_BAUD_RATE=38400

MQTT_BROKER=tcp://localhost:1883
STATE_PUBLISH_INTERVAL=500
SPEECH_COMMAND=espeak -s 140
ALERT_SCAN_INTERVAL=250
ALERT_WATER_DEPTH_MIN=3.5
ALERT_WATER_DEPTH_TIMEOUT=20000
ALERT_WIND_SPEED_MAX_CHANGE=4
BUTTON_PIN_WATER_DEPTH=GPIO17
BUTTON_PIN_SHUT_DOWN=GPIO27
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, "/dev/ttyUSB0", cfg.GPSSerialPort)
	assert.Equal(t, 38400, cfg.GPSBaudRate)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, 500*time.Millisecond, cfg.StatePublishInterval)
	assert.Equal(t, "espeak -s 140", cfg.SpeechCommand)
	assert.Equal(t, 250*time.Millisecond, cfg.AlertScanInterval)

	depth := cfg.Policies[alerts.WaterDepth]
	assert.Equal(t, 3.5, depth.Min)
	assert.Equal(t, 200.0, depth.Max)
	assert.Equal(t, 20*time.Second, depth.Timeout)
	assert.Equal(t, 4.0, cfg.Policies[alerts.WindSpeed].MaxChange)

	assert.Equal(t, map[string]string{"water-depth": "GPIO17", "shut-down": "GPIO27"}, cfg.ButtonPins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing equals", "LISTEN_ADDR\n", "invalid config line 1"},
		{"unknown key", "\nFOO=bar\n", `config line 2: unknown key "FOO"`},
		{"unknown sensor", "ALERT_RUDDER_MIN=1\n", "unknown key"},
		{"unknown bound", "ALERT_HEADING_AVG=1\n", "unknown key"},
		{"unknown button", "BUTTON_PIN_HORN=GPIO4\n", "unknown key"},
		{"bad number", "ALERT_SPEED_MAX=fast\n", "invalid number"},
		{"bad interval", "ALERT_SCAN_INTERVAL=-5\n", "must not be negative"},
		{"inverted bounds", "ALERT_SPEED_MIN=20\n", "min 20 is above max 10"},
		{"zero queue", "QUEUE_CAPACITY=0\n", "QUEUE_CAPACITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.config"))
	assert.ErrorContains(t, err, "failed to open config file")
}
