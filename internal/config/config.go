package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/relabs-tech/boat_voice/internal/alerts"
	"github.com/relabs-tech/boat_voice/internal/messages"
	"github.com/relabs-tech/boat_voice/internal/queue"
)

// Config holds all application configuration values.
type Config struct {
	// Packet ingestion
	ListenAddr    string
	QueueCapacity int

	// Serial NMEA instruments
	GPSSerialPort string
	GPSBaudRate   int

	// HTTP surface
	HTTPAddr string

	// MQTT
	MQTTBroker           string
	MQTTClientID         string
	TopicState           string
	TopicMessages        string
	StatePublishInterval time.Duration

	// Speech and power
	SpeechCommand   string
	ShutdownCommand string

	// Ports
	PortsFile string

	// Alerts
	AlertScanInterval time.Duration
	Policies          map[alerts.Sensor]alerts.Policy

	// ButtonPins maps a button name to its GPIO pin name. Buttons without a
	// pin are only reachable over HTTP.
	ButtonPins map[string]string
}

// sensorKeys names each sensor in ALERT_<SENSOR>_* keys.
var sensorKeys = map[string]alerts.Sensor{
	"WATER_DEPTH": alerts.WaterDepth,
	"WIND_SPEED":  alerts.WindSpeed,
	"WIND_ANGLE":  alerts.WindAngle,
	"HEADING":     alerts.Heading,
	"SPEED":       alerts.Speed,
}

// Default returns a configuration with every value set to its default.
func Default() *Config {
	return &Config{
		ListenAddr:           ":8989",
		QueueCapacity:        queue.DefaultCapacity,
		GPSBaudRate:          4800,
		HTTPAddr:             ":8080",
		MQTTClientID:         "boat-voice-assistant",
		TopicState:           "boat/state",
		TopicMessages:        "boat/messages",
		StatePublishInterval: time.Second,
		AlertScanInterval:    alerts.DefaultScanInterval,
		Policies:             alerts.DefaultPolicies(),
		ButtonPins:           make(map[string]string),
	}
}

// Load reads the configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	case "LISTEN_ADDR":
		c.ListenAddr = value
	case "QUEUE_CAPACITY":
		c.QueueCapacity, err = parseInt(key, value)

	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		c.GPSBaudRate, err = parseInt(key, value)

	case "HTTP_ADDR":
		c.HTTPAddr = value

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_STATE":
		c.TopicState = value
	case "TOPIC_MESSAGES":
		c.TopicMessages = value
	case "STATE_PUBLISH_INTERVAL":
		c.StatePublishInterval, err = parseMillis(key, value)

	case "SPEECH_COMMAND":
		c.SpeechCommand = value
	case "SHUTDOWN_COMMAND":
		c.ShutdownCommand = value

	case "PORTS_FILE":
		c.PortsFile = value

	case "ALERT_SCAN_INTERVAL":
		c.AlertScanInterval, err = parseMillis(key, value)

	default:
		switch {
		case strings.HasPrefix(key, "ALERT_"):
			return c.setPolicy(key, value)
		case strings.HasPrefix(key, "BUTTON_PIN_"):
			return c.setButtonPin(key, value)
		}
		return fmt.Errorf("unknown key %q", key)
	}

	return err
}

func (c *Config) setPolicy(key, value string) error {
	rest := strings.TrimPrefix(key, "ALERT_")
	for name, sensor := range sensorKeys {
		if !strings.HasPrefix(rest, name+"_") {
			continue
		}
		p := c.Policies[sensor]
		var err error
		switch strings.TrimPrefix(rest, name+"_") {
		case "MIN":
			p.Min, err = parseFloat(key, value)
		case "MAX":
			p.Max, err = parseFloat(key, value)
		case "MAX_CHANGE":
			p.MaxChange, err = parseFloat(key, value)
		case "TIMEOUT":
			p.Timeout, err = parseMillis(key, value)
		default:
			continue
		}
		if err != nil {
			return err
		}
		c.Policies[sensor] = p
		return nil
	}
	return fmt.Errorf("unknown key %q", key)
}

func (c *Config) setButtonPin(key, value string) error {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, "BUTTON_PIN_"), "_", "-"))
	for _, b := range messages.Buttons {
		if b == name {
			if value == "" {
				delete(c.ButtonPins, name)
			} else {
				c.ButtonPins[name] = value
			}
			return nil
		}
	}
	return fmt.Errorf("unknown key %q", key)
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return v, nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, value)
	}
	return v, nil
}

func parseMillis(key, value string) (time.Duration, error) {
	v, err := parseInt(key, value)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return time.Duration(v) * time.Millisecond, nil
}

// Validate checks that the values are usable together.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("QUEUE_CAPACITY must be at least 1")
	}
	if c.GPSSerialPort != "" && c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required when GPS_SERIAL_PORT is set")
	}
	if c.MQTTBroker != "" {
		if c.MQTTClientID == "" {
			return fmt.Errorf("MQTT_CLIENT_ID is required when MQTT_BROKER is set")
		}
		if c.TopicState == "" || c.TopicMessages == "" {
			return fmt.Errorf("TOPIC_STATE and TOPIC_MESSAGES are required when MQTT_BROKER is set")
		}
		if c.StatePublishInterval <= 0 {
			return fmt.Errorf("STATE_PUBLISH_INTERVAL must be positive")
		}
	}
	if c.AlertScanInterval <= 0 {
		return fmt.Errorf("ALERT_SCAN_INTERVAL must be positive")
	}
	for sensor, p := range c.Policies {
		if p.Min > p.Max {
			return fmt.Errorf("alert policy for %s: min %g is above max %g", sensor, p.Min, p.Max)
		}
		if p.MaxChange < 0 {
			return fmt.Errorf("alert policy for %s: max change must not be negative", sensor)
		}
	}
	return nil
}

// LoadOrDefault loads configPath, or returns Default when it is empty.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return Default(), nil
	}
	return Load(configPath)
}
