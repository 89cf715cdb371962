// Package config loads forcepad deployment settings from YAML with flag
// overrides on top. Gesture timing is fixed and lives in the logic package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/forcepad/internal/led"
	"github.com/sweeney/forcepad/internal/sensor"
)

// Config is the top-level YAML configuration.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	LED    LEDConfig    `yaml:"led"`
	HTTP   HTTPConfig   `yaml:"http"`

	PollMs      int `yaml:"poll_ms"`
	HeartbeatMs int `yaml:"heartbeat_ms"` // 0 disables

	Log LogConfig `yaml:"log"`
}

type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

type LEDConfig struct {
	Chip string `yaml:"chip"`
	Line int    `yaml:"line"` // negative disables the indicator
}

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the status server
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a fully-populated Config.
func Default() Config {
	return Config{
		Serial: SerialConfig{
			Device: sensor.DefaultDevice,
			Baud:   sensor.DefaultBaud,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "forcepad",
		},
		LED: LEDConfig{
			Chip: led.DefaultChip,
			Line: led.DefaultLine,
		},
		HTTP: HTTPConfig{
			Addr: ":80",
		},
		PollMs:      50,
		HeartbeatMs: int((15 * time.Minute).Milliseconds()),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over Default. Unknown fields are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes over Default.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	// An empty document leaves the defaults in place.
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides holds values from flags the user actually set. Nil pointers
// are ignored.
type FlagOverrides struct {
	SerialDevice *string
	Broker       *string
	HTTPAddr     *string
	Poll         *time.Duration
	Heartbeat    *time.Duration
	LogLevel     *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.SerialDevice != nil {
		cfg.Serial.Device = *o.SerialDevice
	}
	if o.Broker != nil {
		cfg.MQTT.Broker = *o.Broker
	}
	if o.HTTPAddr != nil {
		cfg.HTTP.Addr = *o.HTTPAddr
	}
	if o.Poll != nil {
		cfg.PollMs = int(o.Poll.Milliseconds())
	}
	if o.Heartbeat != nil {
		cfg.HeartbeatMs = int(o.Heartbeat.Milliseconds())
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
}

// Validate checks config invariants after defaults, file and overrides.
func (c Config) Validate() error {
	if c.Serial.Device == "" {
		return errors.New("serial.device must not be empty")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be > 0 (got %d)", c.Serial.Baud)
	}
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker must not be empty")
	}
	if c.MQTT.ClientID == "" {
		return errors.New("mqtt.client_id must not be empty")
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be > 0 (got %d)", c.PollMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must be >= 0 (got %d)", c.HeartbeatMs)
	}
	if c.LED.Line >= 0 && c.LED.Chip == "" {
		return errors.New("led.chip must not be empty when led.line is set")
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Poll returns the poll interval.
func (c Config) Poll() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

// Heartbeat returns the heartbeat interval. Zero means disabled.
func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMs) * time.Millisecond
}
