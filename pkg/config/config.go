// Package config loads the beand configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/bean.go/pkg/controller"
	"github.com/robotalks/bean.go/pkg/link"
)

// Config holds all beand configuration.
type Config struct {
	Serial     SerialConfig     `yaml:"serial"`
	Link       LinkConfig       `yaml:"link"`
	Midi       MidiConfig       `yaml:"midi"`
	MQTTURL    string           `yaml:"mqtt_url"`
	Listen     ListenConfig     `yaml:"listen"`
	Controller ControllerConfig `yaml:"controller"`
}

// SerialConfig selects the co-processor connection.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	// Sim runs an in-process co-processor instead of opening Device.
	Sim bool `yaml:"sim"`
}

// LinkConfig tunes the serial transport.
type LinkConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MidiConfig controls MIDI forwarding.
type MidiConfig struct {
	FlushInterval time.Duration `yaml:"flush_interval"`
	PollInterval  time.Duration `yaml:"poll_interval"`
}

// ListenConfig holds the L1 endpoints, empty to disable.
type ListenConfig struct {
	TCP       string `yaml:"tcp"`
	Websocket string `yaml:"websocket"`
}

// ControllerConfig identifies the controller.
type ControllerConfig struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Defaults
const (
	DefaultFlushInterval = controller.DefaultFlushInterval
	DefaultPollInterval  = controller.DefaultPollInterval
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{Baud: link.DefaultBaud},
		Link:   LinkConfig{Timeout: link.DefaultCallTimeout},
		Midi: MidiConfig{
			FlushInterval: DefaultFlushInterval,
			PollInterval:  DefaultPollInterval,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields keep the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML content on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if !c.Serial.Sim && c.Serial.Device == "" {
		return fmt.Errorf("serial.device is required unless serial.sim is set")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("serial.baud must be > 0, got %d", c.Serial.Baud)
	}
	if c.Link.Timeout <= 0 {
		return fmt.Errorf("link.timeout must be > 0")
	}
	if c.Midi.FlushInterval <= 0 {
		return fmt.Errorf("midi.flush_interval must be > 0")
	}
	if c.Midi.PollInterval <= 0 {
		return fmt.Errorf("midi.poll_interval must be > 0")
	}
	if c.MQTTURL == "" && c.Listen.TCP == "" && c.Listen.Websocket == "" {
		return fmt.Errorf("one of mqtt_url, listen.tcp or listen.websocket is required")
	}
	return nil
}
