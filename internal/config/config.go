package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDriver     = "spi"
	DefaultColorOrder = "GRB"
	DefaultNativeHz   = 800000
	DefaultAddr       = ":8080"
	DefaultLogLevel   = "info"
)

type SPI struct {
	Dev      string `yaml:"dev"`       // e.g. /dev/spidev0.0, empty picks the first port
	NativeHz int    `yaml:"native_hz"` // strip bit rate, bus runs at 3x
	SpeedHz  int    `yaml:"speed_hz"`  // explicit bus clock, overrides native_hz*3
}

type Config struct {
	Driver     string `yaml:"driver"` // "spi" | "nrzled" | "console"
	NumLEDs    int    `yaml:"num_leds"`
	ColorOrder string `yaml:"color_order"`
	Addr       string `yaml:"addr"`
	LogLevel   string `yaml:"log_level"`

	SPI SPI `yaml:"spi,omitempty"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Driver:     DefaultDriver,
		NumLEDs:    256,
		ColorOrder: DefaultColorOrder,
		Addr:       DefaultAddr,
		LogLevel:   DefaultLogLevel,
		SPI:        SPI{NativeHz: DefaultNativeHz},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate rejects values that can never work. Zero values mean "not set".
func (c *Config) Validate() error {
	switch c.Driver {
	case "", "spi", "nrzled", "console":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.NumLEDs < 0 {
		return fmt.Errorf("invalid num_leds: %d", c.NumLEDs)
	}
	if c.SPI.NativeHz < 0 || c.SPI.SpeedHz < 0 {
		return fmt.Errorf("invalid spi clock: native_hz=%d speed_hz=%d", c.SPI.NativeHz, c.SPI.SpeedHz)
	}
	return nil
}
