package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-spiled/internal/config"
	"github.com/coreman2200/funtimes-spiled/internal/panel"
	"github.com/coreman2200/funtimes-spiled/internal/rgb"
)

func TestMergeKeepsFlagsForUnsetFields(t *testing.T) {
	e := *config.Default()
	e.SPI.Dev = "/dev/spidev0.0"
	merge(&e, &config.Config{NumLEDs: 60, SPI: config.SPI{SpeedHz: 3000000}})

	assert.Equal(t, 60, e.NumLEDs)
	assert.Equal(t, "spi", e.Driver)
	assert.Equal(t, "/dev/spidev0.0", e.SPI.Dev)
	assert.Equal(t, config.DefaultNativeHz, e.SPI.NativeHz)
	assert.Equal(t, 3000000, e.SPI.SpeedHz)
}

func TestOpenStripConsole(t *testing.T) {
	c := *config.Default()
	c.Driver = "console"
	c.NumLEDs = 2
	s, closer, name := openStrip(c, rgb.GRB)
	assert.Equal(t, "console", name)
	assert.Equal(t, 2, s.NumLEDs())
	_, ok := s.(*panel.Panel)
	assert.True(t, ok)
	assert.NotNil(t, closer)
}
