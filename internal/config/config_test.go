package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_leds: 30\nspi:\n  dev: /dev/spidev0.1\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.NumLEDs)
	assert.Equal(t, "/dev/spidev0.1", c.SPI.Dev)
	assert.Empty(t, c.Driver)
	assert.Zero(t, c.SPI.NativeHz)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := Default()
	want.Driver = "console"
	want.SPI.SpeedHz = 3000000
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"driver": "driver: pwm\n",
		"leds":   "num_leds: -1\n",
		"clock":  "spi:\n  native_hz: -5\n",
		"yaml":   "num_leds: [\n",
	} {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
