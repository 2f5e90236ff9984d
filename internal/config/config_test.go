package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
unii:
  host: 192.168.1.10
`))
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.10", cfg.UNii.Host)
	assert.Equal(t, 6502, cfg.UNii.Port)
	assert.Equal(t, "localhost", cfg.MQTT.Host)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, 60, cfg.MQTT.Keepalive)
	assert.Equal(t, "unii2mqtt", cfg.MQTT.Prefix)
	assert.Equal(t, "homeassistant", cfg.HomeAssistant.Prefix)
	assert.Equal(t, "info", cfg.Log)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestDecodeSharedKey(t *testing.T) {
	key, err := DecodeSharedKey("")
	require.NoError(t, err)
	assert.Nil(t, key)

	key, err = DecodeSharedKey("31323334353637383930616263646566")
	require.NoError(t, err)
	assert.Equal(t, []byte("1234567890abcdef"), key)

	key, err = DecodeSharedKey("1234567890abcdef")
	require.NoError(t, err)
	assert.Equal(t, []byte("1234567890abcdef"), key)

	_, err = DecodeSharedKey("too short")
	assert.Error(t, err)
}

func TestSectionCode(t *testing.T) {
	cfg := &Config{
		UNii: UNiiConfig{Code: "1234"},
		Sections: []SectionConfig{
			{Number: 1, Name: "Home", Code: "5678"},
			{Number: 2, Name: "Garage"},
		},
	}

	assert.Equal(t, "5678", cfg.SectionCode(1))
	assert.Equal(t, "1234", cfg.SectionCode(2))
	assert.Equal(t, "1234", cfg.SectionCode(3))
}
