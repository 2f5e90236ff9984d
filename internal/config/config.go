package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	UNii          UNiiConfig          `yaml:"unii"`
	MQTT          MQTTConfig          `yaml:"mqtt"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Sections      []SectionConfig     `yaml:"sections"`
	Inputs        []InputConfig       `yaml:"inputs"`
	Log           string              `yaml:"log"`
	Cache         bool                `yaml:"cache"`
}

type UNiiConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// SharedKey is the pre-shared key for basic encryption, either 16 raw
	// characters or 32 hex characters. Empty means no encryption.
	SharedKey string `yaml:"shared_key"`
	// Code is the user code embedded in arm/disarm requests.
	Code string `yaml:"code"`
}

type MQTTConfig struct {
	ClientID  string `yaml:"client_id"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Keepalive int    `yaml:"keepalive"`
	Password  string `yaml:"password"`
	QOS       int    `yaml:"qos"`
	Retain    bool   `yaml:"retain"`
	RetainLog bool   `yaml:"retain_log"`
	Username  string `yaml:"username"`
	Prefix    string `yaml:"prefix"`
	Clean     bool   `yaml:"clean"`
}

type HomeAssistantConfig struct {
	Discovery bool   `yaml:"discovery"`
	Prefix    string `yaml:"prefix"`
}

type SectionConfig struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
	Code   string `yaml:"code"`
}

type InputConfig struct {
	Number      int    `yaml:"number"`
	Name        string `yaml:"name"`
	DeviceClass string `yaml:"device_class"`
}

func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Set default values
	if config.UNii.Port == 0 {
		config.UNii.Port = 6502
	}
	if config.MQTT.ClientID == "" {
		config.MQTT.ClientID = "unii2mqtt"
	}
	if config.MQTT.Host == "" {
		config.MQTT.Host = "localhost"
	}
	if config.MQTT.Port == 0 {
		config.MQTT.Port = 1883
	}
	if config.MQTT.Keepalive == 0 {
		config.MQTT.Keepalive = 60
	}
	if config.MQTT.Prefix == "" {
		config.MQTT.Prefix = "unii2mqtt"
	}
	if config.HomeAssistant.Prefix == "" {
		config.HomeAssistant.Prefix = "homeassistant"
	}
	if config.Log == "" {
		config.Log = "info"
	}

	return &config, nil
}

// SharedKey16 decodes the configured shared key to its 16 byte value. A 32
// character hex string is decoded, a 16 character string is used as-is.
func (c *UNiiConfig) SharedKey16() ([]byte, error) {
	return DecodeSharedKey(c.SharedKey)
}

func DecodeSharedKey(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	if len(key) == 32 {
		if decoded, err := hex.DecodeString(key); err == nil {
			return decoded, nil
		}
	}
	if len(key) != 16 {
		return nil, fmt.Errorf("shared key must be 16 bytes or 32 hex characters, got %d characters", len(key))
	}
	return []byte(key), nil
}

// SectionCode returns the user code to use for the given section number,
// preferring a per-section code over the global one.
func (c *Config) SectionCode(number int) string {
	for _, section := range c.Sections {
		if section.Number == number && section.Code != "" {
			return section.Code
		}
	}
	return c.UNii.Code
}
