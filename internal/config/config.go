package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration for the host sender.
type Config struct {
	Link      LinkConfig      `yaml:"link"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Image     *ImageConfig    `yaml:"image"`
	Remote    *RemoteConfig   `yaml:"remote"`
}

// ---- LINK ----

type LinkConfig struct {
	Port     string `yaml:"port"`
	Baud     int    `yaml:"baud"`
	Checksum string `yaml:"checksum"` // "none" (default) or "crc32"
}

// ---- TELEMETRY ----

type TelemetryConfig struct {
	RateHz float64 `yaml:"rate_hz"`
}

// ---- IMAGE PAYLOAD SHAPE ----

// RenderConfig selects how fetched image bytes go on the wire: passed
// through as PNG, or decoded and converted to RGB565.
type RenderConfig struct {
	Format    string `yaml:"format"` // "png" (default) or "r565"
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	SwapBytes bool   `yaml:"swap_bytes"`
}

// ---- LOCAL IMAGE SOURCE ----

type ImageConfig struct {
	Path     string       `yaml:"path"`
	EverySec float64      `yaml:"every_s"`
	Render   RenderConfig `yaml:",inline"`
}

// ---- REMOTE IMAGE SOURCE ----

type RemoteConfig struct {
	URL        string       `yaml:"url"`
	EverySec   float64      `yaml:"every_s"`
	TimeoutSec float64      `yaml:"timeout_s"`
	Render     RenderConfig `yaml:",inline"`
}

// Default returns the configuration used when no file is given. The port
// has no default; it must come from the file or a flag.
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			Baud:     115200,
			Checksum: "none",
		},
		Telemetry: TelemetryConfig{
			RateHz: 24,
		},
	}
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
