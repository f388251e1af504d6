package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	burnt "github.com/BurntSushi/toml"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

const (
	defaultConfigPath = "novamcp.toml"
	configEnv         = "NOVAMCP_CONFIG"
)

type Config struct {
	MIDI    MIDIConfig    `toml:"midi"`
	HTTP    HTTPConfig    `toml:"http"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

type MIDIConfig struct {
	// PortHint is matched case-insensitively against port names.
	PortHint string `toml:"port_hint"`
	DeviceID int    `toml:"device_id"`
	// Channel is 0-based.
	Channel int    `toml:"channel"`
	Timeout string `toml:"timeout"`
}

type HTTPConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Namespace string `toml:"namespace"`
}

func defaultConfig() Config {
	return Config{
		MIDI: MIDIConfig{
			PortHint: "nova",
			DeviceID: 0,
			Channel:  0,
			Timeout:  "5s",
		},
		HTTP: HTTPConfig{
			Addr:        ":8090",
			CorsOrigins: []string{"http://localhost:3000"},
		},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{Namespace: "novamcp"},
	}
}

// configPath picks the flag value, then the environment, then the default.
func configPath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(configEnv)); p != "" {
		return p
	}
	return defaultConfigPath
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if err := loadToml(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if strings.TrimSpace(cfg.MIDI.PortHint) == "" {
		cfg.MIDI.PortHint = def.MIDI.PortHint
	}
	if strings.TrimSpace(cfg.MIDI.Timeout) == "" {
		cfg.MIDI.Timeout = def.MIDI.Timeout
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = def.HTTP.Addr
	}
	if len(cfg.HTTP.CorsOrigins) == 0 {
		cfg.HTTP.CorsOrigins = def.HTTP.CorsOrigins
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = def.Log.Level
	}
	if strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		cfg.Metrics.Namespace = def.Metrics.Namespace
	}
}

func validateConfig(cfg Config) error {
	if cfg.MIDI.DeviceID < 0 || cfg.MIDI.DeviceID > 127 {
		return fmt.Errorf("midi.device_id must be 0..127, got %d", cfg.MIDI.DeviceID)
	}
	if cfg.MIDI.Channel < 0 || cfg.MIDI.Channel > 15 {
		return fmt.Errorf("midi.channel must be 0..15, got %d", cfg.MIDI.Channel)
	}
	if d, err := time.ParseDuration(cfg.MIDI.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("midi.timeout %q is not a positive duration", cfg.MIDI.Timeout)
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if strings.ContainsAny(cfg.Metrics.Namespace, " -.") {
		return fmt.Errorf("metrics.namespace %q is not a metric name", cfg.Metrics.Namespace)
	}
	return nil
}

// timeout is valid once the config has passed validateConfig.
func (c MIDIConfig) timeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

const templateHeader = `# novamcp configuration.
#
# [midi] port_hint selects the first port whose name contains it.
# channel is 0-based; device_id is the SysEx id set on the unit.
# [http] is used by "serve". [metrics] namespace prefixes every metric.

`

// writeTemplate writes the default config to path, refusing to replace an
// existing file unless overwrite is set.
func writeTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	var buf strings.Builder
	buf.WriteString(templateHeader)
	if err := burnt.NewEncoder(&buf).Encode(defaultConfig()); err != nil {
		return fmt.Errorf("encode config template: %w", err)
	}
	return os.WriteFile(path, []byte(buf.String()), 0o600)
}
