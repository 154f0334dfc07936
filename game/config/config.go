// Package config holds the settings shared by the relay server and the
// terminal client: defaults, an optional TOML or YAML file, and
// TWISTEDCHESS_* environment overrides.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedConfig = errors.New("unsupported config file type")

const EnvPrefix = "TWISTEDCHESS_"

type Config struct {
	// Relay server
	HTTPAddr string `toml:"http_addr" yaml:"http_addr" validate:"required"`
	TCPAddr  string `toml:"tcp_addr" yaml:"tcp_addr"` // empty disables the TCP relay

	// Client
	ServerURL      string `toml:"server_url" yaml:"server_url" validate:"required,url"`
	RoomCodeLength int    `toml:"room_code_length" yaml:"room_code_length" validate:"min=4,max=8"`

	LogLevel         string   `toml:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	MaxMessageBytes  int64    `toml:"max_message_bytes" yaml:"max_message_bytes" validate:"min=64"`
	WriteTimeout     Duration `toml:"write_timeout" yaml:"write_timeout"`
	HandshakeTimeout Duration `toml:"handshake_timeout" yaml:"handshake_timeout"`
}

// Duration is a time.Duration written as "10s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "duration %q", text)
	}
	if v < 0 {
		return errors.Errorf("negative duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPAddr:         ":8080",
		TCPAddr:          ":5555",
		ServerURL:        "ws://localhost:8080/ws",
		RoomCodeLength:   8,
		LogLevel:         "info",
		MaxMessageBytes:  4096,
		WriteTimeout:     Duration{10 * time.Second},
		HandshakeTimeout: Duration{10 * time.Second},
	}
}

// Load starts from Default, applies the file at path when path is not
// empty, then the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return errors.Wrapf(ErrUnsupportedConfig, "%q", ext)
	}
	return errors.Wrapf(err, "parse %s", path)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	set("HTTP_ADDR", &c.HTTPAddr)
	set("TCP_ADDR", &c.TCPAddr)
	set("SERVER", &c.ServerURL)
	set("LOG_LEVEL", &c.LogLevel)
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	return errors.Wrap(validator.New().Struct(c), "invalid configuration")
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
