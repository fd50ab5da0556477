// Package config loads the gesture service configuration from a TOML
// file, GESTURE_* environment variables and built-in defaults.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	gesture "github.com/esimov/gesture/core"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables overriding the configuration.
const EnvPrefix = "GESTURE"

// Config is the complete configuration.
type Config struct {
	Thresholds gesture.Thresholds `mapstructure:"thresholds"`
	Tracker    TrackerConfig      `mapstructure:"tracker"`
	Server     ServerConfig       `mapstructure:"server"`
	Log        LogConfig          `mapstructure:"log"`
}

// TrackerConfig selects how the faces of a frame are classified.
type TrackerConfig struct {
	FacePolicy string `mapstructure:"face_policy"`
}

// ServerConfig configures the websocket classification server.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	MaxFPS         float64  `mapstructure:"max_fps"`
	Burst          int      `mapstructure:"burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MetricsPath    string   `mapstructure:"metrics_path"`
}

// LogConfig configures the logger.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SetDefaults registers the default value of every option.
func SetDefaults(v *viper.Viper) {
	th := gesture.DefaultThresholds()
	v.SetDefault("thresholds.left_nod", th.LeftNod)
	v.SetDefault("thresholds.right_nod", th.RightNod)
	v.SetDefault("thresholds.smile", th.Smile)
	v.SetDefault("thresholds.eye_open_max", th.EyeOpenMax)
	v.SetDefault("thresholds.eye_open_min", th.EyeOpenMin)

	v.SetDefault("tracker.face_policy", gesture.FirstFace.String())

	v.SetDefault("server.addr", "localhost:8081")
	v.SetDefault("server.max_fps", 30.0) // camera frame rate; faster frames are dropped
	v.SetDefault("server.burst", 5)
	v.SetDefault("server.allowed_origins", []string{"http://localhost", "http://127.0.0.1"})
	v.SetDefault("server.metrics_path", "/metrics")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the configuration. An empty path loads defaults and
// environment variables only.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return errors.Wrap(err, "thresholds")
	}
	if _, err := c.Tracker.Policy(); err != nil {
		return err
	}
	if c.Server.MaxFPS <= 0 {
		return errors.WithHint(
			errors.Newf("server.max_fps must be positive, got %v", c.Server.MaxFPS),
			"set it to the camera frame rate",
		)
	}
	if c.Server.Burst < 1 {
		return errors.Newf("server.burst must be at least 1, got %d", c.Server.Burst)
	}
	return nil
}

// Policy parses the configured face policy.
func (t TrackerConfig) Policy() (gesture.FacePolicy, error) {
	switch t.FacePolicy {
	case "", gesture.FirstFace.String():
		return gesture.FirstFace, nil
	case gesture.AllFaces.String():
		return gesture.AllFaces, nil
	}
	return 0, errors.WithHint(
		errors.Newf("unknown face policy %q", t.FacePolicy),
		"use one of: first, all",
	)
}
