package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/eternalApril/moonresp/internal/resp"
)

// Config represents the root configuration structure for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Codec   CodecConfig   `mapstructure:"codec"`
	Capture CaptureConfig `mapstructure:"capture"`
}

// ServerConfig holds the network settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// CodecConfig bounds what the RESP decoder accepts from the network
type CodecConfig struct {
	MaxDepth      int   `mapstructure:"max_depth"`       // array nesting limit, 0 disables
	MaxBulkLength int64 `mapstructure:"max_bulk_length"` // bytes, 0 disables
}

// CaptureConfig defines the append-only log of received frames
type CaptureConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Filename string `mapstructure:"filename"`
	Fsync    string `mapstructure:"fsync"` // always, everysec, no
}

// Options converts the codec section into decoder/encoder options
func (c CodecConfig) Options() []resp.Option {
	return []resp.Option{
		resp.WithMaxDepth(c.MaxDepth),
		resp.WithMaxBulkLength(c.MaxBulkLength),
	}
}

// Load reads the configuration from a file and overrides it with environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOONRESP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "6380")

	// Logger
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Codec
	v.SetDefault("codec.max_depth", resp.DefaultMaxDepth)
	v.SetDefault("codec.max_bulk_length", resp.DefaultMaxBulkLength)

	// Capture
	v.SetDefault("capture.enabled", false)
	v.SetDefault("capture.filename", "capture.resp")
	v.SetDefault("capture.fsync", "everysec")
}
