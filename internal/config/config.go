package config

import "time"

// Config holds configuration for both binaries.
type Config struct {
	Client ClientConfig `mapstructure:"client" yaml:"client"`
	Relay  RelayConfig  `mapstructure:"relay" yaml:"relay"`
}

// ClientConfig configures the chat client.
type ClientConfig struct {
	Name         string        `mapstructure:"name" yaml:"name"`
	Verbose      bool          `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	RelayURL     string        `mapstructure:"relay_url" yaml:"relay_url"`
	RelaySecret  string        `mapstructure:"relay_secret" yaml:"relay_secret"`
	DefaultGroup string        `mapstructure:"default_group" yaml:"default_group"`
	HistoryPath  string        `mapstructure:"history_path" yaml:"history_path"`
	HistoryLimit int           `mapstructure:"history_limit" yaml:"history_limit"`
	Heartbeat    time.Duration `mapstructure:"heartbeat" yaml:"heartbeat"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	Color        bool          `mapstructure:"color" yaml:"color"`
}

// RelayConfig configures the relay server.
type RelayConfig struct {
	Addr                 string        `mapstructure:"addr" yaml:"addr"`
	LogLevel             string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout    time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Secret               string        `mapstructure:"secret" yaml:"secret"`
	EvasiveAfter         time.Duration `mapstructure:"evasive_after" yaml:"evasive_after"`
	ExpireAfter          time.Duration `mapstructure:"expire_after" yaml:"expire_after"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	MaxMessageBytes      int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	MaxMessagesPerMinute int           `mapstructure:"max_messages_per_minute" yaml:"max_messages_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Client: ClientConfig{
			LogLevel:     "warn",
			RelayURL:     "ws://localhost:8080/ws",
			DefaultGroup: "home",
			HistoryLimit: 20,
			Heartbeat:    time.Second,
			DialTimeout:  5 * time.Second,
		},
		Relay: RelayConfig{
			Addr:                 ":8080",
			LogLevel:             "info",
			ReadHeaderTimeout:    5 * time.Second,
			ShutdownTimeout:      5 * time.Second,
			EvasiveAfter:         5 * time.Second,
			ExpireAfter:          30 * time.Second,
			SweepInterval:        time.Second,
			MaxMessageBytes:      64 << 10,
			MaxMessagesPerMinute: 600,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *ClientConfig) UpdateFrom(other ClientConfig) {
	if other.Name != "" {
		c.Name = other.Name
	}
	if other.Verbose {
		c.Verbose = true
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.RelayURL != "" {
		c.RelayURL = other.RelayURL
	}
	if other.RelaySecret != "" {
		c.RelaySecret = other.RelaySecret
	}
	if other.DefaultGroup != "" {
		c.DefaultGroup = other.DefaultGroup
	}
	if other.HistoryPath != "" {
		c.HistoryPath = other.HistoryPath
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.Heartbeat != 0 {
		c.Heartbeat = other.Heartbeat
	}
	if other.DialTimeout != 0 {
		c.DialTimeout = other.DialTimeout
	}
	if other.Color {
		c.Color = true
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *RelayConfig) UpdateFrom(other RelayConfig) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.Secret != "" {
		c.Secret = other.Secret
	}
	if other.EvasiveAfter != 0 {
		c.EvasiveAfter = other.EvasiveAfter
	}
	if other.ExpireAfter != 0 {
		c.ExpireAfter = other.ExpireAfter
	}
	if other.SweepInterval != 0 {
		c.SweepInterval = other.SweepInterval
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.MaxMessagesPerMinute != 0 {
		c.MaxMessagesPerMinute = other.MaxMessagesPerMinute
	}
}
