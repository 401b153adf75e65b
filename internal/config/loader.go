package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "WIRECHAT_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "wirechat.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix("WIRECHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil && logger != nil {
				logger.Warn().Err(writeErr).Str("path", configPath).Msg("failed to write default config")
			} else if logger != nil {
				logger.Info().Str("path", configPath).Msg("created default config")
			}
			// try reading again in case it was just written
			if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
				logger.Warn().Err(readErr).Str("path", configPath).Msg("failed to read config after writing default")
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	c := cfg.Client
	v.SetDefault("client.name", c.Name)
	v.SetDefault("client.verbose", c.Verbose)
	v.SetDefault("client.log_level", c.LogLevel)
	v.SetDefault("client.relay_url", c.RelayURL)
	v.SetDefault("client.relay_secret", c.RelaySecret)
	v.SetDefault("client.default_group", c.DefaultGroup)
	v.SetDefault("client.history_path", c.HistoryPath)
	v.SetDefault("client.history_limit", c.HistoryLimit)
	v.SetDefault("client.heartbeat", c.Heartbeat)
	v.SetDefault("client.dial_timeout", c.DialTimeout)
	v.SetDefault("client.color", c.Color)

	r := cfg.Relay
	v.SetDefault("relay.addr", r.Addr)
	v.SetDefault("relay.log_level", r.LogLevel)
	v.SetDefault("relay.read_header_timeout", r.ReadHeaderTimeout)
	v.SetDefault("relay.shutdown_timeout", r.ShutdownTimeout)
	v.SetDefault("relay.secret", r.Secret)
	v.SetDefault("relay.evasive_after", r.EvasiveAfter)
	v.SetDefault("relay.expire_after", r.ExpireAfter)
	v.SetDefault("relay.sweep_interval", r.SweepInterval)
	v.SetDefault("relay.max_message_bytes", r.MaxMessageBytes)
	v.SetDefault("relay.max_messages_per_minute", r.MaxMessagesPerMinute)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
