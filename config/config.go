// Package config loads the bot configuration from a YAML file, an optional
// .env file and environment variables, in that order of precedence.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var (
	ErrBlankServer    = errors.New("server address cannot be blank")
	ErrBlankNick      = errors.New("nick cannot be blank")
	ErrBlankPrefix    = errors.New("command prefix cannot be blank")
	ErrInvalidRate    = errors.New("send rate must be positive")
	ErrInvalidBurst   = errors.New("send burst must be at least 1")
	ErrInvalidBacklog = errors.New("buffer playback must not be negative")
)

type Config struct {
	Network string `yaml:"network" json:"network"`
	Server  struct {
		// Address is host:port for TCP, or a ws:// / wss:// URL.
		Address string `yaml:"address" json:"address"`
		TLS     bool   `yaml:"tls" json:"tls"`
	} `yaml:"server" json:"server"`
	Identity struct {
		Nick     string `yaml:"nick" json:"nick"`
		User     string `yaml:"user" json:"user"`
		RealName string `yaml:"real_name" json:"real_name"`
		Password string `yaml:"password" json:"password"`
	} `yaml:"identity" json:"identity"`
	Channels []string `yaml:"channels" json:"channels"`
	Flood    struct {
		SendRate  float64 `yaml:"send_rate" json:"send_rate"`
		SendBurst int     `yaml:"send_burst" json:"send_burst"`
	} `yaml:"flood" json:"flood"`
	Bot struct {
		CommandPrefix string `yaml:"command_prefix" json:"command_prefix"`
	} `yaml:"bot" json:"bot"`
	Buffer struct {
		Path     string `yaml:"path" json:"path"`
		Playback int    `yaml:"playback" json:"playback"`
	} `yaml:"buffer" json:"buffer"`
	Auth struct {
		Store string `yaml:"store" json:"store"`
	} `yaml:"auth" json:"auth"`
	Metrics struct {
		Address string `yaml:"address" json:"address"`
	} `yaml:"metrics" json:"metrics"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns a configuration with every optional field filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.Network = "default"
	cfg.Flood.SendRate = 2
	cfg.Flood.SendBurst = 5
	cfg.Bot.CommandPrefix = "!"
	cfg.Buffer.Playback = 50
	cfg.LogLevel = "info"
	return cfg
}

// Load reads path (when not empty) over the defaults, loads .env from the
// working directory if present and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}
	_ = godotenv.Load(".env")
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from IRC_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("IRC_NETWORK"); v != "" {
		c.Network = v
	}
	if v := os.Getenv("IRC_SERVER"); v != "" {
		c.Server.Address = v
	}
	if v := os.Getenv("IRC_TLS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.TLS = b
		}
	}
	if v := os.Getenv("IRC_NICK"); v != "" {
		c.Identity.Nick = v
	}
	if v := os.Getenv("IRC_PASSWORD"); v != "" {
		c.Identity.Password = v
	}
	if v := os.Getenv("IRC_CHANNELS"); v != "" {
		c.Channels = nil
		for _, channel := range strings.Split(v, ",") {
			if channel = strings.TrimSpace(channel); channel != "" {
				c.Channels = append(c.Channels, channel)
			}
		}
	}
	if v := os.Getenv("IRC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return ErrBlankServer
	}
	if c.Identity.Nick == "" {
		return ErrBlankNick
	}
	if c.Bot.CommandPrefix == "" {
		return ErrBlankPrefix
	}
	if c.Flood.SendRate <= 0 {
		return ErrInvalidRate
	}
	if c.Flood.SendBurst < 1 {
		return ErrInvalidBurst
	}
	if c.Buffer.Playback < 0 {
		return ErrInvalidBacklog
	}
	return nil
}

// IsWebSocket reports whether the server address is a WebSocket URL.
func (c *Config) IsWebSocket() bool {
	return strings.HasPrefix(c.Server.Address, "ws://") || strings.HasPrefix(c.Server.Address, "wss://")
}

func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
