package config

import "time"

// Config holds client configuration values.
type Config struct {
	GatewayURL        string        `mapstructure:"gateway_url" yaml:"gateway_url"`
	APIBaseURL        string        `mapstructure:"api_base_url" yaml:"api_base_url"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	MaxReconnects     int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	MaxReconnectDelay time.Duration `mapstructure:"max_reconnect_delay" yaml:"max_reconnect_delay"`
	TypingAutoStop    time.Duration `mapstructure:"typing_auto_stop" yaml:"typing_auto_stop"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		GatewayURL:        "ws://localhost:8080/ws",
		APIBaseURL:        "http://localhost:8080",
		LogLevel:          "info",
		MaxReconnects:     5,
		ReconnectDelay:    time.Second,
		MaxReconnectDelay: 10 * time.Second,
		TypingAutoStop:    3 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.GatewayURL != "" {
		c.GatewayURL = other.GatewayURL
	}
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxReconnects != 0 {
		c.MaxReconnects = other.MaxReconnects
	}
	if other.ReconnectDelay != 0 {
		c.ReconnectDelay = other.ReconnectDelay
	}
	if other.MaxReconnectDelay != 0 {
		c.MaxReconnectDelay = other.MaxReconnectDelay
	}
	if other.TypingAutoStop != 0 {
		c.TypingAutoStop = other.TypingAutoStop
	}
}
