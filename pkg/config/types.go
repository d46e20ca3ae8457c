package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent trickle configuration stored as config.toml
// in the .trickle/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Client      ClientConfig      `toml:"client"`
	Flush       FlushConfig       `toml:"flush"`
	Relay       RelayConfig       `toml:"relay"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// ClientConfig holds settings for commands that open a stream session
// (trickle stream, trickle tui) or talk to the holidays endpoint.
type ClientConfig struct {
	Endpoint         string  `toml:"endpoint,omitempty"`
	HolidaysEndpoint string  `toml:"holidays_endpoint,omitempty"`
	Model            string  `toml:"model,omitempty"`
	Temperature      float64 `toml:"temperature"`
	MaxTokens        int     `toml:"max_tokens,omitempty"`
	TopP             float64 `toml:"top_p,omitempty"`
	PromptSuffix     string  `toml:"prompt_suffix,omitempty"`
}

// FlushConfig controls when buffered payload text becomes visible.
type FlushConfig struct {
	Strategy  string `toml:"strategy,omitempty"`
	Threshold int    `toml:"threshold,omitempty"`
	PaceMS    int    `toml:"pace_ms"`
}

// RelayConfig holds settings for the trickle serve SSE producer.
type RelayConfig struct {
	Listen       string `toml:"listen,omitempty"`
	Upstream     string `toml:"upstream,omitempty"`
	Script       string `toml:"script,omitempty"`
	Sentinel     bool   `toml:"sentinel"`
	TokenDelayMS int    `toml:"token_delay_ms"`
	LogFormat    string `toml:"log_format,omitempty"`
}

// StorageConfig selects the holiday store backing the relay.
type StorageConfig struct {
	Driver string `toml:"driver,omitempty"`
	DSN    string `toml:"dsn,omitempty"`
}

// EventStreamConfig selects where session lifecycle events are published.
type EventStreamConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if n < 0 {
				return fmt.Errorf("invalid value for %s: must not be negative", name)
			}
			*field(c) = n
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = f
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.endpoint":          stringKey(func(c *Config) *string { return &c.Client.Endpoint }),
	"client.holidays_endpoint": stringKey(func(c *Config) *string { return &c.Client.HolidaysEndpoint }),
	"client.model":             stringKey(func(c *Config) *string { return &c.Client.Model }),
	"client.temperature":       floatKey("client.temperature", func(c *Config) *float64 { return &c.Client.Temperature }),
	"client.max_tokens":        intKey("client.max_tokens", func(c *Config) *int { return &c.Client.MaxTokens }),
	"client.top_p":             floatKey("client.top_p", func(c *Config) *float64 { return &c.Client.TopP }),
	"client.prompt_suffix":     stringKey(func(c *Config) *string { return &c.Client.PromptSuffix }),
	"flush.strategy": {
		get: func(c *Config) string { return c.Flush.Strategy },
		set: func(c *Config, v string) error {
			switch v {
			case "eager", "once":
				c.Flush.Strategy = v
				return nil
			default:
				return fmt.Errorf("invalid value for flush.strategy: %q (available: eager, once)", v)
			}
		},
	},
	"flush.threshold":      intKey("flush.threshold", func(c *Config) *int { return &c.Flush.Threshold }),
	"flush.pace_ms":        intKey("flush.pace_ms", func(c *Config) *int { return &c.Flush.PaceMS }),
	"relay.listen":         stringKey(func(c *Config) *string { return &c.Relay.Listen }),
	"relay.upstream":       stringKey(func(c *Config) *string { return &c.Relay.Upstream }),
	"relay.script":         stringKey(func(c *Config) *string { return &c.Relay.Script }),
	"relay.log_format":     stringKey(func(c *Config) *string { return &c.Relay.LogFormat }),
	"relay.token_delay_ms": intKey("relay.token_delay_ms", func(c *Config) *int { return &c.Relay.TokenDelayMS }),
	"relay.sentinel": {
		get: func(c *Config) string { return strconv.FormatBool(c.Relay.Sentinel) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for relay.sentinel: %w", err)
			}
			c.Relay.Sentinel = b
			return nil
		},
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case "memory", "sqlite", "postgres":
				c.Storage.Driver = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.driver: %q (available: memory, sqlite, postgres)", v)
			}
		},
	},
	"storage.dsn": stringKey(func(c *Config) *string { return &c.Storage.DSN }),
	"eventstream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case "nop", "kafka":
				c.EventStream.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for eventstream.provider: %q (available: nop, kafka)", v)
			}
		},
	},
	"eventstream.brokers": stringKey(func(c *Config) *string { return &c.EventStream.Brokers }),
	"eventstream.topic":   stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
}
