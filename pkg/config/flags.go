package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --endpoint
// on both "trickle stream" and "trickle tui").
type Flag struct {
	// Name is the long flag name (e.g. "endpoint").
	Name string

	// Shorthand is the one-letter short flag (e.g. "e"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.endpoint").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagEndpoint         = "endpoint"
	FlagHolidaysEndpoint = "holidays-endpoint"
	FlagModel            = "model"
	FlagTemperature      = "temperature"
	FlagMaxTokens        = "max-tokens"
	FlagTopP             = "top-p"
	FlagPromptSuffix     = "prompt-suffix"
	FlagStrategy         = "strategy"
	FlagThreshold        = "threshold"
	FlagPace             = "pace"
	FlagListen           = "listen"
	FlagUpstream         = "upstream"
	FlagScript           = "script"
	FlagSentinel         = "sentinel"
	FlagTokenDelay       = "token-delay"
	FlagLogFormat        = "log-format"
	FlagStorageDriver    = "storage"
	FlagStorageDSN       = "dsn"
	FlagEventProvider    = "events"
	FlagEventBrokers     = "kafka-brokers"
	FlagEventTopic       = "kafka-topic"
)

// Flags is the registry shared by every trickle command.
var Flags = FlagSet{
	FlagEndpoint:         {Name: "endpoint", Shorthand: "e", ViperKey: "client.endpoint", Description: "Streaming chat endpoint URL"},
	FlagHolidaysEndpoint: {Name: "holidays-endpoint", ViperKey: "client.holidays_endpoint", Description: "Holidays CRUD endpoint URL"},
	FlagModel:            {Name: "model", Shorthand: "m", ViperKey: "client.model", Description: "Model name sent with each request"},
	FlagTemperature:      {Name: "temperature", Shorthand: "t", ViperKey: "client.temperature", Description: "Sampling temperature"},
	FlagMaxTokens:        {Name: "max-tokens", ViperKey: "client.max_tokens", Description: "Maximum tokens to generate (0 = provider default)"},
	FlagTopP:             {Name: "top-p", ViperKey: "client.top_p", Description: "Nucleus sampling probability (0 = provider default)"},
	FlagPromptSuffix:     {Name: "prompt-suffix", ViperKey: "client.prompt_suffix", Description: "Instruction appended to every prompt"},
	FlagStrategy:         {Name: "strategy", ViperKey: "flush.strategy", Description: "Flush strategy (eager, once)"},
	FlagThreshold:        {Name: "threshold", ViperKey: "flush.threshold", Description: "Buffered characters that force a flush"},
	FlagPace:             {Name: "pace", ViperKey: "flush.pace_ms", Description: "Delay in milliseconds between displayed fragments"},
	FlagListen:           {Name: "listen", Shorthand: "l", ViperKey: "relay.listen", Description: "Address for the relay to listen on"},
	FlagUpstream:         {Name: "upstream", Shorthand: "u", ViperKey: "relay.upstream", Description: "OpenAI-compatible upstream URL (empty = scripted tokens)"},
	FlagScript:           {Name: "script", ViperKey: "relay.script", Description: "Text file replayed as tokens, reloaded on change"},
	FlagSentinel:         {Name: "sentinel", ViperKey: "relay.sentinel", Description: "End every stream with data:[DONE]"},
	FlagTokenDelay:       {Name: "token-delay", ViperKey: "relay.token_delay_ms", Description: "Delay in milliseconds between scripted tokens"},
	FlagLogFormat:        {Name: "log-format", ViperKey: "relay.log_format", Description: "Relay log format (json, text, pretty)"},
	FlagStorageDriver:    {Name: "storage", ViperKey: "storage.driver", Description: "Holiday store driver (memory, sqlite, postgres)"},
	FlagStorageDSN:       {Name: "dsn", ViperKey: "storage.dsn", Description: "Holiday store data source name"},
	FlagEventProvider:    {Name: "events", ViperKey: "eventstream.provider", Description: "Session event publisher (nop, kafka)"},
	FlagEventBrokers:     {Name: "kafka-brokers", ViperKey: "eventstream.brokers", Description: "Comma separated Kafka broker addresses"},
	FlagEventTopic:       {Name: "kafka-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for session events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *float64) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper holding only the NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
