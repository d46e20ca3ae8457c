// Package sessionopts holds the flags shared by the commands that run stream
// sessions ("trickle stream" and "trickle tui") and turns them into a
// session.Config and an event publisher.
package sessionopts

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/config"
	"github.com/papercomputeco/trickle/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/trickle/pkg/eventstream/utils"
	"github.com/papercomputeco/trickle/pkg/flush"
	"github.com/papercomputeco/trickle/pkg/session"
)

// registryKeys are the config.Flags entries registered by AddFlags.
var registryKeys = []string{
	config.FlagEndpoint,
	config.FlagModel,
	config.FlagTemperature,
	config.FlagMaxTokens,
	config.FlagTopP,
	config.FlagPromptSuffix,
	config.FlagStrategy,
	config.FlagThreshold,
	config.FlagPace,
	config.FlagEventProvider,
	config.FlagEventBrokers,
	config.FlagEventTopic,
}

// Options are the resolved session settings.
type Options struct {
	Endpoint     string
	Model        string
	Temperature  float64
	MaxTokens    uint
	TopP         float64
	PromptSuffix string

	Strategy  string
	Threshold uint
	Pace      uint

	EventProvider string
	EventBrokers  string
	EventTopic    string
}

// AddFlags registers the session flags on cmd.
func (o *Options) AddFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &o.Endpoint)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &o.Model)
	config.AddFloatFlag(cmd, config.Flags, config.FlagTemperature, &o.Temperature)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &o.MaxTokens)
	config.AddFloatFlag(cmd, config.Flags, config.FlagTopP, &o.TopP)
	config.AddStringFlag(cmd, config.Flags, config.FlagPromptSuffix, &o.PromptSuffix)
	config.AddStringFlag(cmd, config.Flags, config.FlagStrategy, &o.Strategy)
	config.AddUintFlag(cmd, config.Flags, config.FlagThreshold, &o.Threshold)
	config.AddUintFlag(cmd, config.Flags, config.FlagPace, &o.Pace)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventProvider, &o.EventProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventBrokers, &o.EventBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventTopic, &o.EventTopic)
}

// Load resolves every option through the viper precedence chain:
// flag > TRICKLE_* environment > config.toml > default.
func (o *Options) Load(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)

	o.Endpoint = v.GetString("client.endpoint")
	o.Model = v.GetString("client.model")
	o.Temperature = v.GetFloat64("client.temperature")
	o.MaxTokens = v.GetUint("client.max_tokens")
	o.TopP = v.GetFloat64("client.top_p")
	o.PromptSuffix = v.GetString("client.prompt_suffix")
	o.Strategy = v.GetString("flush.strategy")
	o.Threshold = v.GetUint("flush.threshold")
	o.Pace = v.GetUint("flush.pace_ms")
	o.EventProvider = v.GetString("eventstream.provider")
	o.EventBrokers = v.GetString("eventstream.brokers")
	o.EventTopic = v.GetString("eventstream.topic")
	return nil
}

// SessionConfig validates the options and returns the session settings.
func (o *Options) SessionConfig() (session.Config, error) {
	if o.Endpoint == "" {
		return session.Config{}, fmt.Errorf("an endpoint is required")
	}

	strategy, err := flush.ParseStrategy(o.Strategy)
	if err != nil {
		return session.Config{}, err
	}

	return session.Config{
		Endpoint:     o.Endpoint,
		Model:        o.Model,
		Temperature:  o.Temperature,
		MaxTokens:    int(o.MaxTokens),
		TopP:         o.TopP,
		PromptSuffix: o.PromptSuffix,
		Strategy:     strategy,
		Threshold:    int(o.Threshold),
		Pace:         time.Duration(o.Pace) * time.Millisecond,
	}, nil
}

// Publisher builds the configured session event publisher.
func (o *Options) Publisher(log *slog.Logger) (eventstream.Publisher, error) {
	return eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: o.EventProvider,
		Brokers:      o.EventBrokers,
		Topic:        o.EventTopic,
		Logger:       log,
	})
}
