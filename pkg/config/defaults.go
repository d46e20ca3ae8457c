package config

const (
	defaultEndpoint         = "http://localhost:8080/chat/stream/flux"
	defaultHolidaysEndpoint = "http://localhost:8080/holidays"
	defaultModel            = "gpt-4"
	defaultTemperature      = 0.7

	defaultStrategy  = "eager"
	defaultThreshold = 15
	defaultPaceMS    = 30

	defaultRelayListen  = ":8080"
	defaultTokenDelayMS = 20
	defaultLogFormat    = "json"

	defaultStorageDriver = "memory"

	defaultEventProvider = "nop"
	defaultEventTopic    = "trickle.sessions"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Endpoint:         defaultEndpoint,
			HolidaysEndpoint: defaultHolidaysEndpoint,
			Model:            defaultModel,
			Temperature:      defaultTemperature,
		},
		Flush: FlushConfig{
			Strategy:  defaultStrategy,
			Threshold: defaultThreshold,
			PaceMS:    defaultPaceMS,
		},
		Relay: RelayConfig{
			Listen:       defaultRelayListen,
			Sentinel:     true,
			TokenDelayMS: defaultTokenDelayMS,
			LogFormat:    defaultLogFormat,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventProvider,
			Topic:    defaultEventTopic,
		},
	}
}
