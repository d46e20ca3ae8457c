package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/trickle/pkg/eventstream"
	"github.com/papercomputeco/trickle/pkg/eventstream/async"
	"github.com/papercomputeco/trickle/pkg/eventstream/kafka"
	"github.com/papercomputeco/trickle/pkg/eventstream/nop"
	"github.com/papercomputeco/trickle/pkg/utils"
)

type NewPublisherOpts struct {
	ProviderType string

	// Brokers is a comma separated broker list for the kafka provider.
	Brokers string
	Topic   string

	Logger *slog.Logger
}

// NewPublisher builds the publisher named by ProviderType. Network backed
// publishers are wrapped in an async.Publisher so sessions never wait on them.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", "nop":
		return nop.NewPublisher(o.Logger), nil
	case "kafka":
		inner, err := kafka.NewPublisher(kafka.Config{
			Brokers: utils.SplitList(o.Brokers),
			Topic:   o.Topic,
			Logger:  o.Logger,
		})
		if err != nil {
			return nil, err
		}
		return async.NewPublisher(&async.Config{
			Publisher: inner,
			Logger:    o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", o.ProviderType)
	}
}
