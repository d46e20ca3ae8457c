package eventstream

import "context"

// Publisher publishes session lifecycle events to an event stream backend.
type Publisher interface {
	PublishSession(ctx context.Context, event *SessionEvent) error
	Close() error
}
