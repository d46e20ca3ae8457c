package eventstream

import "errors"

// ErrNilSessionEvent indicates a nil session event was handed to a publisher.
var ErrNilSessionEvent = errors.New("nil session event")

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("publisher closed")
