package relay

import "expvar"

// vars is published once per process under /debug/vars.
var vars = expvar.NewMap("relay")

const (
	varStreamsStarted   = "streams_started"
	varStreamsCompleted = "streams_completed"
	varStreamsFailed    = "streams_failed"
	varStreamsActive    = "streams_active"
	varEventsSent       = "events_sent"
	varHolidayRequests  = "holiday_requests"
)
