package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSessionStarted is emitted when a stream session begins connecting.
	EventTypeSessionStarted = "trickle.session.started"

	// EventTypeSessionCompleted is emitted when a session ends normally.
	EventTypeSessionCompleted = "trickle.session.completed"

	// EventTypeSessionAborted is emitted when a session is stopped by its caller.
	EventTypeSessionAborted = "trickle.session.aborted"

	// EventTypeSessionFailed is emitted when a session ends with an error.
	EventTypeSessionFailed = "trickle.session.failed"
)

// SessionEvent is a transport-neutral lifecycle record for one stream session.
type SessionEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	SessionID string `json:"session_id"`
	State     string `json:"state"`
	Endpoint  string `json:"endpoint,omitempty"`
	Model     string `json:"model,omitempty"`

	ChunkCount int    `json:"chunk_count"`
	TotalChars int    `json:"total_chars"`
	FrameCount int    `json:"frame_count"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// NewSessionEvent returns an event of the given type stamped with a fresh
// id and the current time.
func NewSessionEvent(eventType, sessionID string) *SessionEvent {
	return &SessionEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sessionID,
	}
}
