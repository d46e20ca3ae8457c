package holidays

// Response is the body returned by the mutating /holidays endpoints and by
// GET /holidays/:id.
type Response struct {
	Holidays []Holiday `json:"holidays"`
	Message  string    `json:"message,omitempty"`
}

// DeleteRequest is the body of DELETE /holidays.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	MessageAdded   = "Holiday added"
	MessageUpdated = "Holiday updated"
	MessageDeleted = "Deleted"
)
