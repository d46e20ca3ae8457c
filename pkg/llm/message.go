package llm

// Message roles understood by OpenAI-compatible chat endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message. Content is plain text: the streaming
// client only ever sends and receives text.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage returns a message with the user role.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}
