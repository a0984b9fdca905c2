package models

type ChatMessage struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`  // unix milliseconds
	RequestID string `json:"request_id"` // correlates a user turn with its reply
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
