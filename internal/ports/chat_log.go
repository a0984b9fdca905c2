package ports

import "github.com/example/mediachat/internal/models"

// ChatLog is the process-wide append-only conversation history. No
// persistence beyond process lifetime.
type ChatLog interface {
	Append(msg models.ChatMessage)
	All() []models.ChatMessage
	LastAssistant() (models.ChatMessage, bool)
}
