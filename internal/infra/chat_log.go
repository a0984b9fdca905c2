package infra

import (
	"sync"

	"github.com/example/mediachat/internal/models"
)

// MemoryChatLog is the process-wide conversation history: append-only, in
// arrival order, gone when the process exits.
type MemoryChatLog struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
}

func NewMemoryChatLog() *MemoryChatLog {
	return &MemoryChatLog{messages: make([]models.ChatMessage, 0)}
}

func (l *MemoryChatLog) Append(msg models.ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *MemoryChatLog) All() []models.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *MemoryChatLog) LastAssistant() (models.ChatMessage, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Role == models.RoleAssistant {
			return l.messages[i], true
		}
	}
	return models.ChatMessage{}, false
}
