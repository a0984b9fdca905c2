package ports

import (
	"context"

	"github.com/example/mediachat/internal/models"
)

// MediaContext is the library item the frontend currently has loaded when
// the user sends a command; its Path is a /api/... URL.
type MediaContext struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type ChatProcessor interface {
	// Handle runs one chat turn end to end and returns the appended
	// user and assistant messages.
	Handle(ctx context.Context, message string, video, audio *MediaContext) (user, assistant models.ChatMessage, err error)

	// Events streams every completed assistant reply.
	Events() <-chan models.ChatMessage
}
