package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/example/mediachat/internal/ports"
)

type ChatHandler struct {
	chat    ports.ChatProcessor
	chatLog ports.ChatLog
	log     *logger.ZapLogger
}

func NewChatHandler(chat ports.ChatProcessor, chatLog ports.ChatLog, log *logger.ZapLogger) *ChatHandler {
	return &ChatHandler{
		chat:    chat,
		chatLog: chatLog,
		log:     log,
	}
}

// GET /api/chat
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.chatLog.All())
}

// POST /api/chat
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message      string              `json:"message"`
		VideoContext *ports.MediaContext `json:"videoContext"`
		AudioContext *ports.MediaContext `json:"audioContext"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Empty message")
		return
	}

	user, assistant, err := h.chat.Handle(r.Context(), req.Message, req.VideoContext, req.AudioContext)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "chat turn completed",
		Fields: map[string]any{
			"requestID": user.RequestID,
			"length":    len(assistant.Content),
		},
	})

	w.Header().Set("Content-Type", "application/json")
	if assistant.Content != "" {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":      user,
			"assistant": assistant,
		})
		return
	}
	// the current processor always fills the assistant turn, so this
	// branch is wire compat for clients that poll /api/chat/response
	// when a reply is still pending
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user":   user,
		"status": "processing",
	})
}

// GET /api/chat/response
func (h *ChatHandler) LatestResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	last, ok := h.chatLog.LastAssistant()
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "waiting"})
		return
	}
	_ = json.NewEncoder(w).Encode(last)
}
