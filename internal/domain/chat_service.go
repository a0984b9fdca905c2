package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/mediachat/internal/domain/stations"
	"github.com/example/mediachat/internal/models"
	"github.com/example/mediachat/internal/ports"
)

// Shown whenever the bridge produced nothing usable.
const apologyReply = "I'm sorry, I couldn't process your request. Please try again."

// settleDelay gives the planner's side effects a moment to land on disk
// before the reply is returned and the frontend re-polls the library.
const settleDelay = 500 * time.Millisecond

// ChatService runs one chat turn through the station pipeline:
// interpret -> execute -> reconcile -> sanitize. One turn at a time.
type ChatService struct {
	chatLog  ports.ChatLog
	resolver ports.Resolver

	s1 *stations.S1Interpret
	s2 *stations.S2Execute
	s3 *stations.S3Reconcile
	s4 *stations.S4Sanitize

	settle time.Duration
	events chan models.ChatMessage
}

func NewChatService(
	chatLog ports.ChatLog,
	resolver ports.Resolver,
	planner ports.Planner,
	videosDir string,
) *ChatService {
	return &ChatService{
		chatLog:  chatLog,
		resolver: resolver,
		s1:       stations.NewS1Interpret(resolver),
		s2:       stations.NewS2Execute(planner),
		s3:       stations.NewS3Reconcile(videosDir),
		s4:       stations.NewS4Sanitize(),
		settle:   settleDelay,
		events:   make(chan models.ChatMessage, 100),
	}
}

func (c *ChatService) Events() <-chan models.ChatMessage { return c.events }

func (c *ChatService) Handle(
	ctx context.Context,
	message string,
	video, audio *ports.MediaContext,
) (models.ChatMessage, models.ChatMessage, error) {

	if strings.TrimSpace(message) == "" {
		return models.ChatMessage{}, models.ChatMessage{}, fmt.Errorf("empty message")
	}

	requestID := uuid.NewString()
	start := time.Now()
	log.Printf("[CHAT][START] req=%s msg=%q", requestID, trim(message, 160))

	user := models.ChatMessage{
		Role:      models.RoleUser,
		Content:   message,
		Timestamp: time.Now().UnixMilli(),
		RequestID: requestID,
	}
	c.chatLog.Append(user)

	working := c.injectContext(message, video, audio)
	outcome := c.s1.Run(working)

	var answer string
	if outcome.DirectReply != "" {
		answer = outcome.DirectReply
	} else {
		answer = c.s2.Run(ctx, outcome.Instruction)
		if answer == "" {
			answer = apologyReply
		}
		answer = c.s3.Run(answer, outcome)
		answer = c.s4.Run(answer)
		if answer == "" {
			// sanitizer can eat a reply that was nothing but paths
			answer = apologyReply
		}
	}

	time.Sleep(c.settle)

	assistant := models.ChatMessage{
		Role:      models.RoleAssistant,
		Content:   answer,
		Timestamp: time.Now().UnixMilli(),
		RequestID: requestID,
	}
	c.chatLog.Append(assistant)

	select {
	case c.events <- assistant:
	default:
		log.Printf("[CHAT][EVENT-DROP] req=%s", requestID)
	}

	log.Printf("[CHAT][DONE] req=%s op=%s dur=%s", requestID, outcome.Op, time.Since(start))
	return user, assistant, nil
}

// injectContext appends the absolute paths of the library items the user
// currently has loaded, so the interpreter and the planner both see real
// filesystem paths instead of /api URLs.
func (c *ChatService) injectContext(message string, video, audio *ports.MediaContext) string {
	var b strings.Builder
	b.WriteString(message)
	if video != nil && video.Path != "" {
		b.WriteString("\nThe video file is at ")
		b.WriteString(c.resolver.URLToPath(video.Path))
	}
	if audio != nil && audio.Path != "" {
		b.WriteString("\nThe audio file is at ")
		b.WriteString(c.resolver.URLToPath(audio.Path))
	}
	return b.String()
}

func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
