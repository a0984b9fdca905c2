package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mediachat/internal/infra"
	"github.com/example/mediachat/internal/models"
	"github.com/example/mediachat/internal/ports"
)

type fakePlanner struct {
	asked  []string
	answer string
	err    error
}

func (f *fakePlanner) Ask(ctx context.Context, instruction string) (string, error) {
	f.asked = append(f.asked, instruction)
	return f.answer, f.err
}

type fakeResolver struct {
	paths map[string]string
	audio string
	err   error
}

func (f *fakeResolver) URLToPath(url string) string {
	if p, ok := f.paths[url]; ok {
		return p
	}
	return url
}

func (f *fakeResolver) ResolveAudio(mentioned string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.audio, nil
}

func newTestService(t *testing.T, planner ports.Planner, resolver ports.Resolver) *ChatService {
	t.Helper()
	svc := NewChatService(infra.NewMemoryChatLog(), resolver, planner, t.TempDir())
	svc.settle = 0
	return svc
}

func TestHandle_EmptyMessage(t *testing.T) {
	svc := newTestService(t, &fakePlanner{}, &fakeResolver{})

	_, _, err := svc.Handle(context.Background(), "   ", nil, nil)
	assert.Error(t, err)
	assert.Empty(t, svc.chatLog.All())
}

func TestHandle_TrimTurn(t *testing.T) {
	planner := &fakePlanner{answer: "Trimmed it. Output: /storage/uploads/videos/9-clip_trimmed.mp4"}
	resolver := &fakeResolver{paths: map[string]string{
		"/api/videos/1-clip.mp4": "/storage/uploads/videos/1-clip.mp4",
	}}
	svc := newTestService(t, planner, resolver)

	video := &ports.MediaContext{Name: "1-clip.mp4", Path: "/api/videos/1-clip.mp4"}
	user, assistant, err := svc.Handle(context.Background(), "trim the first 10 seconds", video, nil)
	require.NoError(t, err)

	// the planner saw the canonical instruction, not the raw message
	require.Len(t, planner.asked, 1)
	assert.Contains(t, planner.asked[0], "/storage/uploads/videos/1-clip.mp4")
	assert.Contains(t, planner.asked[0], "_trimmed.mp4")
	assert.Contains(t, planner.asked[0], "keep 10 seconds")

	// the reply is sanitized, with no filesystem paths left
	assert.Equal(t, "Trimmed it.", assistant.Content)
	assert.NotContains(t, assistant.Content, "/storage")

	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "trim the first 10 seconds", user.Content)
	assert.NotEmpty(t, user.RequestID)
	assert.Equal(t, user.RequestID, assistant.RequestID)

	history := svc.chatLog.All()
	require.Len(t, history, 2)
	assert.Equal(t, user.Content, history[0].Content)
	assert.Equal(t, assistant.Content, history[1].Content)
}

func TestHandle_DirectReplySkipsPlanner(t *testing.T) {
	planner := &fakePlanner{answer: "should never be used"}
	svc := newTestService(t, planner, &fakeResolver{err: ports.ErrNoAudio})

	video := &ports.MediaContext{Name: "1-clip.mp4", Path: "/storage/uploads/videos/1-clip.mp4"}
	_, assistant, err := svc.Handle(context.Background(), "replace the audio", video, nil)
	require.NoError(t, err)

	assert.Empty(t, planner.asked)
	assert.Contains(t, assistant.Content, "couldn't find any audio file")
}

func TestHandle_EmptyPlannerAnswerApologizes(t *testing.T) {
	svc := newTestService(t, &fakePlanner{answer: ""}, &fakeResolver{})

	_, assistant, err := svc.Handle(context.Background(), "do something odd", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, apologyReply, assistant.Content)
}

func TestHandle_AllPathAnswerApologizes(t *testing.T) {
	planner := &fakePlanner{answer: "/storage/uploads/videos/1-out.mp4"}
	svc := newTestService(t, planner, &fakeResolver{})

	_, assistant, err := svc.Handle(context.Background(), "hello there planner", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, apologyReply, assistant.Content)
}

func TestHandle_EmitsAssistantEvent(t *testing.T) {
	svc := newTestService(t, &fakePlanner{answer: "All done."}, &fakeResolver{})

	_, assistant, err := svc.Handle(context.Background(), "just chatting", nil, nil)
	require.NoError(t, err)

	select {
	case ev := <-svc.Events():
		assert.Equal(t, assistant.Content, ev.Content)
		assert.Equal(t, assistant.RequestID, ev.RequestID)
	default:
		t.Fatal("expected an assistant event on the channel")
	}
}

func TestInjectContext(t *testing.T) {
	resolver := &fakeResolver{paths: map[string]string{
		"/api/videos/1-a.mp4": "/storage/uploads/videos/1-a.mp4",
		"/api/audio/2-b.mp3":  "/storage/uploads/audio/2-b.mp3",
	}}
	svc := newTestService(t, &fakePlanner{}, resolver)

	got := svc.injectContext("merge them",
		&ports.MediaContext{Name: "1-a.mp4", Path: "/api/videos/1-a.mp4"},
		&ports.MediaContext{Name: "2-b.mp3", Path: "/api/audio/2-b.mp3"})

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "merge them", lines[0])
	assert.Equal(t, "The video file is at /storage/uploads/videos/1-a.mp4", lines[1])
	assert.Equal(t, "The audio file is at /storage/uploads/audio/2-b.mp3", lines[2])
}
