package stations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mediachat/internal/ports"
)

type fakeResolver struct {
	audioPath string
	audioErr  error
	asked     string
}

func (f *fakeResolver) URLToPath(url string) string { return url }

func (f *fakeResolver) ResolveAudio(mentioned string) (string, error) {
	f.asked = mentioned
	return f.audioPath, f.audioErr
}

func newTestInterpreter(r ports.Resolver) *S1Interpret {
	s := NewS1Interpret(r)
	s.now = func() int64 { return 1700000000000 }
	return s
}

func TestRun_Passthrough(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("what can you do?")
	assert.Equal(t, OpPassthrough, out.Op)
	assert.Equal(t, "what can you do?", out.Instruction)
	assert.Empty(t, out.DirectReply)
}

func TestRun_TrimWinsOverInstagram(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("trim 10 seconds and convert to instagram format /videos/1-clip.mp4")
	assert.Equal(t, OpTrim, out.Op)
}

func TestRun_ReplaceAudio(t *testing.T) {
	r := &fakeResolver{audioPath: "/uploads/audio/5-beat.mp3"}
	s := newTestInterpreter(r)

	out := s.Run("replace the audio with track.mp3 in /videos/42-demo.mp4")
	require.Equal(t, OpReplaceAudio, out.Op)
	assert.Empty(t, out.DirectReply)
	assert.Equal(t, "/videos/42-demo.mp4", out.InputVideo)
	assert.Equal(t, "/uploads/audio/5-beat.mp3", out.InputAudio)
	assert.Equal(t, "track.mp3", r.asked)
	assert.Equal(t, "/videos/1700000000000-demo_with_audio.mp4", out.OutputPath)
	assert.Contains(t, out.Instruction, out.OutputPath)
}

func TestRun_ReplaceAudio_NoVideo(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{audioPath: "/uploads/audio/beat.mp3"})

	out := s.Run("swap the audio please")
	assert.Equal(t, OpReplaceAudio, out.Op)
	assert.Contains(t, out.DirectReply, "I need a video to work with")
	assert.Empty(t, out.Instruction)
}

func TestRun_ReplaceAudio_NoAudio(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{audioErr: ports.ErrNoAudio})

	out := s.Run("change the audio of /videos/7-clip.mp4")
	assert.Equal(t, OpReplaceAudio, out.Op)
	assert.Contains(t, out.DirectReply, "couldn't find any audio file")
}

func TestRun_TrimVariants(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	cases := []struct {
		name     string
		message  string
		start    string
		duration string
	}{
		{"first seconds", "trim the first 10 seconds of /videos/9-clip.mp4", "0", "10"},
		{"from to", "trim /videos/9-clip.mp4 from 5 to 20 seconds", "5", "15"},
		{"plain", "trim 30 sec off /videos/9-clip.mp4", "0", "30"},
		{"minutes", "trim the first 2 minutes of /videos/9-clip.mp4", "0", "120"},
		{"fractional", "trim the first 2.5 seconds of /videos/9-clip.mp4", "0", "2.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := s.Run(tc.message)
			require.Equal(t, OpTrim, out.Op, "message %q", tc.message)
			assert.Contains(t, out.Instruction, "start at "+tc.start+" seconds")
			assert.Contains(t, out.Instruction, "keep "+tc.duration+" seconds")
			assert.True(t, strings.HasSuffix(out.OutputPath, "_trimmed.mp4"), out.OutputPath)
		})
	}
}

func TestRun_TrimWithoutVideoPassesThrough(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("trim 10 seconds off my video")
	assert.Equal(t, OpPassthrough, out.Op)
}

func TestRun_TrimZeroDurationPassesThrough(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("trim /videos/9-clip.mp4 from 20 to 20 seconds")
	assert.Equal(t, OpPassthrough, out.Op)
}

func TestRun_Instagram(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("convert /videos/1699999999999-promo.mp4 to instagram format")
	require.Equal(t, OpInstagram, out.Op)
	assert.Contains(t, out.Instruction, "9:16")
	// no timestamp prefix on instagram outputs
	assert.Equal(t, "/videos/promo_instagram.mp4", out.OutputPath)

	out = s.Run("convert /videos/promo.mp4 to square instagram format")
	require.Equal(t, OpInstagram, out.Op)
	assert.Contains(t, out.Instruction, "1:1")
}

func TestRun_MergeAudio(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("add audio /uploads/audio/3-beat.mp3 to /videos/8-clip_trimmed.mp4")
	require.Equal(t, OpMergeAudio, out.Op)
	assert.Equal(t, "/videos/8-clip_trimmed.mp4", out.InputVideo)
	assert.Equal(t, "/uploads/audio/3-beat.mp3", out.InputAudio)
	// earlier edit suffixes collapse before the new one is applied
	assert.Equal(t, "/videos/1700000000000-clip_with_audio.mp4", out.OutputPath)
}

func TestRun_MergeAudio_MissingInputsPassThrough(t *testing.T) {
	s := newTestInterpreter(&fakeResolver{})

	out := s.Run("add audio to the video")
	assert.Equal(t, OpPassthrough, out.Op)
}

func TestStripKnownSuffixes(t *testing.T) {
	cases := map[string]string{
		"clip":                       "clip",
		"clip_trimmed":               "clip",
		"clip_trimmed_with_audio":    "clip",
		"clip_with_audio_with_audio": "clip",
		"clip_marketing_final":       "clip",
		"unrelated_suffix":           "unrelated_suffix",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripKnownSuffixes(in), "input %q", in)
	}
}
