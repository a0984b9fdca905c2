package stations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(t *testing.T) (*S3Reconcile, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewS3Reconcile(dir)
	s.now = func() int64 { return 1700000000000 }
	return s, dir
}

func dropArtifact(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, GenericArtifactName)
	require.NoError(t, os.WriteFile(p, []byte("fake video"), 0o644))
	return p
}

func TestReconcile_MovesArtifactAndPatchesAnswer(t *testing.T) {
	s, dir := newTestReconciler(t)
	artifact := dropArtifact(t, dir)

	out := &Outcome{Op: OpReplaceAudio, InputVideo: "/videos/5-clip.mp4"}
	answer := s.Run("Your file is ready: output_with_audio.mp4", out)

	want := "1700000000000-clip_with_audio.mp4"
	assert.Equal(t, "Your file is ready: "+want, answer)

	_, err := os.Stat(artifact)
	assert.True(t, os.IsNotExist(err), "generic artifact should be gone")
	_, err = os.Stat(filepath.Join(dir, want))
	assert.NoError(t, err)
}

func TestReconcile_AudioEnhancedWhenSourceAlreadyMerged(t *testing.T) {
	s, dir := newTestReconciler(t)
	dropArtifact(t, dir)

	out := &Outcome{Op: OpReplaceAudio, InputVideo: "/videos/9-clip_with_audio.mp4"}
	_ = s.Run("done", out)

	_, err := os.Stat(filepath.Join(dir, "1700000000000-clip_audio_enhanced.mp4"))
	assert.NoError(t, err)
}

func TestReconcile_NilOutcomeStillRenames(t *testing.T) {
	s, dir := newTestReconciler(t)
	dropArtifact(t, dir)

	answer := s.Run("saved output_with_audio.mp4", nil)

	want := "1700000000000-output_with_audio.mp4"
	assert.Contains(t, answer, want)
	_, err := os.Stat(filepath.Join(dir, want))
	assert.NoError(t, err)
}

func TestReconcile_NoArtifactIsNoop(t *testing.T) {
	s, _ := newTestReconciler(t)

	answer := s.Run("nothing was produced", &Outcome{InputVideo: "/videos/1-a.mp4"})
	assert.Equal(t, "nothing was produced", answer)
}
