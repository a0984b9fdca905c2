package stations

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GenericArtifactName is the filename the external tool is known to drop
// in the committed video directory when it merges audio.
const GenericArtifactName = "output_with_audio.mp4"

// S3Reconcile folds a freshly produced artifact back into the library:
// the generic file is renamed to a timestamped, collision-safe name and
// the answer text is patched to reference it.
type S3Reconcile struct {
	videosDir string
	now       func() int64
}

func NewS3Reconcile(videosDir string) *S3Reconcile {
	return &S3Reconcile{
		videosDir: videosDir,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// Run checks the scratch location and, when an artifact exists, moves it
// under a fresh name derived from the turn's input video. It returns the
// possibly patched answer; every failure is soft.
func (s *S3Reconcile) Run(answer string, out *Outcome) string {
	artifact := filepath.Join(s.videosDir, GenericArtifactName)
	st, err := os.Stat(artifact)
	if err != nil || st.IsDir() {
		return answer
	}

	newName := s.reconciledName(out)
	dest := filepath.Join(s.videosDir, newName)

	if err := os.Rename(artifact, dest); err != nil {
		log.Printf("[S3][MOVE-ERR] %s -> %s: %v", GenericArtifactName, newName, err)
		return answer
	}
	log.Printf("[S3][OK] artifact=%s -> %s", GenericArtifactName, newName)

	return strings.ReplaceAll(answer, GenericArtifactName, newName)
}

// reconciledName derives the library name for the artifact. A source that
// already carries _with_audio gets _audio_enhanced instead, so the same
// suffix never stacks twice.
func (s *S3Reconcile) reconciledName(out *Outcome) string {
	base := "output"
	suffix := "_with_audio"
	ext := ".mp4"

	if out != nil && out.InputVideo != "" {
		ext = filepath.Ext(out.InputVideo)
		raw := strings.TrimSuffix(filepath.Base(out.InputVideo), ext)
		raw = leadingTimestamp.ReplaceAllString(raw, "")
		if strings.Contains(raw, "_with_audio") {
			suffix = "_audio_enhanced"
		}
		base = StripKnownSuffixes(raw)
	}

	return fmt.Sprintf("%d-%s%s%s", s.now(), base, suffix, ext)
}
