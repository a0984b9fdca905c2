package infra

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const thumbnailTimeout = 30 * time.Second

// FFmpegThumbnailer extracts one frame at a fixed 2 second offset into
// <base>-thumbnail.jpg inside the thumbnails directory.
type FFmpegThumbnailer struct {
	bin      string
	thumbDir string
}

func NewFFmpegThumbnailer(bin, thumbDir string) *FFmpegThumbnailer {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegThumbnailer{bin: bin, thumbDir: thumbDir}
}

func (t *FFmpegThumbnailer) Generate(ctx context.Context, videoPath string) (string, error) {
	start := time.Now()

	stored := filepath.Base(videoPath)
	base := strings.TrimSuffix(stored, filepath.Ext(stored))
	thumbName := base + "-thumbnail.jpg"
	thumbPath := filepath.Join(t.thumbDir, thumbName)

	_ = os.MkdirAll(t.thumbDir, 0755)

	ctx, cancel := context.WithTimeout(ctx, thumbnailTimeout)
	defer cancel()

	log.Printf("[THUMB][START] video=%s", stored)

	cmd := exec.CommandContext(
		ctx,
		t.bin,
		"-loglevel", "error",
		"-ss", "2",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "3",
		"-y",
		thumbPath,
	)

	stderr, _ := cmd.StderrPipe()
	go func() {
		b, _ := io.ReadAll(stderr)
		if len(b) > 0 {
			log.Printf("[THUMB][STDERR] %s", string(b))
		}
	}()

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("ffmpeg start: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w", err)
	}

	st, err := os.Stat(thumbPath)
	if err != nil {
		return "", fmt.Errorf("thumbnail missing after ffmpeg: %w", err)
	}
	if st.Size() == 0 {
		_ = os.Remove(thumbPath)
		return "", fmt.Errorf("thumbnail empty: %s", thumbName)
	}

	log.Printf("[THUMB][OK] video=%s bytes=%d dur=%s", stored, st.Size(), time.Since(start))
	return thumbName, nil
}
