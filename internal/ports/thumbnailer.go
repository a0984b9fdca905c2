package ports

import "context"

type Thumbnailer interface {
	// Generate extracts a preview frame and returns the thumbnail
	// filename. Failures are soft: callers log and move on.
	Generate(ctx context.Context, videoPath string) (string, error)
}
