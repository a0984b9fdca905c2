package ports

import "github.com/example/mediachat/internal/models"

type MediaStore interface {
	// Classify maps a filename to a media type bucket; unknown
	// extensions fall back to videos.
	Classify(filename string) string

	// Commit writes the file under a fresh <ts>-<name> stored name and
	// returns the item. Committed videos get a best-effort thumbnail.
	Commit(data []byte, filename string, isTemp bool) (*models.MediaItem, error)

	// List returns committed media per type, newest first.
	List() (*models.MediaLibrary, error)

	DeleteTemp(storedName string) bool
	CleanTemp() int

	// Dir returns the absolute directory for a media type bucket
	// ("videos", "photos", "audio", "temp", "thumbnails").
	Dir(bucket string) string
}
