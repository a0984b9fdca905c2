package infra

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/mediachat/internal/models"
	"github.com/example/mediachat/internal/ports"
)

// Directory buckets under the storage root.
const (
	BucketVideos     = "videos"
	BucketPhotos     = "photos"
	BucketAudio      = "audio"
	BucketTemp       = "temp"
	BucketThumbnails = "thumbnails"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".webm": true, ".mkv": true,
}

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".aac": true, ".m4a": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._ -]`)

type FSMediaStore struct {
	root  string
	thumb ports.Thumbnailer

	mu     sync.Mutex
	lastID int64
	// stored names for which thumbnail generation already failed once;
	// listing must not re-run the transcoder on every poll
	thumbFailed map[string]bool
}

func NewFSMediaStore(root string, thumb ports.Thumbnailer) (*FSMediaStore, error) {
	s := &FSMediaStore{
		root:        root,
		thumb:       thumb,
		thumbFailed: make(map[string]bool),
	}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FSMediaStore) ensureDirs() error {
	for _, b := range []string{BucketVideos, BucketPhotos, BucketAudio, BucketTemp, BucketThumbnails} {
		if err := os.MkdirAll(s.Dir(b), 0755); err != nil {
			return fmt.Errorf("create %s dir: %w", b, err)
		}
	}
	return nil
}

func (s *FSMediaStore) Root() string { return s.root }

func (s *FSMediaStore) Dir(bucket string) string {
	switch bucket {
	case BucketTemp, BucketThumbnails:
		return filepath.Join(s.root, bucket)
	default:
		return filepath.Join(s.root, "uploads", bucket)
	}
}

func (s *FSMediaStore) Classify(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case photoExtensions[ext]:
		return models.TypePhoto
	case audioExtensions[ext]:
		return models.TypeAudio
	case videoExtensions[ext]:
		return models.TypeVideo
	default:
		// unknown extensions default to video
		return models.TypeVideo
	}
}

// sanitizeFilename strips path separators and anything outside a small
// safe alphabet, so a stored name can never escape its bucket.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "file"
	}
	return name
}

func (s *FSMediaStore) Commit(data []byte, filename string, isTemp bool) (*models.MediaItem, error) {
	name := sanitizeFilename(filename)
	mediaType := s.Classify(name)
	id := strconv.FormatInt(s.nextID(), 10)
	stored := models.EncodeStoredName(id, name)

	bucket := mediaType
	urlType := mediaType
	if isTemp {
		bucket = BucketTemp
		urlType = BucketTemp
	}

	// dirs are re-asserted before every write
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}

	dest := filepath.Join(s.Dir(bucket), stored)
	log.Printf("[STORE][COMMIT] type=%s temp=%v dest=%s", mediaType, isTemp, dest)

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return nil, fmt.Errorf("write media file: %w", err)
	}

	// post-write check: missing file surfaces as size 0, not a failure
	var size int64
	if st, err := os.Stat(dest); err == nil {
		size = st.Size()
	} else {
		log.Printf("[STORE][WARN] file missing after save: %s", dest)
	}

	item := &models.MediaItem{
		ID:           id,
		Name:         name,
		Path:         "/api/" + urlType + "/" + stored,
		Type:         mediaType,
		Size:         size,
		LastModified: mustParseInt(id),
		IsTemp:       isTemp,
	}

	if !isTemp && mediaType == models.TypeVideo {
		item.ThumbnailPath = s.thumbnailFor(dest, stored)
	}

	return item, nil
}

// nextID returns the current millisecond timestamp, bumped when two
// commits land in the same millisecond so ids stay strictly increasing.
func (s *FSMediaStore) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func mustParseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// thumbnailFor returns the /api URL of the thumbnail for a stored video,
// generating it if needed. Empty string on soft failure.
func (s *FSMediaStore) thumbnailFor(videoPath, stored string) string {
	base := strings.TrimSuffix(stored, filepath.Ext(stored))
	thumbName := base + "-thumbnail.jpg"
	thumbPath := filepath.Join(s.Dir(BucketThumbnails), thumbName)

	if st, err := os.Stat(thumbPath); err == nil && st.Size() > 0 {
		return "/api/thumbnails/" + thumbName
	}

	if s.thumb == nil {
		return ""
	}

	s.mu.Lock()
	failed := s.thumbFailed[stored]
	s.mu.Unlock()
	if failed {
		return ""
	}

	name, err := s.thumb.Generate(context.Background(), videoPath)
	if err != nil {
		log.Printf("[STORE][THUMB-FAIL] video=%s err=%v", stored, err)
		s.mu.Lock()
		s.thumbFailed[stored] = true
		s.mu.Unlock()
		return ""
	}
	return "/api/thumbnails/" + name
}

func (s *FSMediaStore) List() (*models.MediaLibrary, error) {
	lib := &models.MediaLibrary{
		Videos: []models.MediaItem{},
		Photos: []models.MediaItem{},
		Audio:  []models.MediaItem{},
	}

	var err error
	lib.Videos, err = s.readBucket(models.TypeVideo)
	if err != nil {
		return nil, err
	}
	lib.Photos, err = s.readBucket(models.TypePhoto)
	if err != nil {
		return nil, err
	}
	lib.Audio, err = s.readBucket(models.TypeAudio)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

func (s *FSMediaStore) readBucket(mediaType string) ([]models.MediaItem, error) {
	dir := s.Dir(mediaType)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.MediaItem{}, nil
		}
		return nil, fmt.Errorf("read %s dir: %w", mediaType, err)
	}

	items := make([]models.MediaItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, name, perr := models.ParseStoredName(e.Name())
		if perr != nil {
			log.Printf("[STORE][SKIP] %s: %v", e.Name(), perr)
			continue
		}
		info, ierr := e.Info()
		if ierr != nil {
			continue
		}
		item := models.MediaItem{
			ID:           id,
			Name:         name,
			Path:         "/api/" + mediaType + "/" + e.Name(),
			Type:         mediaType,
			Size:         info.Size(),
			LastModified: mustParseInt(id),
		}
		if mediaType == models.TypeVideo {
			item.ThumbnailPath = s.thumbnailFor(filepath.Join(dir, e.Name()), e.Name())
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].LastModified > items[j].LastModified
	})
	return items, nil
}

func (s *FSMediaStore) DeleteTemp(storedName string) bool {
	path := filepath.Join(s.Dir(BucketTemp), filepath.Base(storedName))
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		log.Printf("[STORE][TEMP-DEL-ERR] %s: %v", storedName, err)
		return false
	}
	return true
}

func (s *FSMediaStore) CleanTemp() int {
	dir := s.Dir(BucketTemp)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			log.Printf("[STORE][TEMP-CLEAN-ERR] %s: %v", e.Name(), err)
			continue
		}
		count++
	}
	return count
}
