package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Media type buckets. The plural forms are what the HTTP API exposes and
// what the directories under the storage root are named.
const (
	TypeVideo = "videos"
	TypePhoto = "photos"
	TypeAudio = "audio"
)

type MediaItem struct {
	ID            string `json:"id"`           // millisecond timestamp, decimal
	Name          string `json:"name"`         // sanitized original filename
	Path          string `json:"path"`         // /api/<type>/<storedName>
	Type          string `json:"type"`         // videos | photos | audio
	Size          int64  `json:"size"`         // bytes on disk, 0 if the post-write check failed
	LastModified  int64  `json:"lastModified"` // same value as ID
	IsTemp        bool   `json:"isTemp"`
	ThumbnailPath string `json:"thumbnailPath,omitempty"` // committed videos only
}

// StoredName returns the on-disk filename of the item.
func (m *MediaItem) StoredName() string {
	return EncodeStoredName(m.ID, m.Name)
}

type MediaLibrary struct {
	Videos []MediaItem `json:"videos"`
	Photos []MediaItem `json:"photos"`
	Audio  []MediaItem `json:"audio"`
}

// EncodeStoredName builds the filename-embedded metadata form <id>-<name>.
// ParseStoredName is the only other place that knows this format; moving to
// a real index later touches these two functions and nothing else.
func EncodeStoredName(id, name string) string {
	return id + "-" + name
}

func ParseStoredName(stored string) (id, name string, err error) {
	idx := strings.Index(stored, "-")
	if idx <= 0 || idx == len(stored)-1 {
		return "", "", fmt.Errorf("stored name %q has no id prefix", stored)
	}
	id = stored[:idx]
	if _, convErr := strconv.ParseInt(id, 10, 64); convErr != nil {
		return "", "", fmt.Errorf("stored name %q: id is not numeric", stored)
	}
	return id, stored[idx+1:], nil
}
