package infra

import (
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/example/mediachat/internal/ports"
)

var apiURLPattern = regexp.MustCompile(`^/api/(videos|photos|audio|temp|thumbnails)/(.+)$`)

// timestampPrefix matches the <millisecondId>- prefix of stored names.
var timestampPrefix = regexp.MustCompile(`^\d+-`)

// FSResolver maps library references mentioned in chat to real paths.
type FSResolver struct {
	store *FSMediaStore
}

func NewFSResolver(store *FSMediaStore) *FSResolver {
	return &FSResolver{store: store}
}

func (r *FSResolver) URLToPath(url string) string {
	m := apiURLPattern.FindStringSubmatch(url)
	if m == nil {
		// identity fallback: not a library URL
		return url
	}
	return filepath.Join(r.store.Dir(m[1]), m[2])
}

// candidate is a file considered during audio resolution.
type candidate struct {
	path  string
	name  string
	mtime int64
}

// ResolveAudio searches in priority order: exact name, substring,
// timestamp-prefix stripped, basename ignoring extension case — first in
// the audio directory, then in the fallback directories. Ties go to the
// newest file. With no match at all, the most recent audio file wins; only
// an empty library fails.
func (r *FSResolver) ResolveAudio(mentioned string) (string, error) {
	mentioned = strings.TrimSpace(mentioned)
	audioDir := r.store.Dir(BucketAudio)

	dirs := []string{
		audioDir,
		filepath.Join(r.store.Root(), "uploads"),
		r.store.Dir(BucketVideos),
	}

	for _, dir := range dirs {
		cands := listFiles(dir)
		if path := matchAudio(cands, mentioned); path != "" {
			log.Printf("[RESOLVE][AUDIO] %q -> %s", mentioned, path)
			return path, nil
		}
	}

	// recency fallback: newest audio file in the audio directory
	cands := listFiles(audioDir)
	if len(cands) > 0 {
		log.Printf("[RESOLVE][AUDIO-FALLBACK] %q -> %s", mentioned, cands[0].path)
		return cands[0].path, nil
	}

	return "", ports.ErrNoAudio
}

// matchAudio runs the match ladder over one directory's candidates,
// which arrive sorted newest first.
func matchAudio(cands []candidate, mentioned string) string {
	if mentioned == "" {
		return ""
	}
	lower := strings.ToLower(mentioned)

	// 1: exact filename
	for _, c := range cands {
		if c.name == mentioned {
			return c.path
		}
	}
	// 2: substring
	for _, c := range cands {
		if strings.Contains(strings.ToLower(c.name), lower) {
			return c.path
		}
	}
	// 3: match after stripping the numeric <id>- prefix
	for _, c := range cands {
		if timestampPrefix.ReplaceAllString(c.name, "") == mentioned {
			return c.path
		}
	}
	// 4: base name, extension case ignored
	mentionedBase := strings.ToLower(strings.TrimSuffix(mentioned, filepath.Ext(mentioned)))
	for _, c := range cands {
		stripped := timestampPrefix.ReplaceAllString(c.name, "")
		base := strings.ToLower(strings.TrimSuffix(stripped, filepath.Ext(stripped)))
		if base == mentionedBase {
			return c.path
		}
	}
	return ""
}

func listFiles(dir string) []candidate {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	cands := make([]candidate, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, ierr := e.Info()
		if ierr != nil {
			continue
		}
		cands = append(cands, candidate{
			path:  filepath.Join(dir, e.Name()),
			name:  e.Name(),
			mtime: info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].mtime > cands[j].mtime })
	return cands
}
