package ports

import "errors"

// ErrNoAudio is returned when no audio file exists anywhere the resolver
// looks. A named-but-unmatched reference still resolves (recency fallback).
var ErrNoAudio = errors.New("no audio file found")

type Resolver interface {
	// URLToPath maps a library URL (/api/<type>/<name>) to an absolute
	// filesystem path. Non-matching input is returned unchanged.
	URLToPath(url string) string

	// ResolveAudio maps a loosely mentioned audio filename to an
	// absolute path, newest matching upload winning ties.
	ResolveAudio(mentioned string) (string, error)
}
