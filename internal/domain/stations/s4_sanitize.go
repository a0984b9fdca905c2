package stations

import (
	"log"
	"regexp"
	"strings"
)

// A path token: drive letter or leading slash, followed by something that
// still looks like a path (another separator or an extension dot). The
// extra requirement keeps prose like "and/or" intact.
const pathToken = `(?:[A-Za-z]:[\\/]|/)[^\s"'` + "`" + `]*[\\/.][^\s"'` + "`" + `]*`

// Applied in order; each removes one form of path exposure together with
// the sentence fragment around it so the remaining prose stays grammatical.
var sanitizePatterns = []*regexp.Regexp{
	// a backticked path and its sentence ("The output is in `C:\...`.")
	regexp.MustCompile(`[^.!?\n]*` + "`[^`\n]*[\\\\/][^`\n]*`" + `[^.!?\n]*[.!?]?`),
	// "you can access/find it at ..."; the tail steps over path tokens so
	// dots inside a filename do not end the sentence early
	regexp.MustCompile(`(?i)[^.!?\n]*you can (?:access|find|view) (?:it|the (?:file|video|output))(?:` + pathToken + `|[^.!?\n])*[.!?]?`),
	// appended postscript "(saved to /path/out.mp4)"
	regexp.MustCompile(`(?i)\(?\s*(?:saved|output|written)\s+(?:to|at|in):?\s+` + pathToken + `\s*\)?`),
	// any remaining sentence fragment carrying a bare path
	regexp.MustCompile(`[^.!?\n]*` + pathToken + `[^.!?\n]*[.!?]?`),
	// bare path-only lines
	regexp.MustCompile(`(?m)^\s*` + pathToken + `\s*$`),
}

var (
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// S4Sanitize strips internal filesystem detail from the reply shown to the
// user. It runs unconditionally: the planner echoes paths on its own even
// when no artifact was reconciled.
type S4Sanitize struct{}

func NewS4Sanitize() *S4Sanitize { return &S4Sanitize{} }

func (s *S4Sanitize) Run(answer string) string {
	out := SanitizeAnswer(answer)
	if out != answer {
		log.Printf("[S4][SCRUBBED] removed=%d bytes", len(answer)-len(out))
	}
	return out
}

func SanitizeAnswer(answer string) string {
	out := answer
	for _, re := range sanitizePatterns {
		out = re.ReplaceAllString(out, "")
	}

	out = multiSpace.ReplaceAllString(out, " ")
	out = multiBlank.ReplaceAllString(out, "\n\n")

	lines := strings.Split(out, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
