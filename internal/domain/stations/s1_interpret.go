package stations

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/mediachat/internal/ports"
)

type Operation string

const (
	OpReplaceAudio Operation = "replace-audio"
	OpTrim         Operation = "trim"
	OpInstagram    Operation = "instagram-format"
	OpMergeAudio   Operation = "merge-audio"
	OpPassthrough  Operation = "passthrough"
)

// Outcome is the canonical instruction for one chat turn, or a direct
// reply that short-circuits execution. Built once, consumed once.
type Outcome struct {
	Op          Operation
	Instruction string
	DirectReply string // non-empty: answer the user without the planner
	InputVideo  string
	InputAudio  string
	OutputPath  string
}

// Suffixes stripped from a base name before a fresh one is appended, so
// outputs never stack _with_audio_with_audio across repeated edits.
var knownOutputSuffixes = []string{
	"_with_audio",
	"_audio_enhanced",
	"_processed",
	"_filtered",
	"_trimmed",
	"_marketing_final",
	"_demo_version",
}

var (
	videoPathPattern = regexp.MustCompile(`(?i)((?:[A-Za-z]:)?[/\\][^\s"'<>|]+\.(?:mp4|mov|avi|webm|mkv))`)
	audioPathPattern = regexp.MustCompile(`(?i)((?:[A-Za-z]:)?[/\\][^\s"'<>|]+\.(?:mp3|wav|ogg|aac|m4a))`)
	audioNamePattern = regexp.MustCompile(`(?i)with\s+(?:the\s+)?(?:audio\s+)?(?:file\s+)?["']?([\w][\w .-]*\.(?:mp3|wav|ogg|aac|m4a))["']?`)

	replaceAudioPattern = regexp.MustCompile(`(?i)(replace|swap|change)\s+(?:the\s+)?audio`)
	leadingTimestamp    = regexp.MustCompile(`^\d+-`)

	trimFirstPattern  = regexp.MustCompile(`(?i)first\s+(\d+(?:\.\d+)?)\s*(sec|min)`)
	trimFromToPattern = regexp.MustCompile(`(?i)from\s+(\d+(?:\.\d+)?)\s*(?:sec\w*|min\w*)?\s*to\s+(\d+(?:\.\d+)?)\s*(sec|min)`)
	trimPlainPattern  = regexp.MustCompile(`(?i)trim\s+(?:the\s+)?(\d+(?:\.\d+)?)\s*(sec|min)`)
)

type rule struct {
	name  string
	match func(lower string) bool
	build func(s *S1Interpret, message string) *Outcome
}

// S1Interpret classifies a free-text message into an operation family and
// rewrites it into the fixed-shape instruction the planner expects. Rules
// are evaluated in order, first match wins; no I/O beyond the resolver's
// directory lookups.
type S1Interpret struct {
	resolver ports.Resolver
	rules    []rule
	now      func() int64 // overridable in tests
}

func NewS1Interpret(resolver ports.Resolver) *S1Interpret {
	s := &S1Interpret{
		resolver: resolver,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	s.rules = []rule{
		{
			name: "replace-audio",
			match: func(lower string) bool {
				return replaceAudioPattern.MatchString(lower) || strings.Contains(lower, "with audio")
			},
			build: (*S1Interpret).buildReplaceAudio,
		},
		{
			name: "trim",
			match: func(lower string) bool {
				return strings.Contains(lower, "trim") &&
					(strings.Contains(lower, "sec") || strings.Contains(lower, "min"))
			},
			build: (*S1Interpret).buildTrim,
		},
		{
			name: "instagram-format",
			match: func(lower string) bool {
				return strings.Contains(lower, "instagram") &&
					(strings.Contains(lower, "format") || strings.Contains(lower, "convert"))
			},
			build: (*S1Interpret).buildInstagram,
		},
		{
			name: "merge-audio",
			match: func(lower string) bool {
				return strings.Contains(lower, "add audio") || strings.Contains(lower, "merge audio")
			},
			build: (*S1Interpret).buildMergeAudio,
		},
	}
	return s
}

func (s *S1Interpret) Run(message string) *Outcome {
	lower := strings.ToLower(message)
	for _, r := range s.rules {
		if !r.match(lower) {
			continue
		}
		out := r.build(s, message)
		log.Printf("[S1][MATCH] rule=%s op=%s direct=%v", r.name, out.Op, out.DirectReply != "")
		return out
	}
	log.Printf("[S1][PASSTHROUGH]")
	return &Outcome{Op: OpPassthrough, Instruction: message}
}

func (s *S1Interpret) buildReplaceAudio(message string) *Outcome {
	videoPath := findVideoPath(message)
	if videoPath == "" {
		return &Outcome{
			Op:          OpReplaceAudio,
			DirectReply: "I need a video to work with. Please select or upload a video first, then ask me again.",
		}
	}

	audioName := ""
	if m := audioNamePattern.FindStringSubmatch(message); m != nil {
		audioName = m[1]
	}

	audioPath, err := s.resolver.ResolveAudio(audioName)
	if err != nil {
		if errors.Is(err, ports.ErrNoAudio) {
			return &Outcome{
				Op:          OpReplaceAudio,
				DirectReply: "I couldn't find any audio file to use. Please upload an audio file and try again.",
			}
		}
		return &Outcome{
			Op:          OpReplaceAudio,
			DirectReply: "Something went wrong while looking up that audio file. Please try again.",
		}
	}

	output := s.outputPath(videoPath, "_with_audio", true)
	return &Outcome{
		Op:         OpReplaceAudio,
		InputVideo: videoPath,
		InputAudio: audioPath,
		OutputPath: output,
		Instruction: fmt.Sprintf(
			"Replace the audio track of the video at %s with the audio file at %s. Keep the video stream unchanged. Save the result to %s.",
			videoPath, audioPath, output,
		),
	}
}

func (s *S1Interpret) buildTrim(message string) *Outcome {
	videoPath := findVideoPath(message)
	if videoPath == "" {
		// nothing to cut; let the planner's own tool selection decide
		return &Outcome{Op: OpPassthrough, Instruction: message}
	}

	var start, duration float64
	switch {
	case trimFirstPattern.MatchString(message):
		m := trimFirstPattern.FindStringSubmatch(message)
		start = 0
		duration = parseSpan(m[1], m[2])
	case trimFromToPattern.MatchString(message):
		m := trimFromToPattern.FindStringSubmatch(message)
		unit := m[3]
		start = parseSpan(m[1], unit)
		end := parseSpan(m[2], unit)
		duration = end - start
	case trimPlainPattern.MatchString(message):
		m := trimPlainPattern.FindStringSubmatch(message)
		start = 0
		duration = parseSpan(m[1], m[2])
	default:
		return &Outcome{Op: OpPassthrough, Instruction: message}
	}
	if duration <= 0 {
		return &Outcome{Op: OpPassthrough, Instruction: message}
	}

	output := s.outputPath(videoPath, "_trimmed", true)
	return &Outcome{
		Op:         OpTrim,
		InputVideo: videoPath,
		OutputPath: output,
		Instruction: fmt.Sprintf(
			"Trim the video at %s: start at %s seconds and keep %s seconds. Re-encode the output instead of stream-copying so the cut points are frame accurate. Save the result to %s.",
			videoPath, formatSeconds(start), formatSeconds(duration), output,
		),
	}
}

func (s *S1Interpret) buildInstagram(message string) *Outcome {
	videoPath := findVideoPath(message)
	if videoPath == "" {
		return &Outcome{Op: OpPassthrough, Instruction: message}
	}

	lower := strings.ToLower(message)
	ratio := "9:16"
	if strings.Contains(lower, "square") || strings.Contains(lower, "1:1") {
		ratio = "1:1"
	}

	// no timestamp prefix here; the original named instagram outputs
	// this way and repeated conversions overwrite each other
	output := s.outputPath(videoPath, "_instagram", false)
	return &Outcome{
		Op:         OpInstagram,
		InputVideo: videoPath,
		OutputPath: output,
		Instruction: fmt.Sprintf(
			"Convert the video at %s to Instagram format with a %s aspect ratio, padding or cropping as needed. Save the result to %s.",
			videoPath, ratio, output,
		),
	}
}

func (s *S1Interpret) buildMergeAudio(message string) *Outcome {
	videoPath := findVideoPath(message)
	audioPath := findAudioPath(message)
	if videoPath == "" || audioPath == "" {
		return &Outcome{Op: OpPassthrough, Instruction: message}
	}

	output := s.outputPath(videoPath, "_with_audio", true)
	return &Outcome{
		Op:         OpMergeAudio,
		InputVideo: videoPath,
		InputAudio: audioPath,
		OutputPath: output,
		Instruction: fmt.Sprintf(
			"Merge the audio file at %s into the video at %s. Save the result to %s.",
			audioPath, videoPath, output,
		),
	}
}

// outputPath builds a collision-free sibling path for an edit result:
// known suffixes and any leading timestamp are stripped from the base so
// repeated edits never stack, then the suffix (and, usually, a fresh
// timestamp prefix) is applied.
func (s *S1Interpret) outputPath(videoPath, suffix string, withTimestamp bool) string {
	dir := filepath.Dir(videoPath)
	ext := filepath.Ext(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), ext)
	base = leadingTimestamp.ReplaceAllString(base, "")
	base = StripKnownSuffixes(base)

	name := base + suffix + ext
	if withTimestamp {
		name = fmt.Sprintf("%d-%s", s.now(), name)
	}
	return filepath.Join(dir, name)
}

// StripKnownSuffixes removes every whitelisted output suffix from the end
// of a base name, repeatedly, so stacked results from earlier edits
// collapse back to the original base.
func StripKnownSuffixes(base string) string {
	for {
		stripped := false
		for _, suf := range knownOutputSuffixes {
			if strings.HasSuffix(base, suf) {
				base = strings.TrimSuffix(base, suf)
				stripped = true
			}
		}
		if !stripped {
			return base
		}
	}
}

func findVideoPath(message string) string {
	if m := videoPathPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

func findAudioPath(message string) string {
	if m := audioPathPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}

func parseSpan(value, unit string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(unit), "min") {
		v *= 60
	}
	return v
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
