package infra

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	responseStartMarker = "RESPONSE_START"
	responseEndMarker   = "RESPONSE_END"

	plannerTimeout = 60 * time.Second

	// emitted when the start marker arrived but the process ended
	// before any response content
	plannerSuccessFallback = "I've processed your request successfully."
)

// Banner and echo lines the planner is known to print before its framed
// response. They never belong to the answer.
var noisePrefixes = []string{
	"MCP Client",
	"Received query:",
	"Processing query:",
}

// Residual framing text that can leak into the head of an answer when the
// planner prints the marker on the same line as content.
var answerPrefixes = []string{
	"GEMINI_RESPONSE:",
	"Response: " + responseStartMarker,
	responseStartMarker,
}

var toolTracePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[[^\[\]]*requested tool '[^']*' with arguments: \{[^{}]*\}\]\n?`),
	regexp.MustCompile(`\[Error executing tool '[^']*'[^\[\]]*\]\n?`),
}

// PlannerProcess spawns the external planning/tool-calling process fresh
// for every chat turn and speaks its line-framed stdio protocol.
type PlannerProcess struct {
	bin     string
	args    []string
	timeout time.Duration
}

func NewPlannerProcess(bin string, args []string) *PlannerProcess {
	return &PlannerProcess{bin: bin, args: args, timeout: plannerTimeout}
}

func (p *PlannerProcess) Ask(ctx context.Context, instruction string) (string, error) {
	if p.bin == "" {
		return "", fmt.Errorf("planner command not configured")
	}

	start := time.Now()
	log.Printf("[BRIDGE][START] instruction=%q", trimForLog(instruction, 200))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.bin, p.args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("planner stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("planner stdout pipe: %w", err)
	}
	stderr, _ := cmd.StderrPipe()
	go func() {
		b, _ := io.ReadAll(stderr)
		if len(b) > 0 {
			log.Printf("[BRIDGE][STDERR] %s", trimForLog(string(b), 500))
		}
	}()

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("planner start: %w", err)
	}

	if _, err := io.WriteString(stdin, instruction+"\n"); err != nil {
		_ = cmd.Process.Kill()
		return "", fmt.Errorf("planner write: %w", err)
	}

	// the send must not block once the read loop below has stopped
	// receiving, or every trailing line after the end marker strands
	// this goroutine; cancel() on return releases it
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if serr := scanner.Err(); serr != nil {
			log.Printf("[BRIDGE][READ-ERR] %v", serr)
		}
	}()

	var tr transcript
read:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// process output ended
				break read
			}
			if tr.feed(strings.TrimSpace(line)) {
				break read
			}
		case <-ctx.Done():
			log.Printf("[BRIDGE][TIMEOUT] after=%s", time.Since(start))
			break read
		}
	}

	_ = stdin.Close()
	if cmd.ProcessState == nil {
		_ = cmd.Process.Kill()
	}
	go func() { _ = cmd.Wait() }()

	answer := composeAnswer(&tr)
	log.Printf("[BRIDGE][DONE] dur=%s response_lines=%d answer=%q",
		time.Since(start), len(tr.response), trimForLog(answer, 200))
	return answer, nil
}

// transcript is the SCANNING -> IN_RESPONSE -> DONE state machine over the
// planner's output lines.
type transcript struct {
	inResponse bool
	sawStart   bool
	response   []string
	other      []string
}

// feed consumes one trimmed line and reports whether reading should stop.
func (t *transcript) feed(line string) bool {
	if line == "" {
		return false
	}
	if isNoise(line) {
		return false
	}
	switch {
	case line == responseStartMarker:
		t.sawStart = true
		t.inResponse = true
		return false
	case line == responseEndMarker:
		t.inResponse = false
		return true
	case t.inResponse:
		t.response = append(t.response, line)
		return false
	default:
		t.other = append(t.other, line)
		return false
	}
}

func isNoise(line string) bool {
	for _, p := range noisePrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// composeAnswer turns a finished transcript into the user-facing text.
// Marked response lines win; a lone start marker means the planner
// finished without content; otherwise whatever non-noise output was
// collected serves as the fallback.
func composeAnswer(t *transcript) string {
	var answer string
	switch {
	case len(t.response) > 0:
		answer = strings.Join(t.response, "\n")
	case t.sawStart:
		return plannerSuccessFallback
	default:
		answer = strings.Join(t.other, "\n")
	}

	for _, p := range answerPrefixes {
		if strings.HasPrefix(answer, p) {
			answer = strings.TrimSpace(strings.TrimPrefix(answer, p))
			break
		}
	}
	for _, re := range toolTracePatterns {
		answer = re.ReplaceAllString(answer, "")
	}
	return strings.TrimSpace(answer)
}

func trimForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
