package gims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// StreamState is the position of a log reader in its lifecycle.
type StreamState int

const (
	StateConnecting StreamState = iota
	StateBufferingTail
	StateStreaming
	// StateCompletedMarker is the normal completion path: an end marker
	// appeared in the stream.
	StateCompletedMarker
	// StateCompletedTimeout means the timeout elapsed before a marker was
	// seen. A normal outcome, not an error.
	StateCompletedTimeout
	// StateCompletedLimit means the output size cap was reached.
	StateCompletedLimit
	StateFailed
	StateCancelled
)

func (s StreamState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateBufferingTail:
		return "buffering-tail"
	case StateStreaming:
		return "streaming"
	case StateCompletedMarker:
		return "completed-marker"
	case StateCompletedTimeout:
		return "completed-timeout"
	case StateCompletedLimit:
		return "completed-limit"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("StreamState(%d)", int(s))
}

// Completed reports whether the state is one of the non-error terminal
// outcomes.
func (s StreamState) Completed() bool {
	return s == StateCompletedMarker || s == StateCompletedTimeout || s == StateCompletedLimit
}

// DefaultEndMarkers is the sentinel set used when the caller configures none.
var DefaultEndMarkers = []string{"END SCRIPT"}

const (
	DefaultStreamTimeout = 30 * time.Second
	DefaultMaxStreamSize = 100 << 10
)

// logPrefixRE matches the GIMS log line prefix, e.g.
// "2026-01-11 04:23:33,350 [INFO] ".
var logPrefixRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} \[[^\]]+\] `)

// StreamOptions shapes how a log stream is consumed client-side.
type StreamOptions struct {
	// Timeout bounds the whole read. Zero means DefaultStreamTimeout.
	Timeout time.Duration
	// Tail asks the server for the last N backlog lines before going live.
	// Zero means only new lines.
	Tail int
	// Filter drops lines that do not match. Compiled as a case-insensitive
	// regular expression; falls back to a case-insensitive substring match
	// when the pattern does not compile. Empty matches everything.
	Filter string
	// EndMarkers terminate the stream when any of them appears as a
	// substring of a raw line. Empty means DefaultEndMarkers.
	EndMarkers []string
	// KeepTimestamp keeps the timestamp/level prefix on emitted lines.
	KeepTimestamp bool
	// MaxBytes caps the total size of emitted lines. Zero means
	// DefaultMaxStreamSize.
	MaxBytes int
}

// StreamResult is what a finished (or interrupted) log read collected.
type StreamResult struct {
	State     StreamState
	Lines     []string
	Truncated bool
	Elapsed   time.Duration
}

// LogReader consumes one SSE log stream, applies tail/filter/end-marker
// shaping and terminates deterministically. It is single-use.
type LogReader struct {
	client *Client
	opts   StreamOptions

	// emit, when set, receives each line as it is accepted. Lines are
	// collected into the result either way.
	emit func(line string)

	state     StreamState
	filter    func(string) bool
	markers   []string
	lines     []string
	bytes     int
	truncated bool
	tailBuf   []string
	sawEvent  bool
}

// NewLogReader creates a reader over the given client.
func NewLogReader(client *Client, opts StreamOptions) *LogReader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultStreamTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxStreamSize
	}
	if len(opts.EndMarkers) == 0 {
		opts.EndMarkers = DefaultEndMarkers
	}
	return &LogReader{
		client:  client,
		opts:    opts,
		state:   StateConnecting,
		filter:  newLineFilter(opts.Filter),
		markers: opts.EndMarkers,
	}
}

// OnLine registers a sink invoked for every accepted line, in order, as the
// stream progresses.
func (r *LogReader) OnLine(fn func(line string)) {
	r.emit = fn
}

// Run consumes the stream at path until an end marker, the timeout, a
// connection failure or ctx cancellation, whichever comes first. The result
// is always non-nil and carries every line collected so far; err is non-nil
// only for the failure outcomes.
func (r *LogReader) Run(ctx context.Context, path string) (*StreamResult, error) {
	start := time.Now()
	streamCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	err := r.client.streamSSE(streamCtx, path, r.onEvent)

	result := &StreamResult{
		State:     r.state,
		Lines:     r.lines,
		Truncated: r.truncated,
		Elapsed:   time.Since(start),
	}

	switch {
	case r.state.Completed():
		return result, nil
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		result.State = StateCancelled
		return result, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		// The per-stream deadline fired.
		result.State = StateCompletedTimeout
		return result, nil
	case err == nil:
		// Server closed the stream without an end marker.
		result.State = StateFailed
		return result, &StreamError{Err: errors.New("stream closed before an end marker was seen")}
	default:
		result.State = StateFailed
		return result, err
	}
}

// onEvent handles one SSE data frame. The first frame carries the backlog
// when tail was requested; every line in it goes through the tail ring
// before the reader switches to live pass-through.
func (r *LogReader) onEvent(data string) error {
	content := eventContent(data)
	if content == "" {
		return nil
	}

	first := !r.sawEvent
	r.sawEvent = true

	if r.state == StateConnecting {
		if first && r.opts.Tail > 0 {
			r.state = StateBufferingTail
		} else {
			r.state = StateStreaming
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if r.state == StateBufferingTail {
			r.bufferTail(raw)
			continue
		}
		if r.processLine(raw) {
			return errStopStream
		}
	}

	if r.state == StateBufferingTail {
		// Backlog delivered; flush the most recent N lines in original
		// order and go live.
		if r.flushTail() {
			return errStopStream
		}
		r.state = StateStreaming
	}
	return nil
}

// bufferTail keeps the most recent Tail raw lines.
func (r *LogReader) bufferTail(raw string) {
	if len(r.tailBuf) == r.opts.Tail {
		copy(r.tailBuf, r.tailBuf[1:])
		r.tailBuf = r.tailBuf[:len(r.tailBuf)-1]
	}
	r.tailBuf = append(r.tailBuf, raw)
}

// flushTail runs the buffered backlog through the normal line pipeline.
// Returns true when a line terminated the stream.
func (r *LogReader) flushTail() bool {
	for _, raw := range r.tailBuf {
		if r.processLine(raw) {
			return true
		}
	}
	r.tailBuf = nil
	return false
}

// processLine applies marker detection, prefix stripping, the filter and the
// size cap to one raw line. Returns true when the stream is done.
//
// Marker detection runs on the raw, unfiltered line: a filtered-out marker
// line still terminates the stream, it is just not displayed.
func (r *LogReader) processLine(raw string) bool {
	marker := containsAnyMarker(raw, r.markers)

	line := raw
	if !r.opts.KeepTimestamp {
		line = stripLogPrefix(raw)
	}
	pass := r.filter(line)

	if marker {
		if pass {
			r.append(line)
		}
		r.state = StateCompletedMarker
		return true
	}
	if !pass {
		return false
	}
	if !r.append(line) {
		r.truncated = true
		r.state = StateCompletedLimit
		return true
	}
	return false
}

// append records a line unless it would exceed the size cap.
func (r *LogReader) append(line string) bool {
	size := len(line) + 1
	if r.bytes+size > r.opts.MaxBytes {
		return false
	}
	r.lines = append(r.lines, line)
	r.bytes += size
	if r.emit != nil {
		r.emit(line)
	}
	return true
}

// LogStreamPath resolves the SSE stream path for a script's execution log
// and encodes the requested tail depth.
func (c *Client) LogStreamPath(ctx context.Context, scriptID, tail int) (string, error) {
	raw, err := c.Get(ctx, fmt.Sprintf("/scripts/script_log_url/%d/", scriptID), nil)
	if err != nil {
		return "", err
	}
	var info struct {
		URL []string `json:"url"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return "", &ValidationError{StatusCode: 200, Detail: fmt.Sprintf("unexpected log URL response: %v", err)}
	}
	if len(info.URL) == 0 {
		return "", &NotFoundError{Detail: fmt.Sprintf("script %d has no log available", scriptID)}
	}
	sep := "?"
	if strings.Contains(info.URL[0], "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%stail=%d", info.URL[0], sep, tail), nil
}

// eventContent extracts the log text from one SSE payload. Frames are JSON
// objects with a "content" field; anything else is treated as raw text.
func eventContent(data string) string {
	var payload struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err == nil {
		return payload.Content
	}
	return data
}

// stripLogPrefix removes the timestamp/level prefix when present.
func stripLogPrefix(line string) string {
	if m := logPrefixRE.FindString(line); m != "" {
		return line[len(m):]
	}
	return line
}

func containsAnyMarker(line string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// newLineFilter compiles a case-insensitive predicate for the given pattern.
func newLineFilter(pattern string) func(string) bool {
	if pattern == "" {
		return func(string) bool { return true }
	}
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re.MatchString
	}
	lower := strings.ToLower(pattern)
	return func(line string) bool {
		return strings.Contains(strings.ToLower(line), lower)
	}
}
