package gims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sseHandler serves each string as one SSE data frame carrying a JSON
// {"content": ...} payload, then returns (closing the stream). When hold is
// set the handler blocks after the last frame until the request is cancelled.
func sseHandler(events []string, hold bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, content := range events {
			payload, _ := json.Marshal(map[string]string{"content": content})
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
		if hold {
			<-r.Context().Done()
		}
	}
}

func newStreamTestClient(t *testing.T, url string) *Client {
	t.Helper()
	session, err := NewSession(url, "access", "refresh", true)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return NewClient(session, nil, discardLogger())
}

func TestRunMarker(t *testing.T) {
	events := []string{
		"2026-01-11 04:23:33,350 [INFO] step one\n2026-01-11 04:23:33,360 [INFO] step two",
		"2026-01-11 04:23:34,100 [INFO] END SCRIPT",
		"2026-01-11 04:23:35,000 [INFO] never delivered",
	}
	srv := httptest.NewServer(sseHandler(events, true))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 5 * time.Second})

	var emitted []string
	reader.OnLine(func(line string) { emitted = append(emitted, line) })

	result, err := reader.Run(t.Context(), "/logviewer/stream/1/")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateCompletedMarker {
		t.Errorf("state = %s, want completed-marker", result.State)
	}
	want := []string{"step one", "step two", "END SCRIPT"}
	if len(result.Lines) != len(want) {
		t.Fatalf("lines = %q, want %q", result.Lines, want)
	}
	for i := range want {
		if result.Lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, result.Lines[i], want[i])
		}
	}
	if len(emitted) != len(result.Lines) {
		t.Errorf("emitted %d lines, collected %d", len(emitted), len(result.Lines))
	}
}

func TestRunTailBacklog(t *testing.T) {
	backlog := "b1\nb2\nb3\nb4\nb5"
	events := []string{backlog, "live", "END SCRIPT"}
	srv := httptest.NewServer(sseHandler(events, true))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 5 * time.Second, Tail: 3})

	result, err := reader.Run(t.Context(), "/logviewer/stream/1/")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"b3", "b4", "b5", "live", "END SCRIPT"}
	if strings.Join(result.Lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q (last 3 backlog lines then live)", result.Lines, want)
	}
}

func TestRunFilterStillSeesMarker(t *testing.T) {
	events := []string{
		"error: disk full\nall fine here\nERROR again",
		"END SCRIPT",
	}
	srv := httptest.NewServer(sseHandler(events, true))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 5 * time.Second, Filter: "error"})

	result, err := reader.Run(t.Context(), "/logviewer/stream/1/")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != StateCompletedMarker {
		t.Errorf("state = %s, want completed-marker (filtered-out marker still terminates)", result.State)
	}
	want := []string{"error: disk full", "ERROR again"}
	if strings.Join(result.Lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", result.Lines, want)
	}
}

func TestRunTimeout(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{"still running"}, true))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 200 * time.Millisecond})

	result, err := reader.Run(t.Context(), "/logviewer/stream/1/")
	if err != nil {
		t.Fatalf("Run: %v (timeout is not an error)", err)
	}
	if result.State != StateCompletedTimeout {
		t.Errorf("state = %s, want completed-timeout", result.State)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "still running" {
		t.Errorf("lines = %q, want the one line seen before the deadline", result.Lines)
	}
}

func TestRunServerCloseWithoutMarker(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{"partial output"}, false))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 5 * time.Second})

	result, err := reader.Run(t.Context(), "/logviewer/stream/1/")
	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("err = %v, want StreamError", err)
	}
	if result.State != StateFailed {
		t.Errorf("state = %s, want failed", result.State)
	}
	if len(result.Lines) != 1 {
		t.Errorf("lines = %q, want the partial output preserved", result.Lines)
	}
}

func TestRunSizeLimit(t *testing.T) {
	events := []string{"aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"}
	srv := httptest.NewServer(sseHandler(events, true))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 5 * time.Second, MaxBytes: 25})

	result, err := reader.Run(t.Context(), "/logviewer/stream/1/")
	if err != nil {
		t.Fatalf("Run: %v (hitting the cap is not an error)", err)
	}
	if result.State != StateCompletedLimit {
		t.Errorf("state = %s, want completed-limit", result.State)
	}
	if !result.Truncated {
		t.Error("Truncated = false, want true")
	}
	if len(result.Lines) != 2 {
		t.Errorf("lines = %q, want the first two 10-byte lines", result.Lines)
	}
}

func TestRunCancelled(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{"running"}, true))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)
	reader := NewLogReader(client, StreamOptions{Timeout: 30 * time.Second})

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(100*time.Millisecond, cancel)

	result, err := reader.Run(ctx, "/logviewer/stream/1/")
	if err != nil {
		t.Fatalf("Run: %v (cancellation is not an error)", err)
	}
	if result.State != StateCancelled {
		t.Errorf("state = %s, want cancelled", result.State)
	}
}

func TestLogStreamPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/automation/scripts/script_log_url/123/":
			writeJSON(w, http.StatusOK, `{"url":["/logviewer/stream/abc/"]}`)
		case "/automation/scripts/script_log_url/999/":
			writeJSON(w, http.StatusOK, `{"url":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newStreamTestClient(t, srv.URL)

	path, err := client.LogStreamPath(t.Context(), 123, 5)
	if err != nil {
		t.Fatalf("LogStreamPath: %v", err)
	}
	if path != "/logviewer/stream/abc/?tail=5" {
		t.Errorf("path = %q, want /logviewer/stream/abc/?tail=5", path)
	}

	_, err = client.LogStreamPath(t.Context(), 999, 0)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("err = %v, want NotFoundError for a script with no log", err)
	}
}

func TestEventContent(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"json payload", `{"content":"hello"}`, "hello"},
		{"json multi-line", `{"content":"a\nb"}`, "a\nb"},
		{"json without content", `{"other":"x"}`, ""},
		{"raw text", "plain line", "plain line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventContent(tt.data); got != tt.want {
				t.Errorf("eventContent(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestStripLogPrefix(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"info prefix", "2026-01-11 04:23:33,350 [INFO] hello", "hello"},
		{"error prefix", "2026-01-11 04:23:33,350 [ERROR] boom", "boom"},
		{"no prefix", "bare line", "bare line"},
		{"prefix mid-line", "x 2026-01-11 04:23:33,350 [INFO] y", "x 2026-01-11 04:23:33,350 [INFO] y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripLogPrefix(tt.line); got != tt.want {
				t.Errorf("stripLogPrefix(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestNewLineFilter(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		line    string
		want    bool
	}{
		{"empty matches all", "", "anything", true},
		{"regex match", "err(or)?", "an ERROR occurred", true},
		{"regex no match", "^end$", "not the end", false},
		{"case-insensitive", "warning", "WARNING: low disk", true},
		{"bad regex falls back to substring", "a[b", "found a[b here", true},
		{"bad regex substring no match", "a[b", "nothing", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := newLineFilter(tt.pattern)
			if got := filter(tt.line); got != tt.want {
				t.Errorf("filter(%q)(%q) = %v, want %v", tt.pattern, tt.line, got, tt.want)
			}
		})
	}
}
