package gims

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// errStopStream is returned by an event handler to end consumption without
// surfacing an error to the caller.
var errStopStream = errors.New("stop stream")

// maxEventSize bounds a single SSE event. Log batches are small; anything
// bigger indicates a misbehaving server.
const maxEventSize = 1 << 20

// streamSSE opens a Server-Sent Events connection and invokes handler with
// the payload of every data frame as it arrives. path may be relative to the
// GIMS root (the form the script_log_url endpoint returns) or absolute.
//
// The response body is closed on every exit path. A 401 on connect triggers
// the same single refresh-and-retry as regular requests. handler may return
// errStopStream to end consumption cleanly; any other error is passed
// through. A broken connection mid-stream surfaces as StreamError.
func (c *Client) streamSSE(ctx context.Context, path string, handler func(data string) error) error {
	target := path
	if strings.HasPrefix(path, "/") {
		target = c.session.BaseURL + path
	}

	resp, err := c.connectSSE(ctx, target)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		if err := c.refreshAccessToken(ctx); err != nil {
			return err
		}
		resp, err = c.connectSSE(ctx, target)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return &AuthenticationError{Detail: "token rejected after refresh; get new tokens from GIMS"}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, err := decodeResponse(resp)
		if err == nil {
			err = &StreamError{Err: fmt.Errorf("unexpected HTTP %d from log stream", resp.StatusCode)}
		}
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64<<10), maxEventSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
		if err := handler(data); err != nil {
			if errors.Is(err, errStopStream) {
				return nil
			}
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StreamError{Err: err}
	}
	// Server closed the stream.
	return nil
}

// connectSSE issues the streaming GET. The request deliberately bypasses the
// regular client timeout: SSE connections are long-lived and bounded by ctx.
func (c *Client) connectSSE(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	req.Header.Set("Accept", "text/event-stream")

	streaming := &http.Client{Transport: c.http.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Op: "connect log stream", Err: err}
	}
	return resp, nil
}
