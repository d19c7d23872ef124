package gims

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	// refreshPath is the token refresh endpoint, relative to the GIMS root
	// (not the automation API base).
	refreshPath = "/security/token/refresh/"
	// maxErrorBody bounds how much of an error response is surfaced.
	maxErrorBody = 500
)

var htmlTitleRE = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)

var insecureWarning sync.Once

// Client performs authenticated requests against the GIMS automation API,
// transparently recovering from an expired access token exactly once per
// logical call.
type Client struct {
	session *Session
	store   TokenStore
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client bound to the given session. store may be nil;
// when set, rotated tokens are written back to it after a successful refresh.
func NewClient(session *Session, store TokenStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport
	if !session.VerifySSL {
		insecureWarning.Do(func() {
			logger.Warn("TLS certificate verification is disabled")
		})
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		session: session,
		store:   store,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		logger: logger.With("component", "gims-client"),
	}
}

// Session returns the session the client operates on.
func (c *Client) Session() *Session {
	return c.session
}

// Do issues a request against the automation API. path is relative to the
// automation base (for example "/scripts/script/"). body, when non-nil, is
// sent as JSON. The parsed JSON response is returned; nil for 204.
//
// A 401 triggers a single token refresh followed by a single retry of the
// original request. The sequence is strictly attempt, refresh, retry, give
// up: a second 401 surfaces an AuthenticationError and never refreshes again.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	target := c.session.AutomationURL() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.attempt(ctx, method, target, payload)
	if err != nil {
		return nil, &TransportError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		c.logger.Debug("access token rejected, refreshing", "path", path)
		if err := c.refreshAccessToken(ctx); err != nil {
			return nil, err
		}
		resp, err = c.attempt(ctx, method, target, payload)
		if err != nil {
			return nil, &TransportError{Op: fmt.Sprintf("%s %s", method, path), Err: err}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return nil, &AuthenticationError{Detail: "token rejected after refresh; get new tokens from GIMS"}
		}
	}

	return decodeResponse(resp)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// attempt performs one HTTP round trip with the current access token.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// refreshAccessToken exchanges the refresh token for a new access token and
// installs it on the session. A rejected refresh token is an
// AuthenticationError; only network failures map to TransportError.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	reqBody, err := json.Marshal(map[string]string{"refresh": c.session.RefreshToken})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.session.BaseURL+refreshPath, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "token refresh", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthenticationError{Detail: "refresh token is invalid; get new tokens from GIMS"}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &AuthenticationError{
			Detail: fmt.Sprintf("token refresh failed (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return &AuthenticationError{Detail: fmt.Sprintf("invalid refresh response: %v", err)}
	}
	if tokens.Access == "" {
		return &AuthenticationError{Detail: "refresh response did not contain an access token"}
	}

	c.session.setTokens(tokens.Access, tokens.Refresh)
	c.logger.Debug("access token refreshed")

	if c.store != nil {
		if err := c.store.SaveTokens(c.session.AccessToken, c.session.RefreshToken); err != nil {
			// The in-memory session is already updated; persisting is best
			// effort for the next invocation.
			c.logger.Warn("failed to persist refreshed tokens", "error", err)
		}
	}
	return nil
}

// decodeResponse maps an HTTP response to a parsed JSON body or a typed
// error from the taxonomy in errors.go.
func decodeResponse(resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		drainBody(resp.Body)
		return nil, &AuthorizationError{Detail: "insufficient permissions"}
	case resp.StatusCode == http.StatusNotFound:
		drainBody(resp.Body)
		return nil, &NotFoundError{Detail: "resource not found"}
	case resp.StatusCode >= 400:
		return nil, &ValidationError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(resp),
		}
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		drainBody(resp.Body)
		return nil, &ValidationError{
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("expected JSON response, got %q", contentType),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if !json.Valid(body) {
		return nil, &ValidationError{StatusCode: resp.StatusCode, Detail: "malformed JSON response"}
	}
	return json.RawMessage(body), nil
}

// errorDetail extracts a readable message from an error response. JSON
// bodies contribute their "detail" field; HTML error pages are reduced to
// their title so proxies cannot flood the output with markup.
func errorDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	if json.Valid(body) {
		return truncate(string(body))
	}

	text := strings.TrimSpace(string(body))
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") ||
		strings.HasPrefix(text, "<!DOCTYPE") || strings.HasPrefix(text, "<html") {
		if m := htmlTitleRE.FindStringSubmatch(text); m != nil {
			return "server returned HTML error: " + strings.TrimSpace(m[1])
		}
		return "server returned HTML error page"
	}
	return truncate(text)
}

func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "... (truncated)"
	}
	return s
}

func drain(resp *http.Response) {
	drainBody(resp.Body)
	resp.Body.Close()
}

func drainBody(body io.Reader) {
	io.Copy(io.Discard, io.LimitReader(body, 64<<10)) //nolint:errcheck
}
