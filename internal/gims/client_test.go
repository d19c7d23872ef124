package gims

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	access  string
	refresh string
	saves   int
	err     error
}

func (s *fakeStore) SaveTokens(accessToken, refreshToken string) error {
	if s.err != nil {
		return s.err
	}
	s.access = accessToken
	s.refresh = refreshToken
	s.saves++
	return nil
}

func newTestClient(t *testing.T, url string, store TokenStore) *Client {
	t.Helper()
	session, err := NewSession(url, "stale-access", "good-refresh", true)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return NewClient(session, store, discardLogger())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body) //nolint:errcheck
}

func TestDoRefreshAndRetry(t *testing.T) {
	var apiCalls, refreshCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/security/token/refresh/":
			refreshCalls.Add(1)
			var body struct {
				Refresh string `json:"refresh"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Refresh != "good-refresh" {
				writeJSON(w, http.StatusUnauthorized, `{"detail":"bad refresh token"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"access":"fresh-access","refresh":"fresh-refresh"}`)
		case "/automation/scripts/script/":
			apiCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer fresh-access" {
				writeJSON(w, http.StatusUnauthorized, `{"detail":"token expired"}`)
				return
			}
			writeJSON(w, http.StatusOK, `[{"id":1}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := newTestClient(t, srv.URL, store)

	raw, err := client.Get(t.Context(), "/scripts/script/", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `[{"id":1}]` {
		t.Errorf("body = %s, want [{\"id\":1}]", raw)
	}
	if got := apiCalls.Load(); got != 2 {
		t.Errorf("api calls = %d, want 2 (original + retry)", got)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if client.Session().AccessToken != "fresh-access" || client.Session().RefreshToken != "fresh-refresh" {
		t.Errorf("session tokens = %q/%q, want fresh pair",
			client.Session().AccessToken, client.Session().RefreshToken)
	}
	if store.access != "fresh-access" || store.refresh != "fresh-refresh" || store.saves != 1 {
		t.Errorf("store = %q/%q (%d saves), want fresh pair saved once",
			store.access, store.refresh, store.saves)
	}
}

func TestDoRefreshRotationKeepsOldRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/security/token/refresh/":
			// No rotated refresh token in the response.
			writeJSON(w, http.StatusOK, `{"access":"fresh-access"}`)
		default:
			if r.Header.Get("Authorization") != "Bearer fresh-access" {
				writeJSON(w, http.StatusUnauthorized, `{"detail":"token expired"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{}`)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	if _, err := client.Get(t.Context(), "/whatever/", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if client.Session().RefreshToken != "good-refresh" {
		t.Errorf("refresh token = %q, want the original kept", client.Session().RefreshToken)
	}
}

func TestDoRefreshFailure(t *testing.T) {
	var apiCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/security/token/refresh/" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"refresh expired"}`)
			return
		}
		apiCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"detail":"token expired"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	_, err := client.Get(t.Context(), "/scripts/script/", nil)

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if got := apiCalls.Load(); got != 1 {
		t.Errorf("api calls = %d, want 1 (no retry after failed refresh)", got)
	}
}

func TestDoSecondUnauthorizedGivesUp(t *testing.T) {
	var refreshCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/security/token/refresh/" {
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, `{"access":"still-rejected"}`)
			return
		}
		writeJSON(w, http.StatusUnauthorized, `{"detail":"nope"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	_, err := client.Get(t.Context(), "/scripts/script/", nil)

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", got)
	}
}

func TestDoErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"detail":"no"}`,
			check: func(t *testing.T, err error) {
				var e *AuthorizationError
				if !errors.As(err, &e) {
					t.Errorf("err = %v, want AuthorizationError", err)
				}
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"detail":"missing"}`,
			check: func(t *testing.T, err error) {
				var e *NotFoundError
				if !errors.As(err, &e) {
					t.Errorf("err = %v, want NotFoundError", err)
				}
			},
		},
		{
			name:   "bad request with detail",
			status: http.StatusBadRequest,
			body:   `{"detail":"name is required"}`,
			check: func(t *testing.T, err error) {
				var e *ValidationError
				if !errors.As(err, &e) {
					t.Fatalf("err = %v, want ValidationError", err)
				}
				if e.StatusCode != http.StatusBadRequest || e.Detail != "name is required" {
					t.Errorf("got %d/%q, want 400/\"name is required\"", e.StatusCode, e.Detail)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL, nil)
			_, err := client.Get(t.Context(), "/scripts/script/", nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestDoNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	if err := client.Delete(t.Context(), "/scripts/script/1/"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestDoRejectsNonJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>login page</body></html>") //nolint:errcheck
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	_, err := client.Get(t.Context(), "/scripts/script/", nil)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestDoHTMLErrorReducedToTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "<html><head><title>502 Bad Gateway</title></head><body>...</body></html>") //nolint:errcheck
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil)
	_, err := client.Get(t.Context(), "/scripts/script/", nil)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if valErr.Detail != "server returned HTML error: 502 Bad Gateway" {
		t.Errorf("detail = %q, want the page title", valErr.Detail)
	}
}

func TestDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(t, srv.URL, nil)
	_, err := client.Get(t.Context(), "/scripts/script/", nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestDoStoreSaveFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/security/token/refresh/" {
			writeJSON(w, http.StatusOK, `{"access":"fresh-access"}`)
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh-access" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"token expired"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer srv.Close()

	store := &fakeStore{err: errors.New("disk full")}
	client := newTestClient(t, srv.URL, store)

	if _, err := client.Get(t.Context(), "/whatever/", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if client.Session().AccessToken != "fresh-access" {
		t.Errorf("access token = %q, want fresh-access despite store failure", client.Session().AccessToken)
	}
}
