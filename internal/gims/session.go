package gims

import (
	"fmt"
	"strings"
)

// Session holds the credentials for one CLI invocation. It is owned by the
// process and passed explicitly to the client; a successful token refresh
// mutates it in place so every later call in the process uses the new token.
type Session struct {
	// BaseURL is the GIMS root URL without a trailing slash.
	BaseURL      string
	AccessToken  string
	RefreshToken string
	// VerifySSL disables certificate validation when false. Explicit opt-in
	// for self-signed deployments.
	VerifySSL bool
}

// NewSession validates and normalizes the credential set.
func NewSession(baseURL, accessToken, refreshToken string, verifySSL bool) (*Session, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("GIMS URL is not configured")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("GIMS access token is not configured")
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("GIMS refresh token is not configured")
	}
	return &Session{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		VerifySSL:    verifySSL,
	}, nil
}

// AutomationURL returns the base URL of the automation API.
func (s *Session) AutomationURL() string {
	return s.BaseURL + "/automation"
}

// setTokens installs a refreshed token pair. The refresh token is kept when
// the server did not rotate it. Called only after a fully successful refresh
// response, so a failed refresh never leaves partial state behind.
func (s *Session) setTokens(access, refresh string) {
	s.AccessToken = access
	if refresh != "" {
		s.RefreshToken = refresh
	}
}

// TokenStore persists a rotated token pair after a successful refresh.
// Implementations store tokens in files, keychains, etc. A nil store means
// the refreshed tokens live only for the current process (environment-based
// sessions).
type TokenStore interface {
	SaveTokens(accessToken, refreshToken string) error
}
