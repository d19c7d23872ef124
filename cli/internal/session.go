package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/devilmonastery/gimsctl/internal/gims"
)

// Environment variables, checked before the context config. When any of them
// is set, all required ones must be.
const (
	envURL          = "GIMS_URL"
	envAccessToken  = "GIMS_ACCESS_TOKEN"
	envRefreshToken = "GIMS_REFRESH_TOKEN"
	envVerifySSL    = "GIMS_VERIFY_SSL"
)

// resolveSession builds the credential session for this invocation. The
// environment wins over the config file; a session from the config file gets
// a file-backed token store so refreshed tokens survive the process.
func resolveSession() (*gims.Session, gims.TokenStore, error) {
	url := os.Getenv(envURL)
	access := os.Getenv(envAccessToken)
	refresh := os.Getenv(envRefreshToken)

	if url != "" || access != "" || refresh != "" {
		for name, v := range map[string]string{
			envURL:          url,
			envAccessToken:  access,
			envRefreshToken: refresh,
		} {
			if v == "" {
				return nil, nil, fmt.Errorf("configuration error: %s is not set", name)
			}
		}
		session, err := gims.NewSession(url, access, refresh, parseVerifySSL(os.Getenv(envVerifySSL)))
		if err != nil {
			return nil, nil, err
		}
		// Environment-provided tokens are never written back.
		return session, nil, nil
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	ctx, err := config.GetCurrentContext()
	if err != nil {
		return nil, nil, err
	}
	if ctx.Server.URL == "" {
		return nil, nil, fmt.Errorf("no GIMS server configured: set %s or run 'gimsctl config add-context'", envURL)
	}

	creds, err := LoadCredentials()
	if err != nil {
		return nil, nil, fmt.Errorf("%w\nRun 'gimsctl auth login' or set %s/%s", err, envAccessToken, envRefreshToken)
	}

	session, err := gims.NewSession(ctx.Server.URL, creds.AccessToken, creds.RefreshToken, !ctx.Server.InsecureSkipVerify)
	if err != nil {
		return nil, nil, err
	}
	return session, NewFileCredentials(), nil
}

// parseVerifySSL interprets the GIMS_VERIFY_SSL toggle. Unset means verify.
func parseVerifySSL(value string) bool {
	switch strings.ToLower(value) {
	case "false", "0", "no", "off":
		return false
	}
	return true
}
