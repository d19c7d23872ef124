package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// formatDuration formats a duration in a human-friendly way (e.g., "2 days and 3 hours")
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 && seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
		Long:  `Manage the stored GIMS token pair for the current context`,
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var (
		accessToken  string
		refreshToken string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store GIMS tokens for the current context",
		Long: `Store an access/refresh token pair obtained from the GIMS web UI.

Tokens are written to a per-context credentials file and refreshed in place
when the server rotates them.

Examples:
  # Paste tokens interactively (input is not echoed)
  gimsctl auth login

  # Non-interactive
  gimsctl auth login --access-token ... --refresh-token ...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if accessToken == "" {
				accessToken, err = promptSecret("Access token: ")
				if err != nil {
					return err
				}
			}
			if refreshToken == "" {
				refreshToken, err = promptSecret("Refresh token: ")
				if err != nil {
					return err
				}
			}
			if accessToken == "" || refreshToken == "" {
				return fmt.Errorf("both an access token and a refresh token are required")
			}

			store := NewFileCredentials()
			if err := store.SaveTokens(accessToken, refreshToken); err != nil {
				return err
			}

			config, err := LoadConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Logged in (context %q)\n", config.CurrentContext)
			return nil
		},
	}

	cmd.Flags().StringVar(&accessToken, "access-token", "", "GIMS access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "GIMS refresh token")

	return cmd
}

// promptSecret reads a value without echoing when stdin is a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		value, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(value)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials for the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RemoveCredentials(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status for the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig()
			if err != nil {
				return err
			}
			ctx, err := config.GetCurrentContext()
			if err != nil {
				return err
			}

			fmt.Printf("Context: %s\n", config.CurrentContext)
			if ctx.Server.URL != "" {
				fmt.Printf("Server:  %s\n", ctx.Server.URL)
			} else {
				fmt.Println("Server:  (not configured)")
			}

			creds, err := LoadCredentials()
			if err != nil {
				fmt.Println("Status:  not logged in")
				return nil
			}

			switch {
			case creds.ExpiresAt.IsZero():
				fmt.Println("Status:  logged in (token expiry unknown)")
			case creds.IsExpired():
				fmt.Printf("Status:  access token expired %s ago (refreshed on next use)\n",
					formatDuration(time.Since(creds.ExpiresAt)))
			default:
				fmt.Printf("Status:  logged in, access token expires in %s\n",
					formatDuration(time.Until(creds.ExpiresAt)))
			}
			return nil
		},
	}
}
