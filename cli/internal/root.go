package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/gimsctl/internal/gims"
	"github.com/devilmonastery/gimsctl/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Client *gims.Client
	Logger *slog.Logger
}

// Global logging flags
var (
	logLevel    string
	logFile     string
	logToStderr bool
	logFormat   string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "gimsctl",
		Short:         "CLI for managing GIMS automation objects",
		Long:          `A command line interface for managing scripts, datasource types and activator types in a GIMS instance, and for streaming script execution logs.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = logger.WithCommand(slog.Default(), cmd.Name())
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			// auth, config and docs commands run without API access
			if requiresAPI(cmd) {
				session, store, err := resolveSession()
				if err != nil {
					return err
				}
				ctx.Client = gims.NewClient(session, store, ctx.Logger)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newDocsCommand())
	rootCmd.AddCommand(newScriptsCommand())
	rootCmd.AddCommand(newActivatorTypesCommand())
	rootCmd.AddCommand(newDatasourceTypesCommand())
	rootCmd.AddCommand(newRefsCommand())
	rootCmd.AddCommand(newLogsCommand())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr in addition to the log file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// requiresAPI reports whether a command needs an authenticated client.
func requiresAPI(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "auth", "config", "docs", "help", "completion", "__complete":
			return false
		}
	}
	return true
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogFile:     logFile,
		LogToStderr: logToStderr,
		Format:      logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
