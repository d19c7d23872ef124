package main

import (
	"errors"
	"fmt"
	"os"

	cli "github.com/devilmonastery/gimsctl/cli/internal"
	"github.com/devilmonastery/gimsctl/internal/gims"
)

// Exit codes, one per error class, so callers can branch without parsing
// messages.
const (
	exitOK             = 0
	exitGeneric        = 1
	exitValidation     = 2
	exitAuthentication = 3
	exitAuthorization  = 4
	exitNotFound       = 5
	exitTransport      = 6
	exitStream         = 7
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		authnErr     *gims.AuthenticationError
		authzErr     *gims.AuthorizationError
		notFoundErr  *gims.NotFoundError
		validateErr  *gims.ValidationError
		transportErr *gims.TransportError
		streamErr    *gims.StreamError
	)
	switch {
	case errors.As(err, &authnErr):
		return exitAuthentication
	case errors.As(err, &authzErr):
		return exitAuthorization
	case errors.As(err, &notFoundErr):
		return exitNotFound
	case errors.As(err, &validateErr):
		return exitValidation
	case errors.As(err, &streamErr):
		return exitStream
	case errors.As(err, &transportErr):
		return exitTransport
	}
	return exitGeneric
}
