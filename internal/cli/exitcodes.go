package cli

import (
	"errors"

	"github.com/yaklabco/goscramble/pkg/fetch"
)

// Exit codes for goscramble.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFetchError indicates the target page could not be fetched or
	// scrambled.
	ExitFetchError = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70
)

// ExitCodeForError maps a command error to a process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) || errors.Is(err, fetch.ErrUnsupportedContentType) {
		return ExitFetchError
	}

	if errors.Is(err, errFailedConfig) {
		return ExitConfigError
	}

	return ExitInternalError
}
