package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-tweetcard"
	"github.com/alnah/go-tweetcard/internal/config"
	"github.com/alnah/go-tweetcard/internal/hints"
	"github.com/alnah/go-tweetcard/internal/logger"
)

// Exit codes for the tweetcard CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Card written or server stopped cleanly
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, env, or card fields
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser or render errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoBody) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, logger.ErrInvalidLevel) ||
		errors.Is(err, tweetcard.ErrMissingField) ||
		errors.Is(err, tweetcard.ErrInvalidField) ||
		errors.Is(err, tweetcard.ErrInvalidTheme) ||
		errors.Is(err, tweetcard.ErrInvalidOption) ||
		errors.Is(err, tweetcard.ErrInvalidAssetPath) ||
		errors.Is(err, tweetcard.ErrTemplate) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, ErrReadBody) ||
		errors.Is(err, ErrReadImage) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Browser and render errors (exit 4)
	if errors.Is(err, tweetcard.ErrRender) ||
		errors.Is(err, tweetcard.ErrBrowserConnect) ||
		errors.Is(err, tweetcard.ErrPageCreate) ||
		errors.Is(err, tweetcard.ErrPageLoad) ||
		errors.Is(err, tweetcard.ErrScreenshot) ||
		errors.Is(err, tweetcard.ErrEncode) ||
		errors.Is(err, tweetcard.ErrAssetLoad) {
		return ExitBrowser
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, tweetcard.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, tweetcard.ErrAssetLoad):
		return hints.ForAssetLoad()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputFile()
	}
	return ""
}
