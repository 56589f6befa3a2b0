package main

import (
	"errors"
	"os"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/printdoc"
	"github.com/alnah/go-md2site/internal/retry"
	"github.com/alnah/go-md2site/internal/store"
	"github.com/alnah/go-md2site/internal/theme"
)

// Exit codes for the md2site CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitService = 5 // AI service errors
)

// exitCodeFor returns the exit code for an error, matching wrapped sentinels
// with errors.Is.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, md2site.ErrBrowserConnect) ||
		errors.Is(err, md2site.ErrPageCreate) ||
		errors.Is(err, md2site.ErrPageLoad) ||
		errors.Is(err, md2site.ErrPDFGeneration) {
		return ExitBrowser
	}

	// AI service errors (exit 5)
	if errors.Is(err, md2site.ErrEnhancement) ||
		errors.Is(err, enhance.ErrUpstream) ||
		errors.Is(err, enhance.ErrEmptyResponse) ||
		errors.Is(err, enhance.ErrNotConfigured) ||
		errors.Is(err, retry.ErrExhausted) {
		return ExitService
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, md2site.ErrReadFile) ||
		errors.Is(err, md2site.ErrNoFiles) ||
		errors.Is(err, fileutil.ErrInputNotFound) ||
		errors.Is(err, fileutil.ErrNoInputs) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrProjectDocument) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, md2site.ErrInvalidFileType) ||
		errors.Is(err, md2site.ErrFileTooLarge) ||
		errors.Is(err, md2site.ErrUnknownRenderer) ||
		errors.Is(err, md2site.ErrUnknownTheme) ||
		errors.Is(err, md2site.ErrStyleNotFound) ||
		errors.Is(err, md2site.ErrTemplateNotFound) ||
		errors.Is(err, md2site.ErrInvalidAssetPath) ||
		errors.Is(err, md2site.ErrEmptyHTML) ||
		errors.Is(err, theme.ErrUnknownTheme) ||
		errors.Is(err, theme.ErrUnknownColor) ||
		errors.Is(err, printdoc.ErrInvalidFormat) ||
		errors.Is(err, printdoc.ErrInvalidMargin) ||
		errors.Is(err, fileutil.ErrNotMarkdown) ||
		errors.Is(err, enhance.ErrUnsupportedLanguage) ||
		errors.Is(err, store.ErrUnauthenticated) ||
		errors.Is(err, store.ErrForbidden) ||
		errors.Is(err, store.ErrInvalidProject) ||
		errors.Is(err, store.ErrFileType) ||
		errors.Is(err, store.ErrFileTooLarge) {
		return ExitUsage
	}

	return ExitGeneral
}
