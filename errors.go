package md2site

import "errors"

// Sentinel errors for library operations.
var (
	// Input validation errors. Generate rejects the whole batch on the first one.
	ErrNoFiles         = errors.New("no files uploaded")
	ErrInvalidFileType = errors.New("only .md and .markdown files are accepted")
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrReadFile        = errors.New("failed to read input file")

	ErrUnknownRenderer = errors.New("unknown renderer")
	ErrUnknownTheme    = errors.New("unknown theme")

	// Asset loading errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrScriptNotFound   = errors.New("script not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// ErrEnhancement is returned only in strict mode; otherwise failures fall back.
	ErrEnhancement = errors.New("enhancement failed")

	// PDF export errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrEmptyHTML      = errors.New("HTML content cannot be empty")
)
