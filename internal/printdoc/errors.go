package printdoc

import "errors"

// Sentinel errors for print preparation.
var (
	ErrCoverRender   = errors.New("cover template rendering failed")
	ErrInvalidFormat = errors.New("invalid paper format")
	ErrInvalidMargin = errors.New("invalid page margin")
	ErrParseDocument = errors.New("parsing document failed")
)
