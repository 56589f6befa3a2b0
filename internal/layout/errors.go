package layout

import "errors"

var (
	// ErrAssetLoad indicates a stylesheet or script could not be loaded.
	ErrAssetLoad = errors.New("failed to load layout asset")

	// ErrRender indicates a page body could not be rendered.
	ErrRender = errors.New("failed to render page")
)
