package md2site

import (
	"errors"

	"github.com/alnah/go-md2site/internal/assets"
)

// AssetLoader loads the stylesheets, scripts and templates a site embeds.
// Names are bare (no extension, no path). Implementations may read from the
// filesystem, a database or anything else.
//
// The library provides NewAssetLoader for directory overrides with fallback
// to the embedded defaults.
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css: "base", "print" or a layout name.
	LoadStyle(name string) (string, error)

	// LoadScript returns scripts/{name}.js, e.g. "navigation".
	LoadScript(name string) (string, error)

	// LoadTemplate returns templates/{name}.html, e.g. "cover".
	LoadTemplate(name string) (string, error)
}

// Compile-time check that public and internal loaders are interchangeable.
var _ assets.AssetLoader = AssetLoader(nil)

// NewAssetLoader creates an AssetLoader for basePath. An empty basePath uses
// the embedded assets only; otherwise files under basePath take precedence:
//
//	assets/
//	├── styles/{base,print,modern,minimal,technical,blog,wiki}.css
//	├── scripts/navigation.js
//	└── templates/cover.html
//
// Returns ErrInvalidAssetPath if basePath is not a readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter maps internal errors to the public sentinels.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	return content, convertAssetError(err)
}

func (a *assetLoaderAdapter) LoadScript(name string) (string, error) {
	content, err := a.resolver.LoadScript(name)
	return content, convertAssetError(err)
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	return content, convertAssetError(err)
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrScriptNotFound):
		return wrapError(ErrScriptNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrStyleNotFound, err)
	default:
		return err
	}
}

// wrapError keeps the original message while matching the public sentinel
// with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string { return e.original.Error() }

// Unwrap exposes the public sentinel only; internal errors stay internal.
func (e *wrappedAssetError) Unwrap() error { return e.sentinel }
