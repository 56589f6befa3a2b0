package assets

import "errors"

// AssetLoader loads site assets by bare name (no extension, no path).
type AssetLoader interface {
	// LoadStyle returns styles/{name}.css.
	LoadStyle(name string) (string, error)

	// LoadScript returns scripts/{name}.js.
	LoadScript(name string) (string, error)

	// LoadTemplate returns templates/{name}.html.
	LoadTemplate(name string) (string, error)
}

// kind describes where one category of asset lives.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind    = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	scriptKind   = kind{dir: "scripts", ext: ".js", notFound: ErrScriptNotFound}
	templateKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) ||
		errors.Is(err, ErrScriptNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}
