// Package assets provides the stylesheets, scripts and HTML snippets that are
// inlined into generated sites.
//
// # Loaders
//
//	AssetLoader (interface)
//	    ├── EmbeddedLoader    built-in assets compiled in with go:embed
//	    ├── FilesystemLoader  assets from a user directory
//	    └── AssetResolver     user directory first, embedded as fallback
//
// A resolver only falls back when an asset is missing from the user directory;
// invalid names and read errors are returned as-is.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/{name}.css      base, layout and print stylesheets
//	├── scripts/{name}.js      inline page scripts
//	└── templates/{name}.html  HTML snippets such as the print cover
//
// # Security
//
// Asset names may not contain separators or dots. FilesystemLoader resolves
// symlinks and refuses paths that leave the base directory.
package assets
