package assets

// AssetResolver looks in a custom directory first and falls back to the
// embedded assets when an asset is missing there.
type AssetResolver struct {
	custom   AssetLoader // nil when no custom directory is configured
	embedded AssetLoader
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)

// NewAssetResolver creates a resolver. An empty customBasePath means embedded
// assets only; a non-empty one must be a valid directory.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}

	fs, err := NewFilesystemLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = fs
	return r, nil
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.resolve(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

func (r *AssetResolver) LoadScript(name string) (string, error) {
	return r.resolve(func(l AssetLoader) (string, error) { return l.LoadScript(name) })
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.resolve(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) resolve(load func(AssetLoader) (string, error)) (string, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	content, err := load(r.custom)
	if err == nil {
		return content, nil
	}
	// Validation and read errors are not masked by the embedded copy.
	if !isNotFound(err) {
		return "", err
	}
	return load(r.embedded)
}
