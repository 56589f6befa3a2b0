package assets

// Built-in asset names.
const (
	StyleBase        = "base"
	StylePrint       = "print"
	ScriptNavigation = "navigation"
	TemplateCover    = "cover"
)

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded stylesheet by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadScript loads an embedded script by name.
func LoadScript(name string) (string, error) {
	return defaultLoader.LoadScript(name)
}

// LoadTemplate loads an embedded HTML snippet by name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
