package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-md2site/internal/dateutil"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/printdoc"
	"github.com/alnah/go-md2site/internal/retry"
	"github.com/alnah/go-md2site/internal/theme"
	"github.com/alnah/go-md2site/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrDotEnv          = errors.New("failed to load .env file")
)

// AppDir is the directory name under the user config dir.
const AppDir = "go-md2site"

// DefaultAPIKeyEnv names the variable holding the AI service key.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Renderer names accepted by site.renderer.
const (
	RendererRegex    = "regex"
	RendererGoldmark = "goldmark"
)

// Field length limits.
const (
	MaxTitleLength    = 200
	MaxNameLength     = 50 // template, theme, renderer, model
	MaxURLLength      = 2048
	MaxPathLength     = 4096
	MaxEnvNameLength  = 100
	MaxSubtitleLength = 200
	MaxDurationLength = 20
)

// Config holds all configuration for site generation.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Enhance EnhanceConfig `yaml:"enhance"`
	Search  SearchConfig  `yaml:"search"`
	PDF     PDFConfig     `yaml:"pdf"`
	Storage StorageConfig `yaml:"storage"`
	Output  OutputConfig  `yaml:"output"`
	Assets  AssetsConfig  `yaml:"assets"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SiteConfig selects how pages are rendered.
type SiteConfig struct {
	Title            string            `yaml:"title"`
	Template         string            `yaml:"template"` // unknown names render as modern
	Theme            string            `yaml:"theme"`
	Colors           map[string]string `yaml:"colors"` // camelCase palette overrides
	Renderer         string            `yaml:"renderer"`
	Sanitize         bool              `yaml:"sanitize"`
	WrapOrderedLists bool              `yaml:"wrapOrderedLists"`
	BlogDateFormat   string            `yaml:"blogDateFormat"` // preset or token format
}

// EnhanceConfig configures the AI rewrite step.
type EnhanceConfig struct {
	Enabled           bool            `yaml:"enabled"`
	Endpoint          string          `yaml:"endpoint"`
	Model             string          `yaml:"model"`
	APIKeyEnv         string          `yaml:"apiKeyEnv"`
	Timeout           string          `yaml:"timeout"` // Go duration, per call
	Options           enhance.Options `yaml:"options"`
	Retry             RetryConfig     `yaml:"retry"`
	RequestsPerMinute int             `yaml:"requestsPerMinute"`
	Strict            bool            `yaml:"strict"`
}

// RetryConfig defines backoff for enhancement calls.
type RetryConfig struct {
	MaxRetries int    `yaml:"maxRetries"`
	Initial    string `yaml:"initial"`
	Max        string `yaml:"max"`
	Mode       string `yaml:"mode"` // fixed, linear, exponential
}

// SearchConfig tunes the search command.
type SearchConfig struct {
	MinQueryLength int `yaml:"minQueryLength"`
	MaxResults     int `yaml:"maxResults"`
	ContextLength  int `yaml:"contextLength"`
}

// PDFConfig defines print export settings.
type PDFConfig struct {
	Format          string           `yaml:"format"`
	Margins         printdoc.Margins `yaml:"margins"` // millimetres
	PrintBackground bool             `yaml:"printBackground"`
	TOC             bool             `yaml:"toc"`
	Cover           bool             `yaml:"cover"`
	Subtitle        string           `yaml:"subtitle"`
	Date            string           `yaml:"date"` // literal, "auto" or "auto:FORMAT"
}

// StorageConfig locates the project database.
type StorageConfig struct {
	Path        string `yaml:"path"`
	MaxFileSize int64  `yaml:"maxFileSize"` // bytes
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Filename string `yaml:"filename"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// MetricsConfig enables the Prometheus text dump.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Template: "modern",
			Theme:    theme.DefaultName,
			Renderer: RendererRegex,
		},
		Enhance: EnhanceConfig{
			Model:     enhance.DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   enhance.DefaultTimeout.String(),
			Options:   enhance.DefaultOptions(),
			Retry: RetryConfig{
				MaxRetries: 2,
				Initial:    "500ms",
				Max:        "8s",
				Mode:       string(retry.BackoffExponential),
			},
		},
		Search: SearchConfig{MinQueryLength: 2, MaxResults: 50, ContextLength: 150},
		PDF: PDFConfig{
			Format:          printdoc.DefaultFormat,
			Margins:         printdoc.DefaultMargins,
			PrintBackground: true,
		},
		Storage: StorageConfig{Path: "md2site.db", MaxFileSize: 10 << 20},
		Output:  OutputConfig{Filename: "documentation.html"},
	}
}

// applyDefaults fills zero fields left out of a config file.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	setString(&c.Site.Template, d.Site.Template)
	setString(&c.Site.Theme, d.Site.Theme)
	setString(&c.Site.Renderer, d.Site.Renderer)
	setString(&c.Enhance.Model, d.Enhance.Model)
	setString(&c.Enhance.APIKeyEnv, d.Enhance.APIKeyEnv)
	setString(&c.Enhance.Timeout, d.Enhance.Timeout)
	if c.Enhance.Options == (enhance.Options{}) {
		c.Enhance.Options = d.Enhance.Options
	}
	setString(&c.Enhance.Retry.Initial, d.Enhance.Retry.Initial)
	setString(&c.Enhance.Retry.Max, d.Enhance.Retry.Max)
	setString(&c.Enhance.Retry.Mode, d.Enhance.Retry.Mode)
	setInt(&c.Search.MinQueryLength, d.Search.MinQueryLength)
	setInt(&c.Search.MaxResults, d.Search.MaxResults)
	setInt(&c.Search.ContextLength, d.Search.ContextLength)
	setString(&c.PDF.Format, d.PDF.Format)
	if c.PDF.Margins.IsZero() {
		c.PDF.Margins = d.PDF.Margins
	}
	setString(&c.Storage.Path, d.Storage.Path)
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = d.Storage.MaxFileSize
	}
	setString(&c.Output.Filename, d.Output.Filename)
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// Validate checks field lengths and enumerations.
// Called by LoadConfig; available for callers that build a Config by hand.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"site.title", c.Site.Title, MaxTitleLength},
		{"site.template", c.Site.Template, MaxNameLength},
		{"site.theme", c.Site.Theme, MaxNameLength},
		{"site.renderer", c.Site.Renderer, MaxNameLength},
		{"site.blogDateFormat", c.Site.BlogDateFormat, dateutil.MaxDateFormatLength},
		{"enhance.endpoint", c.Enhance.Endpoint, MaxURLLength},
		{"enhance.model", c.Enhance.Model, MaxNameLength},
		{"enhance.apiKeyEnv", c.Enhance.APIKeyEnv, MaxEnvNameLength},
		{"enhance.timeout", c.Enhance.Timeout, MaxDurationLength},
		{"pdf.subtitle", c.PDF.Subtitle, MaxSubtitleLength},
		{"storage.path", c.Storage.Path, MaxPathLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"output.filename", c.Output.Filename, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"metrics.file", c.Metrics.File, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateEnhance(); err != nil {
		return err
	}

	if c.Search.MinQueryLength < 0 || c.Search.MaxResults < 0 || c.Search.ContextLength < 0 {
		return fmt.Errorf("%w: search: values cannot be negative", ErrInvalidValue)
	}
	if c.PDF.Format != "" {
		if _, err := printdoc.LookupPaper(c.PDF.Format); err != nil {
			return fmt.Errorf("%w: pdf.format: %v", ErrInvalidValue, err)
		}
	}
	if err := c.PDF.Margins.Validate(); err != nil {
		return fmt.Errorf("%w: pdf.margins: %v", ErrInvalidValue, err)
	}
	if _, err := c.CoverDate(time.Now()); err != nil {
		return fmt.Errorf("%w: pdf.date: %v", ErrInvalidValue, err)
	}
	if c.Storage.MaxFileSize < 0 {
		return fmt.Errorf("%w: storage.maxFileSize cannot be negative", ErrInvalidValue)
	}
	return nil
}

// CoverDate resolves pdf.date against now. Empty stays empty so the cover
// falls back to today's date.
func (c *Config) CoverDate(now time.Time) (string, error) {
	if c.PDF.Date == "" {
		return "", nil
	}
	return dateutil.ResolveDate(c.PDF.Date, now)
}

func (c *Config) validateSite() error {
	if c.Site.Theme != "" {
		p, err := theme.Lookup(c.Site.Theme)
		if err != nil {
			return fmt.Errorf("%w: site.theme: %w", ErrInvalidValue, err)
		}
		if _, err := p.WithOverrides(c.Site.Colors); err != nil {
			return fmt.Errorf("%w: site.colors: %w", ErrInvalidValue, err)
		}
	}
	switch strings.ToLower(c.Site.Renderer) {
	case "", RendererRegex, RendererGoldmark:
	default:
		return fmt.Errorf("%w: site.renderer: %q (must be %s or %s)", ErrInvalidValue, c.Site.Renderer, RendererRegex, RendererGoldmark)
	}
	if c.Site.BlogDateFormat != "" {
		if _, err := dateutil.Format(time.Time{}, c.Site.BlogDateFormat); err != nil {
			return fmt.Errorf("%w: site.blogDateFormat: %v", ErrInvalidValue, err)
		}
	}
	return nil
}

func (c *Config) validateEnhance() error {
	e := c.Enhance
	for field, value := range map[string]string{
		"enhance.timeout":       e.Timeout,
		"enhance.retry.initial": e.Retry.Initial,
		"enhance.retry.max":     e.Retry.Max,
	} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s: %q is not a duration", ErrInvalidValue, field, value)
		}
	}
	switch retry.BackoffMode(e.Retry.Mode) {
	case "", retry.BackoffFixed, retry.BackoffLinear, retry.BackoffExponential:
	default:
		return fmt.Errorf("%w: enhance.retry.mode: %q (must be fixed, linear or exponential)", ErrInvalidValue, e.Retry.Mode)
	}
	if e.Retry.MaxRetries < 0 || e.Retry.MaxRetries > 10 {
		return fmt.Errorf("%w: enhance.retry.maxRetries: must be between 0 and 10, got %d", ErrInvalidValue, e.Retry.MaxRetries)
	}
	if e.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: enhance.requestsPerMinute cannot be negative", ErrInvalidValue)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// Palette resolves the site theme with colour overrides applied.
func (c *Config) Palette() (theme.Palette, error) {
	name := c.Site.Theme
	if name == "" {
		name = theme.DefaultName
	}
	p, err := theme.Lookup(name)
	if err != nil {
		return theme.Palette{}, err
	}
	return p.WithOverrides(c.Site.Colors)
}

// RetryPolicy converts the retry section. Invalid durations were rejected
// by Validate, so parse errors fall back to the policy defaults.
func (c *Config) RetryPolicy() retry.Policy {
	r := c.Enhance.Retry
	initial, _ := time.ParseDuration(r.Initial)
	maxDelay, _ := time.ParseDuration(r.Max)
	return retry.NewPolicy(retry.BackoffMode(r.Mode), initial, maxDelay, r.MaxRetries)
}

// EnhanceTimeout returns the per-call timeout, enhance.DefaultTimeout when unset.
func (c *Config) EnhanceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Enhance.Timeout)
	if err != nil || d <= 0 {
		return enhance.DefaultTimeout
	}
	return d
}

// APIKey reads the AI service key from the configured variable.
func (c *Config) APIKey(getenv func(string) string) string {
	name := c.Enhance.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return strings.TrimSpace(getenv(name))
}

// LoadDotEnv loads KEY=value files into the process environment without
// overriding variables already set. Missing files are skipped; with no
// arguments ./.env is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("%w: %v", ErrDotEnv, err)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as NAME.yaml or NAME.yml in the current directory,
// then in the user config directory. Fields left out take DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := (yamlutil.Decoder{Strict: true}).DecodeFile(configPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath tries ./NAME.yaml, ./NAME.yml, then the same names
// under the user config directory.
func resolveConfigPath(name string) (string, error) {
	candidates := []string{name + ".yaml", name + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, AppDir, name+".yaml"),
			filepath.Join(dir, AppDir, name+".yml"),
		)
	}
	for _, p := range candidates {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
