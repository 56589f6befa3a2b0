package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-md2site/internal/config"
)

// envPrefix starts every variable read by the CLI.
const envPrefix = "MD2SITE_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath string // MD2SITE_CONFIG: config file name or path
	Template   string // MD2SITE_TEMPLATE: layout name
	Theme      string // MD2SITE_THEME: colour theme
	Renderer   string // MD2SITE_RENDERER: regex or goldmark
	OutputDir  string // MD2SITE_OUTPUT_DIR: directory for generated files
	AssetPath  string // MD2SITE_ASSET_PATH: asset override directory
	DBPath     string // MD2SITE_DB: project database path
	User       string // MD2SITE_USER: project owner
	Workers    int    // MD2SITE_WORKERS: read and enhance workers
}

// knownEnvVars lists valid MD2SITE_* variables, to catch typos.
var knownEnvVars = map[string]bool{
	"MD2SITE_CONFIG":     true,
	"MD2SITE_TEMPLATE":   true,
	"MD2SITE_THEME":      true,
	"MD2SITE_RENDERER":   true,
	"MD2SITE_OUTPUT_DIR": true,
	"MD2SITE_ASSET_PATH": true,
	"MD2SITE_DB":         true,
	"MD2SITE_USER":       true,
	"MD2SITE_WORKERS":    true,
}

// loadEnvConfig reads the MD2SITE_* variables through getenv.
// Invalid worker counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MD2SITE_CONFIG"),
		Template:   getenv("MD2SITE_TEMPLATE"),
		Theme:      getenv("MD2SITE_THEME"),
		Renderer:   getenv("MD2SITE_RENDERER"),
		OutputDir:  getenv("MD2SITE_OUTPUT_DIR"),
		AssetPath:  getenv("MD2SITE_ASSET_PATH"),
		DBPath:     getenv("MD2SITE_DB"),
		User:       getenv("MD2SITE_USER"),
	}

	if workers := getenv("MD2SITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MD2SITE_* variable.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig copies set variables over cfg.
// Precedence: CLI flags > environment > config file > defaults
// (flags are merged afterwards by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Template != "" {
		cfg.Site.Template = env.Template
	}
	if env.Theme != "" {
		cfg.Site.Theme = env.Theme
	}
	if env.Renderer != "" {
		cfg.Site.Renderer = env.Renderer
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.DBPath != "" {
		cfg.Storage.Path = env.DBPath
	}
}

// loadConfig resolves the configuration for one command: the named file
// (flag, then MD2SITE_CONFIG), else env.Config, else the defaults, with
// environment overrides applied.
func loadConfig(name string, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	switch {
	case name != "":
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	case env.Config != nil:
		clone := *env.Config
		cfg = &clone
	default:
		cfg = config.DefaultConfig()
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, envCfg, nil
}
