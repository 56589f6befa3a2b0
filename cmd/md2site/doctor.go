package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-md2site/internal/assets"
	"github.com/alnah/go-md2site/internal/hints"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	AI       aiInfo     `json:"ai"`
	Config   configInfo `json:"config"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results. The browser is only
// needed for PDF export, so a missing one is a warning.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// aiInfo reports whether enhancement can reach the AI service.
type aiInfo struct {
	KeyEnv    string `json:"key_env"`
	KeyFound  bool   `json:"key_found"`
	Model     string `json:"model"`
	Endpoint  string `json:"endpoint,omitempty"`
	Enhancing bool   `json:"enhance_enabled"`
}

// configInfo reports the configuration source and where assets load from.
type configInfo struct {
	Source string `json:"source"`
	Valid  bool   `json:"valid"`
	Assets string `json:"assets,omitempty"` // "embedded" or the custom directory
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// lookBrowser locates Chrome. Replaced in tests.
var lookBrowser = launcher.LookPath

// runDoctor checks the browser, the AI service key, the configuration and
// the temp directory. It fails with ErrDoctorFailed when a check errors.
func runDoctor(args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("doctor", env, printDoctorUsage)
	fs.StringVarP(&common.config, "config", "c", "", "config file name or path")
	addJSONFlag(fs, &common)
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	result := diagnose(common.config, env)

	if common.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return fmt.Errorf("%w: %d problem(s)", ErrDoctorFailed, len(result.Errors))
	}
	return nil
}

// diagnose performs all checks.
func diagnose(configName string, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkConfig(result, configName, env)
	checkChrome(result)
	checkEnvironment(result, env.Getenv)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkConfig loads the configuration the other commands would use and
// reports the AI service settings from it.
func checkConfig(result *doctorResult, name string, env *Environment) {
	result.Config.Source = "defaults"
	if name == "" {
		name = env.Getenv("MD2SITE_CONFIG")
	}
	if name != "" {
		result.Config.Source = name
	}

	cfg, _, err := loadConfig(name, env)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Config.Valid = true
	checkAssets(result, cfg.Assets.BasePath)

	result.AI = aiInfo{
		KeyEnv:    cfg.Enhance.APIKeyEnv,
		KeyFound:  cfg.APIKey(env.Getenv) != "",
		Model:     cfg.Enhance.Model,
		Endpoint:  cfg.Enhance.Endpoint,
		Enhancing: cfg.Enhance.Enabled,
	}
	if !result.AI.KeyFound {
		msg := fmt.Sprintf("%s not set; --enhance, translate and summarize are unavailable", cfg.Enhance.APIKeyEnv)
		if cfg.Enhance.Enabled && cfg.Enhance.Strict {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}
}

// checkAssets reports whether a custom asset directory is in use.
// Assets missing from it fall back to the embedded ones.
func checkAssets(result *doctorResult, basePath string) {
	r, err := assets.NewAssetResolver(basePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("assets.basePath: %v", err))
		return
	}
	result.Config.Assets = "embedded"
	if r.HasCustomLoader() {
		result.Config.Assets = basePath
	}
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = lookBrowser()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; --pdf is unavailable. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s; --pdf is unavailable", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output()
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container = hints.IsInContainer() ||
		getenv("container") != "" ||
		getenv("KUBERNETES_SERVICE_HOST") != ""

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 for --pdf")
	}
}

// checkSystem verifies the temp directory used for PDF export is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	f, err := os.CreateTemp(tmpDir, "md2site-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2site doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", r.Config.Source)
	}
	if r.Config.Assets != "" {
		fmt.Fprintf(w, "  [OK] Assets: %s\n", r.Config.Assets)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "AI service")
	if r.AI.KeyFound {
		fmt.Fprintf(w, "  [OK] %s: set\n", r.AI.KeyEnv)
	} else if r.AI.KeyEnv != "" {
		fmt.Fprintf(w, "  [WARN] %s: not set\n", r.AI.KeyEnv)
	}
	if r.AI.Model != "" {
		fmt.Fprintf(w, "  [OK] Model: %s\n", r.AI.Model)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium (PDF export)")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.System.TempWritable {
		fmt.Fprintf(w, "  [OK] Temp directory: %s\n", filepath.Clean(os.TempDir()))
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
