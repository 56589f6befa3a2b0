package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	md2site "github.com/alnah/go-md2site"
	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/theme"
)

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, md2site.ErrBrowserConnect):
		return hints.ForBrowserConnect(env.Getenv)
	case errors.Is(err, enhance.ErrNotConfigured):
		return hints.ForAPIKey(config.DefaultAPIKeyEnv)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if dir, derr := os.UserConfigDir(); derr == nil {
			searched = append(searched, filepath.Join(dir, config.AppDir, "md2site.yaml"))
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, fileutil.ErrNotMarkdown), errors.Is(err, md2site.ErrInvalidFileType):
		return hints.ForNotMarkdown()
	case errors.Is(err, md2site.ErrUnknownTheme), errors.Is(err, theme.ErrUnknownTheme):
		return hints.ForUnknownName(theme.Names())
	case errors.Is(err, md2site.ErrUnknownRenderer):
		return hints.ForUnknownName([]string{md2site.RendererRegex, md2site.RendererGoldmark})
	case errors.Is(err, enhance.ErrUnsupportedLanguage):
		var codes []string
		for _, l := range enhance.Languages() {
			codes = append(codes, l.Code)
		}
		return hints.ForUnknownName(codes)
	}
	return ""
}
