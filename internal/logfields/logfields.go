// Package logfields holds canonical slog attribute keys and helpers.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyFile       = "file"
	KeyFiles      = "files"
	KeyTemplate   = "template"
	KeyTheme      = "theme"
	KeyRenderer   = "renderer"
	KeyStage      = "stage"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyOutput     = "output"
	KeyProjectID  = "project_id"
	KeyUserID     = "user_id"
	KeyModel      = "model"
	KeyStatus     = "status"
	KeyError      = "error"
)

func File(name string) slog.Attr     { return slog.String(KeyFile, name) }
func Files(n int) slog.Attr          { return slog.Int(KeyFiles, n) }
func Template(name string) slog.Attr { return slog.String(KeyTemplate, name) }
func Theme(name string) slog.Attr    { return slog.String(KeyTheme, name) }
func Renderer(name string) slog.Attr { return slog.String(KeyRenderer, name) }
func Stage(name string) slog.Attr    { return slog.String(KeyStage, name) }
func Attempt(n int) slog.Attr        { return slog.Int(KeyAttempt, n) }
func Output(path string) slog.Attr   { return slog.String(KeyOutput, path) }
func ProjectID(id string) slog.Attr  { return slog.String(KeyProjectID, id) }
func UserID(id string) slog.Attr     { return slog.String(KeyUserID, id) }
func Model(name string) slog.Attr    { return slog.String(KeyModel, name) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }

// Duration reports d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
