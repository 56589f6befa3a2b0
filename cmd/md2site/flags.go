package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	flag "github.com/spf13/pflag"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrDoctorFailed       = errors.New("environment check failed")
	ErrUnsupportedShell   = errors.New("unsupported shell")
	ErrProjectDocument    = errors.New("invalid project document")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	json    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and per-page details")
}

// addJSONFlag adds --json for commands with machine-readable output.
func addJSONFlag(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVar(&f.json, "json", false, "print JSON")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting and
// prints usage to env.Stderr.
func newFlagSet(name string, env *Environment, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { usage(env.Stderr) }
	return fs
}

// parseFlags parses args, wrapping parse failures in ErrUsage.
// flag.ErrHelp is returned as is.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// validateWorkers rejects negative worker counts. Zero means auto.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkerCount, n)
	}
	return nil
}

// newLogger builds the stderr logger: warnings by default, debug with
// --verbose, errors only with --quiet.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
