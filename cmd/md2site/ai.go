package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/logfields"
	"github.com/alnah/go-md2site/internal/retry"
)

// aiService is the subset of the AI client the CLI calls.
type aiService interface {
	Enhance(ctx context.Context, markdown string, opts enhance.Options) (string, error)
	Summarize(ctx context.Context, markdown string) (string, error)
	ImproveHeadings(ctx context.Context, markdown string) (string, error)
	Translate(ctx context.Context, markdown, lang string) (string, error)
}

// Compile-time interface implementation check.
var _ aiService = (*enhance.Client)(nil)

// newAIService returns env.AI when set, otherwise a client built from cfg.
// The boolean reports whether an API key is available.
func newAIService(cfg *config.Config, env *Environment, logger *slog.Logger) (aiService, bool, error) {
	if env.AI != nil {
		return env.AI, true, nil
	}
	key := cfg.APIKey(env.Getenv)
	client, err := enhance.NewClient(enhance.Config{
		APIKey:            key,
		Endpoint:          cfg.Enhance.Endpoint,
		Model:             cfg.Enhance.Model,
		Timeout:           cfg.EnhanceTimeout(),
		RequestsPerMinute: cfg.Enhance.RequestsPerMinute,
		Logger:            logger,
	})
	if err != nil {
		return nil, false, err
	}
	return client, key != "", nil
}

// aiFlags holds flags for translate and summarize.
type aiFlags struct {
	common    commonFlags
	output    string
	lang      string
	languages bool
}

// runTranslate translates one Markdown file.
func runTranslate(ctx context.Context, args []string, env *Environment) error {
	f := &aiFlags{}
	fs := newFlagSet("translate", env, printTranslateUsage)
	fs.StringVarP(&f.lang, "lang", "l", "", "target language code (e.g. fr, es, ja)")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.BoolVar(&f.languages, "languages", false, "list suggested language codes")
	addCommonFlags(fs, &f.common)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	if f.languages {
		for _, l := range enhance.Languages() {
			fmt.Fprintf(env.Stdout, "%-4s %s (%s)\n", l.Code, l.Name, l.SelfName)
		}
		return nil
	}

	if f.lang == "" {
		return fmt.Errorf("%w: --lang is required", ErrUsage)
	}
	lang, err := enhance.ParseLanguage(f.lang)
	if err != nil {
		return err
	}

	return runAIFileCommand(ctx, rest, f, env, "translate", func(ctx context.Context, svc aiService, md string) (string, error) {
		return svc.Translate(ctx, md, lang.Code)
	})
}

// runSummarize summarizes one Markdown file.
func runSummarize(ctx context.Context, args []string, env *Environment) error {
	f := &aiFlags{}
	fs := newFlagSet("summarize", env, printSummarizeUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	addCommonFlags(fs, &f.common)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	return runAIFileCommand(ctx, rest, f, env, "summarize", func(ctx context.Context, svc aiService, md string) (string, error) {
		return svc.Summarize(ctx, md)
	})
}

// runHeadings rewrites the headings of one Markdown file.
func runHeadings(ctx context.Context, args []string, env *Environment) error {
	f := &aiFlags{}
	fs := newFlagSet("headings", env, printHeadingsUsage)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	addCommonFlags(fs, &f.common)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	return runAIFileCommand(ctx, rest, f, env, "headings", func(ctx context.Context, svc aiService, md string) (string, error) {
		return svc.ImproveHeadings(ctx, md)
	})
}

// runAIFileCommand reads the single file argument, calls op with the
// configured retry policy and writes the reply to --output or stdout.
func runAIFileCommand(
	ctx context.Context,
	rest []string,
	f *aiFlags,
	env *Environment,
	name string,
	op func(context.Context, aiService, string) (string, error),
) error {
	if len(rest) != 1 {
		return fmt.Errorf("%w: %s takes exactly one file", ErrUsage, name)
	}
	path := rest[0]
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: %s", fileutil.ErrNotMarkdown, path)
	}

	cfg, _, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}
	logger := newLogger(env.Stderr, f.common)

	svc, hasKey, err := newAIService(cfg, env, logger)
	if err != nil {
		return err
	}
	if !hasKey {
		return fmt.Errorf("%w (set %s)", enhance.ErrNotConfigured, cfg.Enhance.APIKeyEnv)
	}

	content, err := readInput(path, cfg.Storage.MaxFileSize)
	if err != nil {
		return err
	}

	var out string
	err = retry.Do(ctx, cfg.RetryPolicy(), func(ctx context.Context, _ int) error {
		var err error
		out, err = op(ctx, svc, content)
		if err != nil && !enhance.IsRetryable(err) {
			return retry.Permanent(err)
		}
		return err
	}, func(attempt int, wait time.Duration, err error) {
		logger.Warn("AI request failed, retrying",
			logfields.File(filepath.Base(path)),
			logfields.Attempt(attempt),
			slog.Duration("wait", wait),
			logfields.Error(err),
		)
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", name, path, err)
	}

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if f.output == "" {
		fmt.Fprint(env.Stdout, out)
		return nil
	}
	if err := fileutil.WriteOutput(f.output, []byte(out)); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Wrote %s\n", f.output)
	}
	return nil
}
