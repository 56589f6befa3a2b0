package md2site

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alnah/go-md2site/internal/logfields"
	"github.com/alnah/go-md2site/internal/metrics"
	"github.com/alnah/go-md2site/internal/retry"
)

// Enhancer rewrites the Markdown of one file, typically through an AI service.
type Enhancer interface {
	Enhance(ctx context.Context, markdown string) (string, error)
}

// EnhancerFunc adapts a function to Enhancer.
type EnhancerFunc func(ctx context.Context, markdown string) (string, error)

// Enhance calls f.
func (f EnhancerFunc) Enhance(ctx context.Context, markdown string) (string, error) {
	return f(ctx, markdown)
}

// enhanceAll enhances every file with at most ResolveWorkers concurrent calls.
// Results land in index slots so output order matches input order.
// Without an enhancer the original contents are returned as skipped.
func (g *Generator) enhanceAll(ctx context.Context, files []File) ([]string, []EnhancementReport, error) {
	contents := make([]string, len(files))
	reports := make([]EnhancementReport, len(files))

	if g.enhancer == nil {
		for i, f := range files {
			contents[i] = f.Content
			reports[i] = EnhancementReport{File: f.Name, Status: EnhanceSkipped}
			g.recorder.IncEnhanceResult(metrics.EnhanceSkipped)
		}
		return contents, reports, nil
	}

	workers := min(ResolveWorkers(g.cfg.workers), len(files))
	errs := make([]error, len(files))
	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				contents[idx], reports[idx], errs[idx] = g.enhanceOne(ctx, files[idx])
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}
	return contents, reports, nil
}

// enhanceOne runs the enhancer under the retry policy. A final failure keeps
// the original text unless strict mode is on. Cancellation of ctx is always
// returned as an error.
func (g *Generator) enhanceOne(ctx context.Context, f File) (string, EnhancementReport, error) {
	report := EnhancementReport{File: f.Name}
	var out string

	err := retry.Do(ctx, g.cfg.retry, func(ctx context.Context, attempt int) error {
		report.Attempts = attempt
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.enhanceTimeout)
		defer cancel()

		enhanced, err := g.enhancer.Enhance(callCtx, f.Content)
		if err != nil {
			// A per-call timeout is worth another attempt while ctx is alive.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return err
			}
			if !g.cfg.retryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		out = enhanced
		return nil
	}, func(attempt int, wait time.Duration, err error) {
		g.recorder.IncEnhanceRetry()
		g.logger.Warn("enhancement attempt failed, retrying",
			logfields.File(f.Name),
			logfields.Attempt(attempt),
			logfields.Duration(wait),
			logfields.Error(err),
		)
	})

	if err == nil {
		report.Status = EnhanceApplied
		g.recorder.IncEnhanceResult(metrics.EnhanceSuccess)
		g.logger.Debug("page enhanced", logfields.File(f.Name), logfields.Attempt(report.Attempts))
		return out, report, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", report, ctxErr
	}

	if g.cfg.strict {
		g.recorder.IncEnhanceResult(metrics.EnhanceFailed)
		return "", report, fmt.Errorf("%w: %s: %w", ErrEnhancement, f.Name, err)
	}

	report.Status = EnhanceFallback
	report.Error = err.Error()
	g.recorder.IncEnhanceResult(metrics.EnhanceFallback)
	g.logger.Warn("enhancement failed, using original content",
		logfields.File(f.Name),
		logfields.Attempt(report.Attempts),
		logfields.Error(err),
	)
	return f.Content, report, nil
}
