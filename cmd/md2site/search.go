package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alnah/go-md2site/internal/search"
)

// searchFlags holds flags for the search command.
type searchFlags struct {
	common commonFlags
	max    int
}

// searchHit is one result in --json output.
type searchHit struct {
	Title     string `json:"title"`
	ID        string `json:"id"`
	Score     int    `json:"score"`
	Context   string `json:"context"`
	Highlight string `json:"highlight"`
}

// runSearch ranks the pages parsed from the inputs against a query.
func runSearch(ctx context.Context, args []string, env *Environment) error {
	f := &searchFlags{}
	fs := newFlagSet("search", env, printSearchUsage)
	fs.IntVarP(&f.max, "max", "n", 0, "maximum results (0 = config search.maxResults)")
	addCommonFlags(fs, &f.common)
	addJSONFlag(fs, &f.common)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) < 2 {
		return fmt.Errorf("%w: search needs a query and at least one input", ErrUsage)
	}
	if f.max < 0 {
		return fmt.Errorf("%w: --max must be >= 0", ErrUsage)
	}
	query := rest[0]

	cfg, _, err := loadConfig(f.common.config, env)
	if err != nil {
		return err
	}

	pages, err := parseInputs(ctx, rest[1:], cfg)
	if err != nil {
		return err
	}

	maxResults := cfg.Search.MaxResults
	if f.max > 0 {
		maxResults = f.max
	}
	index := search.NewIndex(pages, search.Options{
		MinQueryLength: cfg.Search.MinQueryLength,
		MaxResults:     maxResults,
		ContextLength:  cfg.Search.ContextLength,
	})
	results := index.Search(query)

	if f.common.json {
		hits := make([]searchHit, len(results))
		for i, r := range results {
			hits[i] = searchHit{
				Title:     r.Title,
				ID:        r.ID,
				Score:     r.Score,
				Context:   r.Context,
				Highlight: search.Highlight(r.Context, query),
			}
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(results) == 0 {
		if !f.common.quiet {
			fmt.Fprintf(env.Stdout, "No results for %q\n", query)
		}
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(env.Stdout, "%d. %s #%s (score %d)\n", i+1, r.Title, r.ID, r.Score)
		if r.Context != "" {
			fmt.Fprintf(env.Stdout, "   %s\n", r.Context)
		}
	}
	return nil
}
