package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alnah/go-md2site/internal/pipeline"
)

// pageReport is one page in stats output.
type pageReport struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	pipeline.Stats
}

// runStats prints word, character and reading-time counts per input file.
func runStats(ctx context.Context, args []string, env *Environment) error {
	var common commonFlags
	fs := newFlagSet("stats", env, printStatsUsage)
	addCommonFlags(fs, &common)
	addJSONFlag(fs, &common)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig(common.config, env)
	if err != nil {
		return err
	}
	pages, err := parseInputs(ctx, rest, cfg)
	if err != nil {
		return err
	}

	reports := make([]pageReport, len(pages))
	var total pipeline.Stats
	for i, p := range pages {
		s := pipeline.PageStats(p)
		reports[i] = pageReport{Source: p.Source, Title: p.Title, Stats: s}
		total.Words += s.Words
		total.Chars += s.Chars
		total.ReadingMinutes += s.ReadingMinutes
	}

	if common.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, r := range reports {
		fmt.Fprintf(env.Stdout, "%s: %d words", r.Source, r.Words)
		if common.verbose {
			fmt.Fprintf(env.Stdout, ", %d chars, %d min read", r.Chars, r.ReadingMinutes)
		}
		fmt.Fprintln(env.Stdout)
	}
	if len(reports) > 1 && !common.quiet {
		fmt.Fprintf(env.Stdout, "total: %d words, %d min read\n", total.Words, total.ReadingMinutes)
	}
	return nil
}
