package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-md2site/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if slices.Contains(os.Args, "--verbose") || slices.Contains(os.Args, "-v") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	os.Exit(run(os.Args, DefaultEnv()))
}

// run executes the command named in args[1] and returns the process exit code.
func run(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	if env.Environ != nil {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	err := dispatch(ctx, args[1], args[2:], env)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		if hint := hintFor(err, env); hint != "" {
			fmt.Fprintln(env.Stderr, strings.TrimPrefix(hint, "\n"))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// dispatch routes a command name to its handler.
func dispatch(ctx context.Context, cmd string, args []string, env *Environment) error {
	switch cmd {
	case "generate", "gen":
		return runGenerate(ctx, args, env)
	case "search":
		return runSearch(ctx, args, env)
	case "stats":
		return runStats(ctx, args, env)
	case "themes":
		return runThemes(args, env)
	case "templates", "layouts":
		return runTemplates(args, env)
	case "project":
		return runProject(ctx, args, env)
	case "translate":
		return runTranslate(ctx, args, env)
	case "summarize":
		return runSummarize(ctx, args, env)
	case "headings":
		return runHeadings(ctx, args, env)
	case "completion":
		return runCompletion(args, env)
	case "doctor":
		return runDoctor(args, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2site %s\n", Version)
		return nil
	case "help", "-h", "--help":
		return runHelp(args, env)
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}
