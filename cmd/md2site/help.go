package main

import (
	"fmt"
	"io"
)

// usagePrinters maps command names to their usage text.
var usagePrinters = map[string]func(io.Writer){
	"generate":   printGenerateUsage,
	"search":     printSearchUsage,
	"stats":      printStatsUsage,
	"themes":     printThemesUsage,
	"templates":  printTemplatesUsage,
	"project":    printProjectUsage,
	"translate":  printTranslateUsage,
	"summarize":  printSummarizeUsage,
	"headings":   printHeadingsUsage,
	"doctor":     printDoctorUsage,
	"completion": printCompletionUsage,
}

// runHelp prints general usage or the usage of one command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}
	printer, ok := usagePrinters[args[0]]
	if !ok {
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
	printer(env.Stdout)
	return nil
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Build a themed HTML documentation site from Markdown")
	fmt.Fprintln(w, "  search     Search Markdown files")
	fmt.Fprintln(w, "  stats      Show word counts and reading time")
	fmt.Fprintln(w, "  themes     List colour themes")
	fmt.Fprintln(w, "  templates  List page layouts")
	fmt.Fprintln(w, "  project    Save, load, list, delete, export and import projects")
	fmt.Fprintln(w, "  translate  Translate a Markdown file with the AI service")
	fmt.Fprintln(w, "  summarize  Summarize a Markdown file with the AI service")
	fmt.Fprintln(w, "  headings   Rewrite the headings of a Markdown file with the AI service")
	fmt.Fprintln(w, "  doctor     Check browser, API key and configuration")
	fmt.Fprintln(w, "  completion Print a shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2site help <command>' for details on a specific command.")
}

// printCommonFlags prints the flags added by addCommonFlags.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and per-page details")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site generate <files|dirs...> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build one standalone HTML file from Markdown files. Directories are")
	fmt.Fprintln(w, "expanded to their .md and .markdown files in name order.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (default: documentation.html)")
	fmt.Fprintln(w, "  -t, --template <name>     Layout: modern, minimal, technical, blog, wiki")
	fmt.Fprintln(w, "      --theme <name>        Theme: dark, light, ocean, forest, sunset")
	fmt.Fprintln(w, "      --title <s>           Document title")
	fmt.Fprintln(w, "      --renderer <name>     Markdown renderer: regex, goldmark")
	fmt.Fprintln(w, "      --sanitize            Strip unsafe HTML from pages")
	fmt.Fprintln(w, "      --asset-path <dir>    Override embedded CSS, scripts and templates")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "AI enhancement:")
	fmt.Fprintln(w, "      --enhance             Rewrite pages with the AI service first")
	fmt.Fprintln(w, "      --strict-enhance      Fail instead of keeping the original text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf <path>          Also print the site to PDF (needs Chrome)")
	fmt.Fprintln(w, "      --pdf-format <s>      Paper: a3, a4, a5, letter, legal, tabloid")
	fmt.Fprintln(w, "      --toc                 Add a table of contents")
	fmt.Fprintln(w, "      --cover               Add a cover page")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run:")
	fmt.Fprintln(w, "      --watch               Regenerate when sources change")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel read and enhance workers (0 = auto)")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics after the run")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  md2site generate docs/ -o site.html --template wiki --theme ocean")
	fmt.Fprintln(w, "  md2site generate intro.md guide.md --pdf guide.pdf --toc --cover")
}

// printSearchUsage prints usage for the search command.
func printSearchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site search <query> <files|dirs...> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rank pages by title, content and keyword matches.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -n, --max <n>             Maximum results (0 = config search.maxResults)")
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printStatsUsage prints usage for the stats command.
func printStatsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site stats <files|dirs...> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the word count of each file; --verbose adds characters and reading time.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print JSON")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printThemesUsage prints usage for the themes command.
func printThemesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site themes [--json]")
}

// printTemplatesUsage prints usage for the templates command.
func printTemplatesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site templates [--json]")
}

// printProjectUsage prints usage for the project command.
func printProjectUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site project <save|load|list|delete|export|import> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  save <files|dirs...> --name <s>   Store files with a layout and theme")
	fmt.Fprintln(w, "  load <id> [-o dir] [--html file]  Restore files, optionally build the site")
	fmt.Fprintln(w, "  list [--json]                     List your projects, newest first")
	fmt.Fprintln(w, "  delete <id>                       Delete a project")
	fmt.Fprintln(w, "  export <id> [-o file.yaml]        Write a project as YAML")
	fmt.Fprintln(w, "  import <file.yaml> [--name <s>]   Store a project exported as YAML")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --db <path>           Project database (default: storage.path)")
	fmt.Fprintln(w, "  -u, --user <s>            Owner (default: $MD2SITE_USER, then $USER)")
	fmt.Fprintln(w, "      --id <id>             save: overwrite an existing project")
	fmt.Fprintln(w, "  -t, --template <name>     save: layout stored with the project")
	fmt.Fprintln(w, "      --theme <name>        save: theme stored with the project")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printTranslateUsage prints usage for the translate command.
func printTranslateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site translate <file> --lang <code> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Translate a Markdown file, keeping its formatting. Needs OPENAI_API_KEY.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -l, --lang <code>         Target language (BCP 47, e.g. fr, es, ja)")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w, "      --languages           List suggested language codes")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printSummarizeUsage prints usage for the summarize command.
func printSummarizeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site summarize <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summarize a Markdown file. Needs OPENAI_API_KEY.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printHeadingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site headings <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrite the headings of a Markdown file to be clearer. Body text is kept.")
	fmt.Fprintln(w, "Needs OPENAI_API_KEY.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: stdout)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site doctor [--config <name>] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the configuration, the AI service key and the Chrome install used for PDF export.")
}
