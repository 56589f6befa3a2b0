package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2site/internal/enhance"
	"github.com/alnah/go-md2site/internal/layout"
	"github.com/alnah/go-md2site/internal/printdoc"
	"github.com/alnah/go-md2site/internal/theme"
)

// Shell is a shell with a completion script.
type Shell string

// Supported shells.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// flagKind selects how a flag value is completed.
type flagKind int

const (
	flagPlain flagKind = iota
	flagBool
	flagEnum
	flagFile
	flagDir
)

// flagDef describes one flag for completion.
type flagDef struct {
	Long   string
	Short  string
	Kind   flagKind
	Desc   string
	Values []string
}

// commandDef describes one command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	Args       []string // values for the first argument, e.g. project subcommands
	TakesFiles bool
}

// valueHints maps flag names to completion hints. Names and descriptions
// come from the FlagSets themselves.
func valueHints() map[string]flagDef {
	layouts := make([]string, 0, 5)
	for _, l := range layout.Layouts() {
		layouts = append(layouts, l.Name)
	}
	langs := make([]string, 0, 8)
	for _, l := range enhance.Languages() {
		langs = append(langs, l.Code)
	}

	return map[string]flagDef{
		"template":     {Kind: flagEnum, Values: layouts},
		"theme":        {Kind: flagEnum, Values: theme.Names()},
		"renderer":     {Kind: flagEnum, Values: []string{"regex", "goldmark"}},
		"pdf-format":   {Kind: flagEnum, Values: printdoc.Formats()},
		"lang":         {Kind: flagEnum, Values: langs},
		"config":       {Kind: flagFile},
		"output":       {Kind: flagFile},
		"pdf":          {Kind: flagFile},
		"metrics-file": {Kind: flagFile},
		"db":           {Kind: flagFile},
		"html":         {Kind: flagFile},
		"asset-path":   {Kind: flagDir},
	}
}

// flagDefs reads the flags registered on fs, sorted by name.
func flagDefs(fs *flag.FlagSet) []flagDef {
	hints := valueHints()
	var defs []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		d := flagDef{Long: f.Name, Short: f.Shorthand, Desc: f.Usage}
		if f.Value.Type() == "bool" {
			d.Kind = flagBool
		}
		if h, ok := hints[f.Name]; ok {
			d.Kind, d.Values = h.Kind, h.Values
		}
		defs = append(defs, d)
	})
	return defs
}

// commandFlags builds a throwaway FlagSet with register applied.
func commandFlags(register func(fs *flag.FlagSet)) []flagDef {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	register(fs)
	return flagDefs(fs)
}

// commands returns the completion registry.
func commands() []commandDef {
	common := func(fs *flag.FlagSet) { addCommonFlags(fs, &commonFlags{}) }
	withJSON := func(fs *flag.FlagSet) {
		c := &commonFlags{}
		addCommonFlags(fs, c)
		addJSONFlag(fs, c)
	}
	aiFile := func(fs *flag.FlagSet) {
		fs.StringP("output", "o", "", "output file")
		common(fs)
	}

	helpTopics := make([]string, 0, len(usagePrinters))
	for name := range usagePrinters {
		helpTopics = append(helpTopics, name)
	}
	sort.Strings(helpTopics)

	return []commandDef{
		{
			Name:       "generate",
			Desc:       "Build a themed HTML documentation site",
			Flags:      commandFlags(func(fs *flag.FlagSet) { addGenerateFlags(fs, &generateFlags{}) }),
			TakesFiles: true,
		},
		{
			Name: "search",
			Desc: "Search Markdown files",
			Flags: commandFlags(func(fs *flag.FlagSet) {
				fs.IntP("max", "n", 0, "maximum results")
				withJSON(fs)
			}),
			TakesFiles: true,
		},
		{Name: "stats", Desc: "Show word counts and reading time", Flags: commandFlags(withJSON), TakesFiles: true},
		{Name: "themes", Desc: "List colour themes", Flags: commandFlags(func(fs *flag.FlagSet) { addJSONFlag(fs, &commonFlags{}) })},
		{Name: "templates", Desc: "List page layouts", Flags: commandFlags(func(fs *flag.FlagSet) { addJSONFlag(fs, &commonFlags{}) })},
		{
			Name: "project",
			Desc: "Manage stored projects",
			Flags: commandFlags(func(fs *flag.FlagSet) {
				fs.String("db", "", "project database")
				fs.StringP("user", "u", "", "project owner")
				withJSON(fs)
			}),
			Args:       []string{"save", "load", "list", "delete", "export", "import"},
			TakesFiles: true,
		},
		{
			Name: "translate",
			Desc: "Translate a Markdown file",
			Flags: commandFlags(func(fs *flag.FlagSet) {
				fs.StringP("lang", "l", "", "target language code")
				fs.Bool("languages", false, "list suggested language codes")
				aiFile(fs)
			}),
			TakesFiles: true,
		},
		{Name: "summarize", Desc: "Summarize a Markdown file", Flags: commandFlags(aiFile), TakesFiles: true},
		{Name: "headings", Desc: "Rewrite the headings of a Markdown file", Flags: commandFlags(aiFile), TakesFiles: true},
		{
			Name: "doctor",
			Desc: "Check browser, API key and configuration",
			Flags: commandFlags(func(fs *flag.FlagSet) {
				c := &commonFlags{}
				fs.StringVarP(&c.config, "config", "c", "", "config file name or path")
				addJSONFlag(fs, c)
			}),
		},
		{Name: "completion", Desc: "Print a shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: helpTopics},
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := commands()
	switch shell {
	case ShellBash:
		return writeBash(w, cmds)
	case ShellZsh:
		return writeZsh(w, cmds)
	case ShellFish:
		return writeFish(w, cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func commandNames(cmds []commandDef) string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func writeBash(w io.Writer, cmds []commandDef) error {
	var sb strings.Builder
	sb.WriteString("# bash completion for md2site\n")
	sb.WriteString("_md2site_completions() {\n")
	sb.WriteString("    local cur prev cmd\n")
	sb.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	sb.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	sb.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	sb.WriteString("    if [[ ${COMP_CWORD} -eq 1 ]]; then\n")
	fmt.Fprintf(&sb, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", commandNames(cmds))
	sb.WriteString("        return\n    fi\n\n")
	sb.WriteString("    case \"${cmd}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&sb, "    %s)\n", c.Name)
		sb.WriteString("        case \"${prev}\" in\n")
		var words []string
		for _, f := range c.Flags {
			names := "--" + f.Long
			words = append(words, "--"+f.Long)
			if f.Short != "" {
				names += "|-" + f.Short
				words = append(words, "-"+f.Short)
			}
			switch f.Kind {
			case flagEnum:
				fmt.Fprintf(&sb, "        %s) COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\")); return ;;\n", names, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(&sb, "        %s) COMPREPLY=($(compgen -f -- \"${cur}\")); return ;;\n", names)
			case flagDir:
				fmt.Fprintf(&sb, "        %s) COMPREPLY=($(compgen -d -- \"${cur}\")); return ;;\n", names)
			case flagPlain:
				fmt.Fprintf(&sb, "        %s) return ;;\n", names)
			}
		}
		sb.WriteString("        esac\n")
		if len(words) > 0 {
			sb.WriteString("        if [[ \"${cur}\" == -* ]]; then\n")
			fmt.Fprintf(&sb, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(words, " "))
			sb.WriteString("            return\n        fi\n")
		}
		if len(c.Args) > 0 {
			sb.WriteString("        if [[ ${COMP_CWORD} -eq 2 ]]; then\n")
			fmt.Fprintf(&sb, "            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(c.Args, " "))
			sb.WriteString("            return\n        fi\n")
		}
		if c.TakesFiles {
			sb.WriteString("        COMPREPLY=($(compgen -f -- \"${cur}\"))\n")
		}
		sb.WriteString("        ;;\n")
	}

	sb.WriteString("    esac\n}\n\n")
	sb.WriteString("complete -o filenames -F _md2site_completions md2site\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// zshEscape makes s safe inside a single-quoted _arguments entry.
func zshEscape(s string) string {
	return strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`).Replace(s)
}

func writeZsh(w io.Writer, cmds []commandDef) error {
	var sb strings.Builder
	sb.WriteString("#compdef md2site\n\n")
	sb.WriteString("_md2site() {\n")
	sb.WriteString("    local -a commands\n")
	sb.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&sb, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	sb.WriteString("    )\n\n")
	sb.WriteString("    if (( CURRENT == 2 )); then\n")
	sb.WriteString("        _describe 'command' commands\n")
	sb.WriteString("        return\n    fi\n\n")
	sb.WriteString("    case \"$words[2]\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&sb, "    %s)\n", c.Name)
		sb.WriteString("        _arguments \\\n")
		for _, f := range c.Flags {
			entry := "'--" + f.Long + "[" + zshEscape(f.Desc) + "]"
			if f.Short != "" {
				entry = "'(-" + f.Short + " --" + f.Long + ")'{-" + f.Short + ",--" + f.Long + "}'[" + zshEscape(f.Desc) + "]"
			}
			switch f.Kind {
			case flagEnum:
				entry += ":value:(" + strings.Join(f.Values, " ") + ")"
			case flagFile:
				entry += ":file:_files"
			case flagDir:
				entry += ":directory:_files -/"
			case flagPlain:
				entry += ":value: "
			}
			fmt.Fprintf(&sb, "            %s' \\\n", entry)
		}
		switch {
		case len(c.Args) > 0 && c.TakesFiles:
			fmt.Fprintf(&sb, "            '1:argument:(%s)' \\\n", strings.Join(c.Args, " "))
			sb.WriteString("            '*:file:_files'\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&sb, "            '1:argument:(%s)'\n", strings.Join(c.Args, " "))
		case c.TakesFiles:
			sb.WriteString("            '*:file:_files'\n")
		default:
			sb.WriteString("            '*: :'\n")
		}
		sb.WriteString("        ;;\n")
	}

	sb.WriteString("    esac\n}\n\n")
	sb.WriteString("_md2site \"$@\"\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// fishEscape makes s safe inside a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

func writeFish(w io.Writer, cmds []commandDef) error {
	var sb strings.Builder
	sb.WriteString("# fish completion for md2site\n\n")
	sb.WriteString("function __fish_md2site_needs_command\n")
	sb.WriteString("    set -l cmd (commandline -opc)\n")
	sb.WriteString("    test (count $cmd) -eq 1\n")
	sb.WriteString("end\n\n")
	sb.WriteString("function __fish_md2site_using_command\n")
	sb.WriteString("    set -l cmd (commandline -opc)\n")
	sb.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	sb.WriteString("end\n\n")
	sb.WriteString("complete -c md2site -f\n")

	for _, c := range cmds {
		fmt.Fprintf(&sb, "complete -c md2site -n __fish_md2site_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_md2site_using_command %s'", c.Name)
		sb.WriteString("\n")
		for _, f := range c.Flags {
			line := fmt.Sprintf("complete -c md2site -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				line += " -s " + f.Short
			}
			switch f.Kind {
			case flagEnum:
				line += fmt.Sprintf(" -x -a '%s'", strings.Join(f.Values, " "))
			case flagFile:
				line += " -r -F"
			case flagDir:
				line += " -x -a '(__fish_complete_directories)'"
			case flagPlain:
				line += " -x"
			}
			fmt.Fprintf(&sb, "%s -d '%s'\n", line, fishEscape(f.Desc))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&sb, "complete -c md2site -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
		if c.TakesFiles {
			fmt.Fprintf(&sb, "complete -c md2site -n %s -F\n", cond)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print a completion script for bash, zsh or fish.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w, "  Bash:  eval \"$(md2site completion bash)\"          # in ~/.bashrc")
	fmt.Fprintln(w, "  Zsh:   eval \"$(md2site completion zsh)\"           # in ~/.zshrc, before compinit")
	fmt.Fprintln(w, "  Fish:  md2site completion fish > ~/.config/fish/completions/md2site.fish")
}
