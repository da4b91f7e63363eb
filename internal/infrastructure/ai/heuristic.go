package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/dialect"
	"github.com/doeshing/aiterm/internal/ports"
)

// HeuristicSource names candidates produced offline.
const HeuristicSource = "heuristic"

var errNoPattern = errors.New("no offline pattern matches the request")

// HeuristicGenerator answers common requests from a pattern table without
// any network access. Commands are spelled for the session dialect through
// dialect.Literalize.
type HeuristicGenerator struct {
	name string
}

var _ ports.Generator = (*HeuristicGenerator)(nil)

// NewHeuristicGenerator builds the offline generator.
func NewHeuristicGenerator(name string) *HeuristicGenerator {
	return &HeuristicGenerator{name: valueOrDefault(name, HeuristicSource)}
}

func (g *HeuristicGenerator) Name() string {
	return g.name
}

func (g *HeuristicGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (domain.CandidateCommand, error) {
	if err := ctx.Err(); err != nil {
		return domain.CandidateCommand{}, err
	}
	prompt := strings.TrimSpace(req.Prompt)
	d := valueOrDefaultDialect(req.Env.Dialect)

	if pkg, ok := packageInstall(prompt); ok {
		return domain.CandidateCommand{
			Text:        installCommand(pkg, req.Env.PythonEnv),
			Dialect:     d,
			Explanation: fmt.Sprintf("Install Python package: %s", pkg),
			Source:      HeuristicSource,
		}, nil
	}

	for _, p := range heuristicPatterns {
		match := p.re.FindStringSubmatch(prompt)
		if match == nil {
			continue
		}
		text, err := p.build(d, match[1:])
		if err != nil {
			continue
		}
		return domain.CandidateCommand{
			Text:        text,
			Dialect:     d,
			Explanation: p.explain,
			Source:      HeuristicSource,
		}, nil
	}
	return domain.CandidateCommand{}, &domain.GenerationUnavailableError{Provider: g.name, Err: errNoPattern}
}

type heuristicPattern struct {
	re      *regexp.Regexp
	build   func(domain.ShellDialect, []string) (string, error)
	explain string
}

func pattern(expr string, explain string, build func(domain.ShellDialect, []string) (string, error)) heuristicPattern {
	return heuristicPattern{re: regexp.MustCompile(`(?i)^(?:please\s+)?` + expr + `\s*[.!?]?$`), build: build, explain: explain}
}

// literal spells an operation and appends the quoted arguments.
func literal(op dialect.Operation) func(domain.ShellDialect, []string) (string, error) {
	return func(d domain.ShellDialect, args []string) (string, error) {
		text, err := dialect.Literalize(op, d)
		if err != nil {
			return "", err
		}
		for _, arg := range args {
			text += " " + quoteArg(strings.TrimSpace(arg), d)
		}
		return text, nil
	}
}

// perDialect formats one template per dialect family with the quoted arguments.
func perDialect(posix, powershell, cmd string) func(domain.ShellDialect, []string) (string, error) {
	return func(d domain.ShellDialect, args []string) (string, error) {
		tmpl := posix
		switch d {
		case domain.DialectPowerShell:
			tmpl = powershell
		case domain.DialectCMD:
			tmpl = cmd
		}
		quoted := make([]interface{}, 0, len(args))
		for _, arg := range args {
			quoted = append(quoted, quoteArg(strings.TrimSpace(arg), d))
		}
		return fmt.Sprintf(tmpl, quoted...), nil
	}
}

func same(tmpl string) func(domain.ShellDialect, []string) (string, error) {
	return perDialect(tmpl, tmpl, tmpl)
}

// Patterns with operands come before the bare ones so that "create file x"
// is not answered with a bare "touch".
var heuristicPatterns = []heuristicPattern{
	pattern(`create (?:a )?(?:new )?file (?:named |called )?(.+)`, "Create an empty file", literal(dialect.OpCreateFile)),
	pattern(`(?:make|create) (?:a )?(?:new )?(?:directory|folder) (?:named |called )?(.+)`, "Create a directory", literal(dialect.OpMakeDirectory)),
	pattern(`(?:delete|remove) (?:the )?file (.+)`, "Delete a file", literal(dialect.OpRemoveFile)),
	pattern(`(?:delete|remove) (?:the )?(?:directory|folder) (.+)`, "Delete a directory and its contents", literal(dialect.OpRemoveRecursive)),
	pattern(`copy (.+) to (.+)`, "Copy a file", literal(dialect.OpCopy)),
	pattern(`(?:move|rename) (.+) to (.+)`, "Move or rename a file", literal(dialect.OpMove)),
	pattern(`(?:show|print|display) (?:me )?(?:the )?contents? of (.+)`, "Show a file's contents", literal(dialect.OpShowFile)),
	pattern(`search (?:for )?(.+?) in (.+)`, "Search files for text", literal(dialect.OpSearchText)),
	pattern(`kill process (?:with )?(?:pid |id )?(\d+)`, "Stop a process", literal(dialect.OpKillProcess)),
	pattern(`ping (.+)`, "Check that a host responds",
		perDialect("ping -c 4 %s", "Test-Connection -Count 4 %s", "ping -n 4 %s")),
	pattern(`check (?:the )?port (\d+)`, "Show connections on a port",
		perDialect("netstat -an | grep %s", "Get-NetTCPConnection -LocalPort %s", "netstat -an | findstr %s")),
	pattern(`download (?:from )?(.+)`, "Download a file", literal(dialect.OpDownload)),

	pattern(`show (?:me )?(?:the )?current (?:working )?directory`, "Show the current directory", literal(dialect.OpShowDirectory)),
	pattern(`list (?:all )?(?:the )?files?(?: here)?`, "List files in the current directory", literal(dialect.OpListFiles)),
	pattern(`clear (?:the )?(?:terminal|screen)`, "Clear the screen", literal(dialect.OpClearScreen)),
	pattern(`(?:show|list) (?:all )?(?:running )?processes`, "List running processes", literal(dialect.OpListProcesses)),
	pattern(`(?:show )?(?:disk usage|disk space|free space)`, "Show disk usage", literal(dialect.OpDiskUsage)),
	pattern(`(?:show )?system info(?:rmation)?`, "Show system information", literal(dialect.OpSystemInfo)),

	pattern(`git status`, "Show working tree status", same("git status")),
	pattern(`git add (?:all|everything)`, "Stage all changes", same("git add .")),
	pattern(`git commit (?:with message )?(.+)`, "Commit staged changes", same("git commit -m %s")),
	pattern(`git push`, "Push the current branch", same("git push")),
	pattern(`git pull`, "Pull the current branch", same("git pull")),
}

var knownPythonPackages = []string{
	"pandas", "numpy", "requests", "flask", "django",
	"tensorflow", "torch", "scikit-learn", "matplotlib",
	"pytest", "black", "mypy", "ruff", "poetry",
	"fastapi", "streamlit", "gradio", "jupyterlab",
	"google-generativeai", "openai", "anthropic",
	"langchain", "transformers", "pillow", "opencv-python",
}

var knownPackagePatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(knownPythonPackages))
	for _, pkg := range knownPythonPackages {
		out = append(out, regexp.MustCompile(`(?i)(?:^|[^a-z0-9-])`+regexp.QuoteMeta(pkg)+`(?:$|[^a-z0-9-])`))
	}
	return out
}()

var (
	installWords = regexp.MustCompile(`(?i)\b(?:install|add|get|setup|pip|conda)\b`)
	packageWords = regexp.MustCompile(`(?i)\b(?:package|module|library|dependency)\b`)
	packageName  = regexp.MustCompile(`(?i)\b(?:install|add|get|setup)\s+(?:(?:the|a|an|python|package|module|library|dependency)\s+)*([a-z0-9][a-z0-9_.\-]*)`)
)

// packageInstall recognizes "install <pkg>" requests for Python packages.
func packageInstall(prompt string) (string, bool) {
	if !installWords.MatchString(prompt) {
		return "", false
	}
	for i, re := range knownPackagePatterns {
		if re.MatchString(prompt) {
			return knownPythonPackages[i], true
		}
	}
	if !packageWords.MatchString(prompt) {
		return "", false
	}
	if m := packageName.FindStringSubmatch(prompt); m != nil {
		return strings.ToLower(m[1]), true
	}
	return "", false
}

func installCommand(pkg string, env domain.PythonEnvKind) string {
	switch env {
	case domain.PythonEnvConda:
		return "conda install -y " + pkg
	case domain.PythonEnvPoetry:
		return "poetry add " + pkg
	case domain.PythonEnvPipenv:
		return "pipenv install " + pkg
	default:
		return "pip install " + pkg
	}
}

var (
	plainArg        = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,~-]+$`)
	plainWindowsArg = regexp.MustCompile(`^[A-Za-z0-9_./:@%+=,~\\-]+$`)
)

// quoteArg quotes an operand for the dialect when it has spaces or metacharacters.
func quoteArg(arg string, d domain.ShellDialect) string {
	if arg == "" || plainArg.MatchString(arg) || (d.IsWindows() && plainWindowsArg.MatchString(arg)) {
		return arg
	}
	switch d {
	case domain.DialectCMD:
		return `"` + strings.ReplaceAll(arg, `"`, `""`) + `"`
	case domain.DialectPowerShell:
		return "'" + strings.ReplaceAll(arg, "'", "''") + "'"
	case domain.DialectFish:
		return "'" + strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(arg) + "'"
	default:
		return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
}
