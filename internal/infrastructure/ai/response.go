package ai

import (
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
)

// toCandidate turns a model reply into a candidate for the session dialect.
func toCandidate(content string, dialect domain.ShellDialect, source string) (domain.CandidateCommand, error) {
	text := extractCommand(content)
	if text == "" {
		return domain.CandidateCommand{}, errEmptyResponse
	}
	return domain.CandidateCommand{
		Text:        text,
		Dialect:     valueOrDefaultDialect(dialect),
		Explanation: extractExplanation(content),
		Source:      source,
	}, nil
}

// extractCommand attempts to extract a shell command from the reply.
// It tries multiple extraction strategies: code blocks, command prefix, raw text.
func extractCommand(content string) string {
	if code := extractCodeBlock(content); code != "" {
		return code
	}
	if cmd := extractPrefixedLine(content, "command:"); cmd != "" {
		return cmd
	}
	return strings.Trim(strings.TrimSpace(content), "`")
}

var fenceLanguages = []string{"bash", "zsh", "fish", "powershell", "pwsh", "ps1", "cmd", "bat", "batch", "console", "shell", "sh"}

// extractCodeBlock finds and extracts the first markdown code block (```...```).
func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}

	lines := strings.Split(suffix[:end], "\n")
	first := strings.ToLower(strings.TrimSpace(lines[0]))
	for _, lang := range fenceLanguages {
		if first == lang {
			lines = lines[1:]
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractPrefixedLine(content, prefix string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return strings.Trim(strings.TrimSpace(line[len(prefix):]), "`")
		}
	}
	return ""
}

func extractExplanation(content string) string {
	return extractPrefixedLine(content, "explanation:")
}
