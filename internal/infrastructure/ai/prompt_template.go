package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// renderPromptMessages expands model prompt templates with environment data and ensures a user message exists.
//
// Template variables:
//   - {{.Prompt}}: the user's request
//   - {{.Context}}: a multi-line environment summary
//   - {{.Shell}}, {{.OS}}, {{.WorkingDir}}, {{.User}}, {{.Admin}}
//   - {{.PythonEnv}}, {{.PythonEnvName}}, {{.PackageManager}}
func renderPromptMessages(model domain.ModelDefinition, req ports.GenerationRequest) ([]domain.PromptMessage, error) {
	data := buildTemplateData(req)
	messages := model.Prompt
	if len(messages) == 0 {
		messages = defaultTemplateMessages()
	}

	rendered := make([]domain.PromptMessage, 0, len(messages))
	for _, msg := range messages {
		content, err := executeTemplate(msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, domain.PromptMessage{
			Role:    strings.ToLower(msg.Role),
			Content: strings.TrimSpace(content),
		})
	}

	if !hasUserMessage(rendered) {
		rendered = append(rendered, domain.PromptMessage{
			Role:    "user",
			Content: data.Prompt,
		})
	}

	return rendered, nil
}

type templateData struct {
	Prompt         string
	Context        string
	Shell          string
	OS             string
	WorkingDir     string
	User           string
	Admin          bool
	PythonEnv      string
	PythonEnvName  string
	PackageManager string
}

func buildTemplateData(req ports.GenerationRequest) templateData {
	env := req.Env
	data := templateData{
		Prompt:         strings.TrimSpace(req.Prompt),
		Shell:          string(valueOrDefaultDialect(env.Dialect)),
		OS:             env.OS,
		WorkingDir:     env.WorkingDir,
		User:           env.User,
		Admin:          env.IsAdmin,
		PackageManager: packageManager(env.PythonEnv),
	}
	if env.InVirtualEnv() {
		data.PythonEnv = string(env.PythonEnv)
		data.PythonEnvName = env.PythonEnvName
	}
	data.Context = contextSnippet(data)
	return data
}

func contextSnippet(data templateData) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Shell: %s", data.Shell))
	if data.OS != "" {
		lines = append(lines, fmt.Sprintf("OS: %s", data.OS))
	}
	if data.WorkingDir != "" {
		lines = append(lines, fmt.Sprintf("Directory: %s", data.WorkingDir))
	}
	if data.PythonEnv != "" {
		lines = append(lines, fmt.Sprintf("Python environment: %s %s (install packages with %s)", data.PythonEnv, data.PythonEnvName, data.PackageManager))
	}
	if data.Admin {
		lines = append(lines, "Running with administrator privileges")
	}
	return strings.Join(lines, "\n")
}

func packageManager(kind domain.PythonEnvKind) string {
	switch kind {
	case domain.PythonEnvConda:
		return "conda"
	case domain.PythonEnvPoetry:
		return "poetry"
	case domain.PythonEnvPipenv:
		return "pipenv"
	default:
		return "pip"
	}
}

func valueOrDefaultDialect(d domain.ShellDialect) domain.ShellDialect {
	if d == "" {
		return domain.DialectBash
	}
	return d
}

func executeTemplate(raw string, data templateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return buf.String(), nil
}

func hasUserMessage(messages []domain.PromptMessage) bool {
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "user") {
			return true
		}
	}
	return false
}

// splitSystemMessages separates system text for APIs that take it out of band.
func splitSystemMessages(messages []domain.PromptMessage) (string, []domain.PromptMessage) {
	var system []string
	var chat []domain.PromptMessage
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			system = append(system, msg.Content)
			continue
		}
		chat = append(chat, msg)
	}
	return strings.TrimSpace(strings.Join(system, "\n")), chat
}

func defaultTemplateMessages() []domain.PromptMessage {
	return []domain.PromptMessage{
		{
			Role: "system",
			Content: `You are aiterm, a cautious command-line assistant.
Translate the request into exactly one {{.Shell}} command line.
Use only {{.Shell}} syntax; never mix in another shell's commands.
Reply in exactly this format:
Command: <the command on one line>
Explanation: <one short sentence>
Current environment:
- Shell: {{.Shell}}
- OS: {{.OS}}
- Directory: {{.WorkingDir}}
{{if .PythonEnv}}- Python environment: {{.PythonEnv}} {{.PythonEnvName}}; install packages with {{.PackageManager}}
{{end}}{{if .Admin}}- The session is elevated; prefer the least destructive command.{{end}}`,
		},
		{
			Role:    "user",
			Content: "{{.Prompt}}",
		},
	}
}
