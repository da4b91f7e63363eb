package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

func generate(t *testing.T, prompt string, env domain.EnvironmentInfo) (domain.CandidateCommand, error) {
	t.Helper()
	return NewHeuristicGenerator("offline").Generate(context.Background(), ports.GenerationRequest{Prompt: prompt, Env: env})
}

func TestHeuristicPerDialect(t *testing.T) {
	tests := []struct {
		prompt  string
		dialect domain.ShellDialect
		want    string
	}{
		{"list all files", domain.DialectBash, "ls -la"},
		{"list all files", domain.DialectPowerShell, "Get-ChildItem -Force"},
		{"list all files", domain.DialectCMD, "dir /a"},
		{"show the current directory", domain.DialectFish, "pwd"},
		{"create a file named notes.txt", domain.DialectBash, "touch notes.txt"},
		{"create a file named notes.txt", domain.DialectCMD, "type nul > notes.txt"},
		{"make a new directory called build", domain.DialectPowerShell, "New-Item -ItemType Directory -Force -Path build"},
		{"delete the file My Notes.txt", domain.DialectBash, "rm 'My Notes.txt'"},
		{"delete the file My Notes.txt", domain.DialectCMD, `del "My Notes.txt"`},
		{"copy a.txt to b.txt", domain.DialectPowerShell, "Copy-Item a.txt b.txt"},
		{"rename old.go to new.go", domain.DialectZsh, "mv old.go new.go"},
		{"kill process with pid 4242", domain.DialectCMD, "taskkill /PID 4242"},
		{"ping example.com", domain.DialectCMD, "ping -n 4 example.com"},
		{"check port 8080", domain.DialectBash, "netstat -an | grep 8080"},
		{"git commit with message fix tests", domain.DialectBash, "git commit -m 'fix tests'"},
		{"Please list files.", domain.DialectBash, "ls -la"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect)+"/"+tt.prompt, func(t *testing.T) {
			candidate, err := generate(t, tt.prompt, domain.EnvironmentInfo{Dialect: tt.dialect})
			if err != nil {
				t.Fatalf("Generate error: %v", err)
			}
			if candidate.Text != tt.want {
				t.Fatalf("got %q, want %q", candidate.Text, tt.want)
			}
			if candidate.Dialect != tt.dialect || candidate.Source != HeuristicSource {
				t.Fatalf("candidate metadata wrong: %+v", candidate)
			}
		})
	}
}

func TestHeuristicPackageInstallFollowsPythonEnv(t *testing.T) {
	tests := []struct {
		env  domain.PythonEnvKind
		want string
	}{
		{domain.PythonEnvNone, "pip install requests"},
		{domain.PythonEnvVenv, "pip install requests"},
		{domain.PythonEnvConda, "conda install -y requests"},
		{domain.PythonEnvPoetry, "poetry add requests"},
		{domain.PythonEnvPipenv, "pipenv install requests"},
	}
	for _, tt := range tests {
		candidate, err := generate(t, "install the requests package", domain.EnvironmentInfo{Dialect: domain.DialectBash, PythonEnv: tt.env})
		if err != nil {
			t.Fatalf("%s: %v", tt.env, err)
		}
		if candidate.Text != tt.want {
			t.Errorf("%s: got %q, want %q", tt.env, candidate.Text, tt.want)
		}
	}
}

func TestHeuristicPackageNameExtraction(t *testing.T) {
	tests := map[string]string{
		"install the python package httpx":   "httpx",
		"add library rich":                    "rich",
		"please install scikit-learn for me": "scikit-learn",
	}
	for prompt, want := range tests {
		pkg, ok := packageInstall(prompt)
		if !ok || pkg != want {
			t.Errorf("packageInstall(%q) = %q, %v; want %q", prompt, pkg, ok, want)
		}
	}
	if _, ok := packageInstall("list all files"); ok {
		t.Error("listing is not a package install")
	}
}

func TestHeuristicNoMatchIsUnavailable(t *testing.T) {
	_, err := generate(t, "compose a sonnet about tar", domain.EnvironmentInfo{Dialect: domain.DialectBash})
	var unavailableErr *domain.GenerationUnavailableError
	if !errors.As(err, &unavailableErr) {
		t.Fatalf("expected GenerationUnavailableError, got %v", err)
	}
}

func TestHeuristicSkipsOperationsWithoutDialectForm(t *testing.T) {
	_, err := generate(t, "disk usage", domain.EnvironmentInfo{Dialect: domain.DialectCMD})
	if err == nil {
		t.Fatal("cmd has no disk usage literal; expected no candidate")
	}
	candidate, err := generate(t, "disk usage", domain.EnvironmentInfo{Dialect: domain.DialectBash})
	if err != nil || candidate.Text != "df -h" {
		t.Fatalf("got %q (%v)", candidate.Text, err)
	}
}

func TestHeuristicHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHeuristicGenerator("").Generate(ctx, ports.GenerationRequest{Prompt: "list files"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
