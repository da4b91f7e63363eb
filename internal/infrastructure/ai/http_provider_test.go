package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

func TestHTTPGeneratorOpenAICompatible(t *testing.T) {
	t.Setenv("TEST_HTTP_KEY", "secret")
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Command: Get-ChildItem -Force\nExplanation: list"}}]}`))
	}))
	defer server.Close()

	gen := NewHTTPGenerator(domain.ModelDefinition{
		Name: "local", Endpoint: server.URL, AuthEnvVar: "TEST_HTTP_KEY", ModelID: "m", MaxTokens: 64,
	}, server.Client())
	candidate, err := gen.Generate(context.Background(), ports.GenerationRequest{
		Prompt: "list files",
		Env:    domain.EnvironmentInfo{Dialect: domain.DialectPowerShell, OS: "windows"},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if candidate.Text != "Get-ChildItem -Force" || candidate.Dialect != domain.DialectPowerShell {
		t.Fatalf("unexpected candidate %+v", candidate)
	}
	messages, _ := body["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
	system, _ := messages[0].(map[string]interface{})
	if !strings.Contains(system["content"].(string), "powershell") {
		t.Fatalf("system prompt should name the dialect: %v", system["content"])
	}
}

func TestHTTPGeneratorSeparateSystemAndWrappedContent(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "" {
			t.Errorf("no auth header expected without auth_env_var")
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("extra header missing")
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` + "```bash\\nls -la\\n```" + `"}]}`))
	}))
	defer server.Close()

	gen := NewHTTPGenerator(domain.ModelDefinition{
		Name:     "wrapped",
		Endpoint: server.URL,
		Wire: domain.WireFormat{
			SystemField:  true,
			ContentParts: true,
			ResponsePath: domain.AnthropicResponsePath,
			Headers:      map[string]string{"anthropic-version": "2023-06-01"},
		},
	}, server.Client())
	candidate, err := gen.Generate(context.Background(), ports.GenerationRequest{Prompt: "list files"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if candidate.Text != "ls -la" {
		t.Fatalf("got %q", candidate.Text)
	}
	if _, ok := body["system"].(string); !ok {
		t.Fatalf("system prompt should be separate: %v", body)
	}
	messages := body["messages"].([]interface{})
	first := messages[0].(map[string]interface{})
	if _, wrapped := first["content"].([]interface{}); !wrapped {
		t.Fatalf("content should be wrapped: %v", first)
	}
}

func TestHTTPGeneratorFailuresAreUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gen := NewHTTPGenerator(domain.ModelDefinition{Name: "down", Endpoint: server.URL}, server.Client())
	_, err := gen.Generate(context.Background(), ports.GenerationRequest{Prompt: "list files"})
	var unavailableErr *domain.GenerationUnavailableError
	if !errors.As(err, &unavailableErr) || unavailableErr.Provider != "down" {
		t.Fatalf("expected GenerationUnavailableError, got %v", err)
	}

	t.Setenv("UNSET_TEST_KEY", "")
	keyless := NewHTTPGenerator(domain.ModelDefinition{Name: "keyless", Endpoint: server.URL, AuthEnvVar: "UNSET_TEST_KEY"}, server.Client())
	if _, err := keyless.Generate(context.Background(), ports.GenerationRequest{Prompt: "x"}); !errors.As(err, &unavailableErr) {
		t.Fatalf("missing key should be unavailable, got %v", err)
	}
}

func TestExtractJSONPath(t *testing.T) {
	data := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{"message": map[string]interface{}{"content": "hi"}},
		},
	}
	got, err := extractJSONPath(data, "choices[0].message.content")
	if err != nil || got != "hi" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := extractJSONPath(data, "choices[3].message.content"); err == nil {
		t.Fatal("expected out of bounds error")
	}
	if _, err := extractJSONPath(data, "missing"); err == nil {
		t.Fatal("expected missing field error")
	}
}
