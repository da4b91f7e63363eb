package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

// HTTPGenerator talks to any chat-completion style endpoint. Request and
// response shapes are controlled by the model's WireFormat.
type HTTPGenerator struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

var _ ports.Generator = (*HTTPGenerator)(nil)

// NewHTTPGenerator creates a configuration-driven generator.
func NewHTTPGenerator(model domain.ModelDefinition, client *http.Client) *HTTPGenerator {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &HTTPGenerator{model: model, httpClient: client}
}

func (g *HTTPGenerator) Name() string {
	return g.model.Name
}

func (g *HTTPGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (domain.CandidateCommand, error) {
	messages, err := renderPromptMessages(g.model, req)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("render prompt: %w", err))
	}

	requestBody, err := g.buildRequestBody(messages)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("build request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.model.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := g.setAuthHeaders(httpReq); err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}
	for key, value := range g.model.Wire.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("read response body: %w", err))
	}
	if resp.StatusCode >= 400 {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	content, err := g.parseResponse(body)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), fmt.Errorf("parse response: %w", err))
	}
	candidate, err := toCandidate(content, req.Env.Dialect, g.Name())
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}
	return candidate, nil
}

// buildRequestBody encodes the chat request in the model's wire format.
func (g *HTTPGenerator) buildRequestBody(messages []domain.PromptMessage) ([]byte, error) {
	wire := g.model.Wire
	request := map[string]interface{}{
		"model": g.model.ModelID,
	}
	if g.model.MaxTokens > 0 {
		request["max_tokens"] = g.model.MaxTokens
	}

	if wire.SystemField {
		system, chat := splitSystemMessages(messages)
		if system != "" {
			request["system"] = system
		}
		messages = chat
	}
	formatted := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		formatted = append(formatted, formatMessage(msg, wire))
	}
	request["messages"] = formatted

	return json.Marshal(request)
}

func formatMessage(msg domain.PromptMessage, wire domain.WireFormat) map[string]interface{} {
	message := map[string]interface{}{
		"role": strings.ToLower(msg.Role),
	}
	if wire.ContentParts {
		message["content"] = []map[string]string{
			{"type": "text", "text": msg.Content},
		}
	} else {
		message["content"] = msg.Content
	}
	return message
}

// setAuthHeaders configures authentication. Models without auth_env_var
// (local servers such as Ollama) send no credentials.
func (g *HTTPGenerator) setAuthHeaders(req *http.Request) error {
	if g.model.AuthEnvVar == "" {
		return nil
	}
	apiKey := os.Getenv(g.model.AuthEnvVar)
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s environment variable", g.model.AuthEnvVar)
	}
	header, scheme := g.model.Wire.Auth()
	req.Header.Set(header, scheme+apiKey)

	if g.model.OrgEnvVar != "" {
		if orgID := os.Getenv(g.model.OrgEnvVar); orgID != "" {
			req.Header.Set("OpenAI-Organization", orgID)
		}
	}
	return nil
}

// parseResponse extracts the generated text using the configured JSON path.
func (g *HTTPGenerator) parseResponse(body []byte) (string, error) {
	var response map[string]interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("unmarshal JSON: %w", err)
	}

	path := g.model.Wire.Response()
	content, err := extractJSONPath(response, path)
	if err != nil {
		return "", fmt.Errorf("extract from path '%s': %w", path, err)
	}
	return strings.TrimSpace(content), nil
}

// extractJSONPath extracts a string value from a nested JSON structure using a simple path notation.
// Supported paths: "field", "field.nested", "field[0]", "field[0].nested.field"
func extractJSONPath(data map[string]interface{}, path string) (string, error) {
	var current interface{} = data

	for _, part := range parseJSONPath(path) {
		switch part.kind {
		case "field":
			obj, ok := current.(map[string]interface{})
			if !ok {
				return "", fmt.Errorf("expected object at '%s'", part.value)
			}
			var found bool
			current, found = obj[part.value]
			if !found {
				return "", fmt.Errorf("field '%s' not found", part.value)
			}
		case "index":
			arr, ok := current.([]interface{})
			if !ok {
				return "", fmt.Errorf("expected array at index %s", part.value)
			}
			var idx int
			if _, err := fmt.Sscanf(part.value, "%d", &idx); err != nil {
				return "", fmt.Errorf("bad index %q", part.value)
			}
			if idx < 0 || idx >= len(arr) {
				return "", fmt.Errorf("index %d out of bounds (len=%d)", idx, len(arr))
			}
			current = arr[idx]
		}
	}

	if str, ok := current.(string); ok {
		return str, nil
	}
	return "", fmt.Errorf("final value is not a string: %T", current)
}

type pathPart struct {
	kind  string // "field" or "index"
	value string
}

// parseJSONPath converts "content[0].text" into
// [{field content} {index 0} {field text}].
func parseJSONPath(path string) []pathPart {
	var parts []pathPart
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, pathPart{kind: "field", value: current.String()})
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch ch := path[i]; ch {
		case '.':
			flush()
		case '[':
			flush()
			j := i + 1
			for j < len(path) && path[j] != ']' {
				j++
			}
			if j < len(path) {
				parts = append(parts, pathPart{kind: "index", value: path[i+1 : j]})
				i = j
			}
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return parts
}
