package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicGenerator uses the official Anthropic SDK (Messages API).
type AnthropicGenerator struct {
	model  domain.ModelDefinition
	client anthropic.Client
	apiKey string
}

var _ ports.Generator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator builds the client. A missing key is reported by Generate.
func NewAnthropicGenerator(model domain.ModelDefinition, httpClient *http.Client) *AnthropicGenerator {
	apiKey := resolveAuth(model.AuthEnvVar, "ANTHROPIC_API_KEY")
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(1),
	}
	if model.Endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(model.Endpoint))
	}
	if httpClient != nil {
		opts = append(opts, anthropicoption.WithHTTPClient(httpClient))
	}
	return &AnthropicGenerator{
		model:  model,
		client: anthropic.NewClient(opts...),
		apiKey: apiKey,
	}
}

func (g *AnthropicGenerator) Name() string {
	return g.model.Name
}

func (g *AnthropicGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (domain.CandidateCommand, error) {
	if g.apiKey == "" {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), errors.New("missing API key: set "+valueOrDefault(g.model.AuthEnvVar, "ANTHROPIC_API_KEY")))
	}
	messages, err := renderPromptMessages(g.model, req)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}
	system, chat := splitSystemMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(valueOrDefault(g.model.ModelID, defaultAnthropicModel)),
		MaxTokens: int64(valueOrDefaultInt(g.model.MaxTokens, domain.DefaultMaxTokens)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, msg := range chat {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == "assistant" {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	candidate, err := toCandidate(text.String(), req.Env.Dialect, g.Name())
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}
	return candidate, nil
}
