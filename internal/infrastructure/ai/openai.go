package ai

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	openaiparam "github.com/openai/openai-go/v3/packages/param"

	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/ports"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIGenerator uses the official OpenAI SDK. Endpoint, when set, points
// the client at any OpenAI-compatible base URL.
type OpenAIGenerator struct {
	model  domain.ModelDefinition
	client *openai.Client
	apiKey string
}

var _ ports.Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator builds the client. A missing key is reported by Generate
// so that an offline fallback can take over.
func NewOpenAIGenerator(model domain.ModelDefinition, httpClient *http.Client) *OpenAIGenerator {
	apiKey := resolveAuth(model.AuthEnvVar, "OPENAI_API_KEY")
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if model.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(model.Endpoint))
	}
	if org := resolveAuth(model.OrgEnvVar, "OPENAI_ORG_ID"); org != "" {
		opts = append(opts, option.WithOrganization(org))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIGenerator{model: model, client: &cli, apiKey: apiKey}
}

func (g *OpenAIGenerator) Name() string {
	return g.model.Name
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (domain.CandidateCommand, error) {
	if g.apiKey == "" {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), errors.New("missing API key: set "+valueOrDefault(g.model.AuthEnvVar, "OPENAI_API_KEY")))
	}
	messages, err := renderPromptMessages(g.model, req)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}

	params := openai.ChatCompletionNewParams{
		Model:     valueOrDefault(g.model.ModelID, defaultOpenAIModel),
		MaxTokens: openaiparam.NewOpt(int64(valueOrDefaultInt(g.model.MaxTokens, domain.DefaultMaxTokens))),
	}
	for _, msg := range messages {
		params.Messages = append(params.Messages, toOpenAIMessage(msg))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), errEmptyResponse)
	}
	candidate, err := toCandidate(resp.Choices[0].Message.Content, req.Env.Dialect, g.Name())
	if err != nil {
		return domain.CandidateCommand{}, unavailable(ctx, g.Name(), err)
	}
	return candidate, nil
}

func toOpenAIMessage(msg domain.PromptMessage) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case "system":
		return openai.SystemMessage(msg.Content)
	case "assistant":
		return openai.AssistantMessage(msg.Content)
	default:
		return openai.UserMessage(msg.Content)
	}
}
