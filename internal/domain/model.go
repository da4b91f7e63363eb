// Package domain holds the values passed between aiterm's adapters: candidate
// commands, segments, verdicts, decisions, configuration and history records.
package domain

// ProviderKind selects the generator implementation for a model.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderHTTP      ProviderKind = "http"
	ProviderHeuristic ProviderKind = "heuristic"
)

// ModelDefinition describes a generator declared in the config file.
// Endpoint and Wire are read by the http provider only.
type ModelDefinition struct {
	Name       string          `yaml:"name"`
	Provider   ProviderKind    `yaml:"provider"`
	Endpoint   string          `yaml:"endpoint"`
	AuthEnvVar string          `yaml:"auth_env_var"`
	OrgEnvVar  string          `yaml:"org_env_var"`
	ModelID    string          `yaml:"model_id"`
	MaxTokens  int             `yaml:"max_tokens"`
	Prompt     []PromptMessage `yaml:"prompt"`
	Wire       WireFormat      `yaml:"wire,omitempty"`
}

// PromptMessage is one role/content pair of a chat prompt.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// Response paths for the two request shapes most endpoints speak.
const (
	OpenAIResponsePath    = "choices[0].message.content"
	AnthropicResponsePath = "content[0].text"
)

// WireFormat is the request and response shape of a chat endpoint. The zero
// value is the OpenAI chat completions shape.
type WireFormat struct {
	AuthHeader string `yaml:"auth_header,omitempty"`
	// AuthScheme precedes the key. Unset, it is "Bearer " for the default
	// header and empty for a custom one such as x-api-key.
	AuthScheme   *string           `yaml:"auth_scheme,omitempty"`
	SystemField  bool              `yaml:"system_field,omitempty"`  // system prompt goes in a top-level "system" field
	ContentParts bool              `yaml:"content_parts,omitempty"` // content is a list of {"type":"text"} parts
	ResponsePath string            `yaml:"response_path,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
}

// Auth returns the header carrying the API key and the text before the key.
func (w WireFormat) Auth() (header, scheme string) {
	if w.AuthHeader == "" {
		header, scheme = "Authorization", "Bearer "
	} else {
		header = w.AuthHeader
	}
	if w.AuthScheme != nil {
		scheme = *w.AuthScheme
	}
	return header, scheme
}

// Response returns where the generated text sits in the response body.
func (w WireFormat) Response() string {
	if w.ResponsePath == "" {
		return OpenAIResponsePath
	}
	return w.ResponsePath
}
