package domain_test

import (
	"testing"

	"github.com/doeshing/aiterm/internal/domain"
)

func TestWireFormat_Auth(t *testing.T) {
	empty := ""
	token := "Token "
	tests := []struct {
		name       string
		wire       domain.WireFormat
		wantHeader string
		wantScheme string
	}{
		{"zero value is bearer", domain.WireFormat{}, "Authorization", "Bearer "},
		{"custom header has no scheme", domain.WireFormat{AuthHeader: "x-api-key"}, "x-api-key", ""},
		{"explicit scheme on custom header", domain.WireFormat{AuthHeader: "X-Auth", AuthScheme: &token}, "X-Auth", "Token "},
		{"explicit empty scheme on default header", domain.WireFormat{AuthScheme: &empty}, "Authorization", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, scheme := tt.wire.Auth()
			if header != tt.wantHeader || scheme != tt.wantScheme {
				t.Errorf("Auth() = %q, %q, want %q, %q", header, scheme, tt.wantHeader, tt.wantScheme)
			}
		})
	}
}

func TestWireFormat_Response(t *testing.T) {
	if got := (domain.WireFormat{}).Response(); got != domain.OpenAIResponsePath {
		t.Errorf("Response() = %q, want %q", got, domain.OpenAIResponsePath)
	}
	wire := domain.WireFormat{ResponsePath: domain.AnthropicResponsePath}
	if got := wire.Response(); got != domain.AnthropicResponsePath {
		t.Errorf("Response() = %q, want %q", got, domain.AnthropicResponsePath)
	}
}
