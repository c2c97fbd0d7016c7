package summarizer

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ProviderKind selects a provider adapter.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderGemini    ProviderKind = "gemini"
	ProviderAnthropic ProviderKind = "anthropic"
)

// ProviderConfig carries credentials and model names for every adapter.
type ProviderConfig struct {
	OpenAIAPIKey    string
	OpenAIModel     string
	GoogleAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// NewProvider builds the adapter for kind. A missing key yields an
// Unconfigured provider instead of an error. The returned closer is never nil.
func NewProvider(
	ctx context.Context,
	kind ProviderKind,
	cfg ProviderConfig,
) (Provider, io.Closer, error) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case ProviderOpenAI:
		apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
		if apiKey == "" {
			return Unconfigured{Label: OpenAIName, EnvVar: "OPENAI_API_KEY"}, nopCloser{}, nil
		}
		return NewOpenAISummarizer(apiKey, cfg.OpenAIModel), nopCloser{}, nil

	case ProviderGemini:
		apiKey := strings.TrimSpace(cfg.GoogleAPIKey)
		if apiKey == "" {
			return Unconfigured{Label: GeminiName, EnvVar: "GOOGLE_API_KEY"}, nopCloser{}, nil
		}
		s, err := NewGeminiSummarizer(ctx, apiKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, fmt.Errorf("create Gemini summarizer: %w", err)
		}
		return s, s, nil

	case ProviderAnthropic:
		apiKey := strings.TrimSpace(cfg.AnthropicAPIKey)
		if apiKey == "" {
			return Unconfigured{Label: AnthropicName, EnvVar: "ANTHROPIC_API_KEY"}, nopCloser{}, nil
		}
		return NewAnthropicSummarizer(apiKey, cfg.AnthropicModel), nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider kind: %q", kind)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
