package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	GeminiName         = "Google AI"
	DefaultGeminiModel = "gemini-1.5-flash"
)

// ContentGenerator is the subset of the Gemini SDK used by GeminiSummarizer.
// It is satisfied by *genai.GenerativeModel.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiSummarizer calls Google's Gemini models to produce summaries.
type GeminiSummarizer struct {
	client    *genai.Client
	generator ContentGenerator
}

// NewGeminiSummarizer dials the Gemini API. Close releases the client.
func NewGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	model string,
	opts ...option.ClientOption,
) (*GeminiSummarizer, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(summaryTemperature)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	s := NewGeminiSummarizerWithGenerator(m)
	s.client = client

	return s, nil
}

func NewGeminiSummarizerWithGenerator(generator ContentGenerator) *GeminiSummarizer {
	return &GeminiSummarizer{generator: generator}
}

func (s *GeminiSummarizer) Name() string {
	return GeminiName
}

func (s *GeminiSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", &ProviderError{Provider: GeminiName, Message: emptyInputMessage}
	}

	resp, err := s.generator.GenerateContent(ctx, genai.Text(userPrompt(input)))
	if err != nil {
		return "", &ProviderError{
			Provider: GeminiName,
			Message:  err.Error(),
			Err:      fmt.Errorf("generate content: %w", err),
		}
	}

	summary := strings.TrimSpace(geminiText(resp))
	if summary == "" {
		return "", &ProviderError{Provider: GeminiName, Message: emptyResponseMessage}
	}

	return summary, nil
}

func (s *GeminiSummarizer) Close() error {
	if s.client == nil {
		return nil
	}

	return s.client.Close()
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}

		if b.Len() > 0 {
			break
		}
	}

	return b.String()
}
