package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	AnthropicName         = "Anthropic"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	anthropicMaxTokens int64 = 1024
)

// MessagesClient is the subset of the Anthropic SDK used by
// AnthropicSummarizer. It is satisfied by *anthropic.MessageService.
type MessagesClient interface {
	New(
		ctx context.Context,
		body anthropic.MessageNewParams,
		opts ...option.RequestOption,
	) (*anthropic.Message, error)
}

// AnthropicSummarizer calls the Anthropic Messages API to produce summaries.
type AnthropicSummarizer struct {
	client MessagesClient
	model  string
}

func NewAnthropicSummarizer(apiKey string, model string, opts ...option.RequestOption) *AnthropicSummarizer {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)

	return NewAnthropicSummarizerWithClient(&client.Messages, model)
}

func NewAnthropicSummarizerWithClient(client MessagesClient, model string) *AnthropicSummarizer {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicSummarizer{client: client, model: model}
}

func (s *AnthropicSummarizer) Name() string {
	return AnthropicName
}

func (s *AnthropicSummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", &ProviderError{Provider: AnthropicName, Message: emptyInputMessage}
	}

	msg, err := s.client.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(summaryTemperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(input))),
		},
	})
	if err != nil {
		return "", &ProviderError{
			Provider: AnthropicName,
			Message:  err.Error(),
			Err:      fmt.Errorf("create message: %w", err),
		}
	}

	if msg == nil {
		return "", &ProviderError{Provider: AnthropicName, Message: emptyResponseMessage}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", &ProviderError{Provider: AnthropicName, Message: emptyResponseMessage}
	}

	return summary, nil
}
