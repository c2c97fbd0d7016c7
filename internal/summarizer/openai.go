package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	OpenAIName         = "OpenAI"
	DefaultOpenAIModel = "gpt-4o"

	baseMaxOutputTokens  int64 = 512
	limitMaxOutputTokens int64 = 2048
)

// ResponsesClient is the subset of the OpenAI SDK used by OpenAISummarizer.
// It is satisfied by *responses.ResponseService.
type ResponsesClient interface {
	New(
		ctx context.Context,
		body responses.ResponseNewParams,
		opts ...option.RequestOption,
	) (*responses.Response, error)
}

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client ResponsesClient
	model  string
}

// NewOpenAISummarizer builds a summarizer backed by the default OpenAI HTTP client.
func NewOpenAISummarizer(apiKey string, model string, opts ...option.RequestOption) *OpenAISummarizer {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)

	return NewOpenAISummarizerWithClient(&client.Responses, model)
}

func NewOpenAISummarizerWithClient(client ResponsesClient, model string) *OpenAISummarizer {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAISummarizer{client: client, model: model}
}

func (s *OpenAISummarizer) Name() string {
	return OpenAIName
}

// Summarize produces a concise summary of the input text.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", &ProviderError{Provider: OpenAIName, Message: emptyInputMessage}
	}

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := s.client.New(ctx, responses.ResponseNewParams{
			Model:           s.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Temperature:     openai.Float(summaryTemperature),
			Instructions:    openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(userPrompt(input)),
			},
		})
		if err != nil {
			return "", &ProviderError{
				Provider: OpenAIName,
				Message:  openAIErrorMessage(err),
				Err:      fmt.Errorf("do request: %w", err),
			}
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}

			return "", &ProviderError{
				Provider: OpenAIName,
				Message: fmt.Sprintf(
					"response is incomplete (reason = %s, maxOutputTokens = %d)",
					resp.IncompleteDetails.Reason,
					maxOutputTokens,
				),
			}
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", &ProviderError{
				Provider: OpenAIName,
				Message:  fmt.Sprintf("%s (status = %s)", emptyResponseMessage, resp.Status),
			}
		}

		return summary, nil
	}
}

// openAIErrorMessage drops the request URL from API errors so that only the
// status and the backend's own text are classified.
func openAIErrorMessage(err error) string {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%d %s: %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode), apiErr.Message)
	}

	return err.Error()
}

func userPrompt(input Input) string {
	b := strings.Builder{}
	b.WriteString(userPromptPreamble)
	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		b.WriteString("Source:\n")
		b.WriteString(sourceURL)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(input.Text))

	return b.String()
}
