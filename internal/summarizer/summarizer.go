package summarizer

import (
	"context"
)

const (
	systemPrompt = "You are an expert news summarizer. Create clear, concise summaries " +
		"that capture the essential information while being much shorter than the original text."

	userPromptPreamble = "Please provide a clear, concise summary of the following article.\n" +
		"Focus on the main points, key facts, and important conclusions.\n" +
		"Keep the summary informative but significantly shorter than the original:\n\n"

	summaryTemperature = 0.3

	emptyResponseMessage = "empty response"
	emptyInputMessage    = "input is empty"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original plain text to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// Provider is a named Summarizer. The name is shown to end users when the
// provider serves a request as the fallback.
type Provider interface {
	Summarizer
	Name() string
}
