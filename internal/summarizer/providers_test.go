package summarizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbeam/internal/summarizer"
)

func TestNewProviderWithoutKeysIsUnconfigured(t *testing.T) {
	cases := []struct {
		kind summarizer.ProviderKind
		name string
	}{
		{summarizer.ProviderOpenAI, "OpenAI"},
		{summarizer.ProviderGemini, "Google AI"},
		{summarizer.ProviderAnthropic, "Anthropic"},
		{" OpenAI ", "OpenAI"},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			p, closer, err := summarizer.NewProvider(context.Background(), tc.kind, summarizer.ProviderConfig{})
			require.NoError(t, err)
			require.NotNil(t, closer)
			assert.NoError(t, closer.Close())

			assert.IsType(t, summarizer.Unconfigured{}, p)
			assert.Equal(t, tc.name, p.Name())

			_, err = p.Summarize(context.Background(), summarizer.Input{Text: "some text"})
			assert.Equal(t, summarizer.KindInvalidCredentials, summarizer.ClassifyError(err))
		})
	}
}

func TestNewProviderWithKeys(t *testing.T) {
	p, _, err := summarizer.NewProvider(context.Background(), summarizer.ProviderOpenAI, summarizer.ProviderConfig{
		OpenAIAPIKey: "sk-test",
	})
	require.NoError(t, err)
	assert.IsType(t, &summarizer.OpenAISummarizer{}, p)

	p, _, err = summarizer.NewProvider(context.Background(), summarizer.ProviderAnthropic, summarizer.ProviderConfig{
		AnthropicAPIKey: "sk-ant-test",
	})
	require.NoError(t, err)
	assert.IsType(t, &summarizer.AnthropicSummarizer{}, p)
}

func TestNewProviderUnknownKind(t *testing.T) {
	_, _, err := summarizer.NewProvider(context.Background(), "mistral", summarizer.ProviderConfig{})
	assert.Error(t, err)
}

func TestUnconfiguredWithOrchestrator(t *testing.T) {
	primary := summarizer.Unconfigured{Label: "OpenAI", EnvVar: "OPENAI_API_KEY"}
	fallback := &stubProvider{name: "Google AI", summary: "unused"}

	_, err := newOrchestrator(primary, fallback).Summarize(context.Background(), summarizer.Request{
		Text: "Some long article text that needs a summary.",
	})

	var f *summarizer.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, summarizer.ReasonInvalidCredentials, f.Reason)
	assert.Equal(t, 0, fallback.callCount())
}
