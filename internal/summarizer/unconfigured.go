package summarizer

import (
	"context"
	"fmt"
)

// Unconfigured stands in for a provider whose credentials are missing. Every
// call fails with a message that classifies as KindInvalidCredentials.
type Unconfigured struct {
	Label  string
	EnvVar string
}

func (u Unconfigured) Name() string {
	return u.Label
}

func (u Unconfigured) Summarize(context.Context, Input) (string, error) {
	return "", u.Err()
}

// Err is the failure returned by every Summarize call.
func (u Unconfigured) Err() error {
	return &ProviderError{
		Provider: u.Label,
		Message:  fmt.Sprintf("invalid API key: %s is not configured", u.EnvVar),
	}
}
