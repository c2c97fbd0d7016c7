package summarizer

import (
	"errors"
	"strings"
)

// ErrorKind is the closed set of provider failure classes.
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota
	KindQuotaExceeded
	KindInvalidCredentials
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "unclassified"
	}
}

// ProviderError is the only error shape a provider adapter returns. Message
// keeps the raw text reported by the backend so it can be classified.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return e.Message
	}

	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	return &ProviderError{Provider: provider, Message: err.Error(), Err: err}
}

// Classify maps a raw failure message to an ErrorKind. Matching is
// case-insensitive and the first matching rule wins.
func Classify(message string) ErrorKind {
	m := strings.ToLower(message)

	switch {
	case strings.Contains(m, "429") || strings.Contains(m, "quota"):
		return KindQuotaExceeded
	case strings.Contains(m, "401") ||
		strings.Contains(m, "unauthorized") ||
		(strings.Contains(m, "invalid") && strings.Contains(m, "api key")):
		return KindInvalidCredentials
	default:
		return KindUnclassified
	}
}

// ClassifyError classifies err by its raw provider message when it carries
// one, and by its full text otherwise.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}

	return Classify(rawMessage(err))
}

func rawMessage(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}

	return err.Error()
}
