package summarizer

import (
	"errors"
	"fmt"
)

// MinTextLength is the shortest direct input callers accept.
const MinTextLength = 10

// KindMessage renders one classified provider failure for end users.
func KindMessage(provider string, kind ErrorKind, raw string) string {
	switch kind {
	case KindQuotaExceeded:
		return fmt.Sprintf("%s API quota exceeded. Please add credits or check your usage limits.", provider)
	case KindInvalidCredentials:
		return fmt.Sprintf("Invalid %s API key. Please check your API key settings.", provider)
	default:
		return fmt.Sprintf("Failed to summarize with %s: %s", provider, raw)
	}
}

// UserMessage turns an error returned by Orchestrator.Summarize into a single
// actionable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var f *Failure
	if !errors.As(err, &f) {
		return "An unexpected error occurred. Please try again."
	}

	switch f.Reason {
	case ReasonInvalidInput:
		return fmt.Sprintf("Please enter at least %d characters of text to summarize", MinTextLength)
	case ReasonCanceled:
		return "Summary request was canceled. Please try again."
	case ReasonInvalidCredentials:
		if len(f.Attempts) == 0 {
			return "Invalid API key. Please check your API key settings."
		}
		a := f.Attempts[0]
		return KindMessage(a.Provider, a.Kind, a.Message)
	case ReasonBothProvidersFailed:
		msg := "Both AI services failed."
		for _, a := range f.Attempts {
			msg += fmt.Sprintf(" %s: %s.", a.Provider, attemptDetail(a))
		}
		return msg
	default:
		return "Failed to generate summary. Please try again."
	}
}

func attemptDetail(a Attempt) string {
	switch a.Kind {
	case KindQuotaExceeded:
		return "quota exceeded"
	case KindInvalidCredentials:
		return "invalid API key"
	default:
		return a.Message
	}
}
