package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const defaultProviderTimeout = 60 * time.Second

// Source tells which role produced a summary.
type Source int

const (
	SourcePrimary Source = iota
	SourceFallback
)

func (s Source) String() string {
	if s == SourceFallback {
		return "fallback"
	}

	return "primary"
}

// Request is a single summarization request.
type Request struct {
	Text      string
	SourceURL string
}

// Result is a successful summary. Fallback summaries are already tagged.
type Result struct {
	Summary    string
	ProducedBy Source
	Provider   string
}

// Reason is the terminal failure state of one Summarize call.
type Reason int

const (
	ReasonInvalidCredentials Reason = iota
	ReasonBothProvidersFailed
	ReasonInvalidInput
	ReasonCanceled
)

func (r Reason) String() string {
	switch r {
	case ReasonInvalidCredentials:
		return "invalid_credentials"
	case ReasonBothProvidersFailed:
		return "both_providers_failed"
	case ReasonInvalidInput:
		return "invalid_input"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Attempt records one failed provider call.
type Attempt struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

// Failure is the error returned by Orchestrator.Summarize. Attempts are in
// call order, primary first.
type Failure struct {
	Reason   Reason
	Attempts []Attempt
}

func (f *Failure) Error() string {
	if len(f.Attempts) == 0 {
		return "summarize: " + f.Reason.String()
	}

	parts := make([]string, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", a.Provider, a.Kind, a.Message))
	}

	return fmt.Sprintf("summarize: %s: %s", f.Reason, strings.Join(parts, "; "))
}

// Kind returns the primary provider's classified kind.
func (f *Failure) Kind() ErrorKind {
	if len(f.Attempts) == 0 {
		return KindUnclassified
	}

	return f.Attempts[0].Kind
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithProviderTimeout bounds each provider call. Zero or negative disables it.
func WithProviderTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.providerTimeout = d
	}
}

// Orchestrator tries the primary provider and, unless the primary reports
// bad credentials, the fallback provider once.
type Orchestrator struct {
	primary         Provider
	fallback        Provider
	providerTimeout time.Duration
	log             *slog.Logger
}

func NewOrchestrator(
	primary Provider,
	fallback Provider,
	log *slog.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		primary:         primary,
		fallback:        fallback,
		providerTimeout: defaultProviderTimeout,
		log:             log,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Summarize returns either a Result or a *Failure; no other error type.
func (o *Orchestrator) Summarize(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, &Failure{Reason: ReasonInvalidInput}
	}

	input := Input{Text: text, SourceURL: strings.TrimSpace(req.SourceURL)}

	summary, err := o.call(ctx, o.primary, input)
	if err == nil {
		return Result{
			Summary:    summary,
			ProducedBy: SourcePrimary,
			Provider:   o.primary.Name(),
		}, nil
	}

	primaryAttempt := newAttempt(o.primary.Name(), err)

	if primaryAttempt.Kind == KindInvalidCredentials {
		o.log.ErrorContext(ctx, "Primary provider rejected credentials",
			"provider", primaryAttempt.Provider,
			"error", primaryAttempt.Message)

		return Result{}, &Failure{
			Reason:   ReasonInvalidCredentials,
			Attempts: []Attempt{primaryAttempt},
		}
	}

	if ctx.Err() != nil {
		o.log.InfoContext(ctx, "Request is canceled so fallback is skipped",
			"provider", primaryAttempt.Provider,
			"error", ctx.Err())

		return Result{}, &Failure{
			Reason:   ReasonCanceled,
			Attempts: []Attempt{primaryAttempt},
		}
	}

	o.log.WarnContext(ctx, "Primary provider failed so fallback will be used",
		"provider", primaryAttempt.Provider,
		"fallbackProvider", o.fallback.Name(),
		"kind", primaryAttempt.Kind.String(),
		"error", primaryAttempt.Message)

	summary, err = o.call(ctx, o.fallback, input)
	if err != nil {
		fallbackAttempt := newAttempt(o.fallback.Name(), err)

		o.log.ErrorContext(ctx, "Both providers failed",
			"provider", primaryAttempt.Provider,
			"fallbackProvider", fallbackAttempt.Provider,
			"kind", primaryAttempt.Kind.String(),
			"fallbackKind", fallbackAttempt.Kind.String(),
			"error", fallbackAttempt.Message)

		return Result{}, &Failure{
			Reason:   ReasonBothProvidersFailed,
			Attempts: []Attempt{primaryAttempt, fallbackAttempt},
		}
	}

	return Result{
		Summary:    tagSummary(o.fallback.Name(), summary),
		ProducedBy: SourceFallback,
		Provider:   o.fallback.Name(),
	}, nil
}

func (o *Orchestrator) call(ctx context.Context, p Provider, input Input) (string, error) {
	if o.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.providerTimeout)
		defer cancel()
	}

	summary, err := p.Summarize(ctx, input)
	if err != nil {
		return "", err
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", &ProviderError{Provider: p.Name(), Message: emptyResponseMessage}
	}

	return summary, nil
}

func newAttempt(provider string, err error) Attempt {
	pe := newProviderError(provider, err)

	return Attempt{
		Provider: provider,
		Kind:     Classify(pe.Message),
		Message:  pe.Message,
	}
}

func tagSummary(provider string, summary string) string {
	return fmt.Sprintf("[Powered by %s] %s", provider, summary)
}
