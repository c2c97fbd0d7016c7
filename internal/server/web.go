package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf8"

	"newsbeam/internal/domain"
	"newsbeam/internal/extractor"
	"newsbeam/internal/summarizer"
)

const (
	inputTypeURL  = "url"
	inputTypeText = "text"

	indexTemplate   = "index.html"
	resultTemplate  = "result.html"
	htmlContentType = "text/html; charset=utf-8"
	maxFormBytes    = 1 << 20

	directTextSource = "Direct text input"
)

const (
	emptyURLMessage      = "Please enter a valid URL"
	textTooShortFormat   = "Please enter at least %d characters of text to summarize"
	unknownInputMessage  = "Please select either URL or text input"
	templateRenderFailed = "Failed to render page"
)

// Sample shown by /demo.
const (
	demoTitle        = "Tram network expansion"
	demoSource       = "https://news.example.com/tram-expansion"
	demoProvider     = "OpenAI"
	demoOriginalText = "City officials unveiled a plan on Tuesday to expand the tram network by 40 kilometers " +
		"over the next decade. The proposal adds three new lines connecting suburban districts with the " +
		"city center, replaces the oldest rolling stock, and introduces a single ticket valid on trams, " +
		"buses and regional trains. Funding will come from a mix of municipal bonds, national " +
		"infrastructure grants and a modest increase in parking fees. Construction of the first line is " +
		"scheduled to begin next spring, pending an environmental review."
	demoSummary = "The city plans to extend its tram network by 40 km within ten years, adding three " +
		"suburban lines, new trams and an integrated ticket. Bonds, national grants and higher parking " +
		"fees will pay for it, and work on the first line starts next spring after an environmental review."
)

//nolint:gochecknoglobals // Immutable template helpers.
var templateFuncs = template.FuncMap{
	"paragraphs": func(text string) []string {
		var result []string
		for p := range strings.SplitSeq(text, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	},
	"isURL": extractor.IsValidURL,
}

type indexPage struct {
	Error     string
	InputType string
	URL       string
	Text      string
}

type resultPage struct {
	Title        string
	OriginalText string
	Summary      string
	Source       string
	Provider     string
	Fallback     bool
	Stats        domain.Stats
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, indexTemplate, indexPage{InputType: inputTypeURL})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, resultTemplate, resultPage{
		Title:        demoTitle,
		OriginalText: demoOriginalText,
		Summary:      demoSummary,
		Source:       demoSource,
		Provider:     demoProvider,
		Stats:        domain.NewStats(demoOriginalText, demoSummary),
	})
}

func (s *Server) handleSummarizeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseForm(); err != nil {
		s.log.WarnContext(r.Context(), "Failed to parse form",
			"error", err)

		s.renderFormError(w, r, indexPage{}, unknownInputMessage)
		return
	}

	form := indexPage{
		InputType: r.PostForm.Get("input_type"),
		URL:       strings.TrimSpace(r.PostForm.Get("url")),
		Text:      r.PostForm.Get("text_input"),
	}

	var (
		title  string
		text   string
		source string
	)

	switch form.InputType {
	case inputTypeURL:
		if form.URL == "" {
			s.renderFormError(w, r, form, emptyURLMessage)
			return
		}

		if !extractor.IsValidURL(form.URL) {
			s.renderFormError(w, r, form, extractor.InvalidURLMessage)
			return
		}

		page, err := s.deps.Extractor.Extract(r.Context(), form.URL)
		if err != nil {
			s.log.ErrorContext(r.Context(), "Failed to extract page",
				"error", err,
				"url", form.URL)

			s.renderFormError(w, r, form, extractor.ExtractFailedMessage)
			return
		}

		if utf8.RuneCountInString(strings.TrimSpace(page.Text)) < extractor.MinContentLength {
			s.renderFormError(w, r, form, extractor.NoContentMessage)
			return
		}

		title, text, source = page.Title, page.Text, form.URL

	case inputTypeText:
		text = strings.TrimSpace(form.Text)
		if utf8.RuneCountInString(text) < summarizer.MinTextLength {
			s.renderFormError(w, r, form, fmt.Sprintf(textTooShortFormat, summarizer.MinTextLength))
			return
		}

		source = directTextSource

	default:
		s.renderFormError(w, r, form, unknownInputMessage)
		return
	}

	sourceURL := ""
	if form.InputType == inputTypeURL {
		sourceURL = source
	}

	res, err := s.deps.Summarizer.Summarize(r.Context(), summarizer.Request{
		Text:      text,
		SourceURL: sourceURL,
	})
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to generate summary",
			"error", err,
			"inputType", form.InputType,
			"textLen", len(text))

		s.renderFormError(w, r, form, summarizer.UserMessage(err))
		return
	}

	s.render(w, r, http.StatusOK, resultTemplate, resultPage{
		Title:        title,
		OriginalText: text,
		Summary:      res.Summary,
		Source:       source,
		Provider:     res.Provider,
		Fallback:     res.ProducedBy == summarizer.SourceFallback,
		Stats:        domain.NewStats(text, res.Summary),
	})
}

func (s *Server) renderFormError(w http.ResponseWriter, r *http.Request, form indexPage, message string) {
	form.Error = message
	if form.InputType != inputTypeText {
		form.InputType = inputTypeURL
	}

	s.render(w, r, http.StatusOK, indexTemplate, form)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer

	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render template",
			"error", err,
			"template", name)

		http.Error(w, templateRenderFailed, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		s.log.WarnContext(r.Context(), "Failed to write page",
			"error", err,
			"template", name)
	}
}
