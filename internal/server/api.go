package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"newsbeam/internal/database"
	"newsbeam/internal/domain"
	"newsbeam/internal/extractor"
	"newsbeam/internal/news"
	"newsbeam/internal/summarizer"
)

const (
	errorKindBadRequest     = "bad_request"
	errorKindValidation     = "validation_failed"
	errorKindExtraction     = "extraction_failed"
	errorKindNotFound       = "not_found"
	errorKindInternal       = "internal_error"
	invalidBodyMessage      = "Invalid request body"
	validationFailedMessage = "Validation failed"
)

type summarizeRequest struct {
	Text string `json:"text" validate:"required_without=URL,omitempty,min=10,max=200000"`
	URL  string `json:"url"  validate:"omitempty,url"`
}

type summaryResponse struct {
	Summary            string `json:"summary"`
	ProducedBy         string `json:"producedBy"`
	Provider           string `json:"provider"`
	Title              string `json:"title,omitempty"`
	SourceURL          string `json:"sourceUrl,omitempty"`
	WordCountOriginal  int    `json:"wordCountOriginal"`
	WordCountSummary   int    `json:"wordCountSummary"`
	ReadingTimeMinutes int    `json:"readingTimeMinutes"`
}

type newsItemResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	URL                string    `json:"url"`
	Source             string    `json:"source"`
	Author             string    `json:"author,omitempty"`
	PublishedAt        time.Time `json:"publishedAt"`
	Category           string    `json:"category"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes"`
}

type newsListResponse struct {
	Items       []newsItemResponse `json:"items"`
	RefreshedAt *time.Time         `json:"refreshedAt,omitempty"`
}

type categoryResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type addFeedRequest struct {
	Category string `json:"category" validate:"required,oneof=technology business politics sports entertainment health science world local"`
	URL      string `json:"url"      validate:"required,url"`
	Title    string `json:"title"    validate:"max=200"`
}

type feedResponse struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

type refreshResponse struct {
	ItemCount int    `json:"itemCount"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleSummarizeAPI(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	resp := summaryResponse{}
	text := strings.TrimSpace(req.Text)

	if req.URL != "" {
		page, err := s.deps.Extractor.Extract(r.Context(), req.URL)
		if err != nil {
			s.log.WarnContext(r.Context(), "Failed to extract page",
				"error", err,
				"url", req.URL)

			s.writeError(w, r, http.StatusUnprocessableEntity, errorKindExtraction, extractor.ExtractFailedMessage)
			return
		}

		if utf8.RuneCountInString(strings.TrimSpace(page.Text)) < extractor.MinContentLength {
			s.writeError(w, r, http.StatusUnprocessableEntity, errorKindExtraction, extractor.NoContentMessage)
			return
		}

		text = page.Text
		resp.Title = page.Title
		resp.SourceURL = page.URL
	}

	res, err := s.deps.Summarizer.Summarize(r.Context(), summarizer.Request{
		Text:      text,
		SourceURL: resp.SourceURL,
	})
	if err != nil {
		s.writeSummarizeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, newSummaryResponse(resp, res, domain.NewStats(text, res.Summary)))
}

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	filter := news.Filter{Query: r.URL.Query().Get("q")}

	if raw := r.URL.Query().Get("category"); raw != "" && raw != "all" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			s.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
				Error:  validationFailedMessage,
				Kind:   errorKindValidation,
				Fields: map[string]string{"category": "category is unknown"},
			})
			return
		}

		filter.Category = category
	}

	items := s.deps.News.List(filter)

	resp := newsListResponse{Items: make([]newsItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, newNewsItemResponse(item))
	}

	if refreshedAt := s.deps.News.RefreshedAt(); !refreshedAt.IsZero() {
		resp.RefreshedAt = &refreshedAt
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := domain.Categories()

	resp := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, categoryResponse{ID: string(c), Title: c.Title()})
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleRefreshNews(w http.ResponseWriter, r *http.Request) {
	err := s.deps.News.Refresh(r.Context())

	resp := refreshResponse{ItemCount: len(s.deps.News.List(news.Filter{}))}
	if err != nil {
		s.log.WarnContext(r.Context(), "News refresh has failures",
			"error", err)

		resp.Error = err.Error()
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSummarizeNews(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	summary, err := s.deps.News.Summarize(r.Context(), itemID)
	if errors.Is(err, news.ErrItemNotFound) {
		s.writeError(w, r, http.StatusNotFound, errorKindNotFound, "News item not found")
		return
	}
	if err != nil {
		s.writeSummarizeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, newSummaryResponse(summaryResponse{
		Title:     summary.Item.Title,
		SourceURL: summary.Item.URL,
	}, summary.Result, summary.Stats))
}

func (s *Server) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.deps.Feeds.ListFeeds(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to list feeds",
			"error", err)

		s.writeError(w, r, http.StatusInternalServerError, errorKindInternal, "Failed to list feeds")
		return
	}

	resp := make([]feedResponse, 0, len(feeds))
	for _, f := range feeds {
		resp = append(resp, newFeedResponse(f))
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	var req addFeedRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	category, _ := domain.ParseCategory(req.Category)

	id, err := s.deps.Feeds.AddFeed(r.Context(), category, req.URL, req.Title)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to add feed",
			"error", err,
			"url", req.URL)

		s.writeError(w, r, http.StatusInternalServerError, errorKindInternal, "Failed to add feed")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(req.URL)
	}

	s.writeJSON(w, r, http.StatusCreated, feedResponse{
		ID:       id,
		Category: string(category),
		URL:      strings.TrimSpace(req.URL),
		Title:    title,
	})
}

func (s *Server) handleRemoveFeed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, errorKindBadRequest, "Invalid feed ID")
		return
	}

	err = s.deps.Feeds.RemoveFeed(r.Context(), id)
	if errors.Is(err, database.ErrFeedNotFound) {
		s.writeError(w, r, http.StatusNotFound, errorKindNotFound, "Feed not found")
		return
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to remove feed",
			"error", err,
			"feedID", id)

		s.writeError(w, r, http.StatusInternalServerError, errorKindInternal, "Failed to remove feed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeRequest writes the error response itself and reports whether the
// handler may continue.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	fields, err := s.decodeAndValidate(w, r, dst)
	if err != nil {
		s.log.WarnContext(r.Context(), "Failed to decode request",
			"error", err,
			"path", r.URL.Path)

		s.writeError(w, r, http.StatusBadRequest, errorKindBadRequest, invalidBodyMessage)
		return false
	}

	if len(fields) > 0 {
		s.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{
			Error:  validationFailedMessage,
			Kind:   errorKindValidation,
			Fields: fields,
		})
		return false
	}

	return true
}

func (s *Server) writeSummarizeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{
		Error: summarizer.UserMessage(err),
		Kind:  errorKindInternal,
	}

	var f *summarizer.Failure
	if !errors.As(err, &f) {
		s.log.ErrorContext(r.Context(), "Unexpected summarize error",
			"error", err)

		s.writeJSON(w, r, http.StatusInternalServerError, resp)
		return
	}

	resp.Kind = f.Reason.String()
	for _, a := range f.Attempts {
		resp.Attempts = append(resp.Attempts, attemptResponse{
			Provider: a.Provider,
			Kind:     a.Kind.String(),
			Message:  a.Message,
		})
	}

	s.writeJSON(w, r, failureStatus(f.Reason), resp)
}

func failureStatus(reason summarizer.Reason) int {
	switch reason {
	case summarizer.ReasonInvalidInput:
		return http.StatusUnprocessableEntity
	case summarizer.ReasonInvalidCredentials, summarizer.ReasonCanceled:
		return http.StatusServiceUnavailable
	case summarizer.ReasonBothProvidersFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newSummaryResponse(base summaryResponse, res summarizer.Result, stats domain.Stats) summaryResponse {
	base.Summary = res.Summary
	base.ProducedBy = res.ProducedBy.String()
	base.Provider = res.Provider
	base.WordCountOriginal = stats.WordCountOriginal
	base.WordCountSummary = stats.WordCountSummary
	base.ReadingTimeMinutes = stats.ReadingTimeMinutes

	return base
}

func newNewsItemResponse(item domain.NewsItem) newsItemResponse {
	body := item.Content
	if body == "" {
		body = item.Description
	}

	return newsItemResponse{
		ID:                 item.ID,
		Title:              item.Title,
		Description:        item.Description,
		URL:                item.URL,
		Source:             item.Source,
		Author:             item.Author,
		PublishedAt:        item.PublishedAt,
		Category:           string(item.Category),
		ReadingTimeMinutes: domain.ReadingTime(body),
	}
}

func newFeedResponse(f domain.Feed) feedResponse {
	return feedResponse{
		ID:       f.ID,
		Category: string(f.Category),
		URL:      f.URL,
		Title:    f.Title,
	}
}
