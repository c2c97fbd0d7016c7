package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"newsbeam/internal/domain"
	"newsbeam/internal/extractor"
	"newsbeam/internal/news"
	"newsbeam/internal/summarizer"
)

const (
	defaultRequestTimeout = 150 * time.Second
	readHeaderTimeout     = 10 * time.Second
	shutdownTimeout       = 10 * time.Second
	maxRequestBytes       = 1 << 20
	corsMaxAgeSeconds     = 300
)

//go:embed templates/*.html
var templatesFS embed.FS

type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error)
}

type PageExtractor interface {
	Extract(ctx context.Context, rawURL string) (extractor.Page, error)
}

type NewsCatalog interface {
	List(filter news.Filter) []domain.NewsItem
	Summarize(ctx context.Context, itemID string) (news.ItemSummary, error)
	Refresh(ctx context.Context) error
	RefreshedAt() time.Time
}

type FeedStore interface {
	AddFeed(ctx context.Context, category domain.Category, feedURL string, title string) (int64, error)
	RemoveFeed(ctx context.Context, feedID int64) error
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
}

// Deps are the components served over HTTP.
type Deps struct {
	Summarizer Summarizer
	Extractor  PageExtractor
	News       NewsCatalog
	Feeds      FeedStore
}

type Option func(*Server)

// WithCORSOrigins allows cross-origin calls to the JSON API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

type Server struct {
	deps           Deps
	validate       *validator.Validate
	templates      *template.Template
	corsOrigins    []string
	requestTimeout time.Duration
	log            *slog.Logger
}

func New(deps Deps, log *slog.Logger, opts ...Option) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		deps:           deps,
		validate:       newValidator(),
		templates:      tmpl,
		requestTimeout: defaultRequestTimeout,
		log:            log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Get("/", s.handleIndex)
	r.Post("/", s.handleSummarizeForm)
	r.Get("/new", s.handleNew)
	r.Get("/demo", s.handleDemo)

	r.Route("/api", func(r chi.Router) {
		if len(s.corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.corsOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				ExposedHeaders: []string{"X-Request-Id"},
				MaxAge:         corsMaxAgeSeconds,
			}))
		}

		r.Post("/summarize", s.handleSummarizeAPI)

		r.Route("/news", func(r chi.Router) {
			r.Get("/", s.handleListNews)
			r.Get("/categories", s.handleListCategories)
			r.Post("/refresh", s.handleRefreshNews)
			r.Post("/{id}/summarize", s.handleSummarizeNews)

			r.Get("/feeds", s.handleListFeeds)
			r.Post("/feeds", s.handleAddFeed)
			r.Delete("/feeds/{id}", s.handleRemoveFeed)
		})
	})

	return r
}

// ListenAndServe serves until ctx is done and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "HTTP server is listening",
			"addr", addr)

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	s.log.InfoContext(shutdownCtx, "HTTP server is stopped")

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			startedAt := time.Now()

			defer func() {
				log.InfoContext(r.Context(), "Request is handled",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(startedAt),
					"requestID", middleware.GetReqID(r.Context()))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
