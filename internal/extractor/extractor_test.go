package extractor_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"newsbeam/internal/extractor"
)

const articlePage = `<!doctype html>
<html>
<head>
  <title>Fallback title</title>
  <meta property="og:title" content=" Paris Hub ">
  <script>var tracking = "ignored";</script>
</head>
<body>
  <nav>Home | World | Sports</nav>
  <article>
    <h1>Paris</h1>
    <p>France's capital city is Paris,<br>a major European hub.</p>
    <p>  It hosts   many institutions. </p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

const paragraphsPage = `<html><head><title> Plain page </title></head>
<body><div><p>First paragraph.</p><p>Second paragraph.</p></div><aside>Ads</aside></body></html>`

func newTestExtractor() *extractor.Extractor {
	return extractor.New(time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	page, err := newTestExtractor().Extract(context.Background(), srv.URL+"/news#top")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if page.Title != "Paris Hub" {
		t.Fatalf("unexpected title: %q", page.Title)
	}

	want := "Paris\nFrance's capital city is Paris, a major European hub.\nIt hosts many institutions."
	if page.Text != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", page.Text, want)
	}

	if page.URL != srv.URL+"/news" {
		t.Fatalf("expected fragment to be dropped, got %q", page.URL)
	}
}

func TestExtractParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(paragraphsPage))
	}))
	defer srv.Close()

	page, err := newTestExtractor().Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if page.Title != "Plain page" {
		t.Fatalf("unexpected title: %q", page.Title)
	}

	if page.Text != "First paragraph.\nSecond paragraph." {
		t.Fatalf("unexpected text: %q", page.Text)
	}

	if strings.Contains(page.Text, "Ads") {
		t.Fatalf("expected aside to be removed")
	}
}

func TestExtractUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	e := newTestExtractor()
	for range 3 {
		if _, err := e.Extract(context.Background(), srv.URL); err != nil {
			t.Fatalf("extract: %v", err)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single fetch, got %d", got)
	}
}

func TestExtractErrors(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><script>x()</script></body></html>"))
	}))
	defer empty.Close()

	cases := map[string]string{
		"invalid URL": "example.com/no-scheme",
		"bad status":  notFound.URL,
		"no text":     empty.URL,
	}

	for name, rawURL := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := newTestExtractor().Extract(context.Background(), rawURL); err == nil {
				t.Fatalf("expected error for %q", rawURL)
			}
		})
	}
}
