package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	defaultTimeout   = 20 * time.Second
	maxResponseBytes = 5 << 20

	// MinContentLength is the shortest extracted text worth summarizing.
	MinContentLength = 50

	noiseSelector = "script, style, noscript, template, svg, nav, header, footer, aside, form, iframe"
)

// Page is the plain text extracted from a web page.
type Page struct {
	URL   string
	Title string
	Text  string
}

type Extractor struct {
	client *http.Client
	cache  *pageCache
	now    func() time.Time
	log    *slog.Logger
}

func New(timeout time.Duration, log *slog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Extractor{
		client: &http.Client{Timeout: timeout},
		cache:  newPageCache(pageCacheMaxEntries),
		now:    time.Now,
		log:    log,
	}
}

// Extract fetches rawURL and returns its readable text.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Page, error) {
	if !IsValidURL(rawURL) {
		return Page{}, fmt.Errorf("invalid URL: %q", rawURL)
	}

	pageURL := CanonicalURL(rawURL)
	now := e.now()

	if page, ok := e.cache.get(pageURL, now); ok {
		e.log.DebugContext(ctx, "Page is served from cache",
			"url", pageURL)

		return page, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req) //nolint:gosec // URL is validated above.
	if err != nil {
		return Page{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL,
				"operation", "Extract")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Page{}, fmt.Errorf("create document from reader: %w", err)
	}

	page := Page{
		URL:   pageURL,
		Title: documentTitle(doc),
		Text:  documentText(doc),
	}
	if page.Text == "" {
		return Page{}, errors.New("page has no readable text")
	}

	e.cache.set(pageURL, page, now.Add(pageCacheTTL), now)

	return page, nil
}

func documentTitle(doc *goquery.Document) string {
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return normalizeSpace(doc.Find("title").First().Text())
}

// documentText prefers <article>, then paragraphs, then the whole body.
func documentText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	if text := blocksText(doc.Find("article").Find("h1, h2, h3, p, li, blockquote")); text != "" {
		return text
	}

	if text := blocksText(doc.Find("article")); text != "" {
		return text
	}

	if text := blocksText(doc.Find("p")); text != "" {
		return text
	}

	return normalizeSpace(doc.Find("body").Text())
}

func blocksText(sel *goquery.Selection) string {
	var b strings.Builder

	sel.Each(func(_ int, s *goquery.Selection) {
		s.Find("br").Each(func(_ int, br *goquery.Selection) {
			br.ReplaceWithHtml(" ")
		})

		fragment := normalizeSpace(s.Text())
		if fragment == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fragment)
	})

	return b.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
