package news

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"newsbeam/internal/domain"
	"newsbeam/internal/extractor"
	"newsbeam/internal/summarizer"
)

var ErrItemNotFound = errors.New("news item not found")

// FeedStore is the part of the database the catalog needs.
type FeedStore interface {
	ListFeeds(ctx context.Context) ([]domain.Feed, error)
	UpdateFeedTitle(ctx context.Context, feedID int64, title string) error
}

type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error)
}

type PageExtractor interface {
	Extract(ctx context.Context, rawURL string) (extractor.Page, error)
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Category domain.Category
	Query    string
}

// ItemSummary is a summarized news item.
type ItemSummary struct {
	Item   domain.NewsItem
	Text   string
	Result summarizer.Result
	Stats  domain.Stats
}

type Option func(*Catalog)

// WithHTTPClient replaces the client used to download feeds.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Catalog) {
		c.client = client
	}
}

// WithExtractor lets Summarize fetch the article page when the feed only
// carries a short teaser.
func WithExtractor(e PageExtractor) Option {
	return func(c *Catalog) {
		c.extractor = e
	}
}

// Catalog holds the daily news snapshot built from the stored feeds.
type Catalog struct {
	store      FeedStore
	summarizer Summarizer
	extractor  PageExtractor
	client     *http.Client
	fetcher    *fetcher
	now        func() time.Time
	log        *slog.Logger

	mu          sync.RWMutex
	items       []domain.NewsItem
	byID        map[string]domain.NewsItem
	refreshedAt time.Time
}

func NewCatalog(
	store FeedStore,
	s Summarizer,
	log *slog.Logger,
	opts ...Option,
) *Catalog {
	c := &Catalog{
		store:      store,
		summarizer: s,
		now:        time.Now,
		log:        log,
		byID:       make(map[string]domain.NewsItem),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.fetcher = newFetcher(store, c.client, log)

	return c
}

// Refresh reloads every feed and replaces the snapshot. Feeds that fail keep
// no items but do not prevent the others from being published.
func (c *Catalog) Refresh(ctx context.Context) error {
	feeds, err := c.store.ListFeeds(ctx)
	if err != nil {
		return fmt.Errorf("list feeds: %w", err)
	}

	now := c.now()

	items, fetchErr := c.fetcher.fetchFeeds(ctx, feeds, now)
	if ctx.Err() != nil {
		return errors.Join(fetchErr, ctx.Err())
	}

	items = dedupeItems(items)
	slices.SortStableFunc(items, func(a, b domain.NewsItem) int {
		if byTime := b.PublishedAt.Compare(a.PublishedAt); byTime != 0 {
			return byTime
		}
		return cmp.Compare(a.Title, b.Title)
	})

	byID := make(map[string]domain.NewsItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	c.mu.Lock()
	c.items = items
	c.byID = byID
	c.refreshedAt = now
	c.mu.Unlock()

	c.log.InfoContext(ctx, "News catalog is refreshed",
		"feedCount", len(feeds),
		"itemCount", len(items),
		"failed", fetchErr != nil)

	return fetchErr
}

// List returns the snapshot items matching filter, newest first.
func (c *Catalog) List(filter Filter) []domain.NewsItem {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.NewsItem, 0, len(c.items))
	for _, item := range c.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}

		if query != "" &&
			!strings.Contains(strings.ToLower(item.Title), query) &&
			!strings.Contains(strings.ToLower(item.Description), query) {
			continue
		}

		result = append(result, item)
	}

	return result
}

func (c *Catalog) Item(itemID string) (domain.NewsItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.byID[itemID]

	return item, ok
}

func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.refreshedAt
}

// Summarize summarizes one snapshot item. Errors from the summarizer are
// returned unwrapped so callers can inspect them.
func (c *Catalog) Summarize(ctx context.Context, itemID string) (ItemSummary, error) {
	item, ok := c.Item(itemID)
	if !ok {
		return ItemSummary{}, ErrItemNotFound
	}

	text := c.itemText(ctx, item)

	res, err := c.summarizer.Summarize(ctx, summarizer.Request{
		Text:      text,
		SourceURL: item.URL,
	})
	if err != nil {
		return ItemSummary{Item: item, Text: text}, err
	}

	return ItemSummary{
		Item:   item,
		Text:   text,
		Result: res,
		Stats:  domain.NewStats(text, res.Summary),
	}, nil
}

func (c *Catalog) itemText(ctx context.Context, item domain.NewsItem) string {
	text := item.Content
	if len(item.Description) > len(text) {
		text = item.Description
	}

	if len(text) >= extractor.MinContentLength || c.extractor == nil {
		return joinTitle(item.Title, text)
	}

	page, err := c.extractor.Extract(ctx, item.URL)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to extract news item page",
			"error", err,
			"itemID", item.ID,
			"url", item.URL)

		return joinTitle(item.Title, text)
	}

	if len(page.Text) > len(text) {
		text = page.Text
	}

	return joinTitle(item.Title, text)
}

func joinTitle(title string, text string) string {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)

	if title == "" || strings.HasPrefix(text, title) {
		return text
	}
	if text == "" {
		return title
	}

	return title + "\n\n" + text
}

func dedupeItems(items []domain.NewsItem) []domain.NewsItem {
	seen := make(map[string]struct{}, len(items))
	result := make([]domain.NewsItem, 0, len(items))

	for _, item := range items {
		key := extractor.CanonicalURL(item.URL)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}
