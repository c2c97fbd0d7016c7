package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbeam/internal/domain"
)

const (
	feedClientTimeout                    = 20 * time.Second
	fetchFeedsMaxConcurrencyGrowthFactor = 4
	newsWindow                           = 24 * time.Hour
	parseFeedGracePeriod                 = 10 * time.Minute
)

type feedItems struct {
	feed  domain.Feed
	items []domain.NewsItem
}

type fetcher struct {
	store  FeedStore
	client *http.Client
	log    *slog.Logger
}

func newFetcher(store FeedStore, client *http.Client, log *slog.Logger) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: feedClientTimeout}
	}

	return &fetcher{store: store, client: client, log: log}
}

// fetchFeeds parses every feed with a bounded number of workers. Items of
// feeds that fail are dropped and their errors joined.
func (f *fetcher) fetchFeeds(
	ctx context.Context,
	feeds []domain.Feed,
	now time.Time,
) ([]domain.NewsItem, error) {
	if len(feeds) == 0 {
		return nil, nil
	}

	var writeWg sync.WaitGroup

	concurrency := min(runtime.NumCPU()*fetchFeedsMaxConcurrencyGrowthFactor, len(feeds))
	semCh := make(chan struct{}, concurrency)

	resultCh := make(chan feedItems, concurrency)
	errCh := make(chan error, concurrency)

	go func() {
		for _, feed := range feeds {
			writeWg.Add(1)
			semCh <- struct{}{}

			go func(copiedFeed domain.Feed) {
				defer writeWg.Done()
				defer func() { <-semCh }()

				items, err := f.parseFeed(ctx, copiedFeed, now)
				if err != nil {
					errCh <- fmt.Errorf("parse feed (URL = %s): %w", copiedFeed.URL, err)
				}

				if len(items) != 0 {
					resultCh <- feedItems{feed: copiedFeed, items: items}
				}
			}(feed)
		}

		writeWg.Wait()
		close(resultCh)
		close(errCh)
	}()

	var (
		items []domain.NewsItem
		errs  []error
	)

	for resultCh != nil || errCh != nil {
		select {
		case res, ok := <-resultCh:
			if !ok {
				resultCh = nil
				continue
			}
			items = append(items, res.items...)
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			errs = append(errs, err)
		}
	}

	return items, errors.Join(errs...)
}

func (f *fetcher) parseFeed(
	ctx context.Context,
	feed domain.Feed,
	now time.Time,
) ([]domain.NewsItem, error) {
	normalizedFeedURL := strings.TrimSpace(feed.URL)
	normalizedFeedTitle := strings.TrimSpace(feed.Title)

	// gofeed parsers keep state between calls.
	libParser := gofeed.NewParser()
	libParser.Client = f.client

	parsed, err := libParser.ParseURLWithContext(normalizedFeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	parsedTitle := strings.TrimSpace(parsed.Title)

	var updateTitleErr error
	if parsedTitle != "" && parsedTitle != normalizedFeedTitle && f.store != nil {
		if err = f.store.UpdateFeedTitle(ctx, feed.ID, parsedTitle); err != nil {
			updateTitleErr = fmt.Errorf("update feed title: %w", err)
		} else {
			normalizedFeedTitle = parsedTitle
		}
	}

	source := normalizedFeedTitle
	if source == "" {
		source = parsedTitle
	}
	if source == "" {
		source = normalizedFeedURL
	}

	cutoffTime := now.Add(-newsWindow - parseFeedGracePeriod)

	var items []domain.NewsItem
	for _, item := range parsed.Items {
		newsItem, ok := f.parseFeedItem(ctx, now, cutoffTime, feed, source, item)
		if !ok {
			continue
		}

		items = append(items, newsItem)
	}

	return items, updateTitleErr
}

func (f *fetcher) parseFeedItem(
	ctx context.Context,
	now time.Time,
	cutoffTime time.Time,
	feed domain.Feed,
	source string,
	item *gofeed.Item,
) (domain.NewsItem, bool) {
	if item == nil {
		return domain.NewsItem{}, false
	}

	publishedTime := now

	if item.PublishedParsed != nil {
		publishedTime = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedTime = *item.UpdatedParsed
	}

	if !publishedTime.After(cutoffTime) {
		return domain.NewsItem{}, false
	}

	itemURL := strings.TrimSpace(item.Link)
	if itemURL == "" {
		f.log.WarnContext(ctx, "Skipping feed item with empty URL",
			"feedURL", feed.URL,
			"source", source,
			"itemTitle", item.Title)

		return domain.NewsItem{}, false
	}

	title := htmlText(item.Title)
	if title == "" {
		title = itemURL
	}

	return domain.NewsItem{
		ID:          itemID(feed.ID, itemURL),
		Title:       title,
		Description: htmlText(item.Description),
		Content:     htmlText(item.Content),
		URL:         itemURL,
		Source:      source,
		Author:      itemAuthor(item),
		PublishedAt: publishedTime.UTC(),
		Category:    feed.Category,
		FeedID:      feed.ID,
	}, true
}
