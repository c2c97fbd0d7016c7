package news

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsbeam/internal/domain"
	"newsbeam/internal/extractor"
)

// Seed is a feed source configured as "category=https://example.com/rss".
type Seed struct {
	Category domain.Category
	URL      string
}

type FeedAdder interface {
	AddFeed(ctx context.Context, category domain.Category, feedURL string, title string) (int64, error)
}

// ParseSeeds parses configured feed sources. Blank entries are skipped.
func ParseSeeds(entries []string) ([]Seed, error) {
	var (
		seeds []Seed
		errs  []error
	)

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		rawCategory, rawURL, ok := strings.Cut(entry, "=")
		if !ok {
			errs = append(errs, fmt.Errorf("parse seed %q: missing '='", entry))
			continue
		}

		category, ok := domain.ParseCategory(rawCategory)
		if !ok {
			errs = append(errs, fmt.Errorf("parse seed %q: unknown category", entry))
			continue
		}

		rawURL = strings.TrimSpace(rawURL)
		if !extractor.IsValidURL(rawURL) {
			errs = append(errs, fmt.Errorf("parse seed %q: invalid URL", entry))
			continue
		}

		seeds = append(seeds, Seed{Category: category, URL: rawURL})
	}

	return seeds, errors.Join(errs...)
}

// SeedFeeds stores seeds. Known URLs are updated in place.
func SeedFeeds(ctx context.Context, store FeedAdder, seeds []Seed) error {
	var errs []error

	for _, seed := range seeds {
		if _, err := store.AddFeed(ctx, seed.Category, seed.URL, ""); err != nil {
			errs = append(errs, fmt.Errorf("add feed (URL = %s): %w", seed.URL, err))
		}
	}

	return errors.Join(errs...)
}
