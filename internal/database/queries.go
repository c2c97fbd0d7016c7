package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsbeam/internal/domain"
)

var ErrFeedNotFound = errors.New("feed not found")

// AddFeed stores a feed source. Adding a known URL updates its category and
// title and returns the existing ID.
func (d *Database) AddFeed(
	ctx context.Context,
	category domain.Category,
	feedURL string,
	feedTitle string,
) (int64, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return 0, errors.New("feed URL is empty")
	}

	feedTitle = strings.TrimSpace(feedTitle)
	if feedTitle == "" {
		feedTitle = feedURL
	}

	query := `insert into feeds (category, url, title) values (?, ?, ?)
	on conflict (url) do update
	set category = excluded.category, title = excluded.title`

	if _, err := d.db.ExecContext(ctx, query, string(category), feedURL, feedTitle); err != nil {
		return 0, fmt.Errorf("execute query: %w", err)
	}

	var id int64
	if err := d.db.QueryRowContext(ctx, "select id from feeds where url = ?", feedURL).Scan(&id); err != nil {
		return 0, fmt.Errorf("scan row: %w", err)
	}

	return id, nil
}

func (d *Database) UpdateFeedTitle(ctx context.Context, feedID int64, feedTitle string) error {
	feedTitle = strings.TrimSpace(feedTitle)
	if feedTitle == "" {
		return errors.New("feed title is empty")
	}

	query := "update feeds set title = ? where id = ?"

	_, err := d.db.ExecContext(ctx, query, feedTitle, feedID)

	return err
}

func (d *Database) RemoveFeed(ctx context.Context, feedID int64) error {
	query := "delete from feeds where id = ?"

	res, err := d.db.ExecContext(ctx, query, feedID)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if affected == 0 {
		return ErrFeedNotFound
	}

	return nil
}

func (d *Database) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	query := "select id, category, url, title from feeds order by id"

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListFeeds")
		}
	}()

	var feeds []domain.Feed
	for rows.Next() {
		var (
			f        domain.Feed
			category string
		)
		if err = rows.Scan(&f.ID, &category, &f.URL, &f.Title); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		f.Category = domain.Category(category)
		f.URL = strings.TrimSpace(f.URL)
		f.Title = strings.TrimSpace(f.Title)

		feeds = append(feeds, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return feeds, nil
}
