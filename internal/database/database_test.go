package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"newsbeam/internal/database"
	"newsbeam/internal/domain"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"), log)
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})

	return db
}

func TestAddAndListFeeds(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	techID, err := db.AddFeed(ctx, domain.CategoryTechnology, " https://example.com/tech.xml ", "")
	if err != nil {
		t.Fatalf("add feed: %v", err)
	}

	worldID, err := db.AddFeed(ctx, domain.CategoryWorld, "https://example.com/world.xml", "World News")
	if err != nil {
		t.Fatalf("add feed: %v", err)
	}

	feeds, err := db.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("list feeds: %v", err)
	}

	if len(feeds) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(feeds))
	}

	if feeds[0].ID != techID || feeds[0].Title != "https://example.com/tech.xml" {
		t.Fatalf("unexpected first feed: %+v", feeds[0])
	}

	if feeds[1].ID != worldID || feeds[1].Category != domain.CategoryWorld {
		t.Fatalf("unexpected second feed: %+v", feeds[1])
	}
}

func TestAddFeedUpsertsByURL(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	firstID, err := db.AddFeed(ctx, domain.CategoryTechnology, "https://example.com/feed", "Old")
	if err != nil {
		t.Fatalf("add feed: %v", err)
	}

	secondID, err := db.AddFeed(ctx, domain.CategoryScience, "https://example.com/feed", "New")
	if err != nil {
		t.Fatalf("add feed again: %v", err)
	}

	if firstID != secondID {
		t.Fatalf("expected the same ID, got %d and %d", firstID, secondID)
	}

	feeds, err := db.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("list feeds: %v", err)
	}

	if len(feeds) != 1 || feeds[0].Category != domain.CategoryScience || feeds[0].Title != "New" {
		t.Fatalf("unexpected feeds: %+v", feeds)
	}
}

func TestAddFeedRejectsEmptyURL(t *testing.T) {
	db := newTestDatabase(t)

	if _, err := db.AddFeed(context.Background(), domain.CategoryWorld, "  ", "title"); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}

func TestUpdateFeedTitle(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	id, err := db.AddFeed(ctx, domain.CategoryHealth, "https://example.com/health", "")
	if err != nil {
		t.Fatalf("add feed: %v", err)
	}

	if err = db.UpdateFeedTitle(ctx, id, " Health Daily "); err != nil {
		t.Fatalf("update feed title: %v", err)
	}

	feeds, err := db.ListFeeds(ctx)
	if err != nil {
		t.Fatalf("list feeds: %v", err)
	}

	if feeds[0].Title != "Health Daily" {
		t.Fatalf("unexpected title: %q", feeds[0].Title)
	}

	if err = db.UpdateFeedTitle(ctx, id, " "); err == nil {
		t.Fatalf("expected error for empty title")
	}
}

func TestRemoveFeed(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	id, err := db.AddFeed(ctx, domain.CategoryLocal, "https://example.com/local", "Local")
	if err != nil {
		t.Fatalf("add feed: %v", err)
	}

	if err = db.RemoveFeed(ctx, id); err != nil {
		t.Fatalf("remove feed: %v", err)
	}

	if err = db.RemoveFeed(ctx, id); !errors.Is(err, database.ErrFeedNotFound) {
		t.Fatalf("expected ErrFeedNotFound, got %v", err)
	}
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	for range 2 {
		db, err := database.New(context.Background(), path, log)
		if err != nil {
			t.Fatalf("create database: %v", err)
		}
		if err = db.Close(); err != nil {
			t.Fatalf("close database: %v", err)
		}
	}
}
