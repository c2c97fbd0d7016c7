package extractor_test

import (
	"slices"
	"testing"

	"newsbeam/internal/extractor"
)

func TestIsValidURL(t *testing.T) {
	valid := []string{"https://example.com", "http://example.com/a?b=c", " https://example.com/x "}
	for _, raw := range valid {
		if !extractor.IsValidURL(raw) {
			t.Fatalf("expected %q to be valid", raw)
		}
	}

	invalid := []string{"", "example.com", "/relative/path", "https://", "::not a url::"}
	for _, raw := range invalid {
		if extractor.IsValidURL(raw) {
			t.Fatalf("expected %q to be invalid", raw)
		}
	}
}

func TestFindURLs(t *testing.T) {
	text := "Read https://example.com/a and http://example.org/b, " +
		"again https://example.com/a or mail mailto:me@example.com"

	got := extractor.FindURLs(text)
	want := []string{"https://example.com/a", "http://example.org/b"}

	if !slices.Equal(got, want) {
		t.Fatalf("unexpected URLs: got %q want %q", got, want)
	}
}

func TestFindURLsNone(t *testing.T) {
	if got := extractor.FindURLs("just some words"); len(got) != 0 {
		t.Fatalf("expected no URLs, got %q", got)
	}
}

func TestCanonicalURL(t *testing.T) {
	got := extractor.CanonicalURL("  https://example.com/news?id=1#comments  ")
	want := "https://example.com/news?id=1"
	if got != want {
		t.Fatalf("canonicalized URL mismatch: got %q want %q", got, want)
	}
}

func TestCanonicalURLInvalid(t *testing.T) {
	raw := "::not a url::"
	if got := extractor.CanonicalURL(raw); got != raw {
		t.Fatalf("expected invalid URLs to be returned verbatim, got %q", got)
	}
}
