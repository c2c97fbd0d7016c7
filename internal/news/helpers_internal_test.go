package news

import (
	"testing"

	"github.com/mmcdole/gofeed"
)

func TestHTMLText(t *testing.T) {
	cases := map[string]string{
		"":                                     "",
		"  plain   text  ":                     "plain text",
		"<p>Hello <b>world</b></p>":            "Hello world",
		"Fish &amp; chips":                     "Fish & chips",
		"<p>a</p><script>x()</script><p>b</p>": "ab",
	}

	for in, want := range cases {
		if got := htmlText(in); got != want {
			t.Fatalf("htmlText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestItemIDIsStable(t *testing.T) {
	a := itemID(1, "https://example.com/a")
	b := itemID(1, "https://example.com/a")
	c := itemID(2, "https://example.com/a")

	if a != b {
		t.Fatalf("expected stable IDs, got %q and %q", a, b)
	}

	if a == c {
		t.Fatalf("expected IDs to depend on the feed")
	}

	if len(a) != itemIDLength {
		t.Fatalf("unexpected ID length: %d", len(a))
	}
}

func TestItemAuthor(t *testing.T) {
	if got := itemAuthor(&gofeed.Item{Author: &gofeed.Person{Name: " Ada "}}); got != "Ada" {
		t.Fatalf("unexpected author: %q", got)
	}

	item := &gofeed.Item{Authors: []*gofeed.Person{nil, {Name: ""}, {Name: "Grace"}}}
	if got := itemAuthor(item); got != "Grace" {
		t.Fatalf("unexpected author: %q", got)
	}

	if got := itemAuthor(&gofeed.Item{}); got != "" {
		t.Fatalf("expected empty author, got %q", got)
	}
}
