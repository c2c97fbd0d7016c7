package domain

import (
	"math"
	"strings"
	"time"
)

const wordsPerMinute = 200

type Category string

const (
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategoryPolitics      Category = "politics"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategoryWorld         Category = "world"
	CategoryLocal         Category = "local"
)

var categoryTitles = map[Category]string{
	CategoryTechnology:    "Technology",
	CategoryBusiness:      "Business",
	CategoryPolitics:      "Politics",
	CategorySports:        "Sports",
	CategoryEntertainment: "Entertainment",
	CategoryHealth:        "Health",
	CategoryScience:       "Science",
	CategoryWorld:         "World",
	CategoryLocal:         "Local",
}

// Categories lists every news category in display order.
func Categories() []Category {
	return []Category{
		CategoryTechnology,
		CategoryBusiness,
		CategoryPolitics,
		CategorySports,
		CategoryEntertainment,
		CategoryHealth,
		CategoryScience,
		CategoryWorld,
		CategoryLocal,
	}
}

func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := categoryTitles[c]
	return c, ok
}

func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

type Feed struct {
	ID       int64
	Category Category
	URL      string
	Title    string
}

type NewsItem struct {
	ID          string
	Title       string
	Description string
	Content     string
	URL         string
	Source      string
	Author      string
	PublishedAt time.Time
	Category    Category
	FeedID      int64
}

// Stats describes an original text and its summary for display.
type Stats struct {
	WordCountOriginal  int
	WordCountSummary   int
	ReadingTimeMinutes int
}

func NewStats(original string, summary string) Stats {
	return Stats{
		WordCountOriginal:  WordCount(original),
		WordCountSummary:   WordCount(summary),
		ReadingTimeMinutes: ReadingTime(original),
	}
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates minutes to read text, never less than one.
func ReadingTime(text string) int {
	minutes := int(math.Ceil(float64(WordCount(text)) / wordsPerMinute))
	return max(minutes, 1)
}
