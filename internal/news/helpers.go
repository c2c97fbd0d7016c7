package news

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const itemIDLength = 16

// htmlText turns a feed HTML fragment into collapsed plain text.
func htmlText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func itemID(feedID int64, itemURL string) string {
	hash := sha256.Sum256([]byte(strconv.FormatInt(feedID, 10) + "|" + itemURL))

	return hex.EncodeToString(hash[:])[:itemIDLength]
}

func itemAuthor(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}

	for _, author := range item.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			return strings.TrimSpace(author.Name)
		}
	}

	return ""
}
