package extractor

import (
	"net/url"
	"strings"

	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once.
var webURLRe = xurls.Strict()

// IsValidURL reports whether raw has both a scheme and a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}

// FindURLs returns the http(s) URLs found in free text, in order and
// without duplicates.
func FindURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})

	for _, u := range webURLRe.FindAllString(text, -1) {
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			continue
		}

		if _, ok := seen[u]; ok {
			continue
		}

		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	return urls
}

// CanonicalURL trims raw and drops its fragment. Unparsable input is returned
// trimmed.
func CanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}
