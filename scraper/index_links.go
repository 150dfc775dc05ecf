// scraper/index_links.go
package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// looksLikeHTML reports whether an index body is an HTML page rather than
// the plain one-URL-per-line listing.
func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	head := strings.ToLower(string(trimmed[:min(len(trimmed), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<a ") || strings.Contains(head, "<body")
}

// extractCSVLinks collects the href of every anchor pointing at a .csv file,
// in document order, resolved against the page's <base href> when present.
func extractCSVLinks(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML index: %w", err)
	}

	var base *url.URL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		base, _ = url.Parse(strings.TrimSpace(href))
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		ref, err := url.Parse(href)
		if err != nil || !strings.HasSuffix(strings.ToLower(ref.Path), ".csv") {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		link := ref.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})
	return links, nil
}
