package browser

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrBlocked is returned with an empty document when a site answers with a
// bot challenge instead of content.
var ErrBlocked = errors.New("blocked by bot challenge")

// Empty returns a document with no content. Fetchers hand it back on failure
// so extractors find zero items instead of crashing.
func Empty() *goquery.Document {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	return doc
}

// Parse builds a document from rendered HTML, falling back to Empty.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Empty(), err
	}
	return doc, nil
}

var challengeTitles = []string{"Attention Required", "Just a moment", "Cloudflare"}

func isChallengeTitle(title string) bool {
	for _, t := range challengeTitles {
		if strings.Contains(title, t) {
			return true
		}
	}
	return false
}
