package scraper

import (
	"fmt"
	"strings"

	"go-locator/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Card wraps one result card. Required lookups that miss record an error
// which turns the card into a failed Result.
type Card struct {
	sel *goquery.Selection
	err error
}

type ExtractFunc func(c *Card) models.Listing

// Extract runs fn over every element matching selector.
func Extract(doc *goquery.Document, selector string, fn ExtractFunc) []Result {
	if doc == nil {
		return nil
	}
	var results []Result
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		c := &Card{sel: s}
		l := fn(c)
		results = append(results, Result{Listing: l, Err: c.err})
	})
	return results
}

// Keep returns the listings of the successful results.
func Keep(results []Result) []models.Listing {
	listings := make([]models.Listing, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		listings = append(listings, r.Listing)
	}
	return listings
}

func (c *Card) Err() error { return c.err }

func (c *Card) fail(selector string) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s", ErrMissingField, selector)
	}
}

func (c *Card) find(selector string) *goquery.Selection {
	return c.sel.Find(selector).First()
}

// Text returns the trimmed text of the first match of selector.
func (c *Card) Text(selector string) string {
	s := c.find(selector)
	if s.Length() == 0 {
		c.fail(selector)
		return ""
	}
	return strings.TrimSpace(s.Text())
}

// Optional returns the trimmed text of selector, or nil when it is absent or blank.
func (c *Card) Optional(selector string) *string {
	s := c.find(selector)
	if s.Length() == 0 {
		return nil
	}
	return models.StringPtr(s.Text())
}

// Attr returns attribute attr of the first match of selector. A missing
// element or attribute fails the card.
func (c *Card) Attr(selector, attr string) string {
	s := c.find(selector)
	v, ok := s.Attr(attr)
	if !ok {
		c.fail(selector + "[" + attr + "]")
		return ""
	}
	return strings.TrimSpace(v)
}

// First returns the first of selectors that matches, without failing the card.
func (c *Card) First(selectors ...string) (*goquery.Selection, bool) {
	for _, sel := range selectors {
		if s := c.find(sel); s.Length() > 0 {
			return s, true
		}
	}
	return nil, false
}

// Link prefixes a site-relative href with host.
func Link(host, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return host + href
}
