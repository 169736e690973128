// Package custom scrapes a user supplied URL with generic selectors. It runs
// after every other adapter and never fails a card: missing fields fall back
// to "N/A" and a card without a link takes the page URL.
package custom

import (
	"context"
	"iter"
	"strings"

	"go-locator/internal/models"
	"go-locator/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

const Name = "Custom"

type Adapter struct {
	url string
	env scraper.Env
}

func New(url string, env scraper.Env) *Adapter {
	return &Adapter{url: strings.TrimSpace(url), env: env}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Fetch(ctx context.Context, q scraper.Query) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		passes := a.env.ScrollPasses
		if passes <= 0 {
			passes = 2
		}

		doc, err := scraper.Load(ctx, a.env.Fetcher, a.url, passes, a.env.Retries)
		if err != nil && ctx.Err() != nil {
			yield(models.Listing{}, ctx.Err())
			return
		}

		var results []scraper.Result
		if q.Category == models.CategoryAccommodation {
			results = scraper.Extract(doc, cardSelector(doc, "div.listing", "article"), a.accommodation)
		} else {
			results = scraper.Extract(doc, cardSelector(doc, "div.post", "li.item"), a.job)
		}
		for l, err := range scraper.Slice(scraper.Keep(results), nil) {
			if !yield(l, err) {
				return
			}
		}
	}
}

// cardSelector prefers the first selector and falls back to the second when
// the page has no match for it.
func cardSelector(doc *goquery.Document, primary, fallback string) string {
	if doc.Find(primary).Length() > 0 {
		return primary
	}
	return fallback
}

func (a *Adapter) text(c *scraper.Card, selectors ...string) string {
	if s, ok := c.First(selectors...); ok {
		return strings.TrimSpace(s.Text())
	}
	return models.NotAvailable
}

func (a *Adapter) link(c *scraper.Card) string {
	if s, ok := c.First("a"); ok {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
	}
	return a.url
}

func posted(c *scraper.Card) *string {
	s, ok := c.First("time", "span.date")
	if !ok {
		return nil
	}
	if dt, ok := s.Attr("datetime"); ok && dt != "" {
		return models.StringPtr(dt)
	}
	return models.StringPtr(s.Text())
}

func (a *Adapter) job(c *scraper.Card) models.Listing {
	return models.Listing{
		Title:        a.text(c, "h2", "a"),
		Link:         a.link(c),
		Company:      a.text(c, "span.company", "div.employer"),
		Location:     a.text(c, "span.location"),
		PostedDate:   posted(c),
		DeadlineDate: c.Optional("span.deadline"),
		Source:       Name,
	}
}

func (a *Adapter) accommodation(c *scraper.Card) models.Listing {
	return models.Listing{
		Title:      a.text(c, "h2", "h3"),
		Link:       a.link(c),
		Price:      a.text(c, "span.price", "div.price"),
		Location:   a.text(c, "span.location", "div.location"),
		PostedDate: posted(c),
		Source:     Name,
	}
}
