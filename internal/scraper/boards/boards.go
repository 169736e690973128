// Package boards scrapes the single-page job boards. Each board is a row in
// Sites; the adapter decorates the keyword for the category, renders one
// result page, extracts the cards and applies the radius filter.
package boards

import (
	"context"
	"iter"
	"strings"

	"go-locator/internal/models"
	"go-locator/internal/scraper"
)

const scrollPasses = 2

// Site describes where a board lists results and how its cards are laid out.
type Site struct {
	Name string
	URL  func(keyword, location string, radiusKm int) string
	// Static boards are server rendered and fetched without a browser.
	Static bool

	Card     string
	Title    string
	Link     string
	Host     string // prefixed to relative links
	Company  string
	Location string
	Posted   string
}

type Adapter struct {
	site Site
	env  scraper.Env
}

func New(site Site, env scraper.Env) *Adapter {
	return &Adapter{site: site, env: env}
}

func (a *Adapter) Name() string { return a.site.Name }

func (a *Adapter) Fetch(ctx context.Context, q scraper.Query) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		keyword := scraper.DecorateKeyword(strings.Join(q.Keywords, " "), q.Category)
		url := a.site.URL(keyword, q.Location, q.RadiusKm)

		listings, err := a.env.Page(ctx, a.site.Name, url, scrollPasses, a.site.Static, a.site.Card, a.extract)
		if err != nil {
			yield(models.Listing{}, err)
			return
		}
		listings = a.env.Filter().Apply(ctx, q, listings)
		for l, err := range scraper.Slice(listings, ctx.Err()) {
			if !yield(l, err) {
				return
			}
		}
	}
}

func (a *Adapter) extract(c *scraper.Card) models.Listing {
	l := models.Listing{
		Title:    c.Text(a.site.Title),
		Link:     scraper.Link(a.site.Host, c.Attr(a.site.Link, "href")),
		Company:  c.Text(a.site.Company),
		Location: c.Text(a.site.Location),
		Source:   a.site.Name,
	}
	if a.site.Posted != "" {
		l.PostedDate = c.Optional(a.site.Posted)
	}
	return l
}

// All returns one adapter per board in registry order.
func All(env scraper.Env) []scraper.Adapter {
	adapters := make([]scraper.Adapter, 0, len(Sites))
	for _, s := range Sites {
		adapters = append(adapters, New(s, env))
	}
	return adapters
}
