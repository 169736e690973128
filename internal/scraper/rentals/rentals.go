// Package rentals scrapes accommodation sites. Sites that print an address
// on each card are radius filtered; sites that only echo the searched
// location are not.
package rentals

import (
	"context"
	"iter"

	"go-locator/internal/models"
	"go-locator/internal/scraper"
)

const scrollPasses = 2

type Site struct {
	Name string
	URL  func(location string, radiusKm int) string

	Card  string
	Title string
	Link  string
	Host  string
	Price string
	// Location is empty for sites whose cards carry no address; the query
	// location is used instead.
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
		url := a.site.URL(q.Location, q.RadiusKm)
		listings, err := a.env.Page(ctx, a.site.Name, url, scrollPasses, false, a.site.Card, a.extract(q.Location))
		if err != nil {
			yield(models.Listing{}, err)
			return
		}
		if a.site.Location != "" {
			listings = a.env.Filter().Apply(ctx, q, listings)
		}
		for l, err := range scraper.Slice(listings, ctx.Err()) {
			if !yield(l, err) {
				return
			}
		}
	}
}

func (a *Adapter) extract(queryLocation string) scraper.ExtractFunc {
	return func(c *scraper.Card) models.Listing {
		l := models.Listing{
			Title:    c.Text(a.site.Title),
			Link:     scraper.Link(a.site.Host, c.Attr(a.site.Link, "href")),
			Price:    c.Text(a.site.Price),
			Location: queryLocation,
			Source:   a.site.Name,
		}
		if a.site.Location != "" {
			l.Location = c.Text(a.site.Location)
		}
		if a.site.Posted != "" {
			l.PostedDate = c.Optional(a.site.Posted)
		}
		return l
	}
}

func All(env scraper.Env) []scraper.Adapter {
	adapters := make([]scraper.Adapter, 0, len(Sites))
	for _, s := range Sites {
		adapters = append(adapters, New(s, env))
	}
	return adapters
}
