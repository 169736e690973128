// Package social searches Facebook Marketplace, Instagram and TikTok for job
// posts and rentals. These pages only render in a logged-in browser, so the
// adapters always go through the rendering fetcher with session cookies.
package social

import (
	"context"
	"iter"
	"strconv"
	"strings"

	"go-locator/internal/geocode"
	"go-locator/internal/models"
	"go-locator/internal/scraper"
)

// rentalKeyword is searched for accommodation instead of the user keywords.
const rentalKeyword = "rental"

// Network describes one social site. Posts carry no address or employer,
// so listings take the query location and a placeholder company.
type Network struct {
	Name         string
	ScrollPasses int
	JobsURL      func(keyword, location, city string, radiusKm int) string
	RentalsURL   func(keyword, location, city string, radiusKm int) string

	Card    string
	Title   string
	Host    string
	Company string
	// Price is read for rentals when set.
	Price string
}

type Adapter struct {
	net Network
	env scraper.Env
}

func New(net Network, env scraper.Env) *Adapter {
	return &Adapter{net: net, env: env}
}

func (a *Adapter) Name() string { return a.net.Name }

func (a *Adapter) Fetch(ctx context.Context, q scraper.Query) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		city := q.City
		if city == "" {
			city = geocode.Slug(q.Location)
		}

		var url string
		if q.Category == models.CategoryAccommodation {
			url = a.net.RentalsURL(rentalKeyword, q.Location, city, q.RadiusKm)
		} else {
			keyword := scraper.DecorateKeyword(strings.Join(q.Keywords, " "), q.Category)
			url = a.net.JobsURL(keyword, q.Location, city, q.RadiusKm)
		}

		listings, err := a.env.Page(ctx, a.net.Name, url, a.net.ScrollPasses, false, a.net.Card, a.extract(q))
		for l, err := range scraper.Slice(listings, err) {
			if !yield(l, err) {
				return
			}
		}
	}
}

func (a *Adapter) extract(q scraper.Query) scraper.ExtractFunc {
	return func(c *scraper.Card) models.Listing {
		l := models.Listing{
			Title:    c.Text(a.net.Title),
			Link:     scraper.Link(a.net.Host, c.Attr("a", "href")),
			Location: q.Location,
			Source:   a.net.Name,
		}
		if q.Category == models.CategoryAccommodation {
			l.Price = models.NotAvailable
			if a.net.Price != "" {
				if p := c.Optional(a.net.Price); p != nil {
					l.Price = *p
				}
			}
		} else {
			l.Company = a.net.Company
		}
		return l
	}
}

var Networks = []Network{
	{
		Name:         "Facebook",
		ScrollPasses: 4,
		JobsURL: func(keyword, _, city string, radiusKm int) string {
			return "https://www.facebook.com/marketplace/" + scraper.Dashed(city) + "/jobs?query=" + scraper.Plus(keyword) + "&radius=" + strconv.Itoa(radiusKm)
		},
		RentalsURL: func(keyword, _, city string, radiusKm int) string {
			return "https://www.facebook.com/marketplace/" + scraper.Dashed(city) + "/propertyrentals?query=" + scraper.Plus(keyword) + "&radius=" + strconv.Itoa(radiusKm)
		},
		Card:    "div.x9f619",
		Title:   "span.x1lliihq",
		Host:    "https://www.facebook.com",
		Company: "Facebook User",
		Price:   "span.x193iq5w",
	},
	{
		Name:         "Instagram",
		ScrollPasses: 5,
		JobsURL: func(keyword, location, _ string, _ int) string {
			return "https://www.instagram.com/explore/search/keyword/?q=" + scraper.Spaced(keyword) + "%20jobs%20" + scraper.Spaced(location)
		},
		RentalsURL: func(keyword, location, _ string, _ int) string {
			return "https://www.instagram.com/explore/search/keyword/?q=" + scraper.Spaced(keyword) + "%20rentals%20" + scraper.Spaced(location)
		},
		Card:    "div.x9f619",
		Title:   "span.x1lliihq",
		Host:    "https://www.instagram.com",
		Company: "Instagram User",
	},
	{
		Name:         "TikTok",
		ScrollPasses: 5,
		JobsURL: func(keyword, location, _ string, _ int) string {
			return "https://www.tiktok.com/search?q=" + scraper.Spaced(keyword) + "%20jobs%20" + scraper.Spaced(location)
		},
		RentalsURL: func(keyword, location, _ string, _ int) string {
			return "https://www.tiktok.com/search?q=" + scraper.Spaced(keyword) + "%20rentals%20" + scraper.Spaced(location)
		},
		Card:    "div.tiktok-1qd04g-DivItemContainerV2",
		Title:   "div.tiktok-1p23jpt-DivText",
		Host:    "https://www.tiktok.com",
		Company: "TikTok User",
	},
}

func All(env scraper.Env) []scraper.Adapter {
	adapters := make([]scraper.Adapter, 0, len(Networks))
	for _, n := range Networks {
		adapters = append(adapters, New(n, env))
	}
	return adapters
}
