// Package seek scrapes SEEK, the one paginated job board. Every user keyword
// is crossed with the category vocabulary and each phrase is walked page by
// page until a page comes back empty.
package seek

import (
	"context"
	"fmt"
	"iter"

	"go-locator/internal/logger"
	"go-locator/internal/models"
	"go-locator/internal/scraper"
)

const (
	Name         = "Seek"
	baseURL      = "https://www.seek.com.au"
	cardSelector = `article[data-automation="normalJob"]`
	scrollPasses = 3
)

type Adapter struct {
	env scraper.Env
}

func New(env scraper.Env) *Adapter {
	return &Adapter{env: env}
}

func (a *Adapter) Name() string { return Name }

// PageURL builds the search URL for a phrase, location and 1-based page.
func PageURL(keyword, location string, page int) string {
	path := "jobs"
	if kw := scraper.Dashed(keyword); kw != "" {
		path = kw + "-jobs"
	}
	url := fmt.Sprintf("%s/%s/in-%s", baseURL, path, scraper.Dashed(location))
	if page > 1 {
		url += fmt.Sprintf("?page=%d", page)
	}
	return url
}

func (a *Adapter) Fetch(ctx context.Context, q scraper.Query) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		phrases := scraper.ExpandKeywords(q.Keywords, scraper.Vocabulary(q.Category))
		for _, phrase := range phrases {
			pages := scraper.Paginate(ctx, a.env.MaxPages, func(ctx context.Context, page int) ([]models.Listing, error) {
				if a.env.Log != nil {
					a.env.Log.Info("🔍 Searching Seek", logger.Fields{"keyword": phrase, "page": page})
				}
				return a.env.Page(ctx, Name, PageURL(phrase, q.Location, page), scrollPasses, false, cardSelector, extract(phrase))
			})
			for l, err := range pages {
				if !yield(l, err) || err != nil {
					return
				}
			}
		}
	}
}

func extract(phrase string) scraper.ExtractFunc {
	return func(c *scraper.Card) models.Listing {
		return models.Listing{
			Title:      c.Text(`a[data-automation="jobTitle"]`),
			Link:       scraper.Link(baseURL, c.Attr("a", "href")),
			Company:    c.Text(`a[data-automation="jobCompany"]`),
			Location:   c.Text(`a[data-automation="jobLocation"]`),
			PostedDate: c.Optional(`span[data-automation="jobListingDate"]`),
			Source:     Name,
			Keyword:    models.StringPtr(phrase),
		}
	}
}
