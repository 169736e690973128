package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

type StaticConfig struct {
	Timeout     time.Duration
	RandomDelay time.Duration
}

// Static fetches server-rendered pages over plain HTTP with colly. It has
// no JavaScript engine, so scroll passes are ignored.
type Static struct {
	base *colly.Collector
}

func NewStatic(cfg StaticConfig) *Static {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		RandomDelay: cfg.RandomDelay,
	})
	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	return &Static{base: c}
}

func (s *Static) Render(ctx context.Context, rawURL string, _ int) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return Empty(), err
	}

	c := s.base.Clone()
	extensions.RandomUserAgent(c)

	var body []byte
	var fetchErr error
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(rawURL); err != nil {
		return Empty(), fmt.Errorf("error visiting %s: %w", rawURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return Empty(), fmt.Errorf("error fetching %s: %w", rawURL, fetchErr)
	}
	if body == nil {
		return Empty(), fmt.Errorf("error fetching %s: empty response", rawURL)
	}

	doc, err := Parse(string(body))
	if err != nil {
		return doc, err
	}
	if isChallengeTitle(doc.Find("title").First().Text()) {
		return Empty(), fmt.Errorf("%s: %w", rawURL, ErrBlocked)
	}
	return doc, nil
}
