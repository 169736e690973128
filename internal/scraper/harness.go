package scraper

import (
	"context"
	"errors"
	"iter"
	"net/url"
	"strings"
	"time"

	"go-locator/internal/browser"
	"go-locator/internal/geocode"
	"go-locator/internal/logger"
	"go-locator/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const DefaultMaxPages = 20

var ErrMissingField = errors.New("missing field")

// retryBackoff is the base wait between fetch attempts; attempt n waits n times it.
var retryBackoff = 2 * time.Second

// Env carries the collaborators shared by every adapter.
type Env struct {
	Fetcher      PageFetcher
	Static       PageFetcher
	Geocoder     geocode.Geocoder
	Log          logger.Logger
	MaxPages     int
	Retries      int
	ScrollPasses int
}

func (e Env) log() logger.Logger {
	if e.Log == nil {
		return logger.Nop()
	}
	return e.Log
}

func (e Env) maxPages() int {
	if e.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return e.MaxPages
}

// fetcher picks the plain HTTP fetcher for static sites when one is configured.
func (e Env) fetcher(static bool) PageFetcher {
	if static && e.Static != nil {
		return e.Static
	}
	return e.Fetcher
}

func (e Env) Filter() RadiusFilter {
	return RadiusFilter{Geocoder: e.Geocoder, Log: e.log()}
}

// Page loads url and extracts every card matching selector. Fetch failures
// are logged and produce no listings; only context errors are returned.
func (e Env) Page(ctx context.Context, source, url string, passes int, static bool, selector string, fn ExtractFunc) ([]models.Listing, error) {
	doc, err := Load(ctx, e.fetcher(static), url, passes, e.Retries)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.log().Warn("⚠️ Could not load page", logger.Fields{"source": source, "url": url, "error": err.Error()})
	}

	results := Extract(doc, selector, fn)
	listings := Keep(results)
	if skipped := len(results) - len(listings); skipped > 0 {
		e.log().Debug("Skipped cards with missing fields", logger.Fields{"source": source, "skipped": skipped})
	}
	e.log().Info("📦 Extracted listings", logger.Fields{"source": source, "url": url, "count": len(listings)})
	return listings, nil
}

// Load fetches url, retrying failed attempts. Blocked pages are not retried.
// After the last failure it returns an empty document with the error.
func Load(ctx context.Context, f PageFetcher, url string, passes, retries int) (*goquery.Document, error) {
	if f == nil {
		return browser.Empty(), errors.New("no page fetcher configured")
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, time.Duration(attempt)*retryBackoff); err != nil {
				return browser.Empty(), err
			}
		}
		if err := ctx.Err(); err != nil {
			return browser.Empty(), err
		}

		doc, err := f.Render(ctx, url, passes)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if errors.Is(err, browser.ErrBlocked) {
			break
		}
	}
	return browser.Empty(), lastErr
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PageFunc fetches one 1-based result page.
type PageFunc func(ctx context.Context, page int) ([]models.Listing, error)

// Paginate walks result pages until one has no listings or maxPages is
// reached. An error from fetch is yielded and ends the sequence.
func Paginate(ctx context.Context, maxPages int, fetch PageFunc) iter.Seq2[models.Listing, error] {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return func(yield func(models.Listing, error) bool) {
		for page := 1; page <= maxPages; page++ {
			if err := ctx.Err(); err != nil {
				yield(models.Listing{}, err)
				return
			}
			listings, err := fetch(ctx, page)
			if err != nil {
				yield(models.Listing{}, err)
				return
			}
			if len(listings) == 0 {
				return
			}
			for _, l := range listings {
				if !yield(l, nil) {
					return
				}
			}
		}
	}
}

// Slice yields listings and then err, if any.
func Slice(listings []models.Listing, err error) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		for _, l := range listings {
			if !yield(l, nil) {
				return
			}
		}
		if err != nil {
			yield(models.Listing{}, err)
		}
	}
}

var vocabularies = map[models.Category][]string{
	models.CategoryPartTime:     {"warehouse", "casual", "retail assistant"},
	models.CategoryProfessional: {"IT professional", "software engineer", "developer", "programmer"},
	models.CategoryAgedCare:     {"aged care", "nursing", "care assistant"},
}

// Vocabulary returns the extra search terms combined with user keywords for a
// category. Accommodation has none.
func Vocabulary(c models.Category) []string {
	return vocabularies[c]
}

// ExpandKeywords crosses keywords with vocabulary: "night" x ["warehouse",
// "casual"] gives "night warehouse", "night casual". Without vocabulary the
// keywords are returned as they are. Duplicate phrases are dropped.
func ExpandKeywords(keywords, vocabulary []string) []string {
	if len(keywords) == 0 {
		keywords = []string{""}
	}

	var out []string
	seen := make(map[string]bool)
	add := func(phrase string) {
		phrase = strings.Join(strings.Fields(phrase), " ")
		if phrase == "" || seen[phrase] {
			return
		}
		seen[phrase] = true
		out = append(out, phrase)
	}

	for _, kw := range keywords {
		if len(vocabulary) == 0 {
			add(kw)
			continue
		}
		for _, v := range vocabulary {
			add(kw + " " + v)
		}
	}
	return out
}

// DecorateKeyword is the single search phrase used by one-page boards.
func DecorateKeyword(keyword string, c models.Category) string {
	switch c {
	case models.CategoryPartTime:
		keyword += " part time casual student"
	case models.CategoryProfessional:
		keyword += " IT professional"
	case models.CategoryAgedCare:
		keyword = "aged care " + keyword
	}
	return strings.TrimSpace(keyword)
}

// Dashed, Plus and Spaced encode a phrase for the three URL styles the
// sites use. Dashed is for path segments; Plus and Spaced are safe in both
// queries and paths.
func Dashed(s string) string {
	return url.PathEscape(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

func Plus(s string) string { return url.QueryEscape(strings.TrimSpace(s)) }

func Spaced(s string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(s)), "+", "%20")
}
