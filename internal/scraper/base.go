// Package scraper defines the source adapter contract and the shared
// harness every site adapter is built from.
package scraper

import (
	"context"
	"iter"

	"go-locator/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Query is one search as seen by an adapter. Lat, Lon and City are filled
// from the geocoded address; HasPoint is false when no point was resolved.
type Query struct {
	Location string
	RadiusKm int
	Keywords []string
	Category models.Category
	Lat      float64
	Lon      float64
	City     string
	HasPoint bool
}

// Adapter is a single listing source.
//
// Fetch returns a lazy, finite sequence. A non-nil error ends the sequence
// and aborts this adapter only; listings yielded before it are kept.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, q Query) iter.Seq2[models.Listing, error]
}

// PageFetcher renders a page and returns its DOM. Implementations return a
// non-nil, possibly empty, document even when they fail.
type PageFetcher interface {
	Render(ctx context.Context, url string, scrollPasses int) (*goquery.Document, error)
}

// Result is the outcome of extracting one card. Results with Err set are
// dropped by the harness before anything is yielded.
type Result struct {
	Listing models.Listing
	Err     error
}
