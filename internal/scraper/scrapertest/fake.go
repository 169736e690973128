// Package scrapertest provides in-memory fetchers and geocoders for adapter tests.
package scrapertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go-locator/internal/browser"
	"go-locator/internal/geocode"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher serves canned HTML by URL and records every request.
type Fetcher struct {
	mu sync.Mutex
	// Pages maps a URL to its HTML. Unknown URLs render as an empty page.
	Pages map[string]string
	// Errors maps a URL to the error Render returns for it.
	Errors   map[string]error
	Requests []string
	Passes   []int
}

func NewFetcher() *Fetcher {
	return &Fetcher{Pages: make(map[string]string), Errors: make(map[string]error)}
}

func (f *Fetcher) Render(_ context.Context, url string, scrollPasses int) (*goquery.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, url)
	f.Passes = append(f.Passes, scrollPasses)

	if err, ok := f.Errors[url]; ok {
		return browser.Empty(), err
	}
	html, ok := f.Pages[url]
	if !ok {
		return browser.Empty(), nil
	}
	return browser.Parse(html)
}

func (f *Fetcher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// Geocoder resolves addresses from a fixed table, case-insensitively.
type Geocoder struct {
	mu     sync.Mutex
	Points map[string]geocode.Point
	Calls  []string
}

func NewGeocoder(points map[string]geocode.Point) *Geocoder {
	normalized := make(map[string]geocode.Point, len(points))
	for k, v := range points {
		normalized[strings.ToLower(k)] = v
	}
	return &Geocoder{Points: normalized}
}

func (g *Geocoder) Resolve(_ context.Context, address string) (geocode.Point, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, address)
	if p, ok := g.Points[strings.ToLower(address)]; ok {
		return p, nil
	}
	return geocode.Point{}, fmt.Errorf("%q: %w", address, geocode.ErrNotFound)
}
