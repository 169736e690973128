// Package mock provides a deterministic in-memory adapter for tests and dry runs.
package mock

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"go-locator/internal/models"
	"go-locator/internal/scraper"
)

type Adapter struct {
	name     string
	listings []models.Listing
	generate int
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

// New returns an adapter that yields listings in order on every Fetch.
func New(name string, listings ...models.Listing) *Adapter {
	return &Adapter{name: name, listings: listings}
}

// Generated returns an adapter that makes up n listings for whatever query it
// receives. Links are stable for the same name, category and index.
func Generated(name string, n int) *Adapter {
	return &Adapter{name: name, generate: n}
}

// WithError makes Fetch yield err after the listings.
func (a *Adapter) WithError(err error) *Adapter {
	a.err = err
	return a
}

// WithDelay sleeps before each yielded item.
func (a *Adapter) WithDelay(d time.Duration) *Adapter {
	a.delay = d
	return a
}

func (a *Adapter) Name() string { return a.name }

func (a *Adapter) Calls() int { return int(a.calls.Load()) }

func (a *Adapter) Fetch(ctx context.Context, q scraper.Query) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		a.calls.Add(1)
		for _, l := range a.items(q) {
			if a.delay > 0 {
				select {
				case <-ctx.Done():
					yield(models.Listing{}, ctx.Err())
					return
				case <-time.After(a.delay):
				}
			}
			if !yield(l, nil) {
				return
			}
		}
		if a.err != nil {
			yield(models.Listing{}, a.err)
		}
	}
}

func (a *Adapter) items(q scraper.Query) []models.Listing {
	if a.generate == 0 {
		return a.listings
	}
	out := make([]models.Listing, 0, a.generate)
	for i := 1; i <= a.generate; i++ {
		l := models.Listing{
			Link:     fmt.Sprintf("https://mock.local/%s/%s/%d", a.name, q.Category, i),
			Title:    fmt.Sprintf("%s listing %d", a.name, i),
			Location: q.Location,
			Source:   a.name,
		}
		if q.Category == models.CategoryAccommodation {
			l.Price = fmt.Sprintf("$%dpw", 250+i*25)
		} else {
			l.Company = a.name + " Pty Ltd"
		}
		out = append(out, l)
	}
	return out
}
