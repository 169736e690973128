package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go-locator/internal/models"
)

var (
	ErrNotFound          = errors.New("listing not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownField      = errors.New("unknown filter field")
)

// Store persists listings per collection, keyed by link. Upsert always
// stamps a fresh ScrapedAt.
type Store interface {
	Upsert(ctx context.Context, collection, key string, l models.Listing) (models.Listing, error)
	Get(ctx context.Context, collection, key string) (models.Listing, error)
	Find(ctx context.Context, collection string, filter Filter) ([]models.Listing, error)
	Delete(ctx context.Context, collection, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Filter matches listings whose field equals the given value.
// Keys are the JSON field names of models.Listing.
type Filter map[string]string

// filterColumns whitelists filterable fields; values are column names.
var filterColumns = map[string]string{
	"link":          "link",
	"title":         "title",
	"location":      "location",
	"source":        "source",
	"status":        "status",
	"posted_date":   "posted_date",
	"deadline_date": "deadline_date",
	"keyword":       "keyword",
	"category":      "category",
	"company":       "company",
	"price":         "price",
	"geohash":       "geohash",
}

func checkCollection(collection string) error {
	switch collection {
	case models.CollectionJobs, models.CollectionAccommodations:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
}

// keys returns the filter fields in a stable order, validated.
func (f Filter) keys() ([]string, error) {
	keys := make([]string, 0, len(f))
	for k := range f {
		if _, ok := filterColumns[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// fieldValue reads a filterable field off a listing, for stores that filter in Go.
func fieldValue(l models.Listing, field string) string {
	switch field {
	case "link":
		return l.Link
	case "title":
		return l.Title
	case "location":
		return l.Location
	case "source":
		return l.Source
	case "status":
		return l.Status
	case "posted_date":
		return models.Deref(l.PostedDate)
	case "deadline_date":
		return models.Deref(l.DeadlineDate)
	case "keyword":
		return models.Deref(l.Keyword)
	case "category":
		return string(l.Category)
	case "company":
		return l.Company
	case "price":
		return l.Price
	case "geohash":
		return l.Geohash
	}
	return ""
}
