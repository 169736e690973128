package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryAccommodation Category = "accommodation"
	CategoryPartTime      Category = "part-time"
	CategoryProfessional  Category = "professional"
	CategoryAgedCare      Category = "aged-care"
)

const (
	CollectionJobs           = "jobs"
	CollectionAccommodations = "accommodations"

	StatusNew    = "new"
	NotAvailable = "N/A"
)

var (
	ErrMissingLink     = errors.New("listing has no link")
	ErrInvalidCategory = errors.New("invalid category")
)

// Categories lists every category in display order.
var Categories = []Category{CategoryAccommodation, CategoryPartTime, CategoryProfessional, CategoryAgedCare}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) IsJob() bool {
	return c == CategoryPartTime || c == CategoryProfessional || c == CategoryAgedCare
}

// Collection is the logical store collection a category is written to.
func (c Category) Collection() string {
	if c == CategoryAccommodation {
		return CollectionAccommodations
	}
	return CollectionJobs
}

// Listing is a single job or accommodation record, identified by Link.
type Listing struct {
	Link         string    `json:"link" bson:"link"`
	Title        string    `json:"title" bson:"title"`
	Location     string    `json:"location" bson:"location"`
	Source       string    `json:"source" bson:"source"`
	Status       string    `json:"status" bson:"status"`
	PostedDate   *string   `json:"posted_date" bson:"posted_date"`
	DeadlineDate *string   `json:"deadline_date" bson:"deadline_date"`
	Keyword      *string   `json:"keyword" bson:"keyword"`
	Category     Category  `json:"category" bson:"category"`
	Company      string    `json:"company,omitempty" bson:"company,omitempty"`
	Price        string    `json:"price,omitempty" bson:"price,omitempty"`
	Distance     string    `json:"distance" bson:"distance"`
	Geohash      string    `json:"geohash,omitempty" bson:"geohash,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at" bson:"scraped_at"`
}

// ApplyDefaults trims text fields and fills status, distance and price.
func (l *Listing) ApplyDefaults() {
	l.Link = strings.TrimSpace(l.Link)
	l.Title = strings.TrimSpace(l.Title)
	l.Location = strings.TrimSpace(l.Location)
	l.Company = strings.TrimSpace(l.Company)
	l.Price = strings.TrimSpace(l.Price)

	if l.Status == "" {
		l.Status = StatusNew
	}
	if l.Distance == "" {
		l.Distance = NotAvailable
	}
	if l.Category == CategoryAccommodation && l.Price == "" {
		l.Price = NotAvailable
	}
}

func (l Listing) Validate() error {
	if strings.TrimSpace(l.Link) == "" {
		return ErrMissingLink
	}
	if _, err := ParseCategory(string(l.Category)); err != nil {
		return err
	}
	return nil
}

// EnsureLink gives a manually entered row a random identity when it has none.
func (l *Listing) EnsureLink() {
	if strings.TrimSpace(l.Link) == "" {
		l.Link = uuid.NewString()
	}
}

// StringPtr returns nil for blank strings so optional fields stay null.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
