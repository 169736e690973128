// Package filter narrows stored listings the way the dashboard tables do:
// free-text columns match case- and accent-insensitively, status and dates
// match exactly, and listings can be limited by posting age.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go-locator/internal/models"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var textFields = []string{"title", "location", "source", "company", "price", "keyword"}

var exactFields = []string{"status", "posted_date", "deadline_date"}

type Criteria struct {
	Text       map[string]string
	Exact      map[string]string
	MaxAgeDays int
	Now        time.Time
}

// FromQuery reads criteria from URL query parameters named after the
// listing fields, plus max_age_days. Other parameters are ignored.
func FromQuery(values url.Values) (Criteria, error) {
	c := Criteria{Text: map[string]string{}, Exact: map[string]string{}}
	for _, f := range textFields {
		if v := strings.TrimSpace(values.Get(f)); v != "" {
			c.Text[f] = v
		}
	}
	for _, f := range exactFields {
		if v := strings.TrimSpace(values.Get(f)); v != "" {
			c.Exact[f] = v
		}
	}
	if v := values.Get("max_age_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Criteria{}, fmt.Errorf("invalid max_age_days %q", v)
		}
		c.MaxAgeDays = n
	}
	return c, nil
}

func (c Criteria) Empty() bool {
	return len(c.Text) == 0 && len(c.Exact) == 0 && c.MaxAgeDays == 0
}

// Apply returns the listings matching every criterion, preserving order.
func Apply(listings []models.Listing, c Criteria) []models.Listing {
	if c.Empty() {
		return listings
	}
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}

	needles := make(map[string]string, len(c.Text))
	for f, v := range c.Text {
		needles[f] = Normalize(v)
	}

	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if c.match(l, needles, now) {
			out = append(out, l)
		}
	}
	return out
}

func (c Criteria) match(l models.Listing, needles map[string]string, now time.Time) bool {
	for f, needle := range needles {
		if !strings.Contains(Normalize(field(l, f)), needle) {
			return false
		}
	}
	for f, want := range c.Exact {
		if !strings.EqualFold(field(l, f), want) {
			return false
		}
	}
	if c.MaxAgeDays > 0 && !IsRecent(models.Deref(l.PostedDate), time.Duration(c.MaxAgeDays)*24*time.Hour, now) {
		return false
	}
	return true
}

func field(l models.Listing, name string) string {
	switch name {
	case "title":
		return l.Title
	case "location":
		return l.Location
	case "source":
		return l.Source
	case "company":
		return l.Company
	case "price":
		return l.Price
	case "keyword":
		return models.Deref(l.Keyword)
	case "status":
		return l.Status
	case "posted_date":
		return models.Deref(l.PostedDate)
	case "deadline_date":
		return models.Deref(l.DeadlineDate)
	}
	return ""
}

// Normalize lowercases s and strips diacritics: "Café Zoë" -> "cafe zoe".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return strings.ToLower(result)
}
