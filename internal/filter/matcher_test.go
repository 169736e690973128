package filter

import (
	"net/url"
	"testing"
	"time"

	"go-locator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestApply(t *testing.T) {
	listings := []models.Listing{
		{Link: "1", Title: "Barista – Café Crème", Company: "Bean Co", Status: "new", PostedDate: models.StringPtr("2d ago")},
		{Link: "2", Title: "Kitchen hand", Company: "Bean Co", Status: "applied", PostedDate: models.StringPtr("2026-06-01")},
		{Link: "3", Title: "Cafe all-rounder", Company: "Other", Status: "new"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "no criteria", query: "", want: []string{"1", "2", "3"}},
		{name: "accent insensitive", query: "title=cafe", want: []string{"1", "3"}},
		{name: "case insensitive company", query: "company=BEAN", want: []string{"1", "2"}},
		{name: "exact status", query: "status=new", want: []string{"1", "3"}},
		{name: "status is not a substring match", query: "status=ne", want: []string{}},
		{name: "combined", query: "title=caf&company=bean", want: []string{"1"}},
		{name: "max age keeps undated", query: "max_age_days=30", want: []string{"1", "3"}},
		{name: "unknown params ignored", query: "page=2", want: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			c, err := FromQuery(values)
			require.NoError(t, err)
			c.Now = now

			got := []string{}
			for _, l := range Apply(listings, c) {
				got = append(got, l.Link)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromQuery_InvalidMaxAge(t *testing.T) {
	_, err := FromQuery(url.Values{"max_age_days": {"soon"}})
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cafe zoe", Normalize("Café Zoë"))
}
