package custom

import (
	"context"
	"testing"

	"go-locator/internal/models"
	"go-locator/internal/scraper"
	"go-locator/internal/scraper/scrapertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://board.example.com/jobs"

func fetch(t *testing.T, html string, c models.Category) []models.Listing {
	t.Helper()
	f := scrapertest.NewFetcher()
	f.Pages[pageURL] = html

	var got []models.Listing
	for l, err := range New(pageURL, scraper.Env{Fetcher: f}).Fetch(context.Background(), scraper.Query{Category: c}) {
		require.NoError(t, err)
		got = append(got, l)
	}
	return got
}

func TestJobs_Posts(t *testing.T) {
	got := fetch(t, `
		<div class="post"><h2>Night filler</h2><a href="https://board.example.com/1">apply</a>
			<span class="company">Grocer</span><span class="location">Ryde</span>
			<time datetime="2026-10-01">1 Oct</time><span class="deadline">31 Oct</span></div>
		<div class="post"><p>Ask in store</p></div>`, models.CategoryPartTime)

	require.Len(t, got, 2)
	assert.Equal(t, "Night filler", got[0].Title)
	assert.Equal(t, "https://board.example.com/1", got[0].Link)
	assert.Equal(t, "Grocer", got[0].Company)
	assert.Equal(t, "2026-10-01", models.Deref(got[0].PostedDate))
	assert.Equal(t, "31 Oct", models.Deref(got[0].DeadlineDate))
	assert.Equal(t, Name, got[0].Source)

	assert.Equal(t, models.NotAvailable, got[1].Title)
	assert.Equal(t, pageURL, got[1].Link)
	assert.Equal(t, models.NotAvailable, got[1].Company)
	assert.Nil(t, got[1].PostedDate)
}

func TestJobs_ItemFallback(t *testing.T) {
	got := fetch(t, `<ul><li class="item"><a href="/x">Carer</a><div class="employer">Home</div><span class="date">today</span></li></ul>`, models.CategoryAgedCare)

	require.Len(t, got, 1)
	assert.Equal(t, "Carer", got[0].Title)
	assert.Equal(t, "Home", got[0].Company)
	assert.Equal(t, "today", models.Deref(got[0].PostedDate))
}

func TestAccommodation_Articles(t *testing.T) {
	got := fetch(t, `<article><h3>Studio</h3><a href="https://x.test/s">x</a><div class="price">$420pw</div></article>`, models.CategoryAccommodation)

	require.Len(t, got, 1)
	assert.Equal(t, "Studio", got[0].Title)
	assert.Equal(t, "$420pw", got[0].Price)
	assert.Equal(t, models.NotAvailable, got[0].Location)
}

func TestEmptyPage(t *testing.T) {
	assert.Empty(t, fetch(t, `<html></html>`, models.CategoryProfessional))
}
