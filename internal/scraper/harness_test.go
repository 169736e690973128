package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-locator/internal/browser"
	"go-locator/internal/geocode"
	"go-locator/internal/models"
	"go-locator/internal/scraper"
	"go-locator/internal/scraper/scrapertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandKeywords(t *testing.T) {
	tests := []struct {
		name       string
		keywords   []string
		vocabulary []string
		want       []string
	}{
		{
			name:       "cross product",
			keywords:   []string{"night", "weekend"},
			vocabulary: []string{"warehouse", "casual"},
			want:       []string{"night warehouse", "night casual", "weekend warehouse", "weekend casual"},
		},
		{
			name:       "no keywords uses vocabulary alone",
			vocabulary: scraper.Vocabulary(models.CategoryAgedCare),
			want:       []string{"aged care", "nursing", "care assistant"},
		},
		{
			name:     "no vocabulary keeps keywords",
			keywords: []string{"studio", "granny flat"},
			want:     []string{"studio", "granny flat"},
		},
		{
			name:       "duplicates dropped",
			keywords:   []string{"", " "},
			vocabulary: []string{"developer"},
			want:       []string{"developer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scraper.ExpandKeywords(tt.keywords, tt.vocabulary))
		})
	}
}

func TestVocabulary(t *testing.T) {
	assert.Len(t, scraper.Vocabulary(models.CategoryProfessional), 4)
	assert.Contains(t, scraper.Vocabulary(models.CategoryPartTime), "warehouse")
	assert.Empty(t, scraper.Vocabulary(models.CategoryAccommodation))
}

func TestDecorateKeyword(t *testing.T) {
	assert.Equal(t, "barista part time casual student", scraper.DecorateKeyword("barista", models.CategoryPartTime))
	assert.Equal(t, "golang IT professional", scraper.DecorateKeyword("golang", models.CategoryProfessional))
	assert.Equal(t, "aged care nurse", scraper.DecorateKeyword("nurse", models.CategoryAgedCare))
	assert.Equal(t, "IT professional", scraper.DecorateKeyword("", models.CategoryProfessional))
	assert.Equal(t, "studio", scraper.DecorateKeyword("studio", models.CategoryAccommodation))
}

func TestURLEncoders(t *testing.T) {
	tests := []struct {
		in                   string
		dashed, plus, spaced string
	}{
		{in: " Sydney NSW ", dashed: "Sydney-NSW", plus: "Sydney+NSW", spaced: "Sydney%20NSW"},
		{in: "R&D analyst", dashed: "R&D-analyst", plus: "R%26D+analyst", spaced: "R%26D%20analyst"},
		{in: "café bar", dashed: "caf%C3%A9-bar", plus: "caf%C3%A9+bar", spaced: "caf%C3%A9%20bar"},
		{in: "C++ dev", dashed: "C++-dev", plus: "C%2B%2B+dev", spaced: "C%2B%2B%20dev"},
		{in: "a/b?c#d", dashed: "a%2Fb%3Fc%23d", plus: "a%2Fb%3Fc%23d", spaced: "a%2Fb%3Fc%23d"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.dashed, scraper.Dashed(tt.in))
			assert.Equal(t, tt.plus, scraper.Plus(tt.in))
			assert.Equal(t, tt.spaced, scraper.Spaced(tt.in))
		})
	}
}

func TestPaginate_StopsOnEmptyPage(t *testing.T) {
	fetches := 0
	fetch := func(_ context.Context, page int) ([]models.Listing, error) {
		fetches++
		if page >= 3 {
			return nil, nil
		}
		return []models.Listing{
			{Link: fmt.Sprintf("p%d-a", page)},
			{Link: fmt.Sprintf("p%d-b", page)},
		}, nil
	}

	var links []string
	for l, err := range scraper.Paginate(context.Background(), 20, fetch) {
		require.NoError(t, err)
		links = append(links, l.Link)
	}

	assert.LessOrEqual(t, fetches, 3)
	assert.Equal(t, []string{"p1-a", "p1-b", "p2-a", "p2-b"}, links)
}

func TestPaginate_StopsAtMaxPages(t *testing.T) {
	fetches := 0
	fetch := func(_ context.Context, page int) ([]models.Listing, error) {
		fetches++
		return []models.Listing{{Link: fmt.Sprint(page)}}, nil
	}

	count := 0
	for range scraper.Paginate(context.Background(), 5, fetch) {
		count++
	}
	assert.Equal(t, 5, fetches)
	assert.Equal(t, 5, count)
}

func TestPaginate_ErrorEndsSequence(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, page int) ([]models.Listing, error) {
		if page == 2 {
			return nil, boom
		}
		return []models.Listing{{Link: "a"}}, nil
	}

	var got []string
	var gotErr error
	for l, err := range scraper.Paginate(context.Background(), 20, fetch) {
		if err != nil {
			gotErr = err
			continue
		}
		got = append(got, l.Link)
	}
	assert.Equal(t, []string{"a"}, got)
	assert.ErrorIs(t, gotErr, boom)
}

func TestPaginate_EarlyBreak(t *testing.T) {
	fetches := 0
	fetch := func(_ context.Context, page int) ([]models.Listing, error) {
		fetches++
		return []models.Listing{{Link: "a"}, {Link: "b"}}, nil
	}
	for range scraper.Paginate(context.Background(), 20, fetch) {
		break
	}
	assert.Equal(t, 1, fetches)
}

func TestLoad_RetriesThenEmpty(t *testing.T) {
	f := scrapertest.NewFetcher()
	f.Errors["https://x.test"] = errors.New("timeout")

	doc, err := scraper.Load(context.Background(), f, "https://x.test", 2, 0)
	assert.Error(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 1, f.Count())
}

func TestLoad_BlockedIsNotRetried(t *testing.T) {
	f := scrapertest.NewFetcher()
	f.Errors["https://x.test"] = browser.ErrBlocked

	_, err := scraper.Load(context.Background(), f, "https://x.test", 2, 3)
	assert.ErrorIs(t, err, browser.ErrBlocked)
	assert.Equal(t, 1, f.Count())
}

func TestExtract_SkipsCardsWithMissingFields(t *testing.T) {
	doc, err := browser.Parse(`
		<div class="job"><h3>Carer</h3><a href="/1">x</a><span class="company">Acme</span></div>
		<div class="job"><a href="/2">no title</a></div>
		<div class="job"><h3>No link</h3></div>`)
	require.NoError(t, err)

	results := scraper.Extract(doc, "div.job", func(c *scraper.Card) models.Listing {
		return models.Listing{
			Title:   c.Text("h3"),
			Link:    scraper.Link("https://site.test", c.Attr("a", "href")),
			Company: c.Text("span.company"),
		}
	})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, scraper.ErrMissingField)
	assert.ErrorIs(t, results[2].Err, scraper.ErrMissingField)

	kept := scraper.Keep(results)
	require.Len(t, kept, 1)
	assert.Equal(t, "https://site.test/1", kept[0].Link)
}

func TestRadiusFilter(t *testing.T) {
	geo := scrapertest.NewGeocoder(map[string]geocode.Point{
		"Parramatta NSW": {Lat: -33.8150, Lon: 151.0011},
		"Melbourne VIC":  {Lat: -37.8136, Lon: 144.9631},
	})
	f := scraper.RadiusFilter{Geocoder: geo}
	q := scraper.Query{RadiusKm: 25, Lat: -33.8688, Lon: 151.2093, HasPoint: true}

	in := []models.Listing{
		{Link: "near", Location: "Parramatta NSW"},
		{Link: "far", Location: "Melbourne VIC"},
		{Link: "unknown", Location: "Atlantis"},
		{Link: "blank"},
		{Link: "near-again", Location: "Parramatta NSW"},
	}
	out := f.Apply(context.Background(), q, in)

	require.Len(t, out, 2)
	assert.Equal(t, "near", out[0].Link)
	assert.Regexp(t, `^\d+\.\d km$`, out[0].Distance)
	assert.Len(t, out[0].Geohash, 5)
	assert.Len(t, geo.Calls, 3, "repeated locations are resolved once")
}

func TestRadiusFilter_NoPointPassesThrough(t *testing.T) {
	in := []models.Listing{{Link: "a"}, {Link: "b", Location: "Nowhere"}}
	out := scraper.RadiusFilter{Geocoder: scrapertest.NewGeocoder(nil)}.Apply(context.Background(), scraper.Query{}, in)
	assert.Equal(t, in, out)
}

func TestSlice(t *testing.T) {
	boom := errors.New("boom")
	var links []string
	var last error
	for l, err := range scraper.Slice([]models.Listing{{Link: "a"}, {Link: "b"}}, boom) {
		if err != nil {
			last = err
			continue
		}
		links = append(links, l.Link)
	}
	assert.Equal(t, []string{"a", "b"}, links)
	assert.ErrorIs(t, last, boom)
}
