package seek

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go-locator/internal/models"
	"go-locator/internal/scraper"
	"go-locator/internal/scraper/scrapertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(id int, withCompany bool) string {
	company := ""
	if withCompany {
		company = `<a data-automation="jobCompany">Acme Logistics</a>`
	}
	return fmt.Sprintf(`<article data-automation="normalJob">
		<a data-automation="jobTitle" href="/job/%d">Picker Packer %d</a>
		%s
		<a data-automation="jobLocation">Blacktown NSW</a>
		<span data-automation="jobListingDate">%dd ago</span>
	</article>`, id, id, company, id)
}

func page(cards ...string) string {
	return "<html><body>" + strings.Join(cards, "") + "</body></html>"
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://www.seek.com.au/night-warehouse-jobs/in-Sydney-NSW", PageURL("night warehouse", "Sydney NSW", 1))
	assert.Equal(t, "https://www.seek.com.au/night-warehouse-jobs/in-Sydney-NSW?page=3", PageURL("night warehouse", "Sydney NSW", 3))
	assert.Equal(t, "https://www.seek.com.au/jobs/in-Perth", PageURL("", "Perth", 1))
}

func TestAdapter_PaginatesUntilEmptyPage(t *testing.T) {
	f := scrapertest.NewFetcher()
	f.Pages[PageURL("aged care", "Sydney NSW", 1)] = page(card(1, true), card(2, true))
	f.Pages[PageURL("aged care", "Sydney NSW", 2)] = page(card(3, true), card(4, false))

	a := New(scraper.Env{Fetcher: f, MaxPages: 20})
	q := scraper.Query{Location: "Sydney NSW", Category: models.CategoryAgedCare}

	var got []models.Listing
	for l, err := range a.Fetch(context.Background(), q) {
		require.NoError(t, err)
		got = append(got, l)
	}

	// Three phrases ("aged care", "nursing", "care assistant"); the first
	// stops on page 3, the other two on their empty page 1.
	assert.Equal(t, 5, f.Count())
	require.Len(t, got, 3, "card without a company is skipped")
	assert.Equal(t, "https://www.seek.com.au/job/1", got[0].Link)
	assert.Equal(t, "Acme Logistics", got[0].Company)
	assert.Equal(t, "Blacktown NSW", got[0].Location)
	assert.Equal(t, "1d ago", models.Deref(got[0].PostedDate))
	assert.Equal(t, "aged care", models.Deref(got[0].Keyword))
	assert.Equal(t, Name, got[0].Source)
	assert.Equal(t, 3, f.Passes[0])
}

func TestAdapter_MaxPages(t *testing.T) {
	f := scrapertest.NewFetcher()
	for p := 1; p <= 5; p++ {
		f.Pages[PageURL("warehouse", "Perth", p)] = page(card(p, true))
	}

	a := New(scraper.Env{Fetcher: f, MaxPages: 2})
	q := scraper.Query{Location: "Perth", Keywords: []string{"warehouse"}, Category: models.CategoryAccommodation}

	n := 0
	for _, err := range a.Fetch(context.Background(), q) {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.Count())
}

func TestAdapter_CancelledContextIsAdapterError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(scraper.Env{Fetcher: scrapertest.NewFetcher()})
	var errs []error
	for _, err := range a.Fetch(ctx, scraper.Query{Location: "Perth", Keywords: []string{"barista"}}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}
