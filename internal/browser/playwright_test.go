package browser

import (
	"context"
	"testing"
	"time"

	"go-locator/internal/logger"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPlaywright starts a real headless browser whose every request is
// answered with html.
func setupPlaywright(t *testing.T, html string) *Playwright {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	p, err := NewPlaywright(PlaywrightConfig{
		Headless:    true,
		Timeout:     10 * time.Second,
		UserAgent:   "LocatorApp/1.0",
		CookiesPath: t.TempDir(),
		Screenshots: t.TempDir(),
	}, logger.Nop())
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	err = p.context.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        html,
		})
	})
	require.NoError(t, err)
	return p
}

func TestPlaywright_Render(t *testing.T) {
	p := setupPlaywright(t, `<html><head><title>Jobs</title></head><body>
		<article data-automation="normalJob"><a data-automation="jobTitle" href="/job/1">Storeperson</a></article>
	</body></html>`)

	doc, err := p.Render(context.Background(), "https://www.seek.com.au/warehouse-jobs/in-Sydney", 1)
	require.NoError(t, err)
	assert.Equal(t, "Storeperson", doc.Find(`a[data-automation="jobTitle"]`).Text())
}

func TestPlaywright_Cloudflare(t *testing.T) {
	p := setupPlaywright(t, `<html><title>Attention Required! | Cloudflare</title><body><h1>Please verify you are a human</h1></body></html>`)

	doc, err := p.Render(context.Background(), "https://au.indeed.com/jobs?q=test", 1)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 0, doc.Find("h1").Length(), "blocked pages come back empty")
}
