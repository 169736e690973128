package pdf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-locator/internal/models"
	"go-locator/internal/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summary(category models.Category, listings ...models.Listing) orchestrator.Summary {
	return orchestrator.Summary{
		Request: orchestrator.Request{Address: "Newtown NSW", RadiusKm: 10, Category: category},
		Results: listings,
	}
}

func TestHTML_Accommodation(t *testing.T) {
	g, err := NewGenerator("")
	require.NoError(t, err)

	d := NewDigest(summary(models.CategoryAccommodation,
		models.Listing{Link: "https://rooms.example/1", Title: "Sunny <room>", Price: "$320pw", Distance: "1.2 km", PostedDate: models.StringPtr("2025-03-01")},
		models.Listing{Link: "0b7e", Title: "Manual room", Price: "N/A"},
	), time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC))

	out, err := g.HTML(d)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Locator: accommodation")
	assert.Contains(t, html, "<th>Price</th>")
	assert.Contains(t, html, `<a href="https://rooms.example/1">Sunny &lt;room&gt;</a>`)
	assert.Contains(t, html, "$320pw")
	assert.Contains(t, html, "2025-03-01")
	assert.NotContains(t, html, `href="0b7e"`)
	assert.Contains(t, html, "2 listings")
}

func TestHTML_JobsShowCompany(t *testing.T) {
	g, err := NewGenerator("")
	require.NoError(t, err)

	out, err := g.HTML(NewDigest(summary(models.CategoryPartTime,
		models.Listing{Link: "https://jobs.example/1", Title: "Barista", Company: "Bean Co"},
	), time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<th>Company</th>")
	assert.Contains(t, string(out), "Bean Co")
}

func TestNewGenerator_TemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{range .Listings}}[{{.Title}}]{{end}}`), 0644))

	g, err := NewGenerator(path)
	require.NoError(t, err)
	out, err := g.HTML(NewDigest(summary(models.CategoryProfessional, models.Listing{Title: "A"}, models.Listing{Title: "B"}), time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "[A][B]", string(out))

	_, err = NewGenerator(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.pdf")
	require.NoError(t, SaveToFile([]byte("%PDF-1.4"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestGenerate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Playwright PDF test in short mode")
	}
	g, err := NewGenerator("")
	require.NoError(t, err)

	out, err := g.Generate(NewDigest(summary(models.CategoryAccommodation, models.Listing{Title: "Room"}), time.Now()))
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF")
}
