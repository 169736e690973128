// Package pdf renders a run's listings as a printable digest.
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-locator/internal/models"
	"go-locator/internal/orchestrator"

	"github.com/playwright-community/playwright-go"
)

const defaultTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
body { font-family: sans-serif; font-size: 11px; margin: 24px; }
h1 { font-size: 18px; margin-bottom: 4px; }
p.meta { color: #555; margin-top: 0; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: 4px 6px; text-align: left; vertical-align: top; }
th { background: #f3f3f3; }
</style></head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Request.Address}} · {{.Request.RadiusKm}} km · {{len .Listings}} listings · {{.GeneratedAt.Format "02 Jan 2006 15:04"}}</p>
<table>
<tr><th>Title</th><th>{{if .IsJob}}Company{{else}}Price{{end}}</th><th>Location</th><th>Distance</th><th>Posted</th><th>Source</th></tr>
{{range .Listings}}<tr>
<td>{{if link .Link}}<a href="{{.Link}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td>
<td>{{if $.IsJob}}{{.Company}}{{else}}{{.Price}}{{end}}</td>
<td>{{.Location}}</td>
<td>{{.Distance}}</td>
<td>{{deref .PostedDate}}</td>
<td>{{.Source}}</td>
</tr>
{{end}}</table>
</body></html>`

// Digest is the data a template renders.
type Digest struct {
	Title       string
	Request     orchestrator.Request
	IsJob       bool
	Listings    []models.Listing
	GeneratedAt time.Time
}

func NewDigest(sum orchestrator.Summary, now time.Time) Digest {
	return Digest{
		Title:       fmt.Sprintf("Locator: %s", sum.Request.Category),
		Request:     sum.Request,
		IsJob:       sum.Request.Category.IsJob(),
		Listings:    sum.Results,
		GeneratedAt: now,
	}
}

type Generator struct {
	tmpl *template.Template
}

// NewGenerator parses the HTML template at templatePath, or the built-in
// one when the path is empty.
func NewGenerator(templatePath string) (*Generator, error) {
	funcMap := template.FuncMap{
		"deref": models.Deref,
		"link":  isHTTP,
	}

	var tmpl *template.Template
	var err error
	if templatePath == "" {
		tmpl, err = template.New("digest").Funcs(funcMap).Parse(defaultTemplate)
	} else {
		tmpl, err = template.New(filepath.Base(templatePath)).Funcs(funcMap).ParseFiles(templatePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

func (g *Generator) HTML(d Digest) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Generate renders the digest and prints it to an A4 PDF in headless Chromium.
func (g *Generator) Generate(d Digest) ([]byte, error) {
	htmlContent, err := g.HTML(d)
	if err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(string(htmlContent), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		Landscape:       playwright.Bool(true),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}
	return pdfBytes, nil
}

func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return os.WriteFile(outputPath, pdfBytes, 0644)
}

func isHTTP(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
