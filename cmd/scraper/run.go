package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go-locator/internal/app"
	"go-locator/internal/config"
	"go-locator/internal/logger"
	"go-locator/internal/models"
	"go-locator/internal/orchestrator"
	"go-locator/internal/pdf"

	"github.com/spf13/cobra"
)

type runFlags struct {
	address   string
	radius    int
	category  string
	keywords  string
	customURL string
	dryRun    bool
	output    string
	pdf       bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one search and save the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(commandContext(cmd), f)
		},
	}
	cmd.Flags().StringVarP(&f.address, "address", "a", "", "Address to search around (falls back to the configured address)")
	cmd.Flags().IntVarP(&f.radius, "radius", "r", 0, "Search radius in km, 5-50 (default from config)")
	cmd.Flags().StringVarP(&f.category, "category", "c", string(models.CategoryAccommodation), "accommodation, part-time, professional or aged-care")
	cmd.Flags().StringVarP(&f.keywords, "keywords", "k", "", "Comma separated keywords")
	cmd.Flags().StringVar(&f.customURL, "custom-url", "", "Extra page to scrape after the built-in sites")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Use generated listings and an in-memory store")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Directory for the results file (default from config)")
	cmd.Flags().BoolVar(&f.pdf, "pdf", false, "Also print the results to a PDF digest")
	return cmd
}

func runSearch(ctx context.Context, f runFlags) error {
	cfg, log, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	category, err := models.ParseCategory(f.category)
	if err != nil {
		return err
	}
	radius := cfg.Search.RadiusKm
	if f.radius != 0 {
		radius = config.ClampRadius(f.radius)
	}
	address := f.address
	if address == "" {
		address = cfg.Search.FallbackAddress
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("🚀 Starting Locator", logger.Fields{"address": address, "radius_km": radius, "category": string(category)})

	a, err := app.New(ctx, cfg, log, app.Options{DryRun: f.dryRun})
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.Orchestrator.Start(ctx, orchestrator.Request{
		Address:   address,
		RadiusKm:  radius,
		Category:  category,
		Keyword:   f.keywords,
		CustomURL: f.customURL,
	})
	if err != nil {
		return err
	}

	for ev := range run.Events(ctx) {
		if ev.Terminal() {
			break
		}
		log.Info("▶️ "+ev.Status, logger.Fields{"progress": fmt.Sprintf("%.0f%%", ev.Progress*100), "accepted": ev.Accepted})
	}

	sum, runErr := run.Wait()
	a.Report(sum, runErr)
	if runErr != nil {
		return runErr
	}
	log.Info("📦 Total listings collected", logger.Fields{"results": len(sum.Results), "new": sum.Inserted})

	dir := f.output
	if dir == "" {
		dir = cfg.OutputPath
	}
	now := time.Now()
	path, err := saveListings(dir, category.Collection(), sum.Results, now)
	if err != nil {
		log.Warn("⚠️ Failed to save results file", logger.Fields{"error": err.Error()})
	} else if path != "" {
		log.Info("📁 Results saved", logger.Fields{"path": path})
	}
	if f.pdf && len(sum.Results) > 0 {
		if err := savePDF(dir, category.Collection(), sum, now); err != nil {
			log.Warn("⚠️ Failed to write PDF digest", logger.Fields{"error": err.Error()})
		}
	}

	log.Info("🏁 Execution finished.", nil)
	return nil
}

func savePDF(dir, collection string, sum orchestrator.Summary, now time.Time) error {
	g, err := pdf.NewGenerator("")
	if err != nil {
		return err
	}
	out, err := g.Generate(pdf.NewDigest(sum, now))
	if err != nil {
		return err
	}
	return pdf.SaveToFile(out, filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", collection, now.Format("2006-01-02"))))
}

// saveListings writes listings to <dir>/<collection>-YYYY-MM-DD.json and
// returns the path. Nothing is written for an empty result.
func saveListings(dir, collection string, listings []models.Listing, now time.Time) (string, error) {
	if len(listings) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", collection, now.Format("2006-01-02")))
	data, err := json.MarshalIndent(listings, "", " ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal listings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
