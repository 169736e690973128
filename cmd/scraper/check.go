package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go-locator/internal/browser"
	"go-locator/internal/geocode"

	"github.com/spf13/cobra"
)

// newCheckCmd groups the manual smoke checks for a deployment.
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Smoke-test config, cookies, geocoding and the browser",
	}
	cmd.AddCommand(checkConfigCmd(), checkCookiesCmd(), checkGeocodeCmd(), checkBrowserCmd())
	return cmd
}

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "✅ Config loaded successfully!")
			fmt.Fprintf(out, "   Store: %s\n", cfg.Store.Driver)
			fmt.Fprintf(out, "   Radius: %d km (fallback %q)\n", cfg.Search.RadiusKm, cfg.Search.FallbackAddress)
			fmt.Fprintf(out, "   Max pages: %d, scroll passes: %d\n", cfg.Search.MaxPages, cfg.Search.ScrollPasses)
			fmt.Fprintf(out, "   Telegram: %s\n", mask(cfg.Telegram.Token))
			fmt.Fprintf(out, "   Redis: %t, broker: %t\n", cfg.Redis.URL != "", cfg.Broker.URL != "")
			fmt.Fprintf(out, "   Schedules: %d\n", len(cfg.Schedules))
			fmt.Fprintf(out, "   Cookies path: %s\n", cfg.Browser.CookiesPath)
			return nil
		},
	}
}

func checkCookiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cookies",
		Short: "Load every cookie file from the cookies directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()

			out := cmd.OutOrStdout()
			cookies, failed := browser.LoadCookiesDir(cfg.Browser.CookiesPath)
			fmt.Fprintf(out, "🍪 Loaded %d cookies from %s\n", len(cookies), cfg.Browser.CookiesPath)

			domains := map[string]int{}
			for _, c := range cookies {
				domain := "(url)"
				if c.Domain != nil {
					domain = *c.Domain
				}
				domains[domain]++
			}
			names := make([]string, 0, len(domains))
			for d := range domains {
				names = append(names, d)
			}
			sort.Strings(names)
			for _, d := range names {
				fmt.Fprintf(out, "   %s: %d\n", d, domains[d])
			}
			for file, err := range failed {
				fmt.Fprintf(out, "⚠️ %s: %v\n", file, err)
			}
			return nil
		},
	}
}

func checkGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address with the configured geocoder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()

			g := geocode.NewNominatim(geocode.NominatimConfig{
				URL:        cfg.Geocoder.URL,
				UserAgent:  cfg.Geocoder.UserAgent,
				Country:    cfg.Search.Country,
				RatePerSec: cfg.Geocoder.RatePerSec,
			})
			p, err := g.Resolve(commandContext(cmd), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "📍 %.5f, %.5f (%s)\n", p.Lat, p.Lon, p.City)
			return nil
		},
	}
}

func checkBrowserCmd() *cobra.Command {
	var passes int
	cmd := &cobra.Command{
		Use:   "browser <url>",
		Short: "Render a page with Playwright and report what was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup()
			if err != nil {
				return err
			}
			defer closeLog()

			pw, err := browser.NewPlaywright(browser.PlaywrightConfig{
				Headless:    cfg.Browser.Headless,
				Timeout:     cfg.Browser.Timeout,
				InitialWait: cfg.Browser.InitialWait,
				ScrollWait:  cfg.Browser.ScrollWait,
				UserAgent:   cfg.Browser.UserAgent,
				CookiesPath: cfg.Browser.CookiesPath,
				Screenshots: cfg.Browser.Screenshots,
			}, log)
			if err != nil {
				return err
			}
			defer pw.Close()

			doc, err := pw.Render(commandContext(cmd), args[0], passes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Page title: %s\n", strings.TrimSpace(doc.Find("title").Text()))
			fmt.Fprintf(out, "   Links: %d\n", doc.Find("a[href]").Length())
			return nil
		},
	}
	cmd.Flags().IntVar(&passes, "passes", 1, "Scroll passes")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func mask(secret string) string {
	if len(secret) <= 6 {
		if secret == "" {
			return "(not set)"
		}
		return "******"
	}
	return secret[:6] + "..."
}
