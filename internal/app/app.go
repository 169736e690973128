// Package app wires the configured store, geocoder, fetchers, adapters and
// orchestrator together for the command-line tools.
package app

import (
	"context"
	"errors"
	"fmt"

	"go-locator/internal/browser"
	"go-locator/internal/cache"
	"go-locator/internal/config"
	"go-locator/internal/database"
	"go-locator/internal/geocode"
	"go-locator/internal/logger"
	"go-locator/internal/orchestrator"
	"go-locator/internal/publisher"
	"go-locator/internal/reporter"
	"go-locator/internal/scraper"
	"go-locator/internal/scraper/mock"
	"go-locator/internal/scraper/registry"
	"go-locator/internal/telegram"
)

type Options struct {
	// DryRun swaps the real sites for generated listings and the configured
	// store for an in-memory one. No browser is started.
	DryRun bool
}

type App struct {
	Config       *config.Config
	Log          logger.Logger
	Store        database.Store
	Geocoder     geocode.Geocoder
	Registry     *registry.Registry
	Orchestrator *orchestrator.Orchestrator
	// Reporter is nil when Telegram is not configured.
	Reporter *reporter.Reporter

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Log: log}
	if err := a.build(ctx, opts); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, opts Options) error {
	cfg, log := a.Config, a.Log

	if opts.DryRun {
		a.Store = database.NewMemory()
		log.Info("🧪 Dry run: using in-memory store and generated listings", nil)
	} else {
		store, err := database.Open(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
		log.Info("💾 Store ready", logger.Fields{"driver": cfg.Store.Driver})
	}

	var geoCache geocode.Cache = geocode.NewMemoryCache()
	var locker orchestrator.Locker
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rdb.Close)
		geoCache = cache.NewGeoCache(rdb)
		locker = cache.NewRunLock(rdb, cfg.Redis.LockTTL)
		log.Info("🧠 Redis cache and run lock enabled", nil)
	}
	a.Geocoder = geocode.NewCached(geocode.NewNominatim(geocode.NominatimConfig{
		URL:        cfg.Geocoder.URL,
		UserAgent:  cfg.Geocoder.UserAgent,
		Country:    cfg.Search.Country,
		RatePerSec: cfg.Geocoder.RatePerSec,
	}), geoCache, cfg.Geocoder.CacheTTL)

	env := scraper.Env{
		Geocoder:     a.Geocoder,
		Log:          log,
		MaxPages:     cfg.Search.MaxPages,
		Retries:      cfg.Search.FetchRetries,
		ScrollPasses: cfg.Search.ScrollPasses,
	}
	if opts.DryRun {
		a.Registry = registry.NewWith(env,
			[]scraper.Adapter{mock.Generated("Mock Jobs", 5)},
			[]scraper.Adapter{mock.Generated("Mock Rooms", 5)},
		)
	} else {
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
		a.closers = append(a.closers, pw.Close)
		log.Info("✅ Browser initialized successfully!", nil)

		env.Fetcher = pw
		env.Static = browser.NewStatic(browser.StaticConfig{Timeout: cfg.Browser.Timeout})
		a.Registry = registry.New(env, cfg.Adapters)
	}

	var sinks []orchestrator.Sink
	if cfg.Broker.URL != "" && !opts.DryRun {
		pub, err := publisher.Dial(cfg.Broker.URL, cfg.Broker.Exchange, log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pub.Close)
		sinks = append(sinks, pub)
	}

	a.Orchestrator = orchestrator.New(a.Registry, a.Geocoder, a.Store, orchestrator.Options{
		FallbackAddress: cfg.Search.FallbackAddress,
		DefaultRadiusKm: cfg.Search.RadiusKm,
		AdapterTimeout:  cfg.Search.AdapterTimeout,
		Locker:          locker,
		Sinks:           sinks,
		Log:             log,
	})

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Error("❌ Failed to init Telegram Bot, reports disabled", err, nil)
		} else {
			a.Reporter = reporter.New(bot, cfg.Telegram.NotifyLimit, log)
			log.Info("🤖 Telegram Bot initialized.", nil)
		}
	}
	return nil
}

// Report forwards a finished run to Telegram when it is configured.
func (a *App) Report(sum orchestrator.Summary, err error) {
	if a.Reporter != nil {
		a.Reporter.Report(sum, err)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
