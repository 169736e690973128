package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go-locator/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

type PlaywrightConfig struct {
	Headless    bool
	Timeout     time.Duration
	InitialWait time.Duration
	ScrollWait  time.Duration
	UserAgent   string
	CookiesPath string
	Screenshots string
}

// Playwright renders pages in headless Chromium. One page is opened per
// Render call; calls are serialised because a run fetches one page at a time.
type Playwright struct {
	cfg     PlaywrightConfig
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	shots   *ScreenshotDebugger
	log     logger.Logger
	mu      sync.Mutex
}

func NewPlaywright(cfg PlaywrightConfig, log logger.Logger) (*Playwright, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(cfg.UserAgent),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	cookies, failed := LoadCookiesDir(cfg.CookiesPath)
	for file, err := range failed {
		log.Warn("⚠️ Could not load cookies. Continuing.", logger.Fields{"file": file, "error": err.Error()})
	}
	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			log.Warn("⚠️ Could not add cookies to browser context", logger.Fields{"error": err.Error()})
		} else {
			log.Info("🍪 Loaded cookies", logger.Fields{"count": len(cookies)})
		}
	}

	return &Playwright{
		cfg:     cfg,
		pw:      pw,
		browser: browser,
		context: bctx,
		shots:   NewScreenshotDebugger(cfg.Screenshots, log),
		log:     log,
	}, nil
}

// Render loads url, waits, scrolls scrollPasses times and returns the
// rendered DOM. On any failure it returns an empty document and the error.
func (p *Playwright) Render(ctx context.Context, rawURL string, scrollPasses int) (*goquery.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Empty(), err
	}

	page, err := p.context.NewPage()
	if err != nil {
		return Empty(), fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	if _, err := page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.cfg.Timeout.Milliseconds())),
	}); err != nil {
		return Empty(), fmt.Errorf("error navigating to %s: %w", rawURL, err)
	}

	sleep(ctx, p.cfg.InitialWait)

	if blocked := p.checkBlocked(page, rawURL); blocked {
		return Empty(), fmt.Errorf("%s: %w", rawURL, ErrBlocked)
	}

	_ = MouseJiggle(ctx, page)
	if err := ScrollToBottom(ctx, page, scrollPasses, p.cfg.ScrollWait); err != nil {
		return Empty(), fmt.Errorf("error scrolling %s: %w", rawURL, err)
	}

	html, err := page.Content()
	if err != nil {
		return Empty(), fmt.Errorf("could not read content of %s: %w", rawURL, err)
	}
	return Parse(html)
}

func (p *Playwright) checkBlocked(page playwright.Page, rawURL string) bool {
	name := "page"
	if u, err := url.Parse(rawURL); err == nil {
		name = strings.TrimPrefix(u.Hostname(), "www.")
	}

	title, _ := page.Title()
	if isChallengeTitle(title) {
		p.shots.CaptureAndLog(page, name+"-cloudflare", "🛡️ Cloudflare challenge detected on "+name)
		return true
	}

	if captchaCount, _ := page.Locator(".captcha, .recaptcha, [data-captcha], iframe[src*='captcha']").Count(); captchaCount > 0 {
		p.shots.CaptureAndLog(page, name+"-captcha", "⚠️ CAPTCHA detected on "+name)
		return true
	}
	return false
}

func (p *Playwright) Close() error {
	if p.context != nil {
		p.context.Close()
	}
	if p.browser != nil {
		p.browser.Close()
	}
	if p.pw != nil {
		return p.pw.Stop()
	}
	return nil
}
