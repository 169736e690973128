package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-locator/internal/logger"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotDebugger saves full-page screenshots of blocked or broken pages.
type ScreenshotDebugger struct {
	outputDir string
	log       logger.Logger
}

func NewScreenshotDebugger(dir string, log logger.Logger) *ScreenshotDebugger {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn("⚠️ Could not create screenshot directory", logger.Fields{"dir": dir, "error": err.Error()})
	}
	return &ScreenshotDebugger{outputDir: dir, log: log}
}

func (s *ScreenshotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	s.log.Warn("📸 "+message, logger.Fields{"screenshot": path})

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		s.log.Error("⚠️ Failed to capture screenshot", err, nil)
		return err
	}
	return nil
}
