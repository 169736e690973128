package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay waits for a random duration between min and max milliseconds,
// returning early if ctx is done.
func RandomDelay(ctx context.Context, min, max int) {
	d := time.Duration(min) * time.Millisecond
	if max > min {
		d = time.Duration(rand.Intn(max-min+1)+min) * time.Millisecond
	}
	sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// MouseJiggle moves the mouse around the viewport to look less idle.
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	width, height := 1000, 700
	if vp := page.ViewportSize(); vp != nil {
		width, height = vp.Width, vp.Height
	}
	for i := 0; i < 3; i++ {
		x := rand.Intn(width)
		y := rand.Intn(height)
		if err := page.Mouse().Move(float64(x), float64(y)); err != nil {
			return err
		}
		RandomDelay(ctx, 100, 300)
	}
	return nil
}

// ScrollToBottom scrolls to the end of the page passes times, waiting after
// each pass so lazy-loaded cards can render.
func ScrollToBottom(ctx context.Context, page playwright.Page, passes int, wait time.Duration) error {
	for i := 0; i < passes; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
			return err
		}
		sleep(ctx, wait)
	}
	return nil
}
