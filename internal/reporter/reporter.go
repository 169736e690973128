// Package reporter posts run summaries and newly found listings to Telegram.
package reporter

import (
	"fmt"
	"html"
	"strings"
	"time"

	"go-locator/internal/logger"
	"go-locator/internal/models"
	"go-locator/internal/orchestrator"
)

// Notifier is implemented by telegram.Bot.
type Notifier interface {
	SendHTML(text string) error
	SendListing(l models.Listing) error
	SendError(err error) error
}

type Reporter struct {
	notifier Notifier
	limit    int
	log      logger.Logger
}

// New returns a reporter that sends at most limit new listings per run.
func New(n Notifier, limit int, log logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{notifier: n, limit: limit, log: log}
}

// Report sends the outcome of a finished run. Delivery failures are logged
// and do not stop the remaining messages.
func (r *Reporter) Report(sum orchestrator.Summary, runErr error) {
	if runErr != nil {
		if err := r.notifier.SendError(fmt.Errorf("scrape run for %q failed: %w", sum.Request.Address, runErr)); err != nil {
			r.log.Error("❌ Failed to send Telegram error", err, nil)
		}
		return
	}

	if err := r.notifier.SendHTML(Summary(sum)); err != nil {
		r.log.Error("❌ Failed to send Telegram summary", err, nil)
	}

	sent := 0
	for _, l := range sum.New {
		if r.limit > 0 && sent >= r.limit {
			break
		}
		if err := r.notifier.SendListing(l); err != nil {
			r.log.Error("❌ Failed to send listing", err, logger.Fields{"link": l.Link})
			continue
		}
		sent++
	}
	r.log.Info("📨 Telegram report sent", logger.Fields{"listings": sent, "new": len(sum.New)})
}

// Summary renders a run summary in Telegram HTML.
func Summary(sum orchestrator.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>%s</b> near %s\n", html.EscapeString(string(sum.Request.Category)), html.EscapeString(sum.Request.Address))
	fmt.Fprintf(&b, "✅ %d found, 🆕 %d new, ♻️ %d updated, 🔁 %d duplicates\n", len(sum.Results), sum.Inserted, sum.Replaced, sum.Duplicates)
	if sum.WriteErrors > 0 {
		fmt.Fprintf(&b, "💾 %d failed writes\n", sum.WriteErrors)
	}
	if failed := sum.FailedAdapters(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, a := range failed {
			names[i] = html.EscapeString(a.Name)
		}
		fmt.Fprintf(&b, "⚠️ Failed sources: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "⏱ %s", sum.Duration.Round(time.Second))
	return b.String()
}
