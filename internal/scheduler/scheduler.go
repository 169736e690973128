// Package scheduler re-runs saved searches on cron specs.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"go-locator/internal/config"
	"go-locator/internal/logger"
	"go-locator/internal/models"
	"go-locator/internal/orchestrator"

	"github.com/robfig/cron/v3"
)

// Runner is the orchestrator entry point a scheduled search calls.
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request) (orchestrator.Summary, error)
}

// ReportFunc receives the outcome of every scheduled run.
type ReportFunc func(sum orchestrator.Summary, err error)

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	report ReportFunc
	log    logger.Logger
}

func New(runner Runner, report ReportFunc, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		report: report,
		log:    log.WithFields(logger.Fields{"component": "scheduler"}),
	}
}

// Add registers every entry. An invalid spec or category fails the whole call.
func (s *Scheduler) Add(ctx context.Context, entries []config.ScheduleEntry) error {
	for _, e := range entries {
		req, err := Request(e)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", e.Spec, err)
		}
		if _, err := s.cron.AddFunc(e.Spec, func() { s.trigger(ctx, req) }); err != nil {
			return fmt.Errorf("schedule %q: %w", e.Spec, err)
		}
		s.log.Info("⏰ Search scheduled", logger.Fields{"spec": e.Spec, "address": e.Address, "category": string(req.Category)})
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("⏰ Scheduler started", logger.Fields{"entries": len(s.cron.Entries())})
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("⏰ Scheduler stopped", nil)
}

// Request converts a saved search into an orchestrator request.
func Request(e config.ScheduleEntry) (orchestrator.Request, error) {
	category, err := models.ParseCategory(e.Category)
	if err != nil {
		return orchestrator.Request{}, err
	}
	radius := e.RadiusKm
	if radius != 0 {
		radius = config.ClampRadius(radius)
	}
	return orchestrator.Request{
		Address:   e.Address,
		RadiusKm:  radius,
		Category:  category,
		Keyword:   e.Keyword,
		CustomURL: e.CustomURL,
	}, nil
}

func (s *Scheduler) trigger(ctx context.Context, req orchestrator.Request) {
	fields := logger.Fields{"address": req.Address, "category": string(req.Category)}
	s.log.Info("⏰ Scheduled search starting", fields)

	sum, err := s.runner.Run(ctx, req)
	if errors.Is(err, orchestrator.ErrRunInProgress) {
		s.log.Warn("⏭️ Skipping scheduled search, another run is active", fields)
		return
	}
	if err != nil {
		s.log.Error("❌ Scheduled search failed", err, fields)
	} else {
		s.log.Info("✅ Scheduled search done", logger.Fields{"results": len(sum.Results), "new": sum.Inserted})
	}
	if s.report != nil {
		s.report(sum, err)
	}
}
