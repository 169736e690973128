// Package orchestrator runs a search across every adapter for a category,
// deduplicating and persisting listings as they arrive and streaming
// progress to the caller.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go-locator/internal/config"
	"go-locator/internal/dedup"
	"go-locator/internal/geocode"
	"go-locator/internal/logger"
	"go-locator/internal/merge"
	"go-locator/internal/models"
	"go-locator/internal/scraper"

	"github.com/google/uuid"
)

var (
	ErrRunInProgress     = errors.New("a scrape run is already in progress")
	ErrGeocode           = errors.New("could not geocode address")
	ErrInvalidTransition = errors.New("invalid state transition")
)

const DefaultFallbackAddress = "Sydney NSW"

// AdapterSource yields the ordered adapters for a category.
type AdapterSource interface {
	For(category models.Category, customURL string) []scraper.Adapter
}

// Locker guards against runs in other processes.
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Sink receives every listing after it has been written.
type Sink interface {
	Publish(ctx context.Context, collection string, action merge.Action, l models.Listing) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Request struct {
	Address   string          `json:"address"`
	RadiusKm  int             `json:"radius"`
	Category  models.Category `json:"category"`
	Keyword   string          `json:"keywords"`
	CustomURL string          `json:"custom_url"`
}

// Keywords splits the comma separated keyword field.
func (r Request) Keywords() []string {
	var out []string
	for _, k := range strings.Split(r.Keyword, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

type Options struct {
	FallbackAddress string
	DefaultRadiusKm int
	// AdapterTimeout bounds each adapter. An adapter that runs out of time
	// is reported as failed and the run moves on to the next one.
	AdapterTimeout  time.Duration
	Locker          Locker
	Sinks           []Sink
	Log             logger.Logger
}

type Orchestrator struct {
	adapters AdapterSource
	geocoder geocode.Geocoder
	store    merge.Store
	writer   *merge.Writer
	opts     Options
	log      logger.Logger

	running atomic.Bool
	mu      sync.Mutex
	state   State
}

func New(adapters AdapterSource, geocoder geocode.Geocoder, store merge.Store, opts Options) *Orchestrator {
	if opts.FallbackAddress == "" {
		opts.FallbackAddress = DefaultFallbackAddress
	}
	if opts.DefaultRadiusKm == 0 {
		opts.DefaultRadiusKm = 10
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		adapters: adapters,
		geocoder: geocoder,
		store:    store,
		writer:   merge.NewWriter(store),
		opts:     opts,
		log:      log,
		state:    Idle,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) transition(to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !canTransition(o.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.state, to)
	}
	o.state = to
	return nil
}

// Start begins a run in the background. It fails with ErrRunInProgress,
// without side effects, while another run is active.
func (o *Orchestrator) Start(ctx context.Context, req Request) (*Run, error) {
	category, err := models.ParseCategory(string(req.Category))
	if err != nil {
		return nil, err
	}
	req.Category = category

	if !o.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}

	if o.opts.Locker != nil {
		ok, err := o.opts.Locker.TryAcquire(ctx)
		if err != nil {
			o.running.Store(false)
			return nil, err
		}
		if !ok {
			o.running.Store(false)
			return nil, ErrRunInProgress
		}
	}

	if err := o.transition(Running); err != nil {
		o.release()
		return nil, err
	}

	run := newRun(req)
	runCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer cancel()
		o.execute(runCtx, run)
	}()
	return run, nil
}

// Run starts a run and waits for it.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Summary, error) {
	run, err := o.Start(ctx, req)
	if err != nil {
		return Summary{}, err
	}
	return run.Wait()
}

func (o *Orchestrator) release() {
	if o.opts.Locker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.opts.Locker.Release(ctx); err != nil {
			o.log.Warn("⚠️ Could not release run lock", logger.Fields{"error": err.Error()})
		}
	}
	o.running.Store(false)
}

func (o *Orchestrator) execute(ctx context.Context, run *Run) {
	req := run.Request
	log := o.log.WithFields(logger.Fields{"run_id": run.ID, "category": string(req.Category)})
	log.Info("🚀 Starting scrape run", logger.Fields{"address": req.Address, "radius_km": req.RadiusKm, "keywords": req.Keyword})

	sum := &run.summary
	sum.StartedAt = time.Now()

	if p, ok := o.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			o.fail(run, log, fmt.Errorf("store unavailable: %w", err))
			return
		}
	}

	point, location, err := o.resolve(ctx, req.Address, log)
	if err != nil {
		o.fail(run, log, err)
		return
	}

	radius := req.RadiusKm
	if radius == 0 {
		radius = o.opts.DefaultRadiusKm
	}
	q := scraper.Query{
		Location: location,
		RadiusKm: config.ClampRadius(radius),
		Keywords: req.Keywords(),
		Category: req.Category,
		Lat:      point.Lat,
		Lon:      point.Lon,
		City:     point.City,
		HasPoint: true,
	}

	adapters := o.adapters.For(req.Category, req.CustomURL)
	buf := dedup.NewBuffer()
	total := len(adapters)

	for i, a := range adapters {
		if err := ctx.Err(); err != nil {
			o.fail(run, log, fmt.Errorf("run cancelled: %w", err))
			return
		}

		report := o.runAdapter(ctx, a, q, run, buf, log)
		sum.Adapters = append(sum.Adapters, report)

		run.queue.push(Event{
			Status:   fmt.Sprintf("Scraped %s", a.Name()),
			Progress: float64(i+1) / float64(total),
			Adapter:  a.Name(),
			Accepted: len(sum.Results),
		})
	}

	sum.Duplicates = buf.Duplicates()
	sum.Unique = buf.Len()
	o.complete(run, log)
}

// resolve geocodes address, falling back to the configured address. It
// returns the location string adapters should search.
func (o *Orchestrator) resolve(ctx context.Context, address string, log logger.Logger) (geocode.Point, string, error) {
	if strings.TrimSpace(address) != "" {
		p, err := o.geocoder.Resolve(ctx, address)
		if err == nil {
			return p, address, nil
		}
		log.Warn("⚠️ Geocoding failed. Defaulting to fallback address", logger.Fields{
			"address": address, "fallback": o.opts.FallbackAddress, "error": err.Error(),
		})
	}

	p, err := o.geocoder.Resolve(ctx, o.opts.FallbackAddress)
	if err != nil {
		return geocode.Point{}, "", fmt.Errorf("%w: %q and fallback %q: %v", ErrGeocode, address, o.opts.FallbackAddress, err)
	}
	if strings.TrimSpace(address) == "" {
		address = o.opts.FallbackAddress
	}
	return p, address, nil
}

func (o *Orchestrator) runAdapter(ctx context.Context, a scraper.Adapter, q scraper.Query, run *Run, buf *dedup.Buffer, log logger.Logger) (report AdapterReport) {
	report.Name = a.Name()
	log = log.WithFields(logger.Fields{"adapter": a.Name()})
	log.Info("🔍 Scraping source", nil)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Sprintf("panic: %v", r)
			log.Error("❌ Adapter panicked", fmt.Errorf("%v", r), nil)
		}
		report.Duration = time.Since(started)
	}()

	sum := &run.summary
	collection := run.Request.Category.Collection()

	fetchCtx, cancel := ctx, context.CancelFunc(func() {})
	if o.opts.AdapterTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, o.opts.AdapterTimeout)
	}
	defer cancel()

	for l, err := range a.Fetch(fetchCtx, q) {
		if err != nil {
			report.Err = err.Error()
			log.Error("❌ Adapter failed", err, logger.Fields{"yielded": report.Yielded})
			break
		}
		report.Yielded++

		l = tag(l, run.Request)
		if !buf.Accept(l) {
			if l.Link == "" {
				sum.Skipped++
			}
			continue
		}
		report.Accepted++
		sum.Results = append(sum.Results, l)

		action, saved, err := o.writer.Apply(ctx, collection, l)
		if err != nil {
			sum.WriteErrors++
			log.Error("❌ Failed to save listing", err, logger.Fields{"link": l.Link})
			continue
		}
		switch action {
		case merge.Insert:
			sum.Inserted++
			sum.New = append(sum.New, saved)
		case merge.Replace:
			sum.Replaced++
		default:
			sum.Skipped++
		}

		for _, sink := range o.opts.Sinks {
			if err := sink.Publish(ctx, collection, action, saved); err != nil {
				log.Warn("⚠️ Could not publish listing", logger.Fields{"link": saved.Link, "error": err.Error()})
			}
		}
	}

	if report.Err == "" && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		report.Err = fmt.Sprintf("timed out after %s", o.opts.AdapterTimeout)
		log.Warn("⏱️ Adapter timed out", logger.Fields{"yielded": report.Yielded})
	}

	log.Info("✅ Source done", logger.Fields{"yielded": report.Yielded, "accepted": report.Accepted})
	return report
}

// tag stamps run-level fields onto a scraped listing.
func tag(l models.Listing, req Request) models.Listing {
	l.Category = req.Category
	if l.Keyword == nil {
		l.Keyword = models.StringPtr(req.Keyword)
	}
	l.ApplyDefaults()
	return l
}

func (o *Orchestrator) complete(run *Run, log logger.Logger) {
	sum := &run.summary
	sum.Duration = time.Since(sum.StartedAt)
	if err := o.transition(Completed); err != nil {
		log.Error("❌ Could not complete run", err, nil)
	}
	sum.State = Completed

	log.Info("🎉 Scrape run completed", logger.Fields{
		"results":      len(sum.Results),
		"inserted":     sum.Inserted,
		"replaced":     sum.Replaced,
		"unique":       sum.Unique,
		"duplicates":   sum.Duplicates,
		"write_errors": sum.WriteErrors,
		"duration":     sum.Duration.String(),
	})

	o.release()
	run.finish(Event{Status: StatusCompleted, Progress: 1.0, Accepted: len(sum.Results), Results: sum.Results})
}

func (o *Orchestrator) fail(run *Run, log logger.Logger, err error) {
	sum := &run.summary
	sum.Duration = time.Since(sum.StartedAt)
	sum.Err = err
	if terr := o.transition(Failed); terr != nil {
		log.Error("❌ Could not mark run failed", terr, nil)
	}
	sum.State = Failed

	log.Error("❌ Scrape run failed", err, nil)
	o.release()
	run.finish(Event{Status: err.Error(), Progress: 0, Error: true, Err: err})
}

// Run is one in-flight or finished search.
type Run struct {
	ID      string
	Request Request

	queue   *eventQueue
	done    chan struct{}
	summary Summary
}

func newRun(req Request) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Request: req,
		queue:   newEventQueue(),
		done:    make(chan struct{}),
	}
}

// Events streams progress events. The channel is closed after the terminal
// event, or once ctx is done. Cancel ctx when you stop reading.
func (r *Run) Events(ctx context.Context) <-chan Event {
	return r.queue.channel(ctx)
}

// Wait blocks until the run finishes and returns its summary and failure.
func (r *Run) Wait() (Summary, error) {
	<-r.done
	return r.summary, r.summary.Err
}

// Done is closed when the run has finished.
func (r *Run) Done() <-chan struct{} { return r.done }

func (r *Run) finish(terminal Event) {
	r.summary.RunID = r.ID
	r.summary.Request = r.Request
	r.queue.push(terminal)
	r.queue.close()
	close(r.done)
}
