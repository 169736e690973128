package orchestrator

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"go-locator/internal/database"
	"go-locator/internal/geocode"
	"go-locator/internal/merge"
	"go-locator/internal/models"
	"go-locator/internal/scraper"
	"go-locator/internal/scraper/mock"
	"go-locator/internal/scraper/registry"
	"go-locator/internal/scraper/scrapertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var points = map[string]geocode.Point{
	"Sydney NSW":     {Lat: -33.8688, Lon: 151.2093, City: "sydney"},
	"Parramatta NSW": {Lat: -33.8150, Lon: 151.0011, City: "parramatta"},
}

func listing(link, title string) models.Listing {
	return models.Listing{Link: link, Title: title, Location: "Sydney NSW", Source: "test"}
}

func newOrchestrator(store merge.Store, opts Options, jobs ...scraper.Adapter) (*Orchestrator, *scrapertest.Geocoder) {
	geo := scrapertest.NewGeocoder(points)
	return New(registry.NewWith(scraper.Env{}, jobs, nil), geo, store, opts), geo
}

func drain(run *Run) []Event {
	var events []Event
	for e := range run.Events(context.Background()) {
		events = append(events, e)
	}
	return events
}

func partTime(address string) Request {
	return Request{Address: address, RadiusKm: 10, Category: models.CategoryPartTime, Keyword: "barista"}
}

func TestRun_DedupAcrossAdapters(t *testing.T) {
	store := database.NewMemory()
	a := mock.New("A", listing("l1", "first"), listing("l2", "second"))
	b := mock.New("B", listing("l2", "second again"), listing("l3", "third"))
	o, _ := newOrchestrator(store, Options{}, a, b)

	run, err := o.Start(context.Background(), partTime("Parramatta NSW"))
	require.NoError(t, err)
	events := drain(run)
	sum, err := run.Wait()
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, 0.5, events[0].Progress)
	assert.Equal(t, "A", events[0].Adapter)
	assert.Equal(t, 1.0, events[1].Progress)
	assert.Equal(t, StatusCompleted, events[2].Status)
	assert.Equal(t, 1.0, events[2].Progress)
	assert.True(t, events[2].Terminal())

	results := events[2].Results
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Title)
	assert.Equal(t, "second", results[1].Title, "first occurrence wins")
	assert.Equal(t, "third", results[2].Title)
	assert.Equal(t, models.CategoryPartTime, results[0].Category)
	assert.Equal(t, "barista", models.Deref(results[0].Keyword))
	assert.Equal(t, models.StatusNew, results[0].Status)

	assert.Equal(t, 3, sum.Inserted)
	assert.Equal(t, 1, sum.Duplicates)
	assert.Equal(t, 3, sum.Unique)
	assert.Len(t, sum.New, 3)
	assert.Equal(t, 3, store.Count(models.CollectionJobs))
	assert.Equal(t, Completed, o.State())
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	adapters := []scraper.Adapter{
		mock.New("A", listing("a", "a")),
		mock.New("B").WithError(errors.New("down")),
		mock.New("C", listing("c", "c")),
		mock.New("D"),
	}
	o, _ := newOrchestrator(database.NewMemory(), Options{}, adapters...)

	run, err := o.Start(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	events := drain(run)

	require.Len(t, events, 5)
	last := 0.0
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Progress, last)
		last = e.Progress
	}
	assert.Equal(t, 1.0, last)
}

func TestRun_AdapterFailureIsIsolated(t *testing.T) {
	boom := errors.New("site changed its markup")
	a := mock.New("A", listing("a1", "kept before failure")).WithError(boom)
	b := mock.New("B", listing("b1", "after"))
	o, _ := newOrchestrator(database.NewMemory(), Options{}, a, b)

	sum, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)

	require.Len(t, sum.Results, 2)
	require.Len(t, sum.FailedAdapters(), 1)
	assert.Equal(t, "A", sum.FailedAdapters()[0].Name)
	assert.Contains(t, sum.FailedAdapters()[0].Err, "markup")
	assert.Equal(t, 1, b.Calls())
}

func TestRun_AdapterTimeoutIsIsolated(t *testing.T) {
	a := mock.New("A", listing("a1", "fast"))
	slow := mock.New("Slow", listing("s1", "never arrives")).WithDelay(200 * time.Millisecond)
	c := mock.New("C", listing("c1", "after the slow one"))
	o, _ := newOrchestrator(database.NewMemory(), Options{AdapterTimeout: 50 * time.Millisecond}, a, slow, c)

	run, err := o.Start(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	events := drain(run)
	sum, err := run.Wait()
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.InDelta(t, 1.0/3, events[0].Progress, 1e-9)
	assert.InDelta(t, 2.0/3, events[1].Progress, 1e-9)
	assert.Equal(t, "Slow", events[1].Adapter)
	assert.Equal(t, 1.0, events[2].Progress)
	assert.Equal(t, "C", events[2].Adapter)
	assert.Equal(t, StatusCompleted, events[3].Status)
	assert.Equal(t, 1.0, events[3].Progress)

	assert.Equal(t, 1, c.Calls())
	require.Len(t, sum.Results, 2)
	assert.Equal(t, "a1", sum.Results[0].Link)
	assert.Equal(t, "c1", sum.Results[1].Link)
	require.Len(t, sum.FailedAdapters(), 1)
	assert.Equal(t, "Slow", sum.FailedAdapters()[0].Name)
	assert.Contains(t, sum.FailedAdapters()[0].Err, "deadline exceeded")
	assert.Equal(t, Completed, o.State())
}

// stallAdapter waits for its context and then stops without reporting an
// error.
type stallAdapter struct{}

func (stallAdapter) Name() string { return "Stall" }
func (stallAdapter) Fetch(ctx context.Context, _ scraper.Query) iter.Seq2[models.Listing, error] {
	return func(func(models.Listing, error) bool) { <-ctx.Done() }
}

func TestRun_SilentTimeoutIsReported(t *testing.T) {
	b := mock.New("B", listing("b1", "b"))
	o, _ := newOrchestrator(database.NewMemory(), Options{AdapterTimeout: 20 * time.Millisecond}, stallAdapter{}, b)

	sum, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	assert.Contains(t, sum.Adapters[0].Err, "timed out")
	assert.Len(t, sum.Results, 1)
}

// shutdownAdapter cancels the caller's context, standing in for a process
// shutdown that lands while it is running.
type shutdownAdapter struct{ cancel context.CancelFunc }

func (shutdownAdapter) Name() string { return "Shutdown" }
func (a shutdownAdapter) Fetch(context.Context, scraper.Query) iter.Seq2[models.Listing, error] {
	return func(yield func(models.Listing, error) bool) {
		a.cancel()
		yield(listing("s1", "before shutdown"), nil)
	}
}

func TestRun_ParentCancellationFailsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := mock.New("C", listing("c1", "c"))
	o, _ := newOrchestrator(database.NewMemory(), Options{AdapterTimeout: time.Minute}, shutdownAdapter{cancel: cancel}, c)

	run, err := o.Start(ctx, partTime("Sydney NSW"))
	require.NoError(t, err)
	events := drain(run)
	_, err = run.Wait()

	assert.ErrorIs(t, err, context.Canceled)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.True(t, last.Error)
	assert.Equal(t, 0, c.Calls())
	assert.Equal(t, Failed, o.State())

	_, err = o.Run(context.Background(), partTime("Sydney NSW"))
	assert.NoError(t, err, "a cancelled run frees the orchestrator")
}

func TestRun_AbandonedEventsDoNotBlockRun(t *testing.T) {
	a := mock.New("A", listing("a1", "a"))
	b := mock.New("B", listing("b1", "b")).WithDelay(20 * time.Millisecond)
	o, _ := newOrchestrator(database.NewMemory(), Options{}, a, b)

	run, err := o.Start(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := run.Events(ctx)
	<-events
	cancel()

	sum, err := run.Wait()
	require.NoError(t, err)
	assert.Len(t, sum.Results, 2)
	select {
	case <-run.queue.stopped:
	case <-time.After(time.Second):
		require.FailNow(t, "event pump outlived its consumer")
	}
}

type panicAdapter struct{}

func (panicAdapter) Name() string { return "Panicky" }
func (panicAdapter) Fetch(context.Context, scraper.Query) iter.Seq2[models.Listing, error] {
	return func(func(models.Listing, error) bool) { panic("nil selection") }
}

func TestRun_AdapterPanicIsIsolated(t *testing.T) {
	o, _ := newOrchestrator(database.NewMemory(), Options{}, panicAdapter{}, mock.New("B", listing("b1", "b")))

	sum, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	assert.Len(t, sum.Results, 1)
	assert.Contains(t, sum.Adapters[0].Err, "panic")
}

func TestRun_FallbackGeocoding(t *testing.T) {
	o, geo := newOrchestrator(database.NewMemory(), Options{}, mock.New("A", listing("a", "a")))

	sum, err := o.Run(context.Background(), partTime("Nowhere Special"))
	require.NoError(t, err)
	assert.Len(t, sum.Results, 1)
	assert.Equal(t, []string{"Nowhere Special", "Sydney NSW"}, geo.Calls)
}

func TestRun_FailsWhenFallbackAlsoFails(t *testing.T) {
	a := mock.New("A", listing("a", "a"))
	o, _ := newOrchestrator(database.NewMemory(), Options{FallbackAddress: "Atlantis"}, a)

	run, err := o.Start(context.Background(), partTime("Nowhere Special"))
	require.NoError(t, err)
	events := drain(run)
	_, err = run.Wait()

	assert.ErrorIs(t, err, ErrGeocode)
	require.Len(t, events, 1)
	assert.True(t, events[0].Error)
	assert.Equal(t, 0.0, events[0].Progress)
	assert.ErrorIs(t, events[0].Err, ErrGeocode)
	assert.Equal(t, Failed, o.State())
	assert.Equal(t, 0, a.Calls())
}

func TestStart_RejectsConcurrentRun(t *testing.T) {
	slow := mock.New("slow", listing("a", "a"), listing("b", "b")).WithDelay(50 * time.Millisecond)
	o, _ := newOrchestrator(database.NewMemory(), Options{}, slow)

	run, err := o.Start(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)

	_, err = o.Start(context.Background(), partTime("Sydney NSW"))
	assert.ErrorIs(t, err, ErrRunInProgress)

	_, err = run.Wait()
	require.NoError(t, err)

	_, err = o.Run(context.Background(), partTime("Sydney NSW"))
	assert.NoError(t, err, "a finished run frees the orchestrator")
}

func TestRun_IdempotentRerun(t *testing.T) {
	store := database.NewMemory()
	a := mock.New("A", listing("l1", "one"), listing("l2", "two"))
	o, _ := newOrchestrator(store, Options{}, a)

	first, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	second, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)

	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Replaced)
	assert.Empty(t, second.New)
	assert.Equal(t, 2, store.Count(models.CollectionJobs))
}

type flakyStore struct {
	*database.Memory
	failLink string
}

func (s flakyStore) Upsert(ctx context.Context, collection, key string, l models.Listing) (models.Listing, error) {
	if key == s.failLink {
		return l, errors.New("disk full")
	}
	return s.Memory.Upsert(ctx, collection, key, l)
}

func TestRun_WriteErrorDoesNotStopRun(t *testing.T) {
	store := flakyStore{Memory: database.NewMemory(), failLink: "l2"}
	a := mock.New("A", listing("l1", "one"), listing("l2", "two"), listing("l3", "three"))
	o, _ := newOrchestrator(store, Options{}, a)

	sum, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.WriteErrors)
	assert.Equal(t, 2, sum.Inserted)
	assert.Equal(t, 2, store.Count(models.CollectionJobs))
}

type pingFailStore struct{ *database.Memory }

func (pingFailStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestRun_StorePingFailure(t *testing.T) {
	o, _ := newOrchestrator(pingFailStore{database.NewMemory()}, Options{}, mock.New("A"))

	_, err := o.Run(context.Background(), partTime("Sydney NSW"))
	assert.ErrorContains(t, err, "store unavailable")
	assert.Equal(t, Failed, o.State())
}

type recordingSink struct {
	mu      sync.Mutex
	actions []merge.Action
}

func (s *recordingSink) Publish(_ context.Context, collection string, action merge.Action, l models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func TestRun_SinksSeeEverySavedListing(t *testing.T) {
	sink := &recordingSink{}
	o, _ := newOrchestrator(database.NewMemory(), Options{Sinks: []Sink{sink}}, mock.New("A", listing("l1", "one"), listing("l1", "dup")))

	_, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	assert.Equal(t, []merge.Action{merge.Insert}, sink.actions)
}

type fakeLocker struct {
	free     bool
	released int
}

func (l *fakeLocker) TryAcquire(context.Context) (bool, error) { return l.free, nil }
func (l *fakeLocker) Release(context.Context) error          { l.released++; return nil }

func TestStart_LockHeldElsewhere(t *testing.T) {
	o, _ := newOrchestrator(database.NewMemory(), Options{Locker: &fakeLocker{free: false}}, mock.New("A"))

	_, err := o.Start(context.Background(), partTime("Sydney NSW"))
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Equal(t, Idle, o.State())
}

func TestStart_LockReleasedAfterRun(t *testing.T) {
	lock := &fakeLocker{free: true}
	o, _ := newOrchestrator(database.NewMemory(), Options{Locker: lock}, mock.New("A"))

	_, err := o.Run(context.Background(), partTime("Sydney NSW"))
	require.NoError(t, err)
	assert.Equal(t, 1, lock.released)
}

func TestStart_InvalidCategory(t *testing.T) {
	o, _ := newOrchestrator(database.NewMemory(), Options{}, mock.New("A"))

	_, err := o.Start(context.Background(), Request{Address: "Sydney NSW", Category: "gardening"})
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
	assert.Equal(t, Idle, o.State())
}

func TestRun_CustomURLRunsLast(t *testing.T) {
	f := scrapertest.NewFetcher()
	f.Pages["https://board.test/jobs"] = `<div class="post"><h2>Custom</h2><a href="https://board.test/1">x</a></div>`
	reg := registry.NewWith(scraper.Env{Fetcher: f}, []scraper.Adapter{mock.New("A", listing("a", "a"))}, nil)
	o := New(reg, scrapertest.NewGeocoder(points), database.NewMemory(), Options{})

	req := partTime("Sydney NSW")
	req.CustomURL = "https://board.test/jobs"
	sum, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, sum.Adapters, 2)
	assert.Equal(t, "Custom", sum.Adapters[1].Name)
	require.Len(t, sum.Results, 2)
	assert.Equal(t, "https://board.test/1", sum.Results[1].Link)
}

func TestRequest_Keywords(t *testing.T) {
	assert.Equal(t, []string{"barista", "kitchen hand"}, Request{Keyword: " barista, kitchen hand ,,"}.Keywords())
	assert.Nil(t, Request{}.Keywords())
}
