package scheduler

import (
	"context"
	"errors"
	"testing"

	"go-locator/internal/config"
	"go-locator/internal/models"
	"go-locator/internal/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	requests []orchestrator.Request
	sum      orchestrator.Summary
	err      error
}

func (f *fakeRunner) Run(_ context.Context, req orchestrator.Request) (orchestrator.Summary, error) {
	f.requests = append(f.requests, req)
	return f.sum, f.err
}

func TestRequest(t *testing.T) {
	tests := []struct {
		name    string
		entry   config.ScheduleEntry
		radius  int
		wantErr bool
	}{
		{name: "clamps radius", entry: config.ScheduleEntry{Category: "part-time", RadiusKm: 200}, radius: 50},
		{name: "keeps zero for default", entry: config.ScheduleEntry{Category: "accommodation"}, radius: 0},
		{name: "bad category", entry: config.ScheduleEntry{Category: "pets"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Request(tt.entry)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.radius, req.RadiusKm)
		})
	}
}

func TestAdd(t *testing.T) {
	s := New(&fakeRunner{}, nil, nil)

	err := s.Add(context.Background(), []config.ScheduleEntry{
		{Spec: "@every 6h", Category: "part-time", Address: "Parramatta"},
		{Spec: "0 7 * * *", Category: "accommodation", Address: "Newtown"},
	})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	err = s.Add(context.Background(), []config.ScheduleEntry{{Spec: "not a spec", Category: "part-time"}})
	assert.Error(t, err)
}

func TestTrigger_Reports(t *testing.T) {
	runner := &fakeRunner{sum: orchestrator.Summary{Inserted: 2}}
	var reported []orchestrator.Summary
	s := New(runner, func(sum orchestrator.Summary, err error) {
		assert.NoError(t, err)
		reported = append(reported, sum)
	}, nil)

	req := orchestrator.Request{Address: "Parramatta", Category: models.CategoryPartTime}
	s.trigger(context.Background(), req)

	require.Len(t, runner.requests, 1)
	assert.Equal(t, req, runner.requests[0])
	require.Len(t, reported, 1)
	assert.Equal(t, 2, reported[0].Inserted)
}

func TestTrigger_SkipsWhenBusy(t *testing.T) {
	runner := &fakeRunner{err: orchestrator.ErrRunInProgress}
	called := false
	s := New(runner, func(orchestrator.Summary, error) { called = true }, nil)

	s.trigger(context.Background(), orchestrator.Request{Category: models.CategoryPartTime})
	assert.False(t, called)
}

func TestTrigger_ReportsFailure(t *testing.T) {
	boom := errors.New("geocode failed")
	runner := &fakeRunner{err: boom}
	var got error
	s := New(runner, func(_ orchestrator.Summary, err error) { got = err }, nil)

	s.trigger(context.Background(), orchestrator.Request{Category: models.CategoryPartTime})
	assert.ErrorIs(t, got, boom)
}
