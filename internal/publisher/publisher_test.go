package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go-locator/internal/logger"
	"go-locator/internal/merge"
	"go-locator/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := newWithChannel(ch, "locator.listings", nil)

	ctx := logger.ContextWithTraceID(context.Background(), "trace-1")
	l := models.Listing{Link: "https://example.com/1", Title: "Barista", Category: models.CategoryPartTime}
	require.NoError(t, p.Publish(ctx, models.CollectionJobs, merge.Insert, l))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "locator.listings", got.exchange)
	assert.Equal(t, "jobs.insert", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, EventType, got.msg.Headers["event-type"])
	assert.Equal(t, "trace-1", got.msg.Headers["x-trace-id"])

	var ev ListingEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &ev))
	assert.Equal(t, "insert", ev.Action)
	assert.Equal(t, "Barista", ev.Listing.Title)
}

func TestPublish_SkipIsIgnored(t *testing.T) {
	ch := &fakeChannel{}
	p := newWithChannel(ch, "x", nil)

	require.NoError(t, p.Publish(context.Background(), models.CollectionJobs, merge.Skip, models.Listing{}))
	assert.Empty(t, ch.sent)
}

func TestPublish_Errors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("boom")}
	p := newWithChannel(ch, "x", nil)

	err := p.Publish(context.Background(), models.CollectionAccommodations, merge.Replace, models.Listing{Link: "l"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accommodations.replace")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), "jobs", merge.Insert, models.Listing{}), ErrClosed)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "jobs.replace", RoutingKey("jobs", merge.Replace))
}
