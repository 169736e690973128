package orchestrator

import (
	"context"
	"sync"

	"go-locator/internal/models"
)

const StatusCompleted = "Completed"

// Event reports run progress. The last event of a run is terminal: either
// Status "Completed" with Progress 1 and the results, or Error set with
// Progress 0 and the failure in Status.
type Event struct {
	Status   string           `json:"status"`
	Progress float64          `json:"progress"`
	Adapter  string           `json:"adapter,omitempty"`
	Accepted int              `json:"accepted"`
	Results  []models.Listing `json:"results,omitempty"`
	Error    bool             `json:"error,omitempty"`
	Err      error            `json:"-"`
}

func (e Event) Terminal() bool {
	return e.Error || e.Status == StatusCompleted
}

// eventQueue is an unbounded FIFO between the run and its consumer. push
// never blocks. Events are only delivered once somebody asks for the
// channel, so a run nobody listens to leaves no goroutine behind. A
// consumer that goes away cancels the context it passed to channel, which
// stops the pump and drops later events.
type eventQueue struct {
	mu       sync.Mutex
	items    []Event
	closed   bool
	detached bool
	notify   chan struct{}
	out      chan Event
	once     sync.Once
	stopped  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		notify:  make(chan struct{}, 1),
		out:     make(chan Event),
		stopped: make(chan struct{}),
	}
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	if q.closed || q.detached {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// channel starts the pump on first use. Only the first caller's ctx
// governs it.
func (q *eventQueue) channel(ctx context.Context) <-chan Event {
	q.once.Do(func() { go q.pump(ctx) })
	return q.out
}

func (q *eventQueue) detach() {
	q.mu.Lock()
	q.detached = true
	q.items = nil
	q.mu.Unlock()
}

func (q *eventQueue) pump(ctx context.Context) {
	defer close(q.stopped)
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-q.notify:
			case <-ctx.Done():
				q.detach()
				return
			}
			continue
		}
		e := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- e:
		case <-ctx.Done():
			q.detach()
			return
		}
	}
}
