package lookup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type readyEntry struct {
	payload  []byte
	storedAt time.Time
}

// Collector consumes every response topic and matches arrivals to waiting
// callers by the correlation id carried in the message key. A response
// with no waiter is parked until claimed or swept.
type Collector struct {
	fetcher       fetcher
	unclaimedTTL  time.Duration
	sweepInterval time.Duration

	mu      sync.Mutex
	waiters map[string]chan []byte
	ready   map[string]readyEntry
}

func NewCollector(f fetcher, unclaimedTTL, sweepInterval time.Duration) *Collector {
	return &Collector{
		fetcher:       f,
		unclaimedTTL:  unclaimedTTL,
		sweepInterval: sweepInterval,
		waiters:       make(map[string]chan []byte),
		ready:         make(map[string]readyEntry),
	}
}

// Run consumes responses until the context is cancelled. Fetch errors are
// logged and retried after a pause; the loop must never die silently.
func (c *Collector) Run(ctx context.Context) error {
	go c.sweepLoop(ctx)

	slog.Info("lookup collector started", "topics", ResponseTopics)

	for {
		msg, err := c.fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("failed to fetch lookup response", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		c.resolve(string(msg.Key), msg.Value)

		if err := c.fetcher.CommitMessages(ctx, msg); err != nil {
			slog.Error("failed to commit lookup response", "error", err)
		}
	}
}

// resolve hands the payload to a waiting caller, or parks it. A duplicate
// response arriving before the claim overwrites the parked one.
func (c *Collector) resolve(correlationID string, payload []byte) {
	body := append([]byte(nil), payload...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.waiters[correlationID]; ok {
		delete(c.waiters, correlationID)
		ch <- body
		responsesMatched.Inc()
		return
	}

	c.ready[correlationID] = readyEntry{payload: body, storedAt: time.Now()}
	responsesParked.Inc()
}

// Await blocks until a response for the id arrives, the timeout elapses or
// the context is cancelled. The response is consumed exactly once: a
// second call for the same id finds nothing.
func (c *Collector) Await(ctx context.Context, correlationID string, timeout time.Duration) ([]byte, bool) {
	c.mu.Lock()
	if e, ok := c.ready[correlationID]; ok {
		delete(c.ready, correlationID)
		c.mu.Unlock()
		return e.payload, true
	}
	ch := make(chan []byte, 1)
	c.waiters[correlationID] = ch
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case payload := <-ch:
		return payload, true
	case <-timer.C:
	case <-ctx.Done():
	}

	c.mu.Lock()
	delete(c.waiters, correlationID)
	c.mu.Unlock()

	// The response may have been handed over between the timeout firing
	// and the waiter being removed.
	select {
	case payload := <-ch:
		return payload, true
	default:
	}

	awaitTimeouts.Inc()
	return nil, false
}

func (c *Collector) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(time.Now())
		}
	}
}

// sweep drops parked responses older than the unclaimed TTL so that
// abandoned correlation ids cannot grow the index without bound.
func (c *Collector) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, e := range c.ready {
		if now.Sub(e.storedAt) > c.unclaimedTTL {
			delete(c.ready, id)
			responsesEvicted.Inc()
		}
	}
}
