package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	msgs chan kafka.Message
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{msgs: make(chan kafka.Message, 16)}
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeFetcher) CommitMessages(context.Context, ...kafka.Message) error {
	return nil
}

func (f *fakeFetcher) deliver(correlationID string, payload []byte) {
	f.msgs <- kafka.Message{Key: []byte(correlationID), Value: payload}
}

func startCollector(t *testing.T) (*Collector, *fakeFetcher) {
	t.Helper()

	f := newFakeFetcher()
	c := NewCollector(f, time.Minute, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Run(ctx)

	return c, f
}

func TestAwaitResolvesWaitingCaller(t *testing.T) {
	c, f := startCollector(t)

	done := make(chan []byte, 1)
	go func() {
		payload, ok := c.Await(context.Background(), "corr-1", 5*time.Second)
		require.True(t, ok)
		done <- payload
	}()

	// Let the waiter register before the response lands.
	time.Sleep(20 * time.Millisecond)
	f.deliver("corr-1", []byte(`{"followers":["f1"]}`))

	select {
	case payload := <-done:
		assert.JSONEq(t, `{"followers":["f1"]}`, string(payload))
	case <-time.After(2 * time.Second):
		t.Fatal("await did not resolve")
	}
}

func TestAwaitClaimsParkedResponse(t *testing.T) {
	c, f := startCollector(t)

	f.deliver("corr-2", []byte(`{"followers":[]}`))

	// The collector parks responses that nobody is waiting for yet.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		_, ok := c.ready["corr-2"]
		return ok
	}, time.Second, 10*time.Millisecond)

	payload, ok := c.Await(context.Background(), "corr-2", 100*time.Millisecond)
	require.True(t, ok)
	assert.JSONEq(t, `{"followers":[]}`, string(payload))
}

func TestAwaitConsumesExactlyOnce(t *testing.T) {
	c, f := startCollector(t)

	f.deliver("corr-3", []byte(`{"followers":["f1"]}`))

	_, ok := c.Await(context.Background(), "corr-3", time.Second)
	require.True(t, ok)

	_, ok = c.Await(context.Background(), "corr-3", 50*time.Millisecond)
	assert.False(t, ok, "a claimed response must not be claimable again")
}

func TestAwaitTimesOutWithoutResponse(t *testing.T) {
	c, _ := startCollector(t)

	start := time.Now()
	payload, ok := c.Await(context.Background(), "corr-never", 50*time.Millisecond)
	assert.False(t, ok)
	assert.Nil(t, payload)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDuplicateResponseLastWriteWinsBeforeClaim(t *testing.T) {
	c, f := startCollector(t)

	f.deliver("corr-4", []byte(`{"followers":["old"]}`))
	f.deliver("corr-4", []byte(`{"followers":["new"]}`))

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		e, ok := c.ready["corr-4"]
		return ok && string(e.payload) == `{"followers":["new"]}`
	}, time.Second, 10*time.Millisecond)

	payload, ok := c.Await(context.Background(), "corr-4", 100*time.Millisecond)
	require.True(t, ok)
	assert.JSONEq(t, `{"followers":["new"]}`, string(payload))
}

func TestSweepEvictsUnclaimedResponses(t *testing.T) {
	f := newFakeFetcher()
	c := NewCollector(f, 50*time.Millisecond, time.Hour)

	c.resolve("corr-5", []byte(`{}`))
	c.sweep(time.Now().Add(100 * time.Millisecond))

	_, ok := c.Await(context.Background(), "corr-5", 20*time.Millisecond)
	assert.False(t, ok, "swept response must be gone")
}

func TestResponseForUnknownIDDoesNotDisturbOthers(t *testing.T) {
	c, f := startCollector(t)

	f.deliver("corr-unknown", []byte(`garbage`))
	f.deliver("corr-6", []byte(`{"followers":["f1"]}`))

	payload, ok := c.Await(context.Background(), "corr-6", time.Second)
	require.True(t, ok)
	assert.JSONEq(t, `{"followers":["f1"]}`, string(payload))
}
