package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"pulse/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

// RedisBus is the production bus: one Redis pub/sub channel per recipient,
// consumed independently by each connection. Safe across multiple service
// instances.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, userID, eventType string, data map[string]string) error {
	frame, err := json.Marshal(event.Notification{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := b.client.Publish(ctx, ChannelFor(userID), frame).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	ps := b.client.Subscribe(ctx, ChannelFor(userID))

	// Confirm the subscription before the caller assumes delivery starts.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", ChannelFor(userID), err)
	}

	sub := &redisSubscription{ps: ps, out: make(chan []byte, 16)}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	ps  *redis.PubSub
	out chan []byte
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		default:
			// slow consumer, drop rather than block the pump
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.ps.Close()
}
