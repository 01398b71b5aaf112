package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"pulse/internal/domain/event"
)

// MemoryBus is an in-process bus with the same contract as RedisBus.
// Single-instance only; used by tests and embedded deployments.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string][]*memorySubscription
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]*memorySubscription)}
}

func (b *MemoryBus) Publish(_ context.Context, userID, eventType string, data map[string]string) error {
	frame, err := json.Marshal(event.Notification{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[userID] {
		select {
		case sub.out <- frame:
		default:
			// slow consumer, drop
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, userID string) (Subscription, error) {
	sub := &memorySubscription{
		bus:    b,
		userID: userID,
		out:    make(chan []byte, 16),
	}

	b.mu.Lock()
	b.subs[userID] = append(b.subs[userID], sub)
	b.mu.Unlock()

	return sub, nil
}

type memorySubscription struct {
	bus    *MemoryBus
	userID string
	out    chan []byte
	closed bool
}

func (s *memorySubscription) Messages() <-chan []byte {
	return s.out
}

func (s *memorySubscription) Close() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	subs := s.bus.subs[s.userID]
	for i, sub := range subs {
		if sub == s {
			s.bus.subs[s.userID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.bus.subs[s.userID]) == 0 {
		delete(s.bus.subs, s.userID)
	}

	close(s.out)
	return nil
}
