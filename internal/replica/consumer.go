package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pulse/internal/domain/event"
	"pulse/internal/domain/user"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replica_user_events_processed_total",
		Help: "The total number of user lifecycle events applied to the replica",
	}, []string{"type"})
	eventErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replica_user_event_errors_total",
		Help: "The total number of user lifecycle events dropped on error",
	})
)

// Store is the local replica of identity records. Handlers must stay
// idempotent: delivery is at-least-once and may be out of order.
type Store interface {
	CreateIfAbsent(ctx context.Context, ref *user.Reference) (bool, error)
	Upsert(ctx context.Context, ref *user.Reference) error
	Delete(ctx context.Context, userID string) (bool, error)
}

// Consumer keeps a denormalized local copy of foreign user records in
// sync from the lifecycle channel. One malformed event never stops the
// loop; it is logged and skipped.
type Consumer struct {
	client  *redis.Client
	channel string
	store   Store
}

func NewConsumer(client *redis.Client, channel string, store Store) *Consumer {
	return &Consumer{client: client, channel: channel, store: store}
}

func (c *Consumer) Run(ctx context.Context) error {
	pubsub := c.client.Subscribe(ctx, c.channel)
	defer pubsub.Close()

	slog.Info("user event consumer started", "channel", c.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := c.Handle(ctx, []byte(msg.Payload)); err != nil {
				slog.Error("failed to process user event", "error", err)
				eventErrors.Inc()
			}
		}
	}
}

// Handle applies one lifecycle event to the replica.
func (c *Consumer) Handle(ctx context.Context, payload []byte) error {
	var env event.UserEvent
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("unmarshal user event envelope: %w", err)
	}

	var data event.UserPayload
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("unmarshal user event data: %w", err)
	}
	if data.ID == "" {
		return fmt.Errorf("user event %q without user id", env.Type)
	}

	switch env.Type {
	case "create":
		if _, err := c.store.CreateIfAbsent(ctx, referenceFrom(data)); err != nil {
			return fmt.Errorf("create user reference: %w", err)
		}
	case "update":
		// An update for an unknown id creates the record; a strict update
		// would silently drop data when the create event was lost or late.
		if err := c.store.Upsert(ctx, referenceFrom(data)); err != nil {
			return fmt.Errorf("update user reference: %w", err)
		}
	case "delete":
		if _, err := c.store.Delete(ctx, data.ID); err != nil {
			return fmt.Errorf("delete user reference: %w", err)
		}
	default:
		return fmt.Errorf("unknown user event type %q", env.Type)
	}

	eventsProcessed.WithLabelValues(env.Type).Inc()
	return nil
}

func referenceFrom(data event.UserPayload) *user.Reference {
	return &user.Reference{
		UserID:   data.ID,
		Username: data.Username,
		Slug:     data.Slug,
		Email:    data.Email,
		IsActive: true,
		SyncedAt: time.Now().UTC(),
	}
}
