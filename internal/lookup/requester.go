package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pulse/internal/domain/event"

	"github.com/google/uuid"
)

// Kind selects which identity-service dataset a lookup targets.
type Kind string

const (
	KindFollowers    Kind = "followers"
	KindBlockedUsers Kind = "blocked-users"
)

var requestTopics = map[Kind]string{
	KindFollowers:    "request-followers",
	KindBlockedUsers: "request-blocked-users",
}

// ResponseTopics lists every topic the collector must consume.
var ResponseTopics = []string{"response-followers", "response-blocked-users"}

type publisher interface {
	SendTo(ctx context.Context, topic string, key, value []byte) error
}

// Requester publishes correlation-keyed request messages. Nothing is
// published for a kind outside the allow-list.
type Requester struct {
	pub publisher
}

func NewRequester(pub publisher) *Requester {
	return &Requester{pub: pub}
}

// Request publishes one message keyed by a fresh correlation id and
// returns that id. A broker failure here is a hard failure.
func (r *Requester) Request(ctx context.Context, userID string, kind Kind) (string, error) {
	topic, ok := requestTopics[kind]
	if !ok {
		return "", fmt.Errorf("unknown lookup kind %q", kind)
	}

	correlationID := uuid.NewString()

	msg := event.LookupRequest{
		RequestID: correlationID,
		UserID:    userID,
		Timestamp: time.Now().Unix(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal lookup request: %w", err)
	}

	if err := r.pub.SendTo(ctx, topic, []byte(correlationID), value); err != nil {
		return "", fmt.Errorf("publish lookup request: %w", err)
	}

	requestsPublished.Inc()
	return correlationID, nil
}
