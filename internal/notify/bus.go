package notify

import "context"

// Bus moves a notification from the dispatcher to every live stream
// subscribed to the recipient's channel. Publishing is fire-and-forget:
// no delivery confirmation, no durability for absent subscribers.
type Bus interface {
	Publish(ctx context.Context, userID, eventType string, data map[string]string) error
	// Subscribe registers a new independent consumer of the recipient's
	// channel. Every simultaneous subscription for the same user receives
	// its own copy of each message.
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is bound to one connection's lifetime. Messages carries
// serialized notification frames in channel FIFO order; it is closed
// after Close.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// ChannelFor names the recipient-scoped pub/sub channel.
func ChannelFor(userID string) string {
	return "notifications:user_" + userID
}
