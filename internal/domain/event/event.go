package event

import "encoding/json"

// Notification event types carried in the outer envelope.
const (
	TypeNewPost    = "new_post"
	TypePostLiked  = "post_liked"
	TypeNewComment = "new_comment"
)

// Notification is the frame published on a recipient's channel and written
// to the SSE stream. Data values are stringified for transport uniformity.
type Notification struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// LookupRequest is published to the identity service's request topics,
// keyed by RequestID. The response arrives on a separate topic under the
// same key.
type LookupRequest struct {
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

// UserEvent is the envelope consumed from the user lifecycle channel.
// Data is kept raw; only the fields we replicate are decoded.
type UserEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// UserPayload is the subset of the lifecycle event body that the replica
// stores locally.
type UserPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
	Email    string `json:"email"`
}
