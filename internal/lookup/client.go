package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNoResponse marks a lookup that got no matching response before the
// timeout. It is a normal negative result, not a broker error.
var ErrNoResponse = errors.New("lookup: no response before timeout")

type requester interface {
	Request(ctx context.Context, userID string, kind Kind) (string, error)
}

type awaiter interface {
	Await(ctx context.Context, correlationID string, timeout time.Duration) ([]byte, bool)
}

// Client composes the requester and the collector into one async call
// with a bounded wait.
type Client struct {
	req     requester
	col     awaiter
	timeout time.Duration
}

func NewClient(req requester, col awaiter, timeout time.Duration) *Client {
	return &Client{req: req, col: col, timeout: timeout}
}

func (c *Client) Followers(ctx context.Context, userID string) ([]string, error) {
	payload, err := c.fetch(ctx, userID, KindFollowers)
	if err != nil {
		return nil, err
	}

	var body struct {
		Followers []string `json:"followers"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("unmarshal followers response: %w", err)
	}
	return body.Followers, nil
}

func (c *Client) BlockedUsers(ctx context.Context, userID string) ([]string, error) {
	payload, err := c.fetch(ctx, userID, KindBlockedUsers)
	if err != nil {
		return nil, err
	}

	var body struct {
		BlockedUsers []string `json:"blocked_users"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("unmarshal blocked users response: %w", err)
	}
	return body.BlockedUsers, nil
}

func (c *Client) fetch(ctx context.Context, userID string, kind Kind) ([]byte, error) {
	correlationID, err := c.req.Request(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	payload, ok := c.col.Await(ctx, correlationID, c.timeout)
	if !ok {
		return nil, ErrNoResponse
	}
	return payload, nil
}
