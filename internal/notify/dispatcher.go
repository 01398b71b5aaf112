package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pulse/internal/cache"
	"pulse/internal/domain/event"
)

type followerLookup interface {
	Followers(ctx context.Context, userID string) ([]string, error)
}

// Dispatcher decides recipients and payload per domain event. It holds no
// state of its own; everything flows through the cache, the lookup and
// the bus. Downstream failures drop the notification and never propagate
// to the action that triggered the event.
type Dispatcher struct {
	cache  cache.Store
	lookup followerLookup
	bus    Bus

	followersTTL time.Duration
	likeTTL      time.Duration
}

func NewDispatcher(store cache.Store, lookup followerLookup, bus Bus, followersTTL, likeTTL time.Duration) *Dispatcher {
	return &Dispatcher{
		cache:        store,
		lookup:       lookup,
		bus:          bus,
		followersTTL: followersTTL,
		likeTTL:      likeTTL,
	}
}

func followersKey(authorID string) string {
	return "followers:" + authorID
}

func likedKey(postID, likerID, authorID string) string {
	return fmt.Sprintf("liked:%s-%s-%s", postID, likerID, authorID)
}

// NewPost fans out a new_post notification to every follower of the
// author. The follower list is memoized; a lookup miss with no response
// drops the fan-out silently.
func (d *Dispatcher) NewPost(ctx context.Context, postID, authorID string) {
	followers, err := d.followers(ctx, authorID)
	if err != nil {
		slog.Warn("dropping new_post notifications", "post_id", postID, "author_id", authorID, "error", err)
		notificationsDropped.Inc()
		return
	}

	data := map[string]string{
		"user_id": authorID,
		"post_id": postID,
		"type":    "post",
	}
	for _, followerID := range followers {
		d.publish(ctx, followerID, event.TypeNewPost, data)
	}
}

// PostLiked notifies the author once per (post, liker, author) within the
// suppression window. Repeated like/unlike churn inside the window yields
// nothing further.
func (d *Dispatcher) PostLiked(ctx context.Context, postID, likerID, authorID string) {
	if likerID == authorID {
		return
	}

	won, err := d.cache.SetIfAbsent(ctx, likedKey(postID, likerID, authorID), "1", d.likeTTL)
	if err != nil {
		slog.Warn("dropping post_liked notification", "post_id", postID, "error", err)
		notificationsDropped.Inc()
		return
	}
	if !won {
		likesSuppressed.Inc()
		return
	}

	d.publish(ctx, authorID, event.TypePostLiked, map[string]string{
		"user_id": likerID,
		"post_id": postID,
		"type":    "like",
	})
}

// NewComment notifies the author every time, with no dedup.
func (d *Dispatcher) NewComment(ctx context.Context, postID, commenterID, authorID, text string) {
	if commenterID == authorID {
		return
	}

	d.publish(ctx, authorID, event.TypeNewComment, map[string]string{
		"user_id": commenterID,
		"post_id": postID,
		"type":    "comment",
		"text":    text,
	})
}

// followers returns the memoized list, falling back to a cross-service
// lookup on miss. A cache read error degrades to a lookup; a cache write
// error only costs the memoization.
func (d *Dispatcher) followers(ctx context.Context, authorID string) ([]string, error) {
	key := followersKey(authorID)

	if raw, ok, err := d.cache.Get(ctx, key); err == nil && ok {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			followerCacheHits.Inc()
			return ids, nil
		}
	} else if err != nil {
		slog.Warn("follower cache read failed", "author_id", authorID, "error", err)
	}

	ids, err := d.lookup.Followers(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(ids); err == nil {
		if err := d.cache.Set(ctx, key, string(raw), d.followersTTL); err != nil {
			slog.Warn("follower cache write failed", "author_id", authorID, "error", err)
		}
	}

	return ids, nil
}

func (d *Dispatcher) publish(ctx context.Context, userID, eventType string, data map[string]string) {
	if err := d.bus.Publish(ctx, userID, eventType, data); err != nil {
		slog.Warn("failed to publish notification", "type", eventType, "user_id", userID, "error", err)
		notificationsDropped.Inc()
		return
	}
	notificationsPublished.WithLabelValues(eventType).Inc()
}
