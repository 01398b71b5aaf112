package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_notifications_published_total",
		Help: "The total number of notifications published to the bus",
	}, []string{"type"})
	notificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_notifications_dropped_total",
		Help: "The total number of notifications dropped on downstream failure",
	})
	likesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_likes_suppressed_total",
		Help: "The total number of like notifications suppressed by the dedup marker",
	})
	followerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_follower_cache_hits_total",
		Help: "The total number of follower lists served from cache",
	})
)
