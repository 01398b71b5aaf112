package lookup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_requests_published_total",
		Help: "The total number of lookup requests published to the broker",
	})
	responsesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_responses_matched_total",
		Help: "The total number of responses delivered to a waiting caller",
	})
	responsesParked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_responses_parked_total",
		Help: "The total number of responses stored with no waiter present",
	})
	responsesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_responses_evicted_total",
		Help: "The total number of unclaimed responses dropped by the sweeper",
	})
	awaitTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lookup_await_timeouts_total",
		Help: "The total number of waits that ended without a response",
	})
)
