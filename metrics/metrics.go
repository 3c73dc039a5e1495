package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutSessionsCreated counts successfully created Stripe checkout
	// sessions.
	CheckoutSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "itinerary_checkout_sessions_created_total",
		Help: "Number of Stripe checkout sessions created.",
	})

	// FulfillmentRuns counts pipeline runs by terminal outcome
	// (done, no_pending, failed_render, failed_deliver).
	FulfillmentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_fulfillment_runs_total",
		Help: "Number of fulfillment runs by outcome.",
	}, []string{"outcome"})

	// FulfillmentDuration observes end-to-end run latency in seconds.
	FulfillmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "itinerary_fulfillment_duration_seconds",
		Help:    "End-to-end fulfillment run duration.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
