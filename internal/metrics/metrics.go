// Package metrics holds the Prometheus collectors shared by the marketplace services.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FredericTischler/safe-zone/internal/events"
)

var (
	GRPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_grpc_requests_total",
			Help: "Total number of gRPC requests by method and status code",
		},
		[]string{"method", "code"},
	)

	GRPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_events_published_total",
			Help: "Lifecycle events handed to the channel, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	EventsConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_events_consumed_total",
			Help: "Lifecycle events handled by consumers, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	DeadLetteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_events_dead_lettered_total",
			Help: "Stream entries moved to the dead-letter stream",
		},
	)

	ArtifactsRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_artifacts_removed_total",
			Help: "Artifacts removed by single or bulk deletion",
		},
	)

	SweeperRemovalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_sweeper_resources_cleaned_total",
			Help: "Resources whose artifacts were removed by the orphan sweeper",
		},
	)
)

// Register registers every collector with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		GRPCRequestsTotal,
		GRPCRequestDuration,
		EventsPublishedTotal,
		EventsConsumedTotal,
		DeadLetteredTotal,
		ArtifactsRemovedTotal,
		SweeperRemovalsTotal,
	)
}

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// CountingPublisher counts publish outcomes of the wrapped publisher.
type CountingPublisher struct {
	Next events.Publisher
}

// Publish implements events.Publisher.
func (p CountingPublisher) Publish(ctx context.Context, ev events.Event) error {
	err := p.Next.Publish(ctx, ev)
	EventsPublishedTotal.WithLabelValues(string(ev.Type), outcome(err)).Inc()
	return err
}

// CountingHandler counts handler outcomes by event type.
func CountingHandler(h events.Handler) events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		err := h(ctx, ev)
		EventsConsumedTotal.WithLabelValues(string(ev.Type), outcome(err)).Inc()
		return err
	}
}

// ObserveGRPC records one finished RPC.
func ObserveGRPC(method, code string, took time.Duration) {
	GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	GRPCRequestDuration.WithLabelValues(method).Observe(took.Seconds())
}
