package gamemetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GameMetrics records game engine operations.
type GameMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordBetPlaced(ctx context.Context, kind string)
	RecordBetRejected(ctx context.Context, reason string)
	RecordResolution(ctx context.Context, outcome string)
	RecordRoleMutationFailure(ctx context.Context, tier string)
	RecordNotificationFailure(ctx context.Context, event string)
	RecordSchedulerTick(ctx context.Context, phase string)
}

// Prometheus implements GameMetrics with Prometheus collectors.
type Prometheus struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	betsPlaced        *prometheus.CounterVec
	betsRejected      *prometheus.CounterVec
	resolutions       *prometheus.CounterVec
	roleFailures      *prometheus.CounterVec
	notifyFailures    *prometheus.CounterVec
	schedulerTicks    *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "operations_total",
			Help:      "Service operations by name and status.",
		}, []string{"operation", "service", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		betsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "bets_placed_total",
			Help:      "Accepted bets by kind.",
		}, []string{"kind"}),
		betsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "bets_rejected_total",
			Help:      "Rejected bets by reason.",
		}, []string{"reason"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "resolutions_total",
			Help:      "Resolved instances by outcome.",
		}, []string{"outcome"}),
		roleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "role_mutation_failures_total",
			Help:      "Chat platform role mutations that failed.",
		}, []string{"tier"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be delivered.",
		}, []string{"event"}),
		schedulerTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leet",
			Subsystem: "game",
			Name:      "scheduler_ticks_total",
			Help:      "Scheduler wake-ups by observed phase.",
		}, []string{"phase"}),
	}

	collectors := []prometheus.Collector{
		m.operations, m.operationDuration, m.betsPlaced, m.betsRejected,
		m.resolutions, m.roleFailures, m.notifyFailures, m.schedulerTicks,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "attempt").Inc()
}

func (m *Prometheus) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "success").Inc()
}

func (m *Prometheus) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "failure").Inc()
}

func (m *Prometheus) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *Prometheus) RecordBetPlaced(_ context.Context, kind string) {
	m.betsPlaced.WithLabelValues(kind).Inc()
}

func (m *Prometheus) RecordBetRejected(_ context.Context, reason string) {
	m.betsRejected.WithLabelValues(reason).Inc()
}

func (m *Prometheus) RecordResolution(_ context.Context, outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Prometheus) RecordRoleMutationFailure(_ context.Context, tier string) {
	m.roleFailures.WithLabelValues(tier).Inc()
}

func (m *Prometheus) RecordNotificationFailure(_ context.Context, event string) {
	m.notifyFailures.WithLabelValues(event).Inc()
}

func (m *Prometheus) RecordSchedulerTick(_ context.Context, phase string) {
	m.schedulerTicks.WithLabelValues(phase).Inc()
}

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() GameMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordBetPlaced(context.Context, string)                                {}
func (noop) RecordBetRejected(context.Context, string)                              {}
func (noop) RecordResolution(context.Context, string)                               {}
func (noop) RecordRoleMutationFailure(context.Context, string)                      {}
func (noop) RecordNotificationFailure(context.Context, string)                      {}
func (noop) RecordSchedulerTick(context.Context, string)                            {}
