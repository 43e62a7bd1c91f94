package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Delivery outcomes recorded by RecordDelivery.
const (
	OutcomeDelivered   = "delivered"
	OutcomeFailed      = "failed"
	OutcomeDeactivated = "deactivated"
	OutcomeSkipped     = "skipped"
)

// BusinessMetrics records usecase operations and outbound deliveries.
type BusinessMetrics interface {
	// RecordOperation records a business operation with its status.
	// Domain examples: "subscription", "webhook", "reminder", "user"
	// Operation examples: "subscription_create", "webhook_dispatch", "reminder_start"
	// Status examples: "success", "error"
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records the duration of a business operation in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordDelivery counts one outbound notification attempt.
	// Channel examples: "webhook", "email". Outcome is one of the Outcome* constants.
	RecordDelivery(ctx context.Context, channel, event, outcome string)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	deliveryCounter  metric.Int64Counter
}

// NewBusinessMetrics creates a BusinessMetrics backed by the given meter provider.
// The namespace is used as a prefix for all metric names (e.g., "subtracker").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	deliveryCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_deliveries_total", namespace),
		metric.WithDescription("Total number of outbound notification attempts"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		deliveryCounter:  deliveryCounter,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDelivery(ctx context.Context, channel, event, outcome string) {
	b.deliveryCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("channel", channel),
			attribute.String("event", event),
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

// RecordDuration does nothing.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// RecordDelivery does nothing.
func (n *NoOpBusinessMetrics) RecordDelivery(ctx context.Context, channel, event, outcome string) {}
